package repository

import (
	"context"
	"sync"
	"time"

	"labreserva/internal/models"
)

// MemorySesionRepository is the in-process fallback store. Sessions
// kept here do not survive a restart.
type MemorySesionRepository struct {
	sesiones   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemorySesionRepository(ttl time.Duration) *MemorySesionRepository {
	return &MemorySesionRepository{
		ttl: ttl,
	}
}

func (r *MemorySesionRepository) GetSesion(ctx context.Context, chatID int64) (*models.Sesion, error) {
	val, ok := r.sesiones.Load(chatID)
	if !ok {
		return nil, nil
	}
	return val.(*models.Sesion), nil
}

func (r *MemorySesionRepository) SetSesion(ctx context.Context, sesion *models.Sesion) error {
	r.sesiones.Store(sesion.ChatID, sesion)
	return nil
}

func (r *MemorySesionRepository) ClearSesion(ctx context.Context, chatID int64) error {
	r.sesiones.Delete(chatID)
	return nil
}

// SesionesActivas returns the authenticated sessions currently held
// in memory.
func (r *MemorySesionRepository) SesionesActivas(ctx context.Context) ([]models.Sesion, error) {
	var sesiones []models.Sesion
	r.sesiones.Range(func(_, val interface{}) bool {
		sesion := val.(*models.Sesion)
		if sesion.Autenticada() {
			sesiones = append(sesiones, *sesion)
		}
		return true
	})
	return sesiones, nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySesionRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(chatID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(chatID, entry)
	return entry.count <= limit, nil
}
