package repository

import (
	"context"
	"sync/atomic"
	"time"

	"labreserva/internal/domain"
	"labreserva/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSesionRepository prefers the primary (Redis) store and falls
// back to memory when it errors, probing the primary again after a
// minute.
type FailoverSesionRepository struct {
	primary   domain.SesionRepository
	fallback  domain.SesionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSesionRepository(primary, fallback domain.SesionRepository, logger *zerolog.Logger) *FailoverSesionRepository {
	return &FailoverSesionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSesionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary sesion repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverSesionRepository) GetSesion(ctx context.Context, chatID int64) (*models.Sesion, error) {
	if !r.isDown.Load() {
		sesion, err := r.primary.GetSesion(ctx, chatID)
		if err == nil {
			return sesion, nil
		}
		r.markDown(err)
	}

	// Probe the primary again after a minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		sesion, err := r.primary.GetSesion(ctx, chatID)
		if err == nil {
			r.isDown.Store(false)
			return sesion, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSesion(ctx, chatID)
}

func (r *FailoverSesionRepository) SetSesion(ctx context.Context, sesion *models.Sesion) error {
	if !r.isDown.Load() {
		err := r.primary.SetSesion(ctx, sesion)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSesion(ctx, sesion)
}

func (r *FailoverSesionRepository) ClearSesion(ctx context.Context, chatID int64) error {
	if !r.isDown.Load() {
		err := r.primary.ClearSesion(ctx, chatID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearSesion(ctx, chatID)
}

func (r *FailoverSesionRepository) SesionesActivas(ctx context.Context) ([]models.Sesion, error) {
	if !r.isDown.Load() {
		sesiones, err := r.primary.SesionesActivas(ctx)
		if err == nil {
			return sesiones, nil
		}
		r.markDown(err)
	}

	return r.fallback.SesionesActivas(ctx)
}

func (r *FailoverSesionRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, chatID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, chatID, limit, window)
}
