package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"labreserva/internal/config"
	"labreserva/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisSesionRepository keeps chat sessions in Redis so a restart does
// not log everyone out.
type RedisSesionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient crea un cliente Redis a partir de la configuración
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSesionRepository(client *redis.Client, ttl time.Duration) *RedisSesionRepository {
	return &RedisSesionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sesionKey(chatID int64) string {
	return fmt.Sprintf("sesion:%d", chatID)
}

func (r *RedisSesionRepository) GetSesion(ctx context.Context, chatID int64) (*models.Sesion, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, sesionKey(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sesion from redis: %w", err)
	}

	var sesion models.Sesion
	if err := json.Unmarshal([]byte(val), &sesion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sesion: %w", err)
	}

	return &sesion, nil
}

func (r *RedisSesionRepository) SetSesion(ctx context.Context, sesion *models.Sesion) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(sesion)
	if err != nil {
		return fmt.Errorf("failed to marshal sesion: %w", err)
	}

	if err := r.client.Set(ctx, sesionKey(sesion.ChatID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set sesion in redis: %w", err)
	}

	return nil
}

func (r *RedisSesionRepository) ClearSesion(ctx context.Context, chatID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, sesionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete sesion from redis: %w", err)
	}
	return nil
}

// SesionesActivas scans all stored chat sessions and returns the
// authenticated ones. Used by the daily reminder job to map user ids
// back to chats.
func (r *RedisSesionRepository) SesionesActivas(ctx context.Context) ([]models.Sesion, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	var sesiones []models.Sesion
	iter := r.client.Scan(ctx, 0, "sesion:*", 100).Iterator()
	for iter.Next(ctx) {
		val, err := r.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get sesion from redis: %w", err)
		}

		var sesion models.Sesion
		if err := json.Unmarshal([]byte(val), &sesion); err != nil {
			continue
		}
		if sesion.Autenticada() {
			sesiones = append(sesiones, sesion)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sesiones: %w", err)
	}
	return sesiones, nil
}

func (r *RedisSesionRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%d", chatID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping verifica la conexión con Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client is not configured")
	}
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close cierra la conexión con Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
