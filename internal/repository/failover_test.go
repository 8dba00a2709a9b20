package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"labreserva/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetSesion(ctx context.Context, chatID int64) (*models.Sesion, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sesion), args.Error(1)
}

func (m *mockRepo) SetSesion(ctx context.Context, sesion *models.Sesion) error {
	args := m.Called(ctx, sesion)
	return args.Error(0)
}

func (m *mockRepo) ClearSesion(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *mockRepo) SesionesActivas(ctx context.Context) ([]models.Sesion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sesion), args.Error(1)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, chatID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverSesionRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverSesionRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		sesion := &models.Sesion{ChatID: 1}
		primary.On("GetSesion", ctx, int64(1)).Return(sesion, nil).Once()

		got, err := repo.GetSesion(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, sesion, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		sesion := &models.Sesion{ChatID: 2}
		primary.On("GetSesion", ctx, int64(2)).Return(nil, errors.New("fail")).Once()
		fallback.On("GetSesion", ctx, int64(2)).Return(sesion, nil).Once()

		got, err := repo.GetSesion(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, sesion, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		sesion := &models.Sesion{ChatID: 3}
		primary.On("GetSesion", ctx, int64(3)).Return(sesion, nil).Once()

		got, err := repo.GetSesion(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, sesion, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetSesion", ctx, int64(33)).Return(nil, errors.New("still fail")).Once()
		fallback.On("GetSesion", ctx, int64(33)).Return(nil, nil).Once()

		_, err := repo.GetSesion(ctx, 33)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetSesionPrimaryDown", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now()

		sesion := &models.Sesion{ChatID: 77}
		fallback.On("SetSesion", ctx, sesion).Return(nil).Once()

		err := repo.SetSesion(ctx, sesion)
		assert.NoError(t, err)
		fallback.AssertExpectations(t)
	})

	t.Run("RateLimitFallback", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, int64(9), 5, time.Minute).Return(false, errors.New("down")).Once()
		fallback.On("CheckRateLimit", ctx, int64(9), 5, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 9, 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})
}
