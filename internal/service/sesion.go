package service

import (
	"context"
	"time"

	"labreserva/internal/backend"
	"labreserva/internal/domain"
	"labreserva/internal/models"

	"github.com/rs/zerolog"
)

// SesionService is the session/role gate: it authenticates chats
// against the backend and keeps their session and conversation step.
type SesionService struct {
	auth      domain.AuthAPI
	repo      domain.SesionRepository
	logger    *zerolog.Logger
	blacklist map[int64]bool
}

func NewSesionService(auth domain.AuthAPI, repo domain.SesionRepository, blacklist []int64, logger *zerolog.Logger) *SesionService {
	bl := make(map[int64]bool, len(blacklist))
	for _, id := range blacklist {
		bl[id] = true
	}

	return &SesionService{
		auth:      auth,
		repo:      repo,
		logger:    logger,
		blacklist: bl,
	}
}

func (s *SesionService) IsBlacklisted(chatID int64) bool {
	return s.blacklist[chatID]
}

// Login performs the single-attempt credential exchange: token first,
// then the user record behind it. On failure the chat stays logged
// out; no retry, no backoff.
func (s *SesionService) Login(ctx context.Context, chatID int64, email, password string) (*models.Sesion, error) {
	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("login failed")
		return nil, err
	}

	user, err := s.auth.Me(backend.WithToken(ctx, token))
	if err != nil {
		s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to fetch user record after login")
		return nil, err
	}

	sesion := &models.Sesion{
		ChatID:  chatID,
		Token:   token,
		Usuario: user,
	}
	if err := s.repo.SetSesion(ctx, sesion); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("chat_id", chatID).
		Int64("user_id", user.ID).
		Str("rol", string(user.Rol())).
		Msg("sesion iniciada")
	return sesion, nil
}

// Current returns the chat's session, or nil when logged out.
func (s *SesionService) Current(ctx context.Context, chatID int64) (*models.Sesion, error) {
	sesion, err := s.repo.GetSesion(ctx, chatID)
	if err != nil {
		s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to get sesion")
		return nil, err
	}
	return sesion, nil
}

func (s *SesionService) Logout(ctx context.Context, chatID int64) error {
	return s.repo.ClearSesion(ctx, chatID)
}

// SetStep moves the conversation to a new step, keeping the login.
func (s *SesionService) SetStep(ctx context.Context, chatID int64, step string, data map[string]interface{}) error {
	sesion, err := s.repo.GetSesion(ctx, chatID)
	if err != nil {
		return err
	}
	if sesion == nil {
		sesion = &models.Sesion{ChatID: chatID}
	}

	sesion.CurrentStep = step
	sesion.TempData = data
	return s.repo.SetSesion(ctx, sesion)
}

// UpdateData writes one scratch value without touching the step.
func (s *SesionService) UpdateData(ctx context.Context, chatID int64, key string, value interface{}) error {
	sesion, err := s.repo.GetSesion(ctx, chatID)
	if err != nil {
		return err
	}
	if sesion == nil {
		sesion = &models.Sesion{ChatID: chatID}
	}

	if sesion.TempData == nil {
		sesion.TempData = make(map[string]interface{})
	}
	sesion.TempData[key] = value

	return s.repo.SetSesion(ctx, sesion)
}

// SesionesActivas lists the chats that currently hold an authenticated
// session.
func (s *SesionService) SesionesActivas(ctx context.Context) ([]models.Sesion, error) {
	return s.repo.SesionesActivas(ctx)
}

func (s *SesionService) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	return s.repo.CheckRateLimit(ctx, chatID, limit, window)
}
