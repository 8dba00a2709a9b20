package views

import (
	"context"
	"sync"

	"labreserva/internal/domain"
	"labreserva/internal/events"
	"labreserva/internal/models"

	"github.com/rs/zerolog"
)

// HorariosView manages recurring class schedules. Creation is limited
// to instructors and admin-level roles.
type HorariosView struct {
	api     domain.HorariosAPI
	logger  *zerolog.Logger
	usuario *models.Usuario
	events  domain.EventPublisher

	mu       sync.Mutex
	horarios []models.HorarioClase
}

func NewHorariosView(api domain.HorariosAPI, usuario *models.Usuario, logger *zerolog.Logger) *HorariosView {
	return &HorariosView{
		api:     api,
		usuario: usuario,
		logger:  logger,
	}
}

// WithEvents attaches the in-process event bus; optional.
func (v *HorariosView) WithEvents(bus domain.EventPublisher) *HorariosView {
	v.events = bus
	return v
}

func (v *HorariosView) Load(ctx context.Context) error {
	horarios, err := v.api.ListHorariosClase(ctx)
	if err != nil {
		v.logger.Error().Err(err).Msg("failed to load horarios de clase")
		return err
	}
	v.mu.Lock()
	v.horarios = horarios
	v.mu.Unlock()
	return nil
}

// Horarios returns the loaded schedules; non-admin callers see only
// their own.
func (v *HorariosView) Horarios() []models.HorarioClase {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.usuario.Rol().EsAdministrativo() {
		return v.horarios
	}
	out := make([]models.HorarioClase, 0, len(v.horarios))
	for _, h := range v.horarios {
		if h.IDUsuario == v.usuario.ID {
			out = append(out, h)
		}
	}
	return out
}

// Crear submits a recurring schedule. idInstructor selects the owning
// instructor; zero means the caller. Creating on behalf of another
// user is an admin-only operation. The subject and at least one
// complete weekly session are required before any request leaves the
// process.
func (v *HorariosView) Crear(ctx context.Context, nombreMateria string, idInstructor int64, sesiones []models.SesionClase) (*models.HorarioClase, error) {
	if !v.usuario.Rol().Puede(models.CapCrearHorarios) {
		return nil, ErrAccesoDenegado
	}
	if idInstructor == 0 {
		idInstructor = v.usuario.ID
	}
	if idInstructor != v.usuario.ID && !v.usuario.Rol().EsAdministrativo() {
		return nil, ErrAccesoDenegado
	}
	if nombreMateria == "" || len(sesiones) == 0 {
		return nil, ErrFormularioIncompleto
	}
	for i := range sesiones {
		if !sesiones[i].Completa() {
			return nil, ErrFormularioIncompleto
		}
	}

	horario, err := v.api.CreateHorarioClase(ctx, models.HorarioClase{
		NombreMateria: nombreMateria,
		IDUsuario:     idInstructor,
		Sesiones:      sesiones,
	})
	if err != nil {
		return nil, err
	}
	v.logger.Info().
		Int64("user_id", idInstructor).
		Str("materia", nombreMateria).
		Int("sesiones", len(sesiones)).
		Msg("horario de clase creado")

	if v.events != nil {
		_ = v.events.PublishJSON(events.EventHorarioCreado, events.HorarioEventPayload{
			HorarioID:     horario.ID,
			UserID:        idInstructor,
			NombreMateria: nombreMateria,
			Sesiones:      len(sesiones),
		})
	}

	if err := v.Load(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after horario create failed")
	}
	return horario, nil
}
