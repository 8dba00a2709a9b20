package views

import (
	"context"
	"encoding/json"
	"testing"

	"labreserva/internal/events"
	"labreserva/internal/logging"
	"labreserva/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorariosCrearRequiereProfesor(t *testing.T) {
	fake := newFakeBackend()
	view := NewHorariosView(fake, estudiante, logging.Nop())

	_, err := view.Crear(context.Background(), "Redes I", 0, []models.SesionClase{
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00", IDUbicacion: 3},
	})
	assert.ErrorIs(t, err, ErrAccesoDenegado)
	assert.Zero(t, fake.Calls())
}

func TestHorariosCrearValidacion(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	view := NewHorariosView(fake, profesor, logging.Nop())

	_, err := view.Crear(ctx, "", 0, []models.SesionClase{
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00", IDUbicacion: 3},
	})
	assert.ErrorIs(t, err, ErrFormularioIncompleto)

	_, err = view.Crear(ctx, "Redes I", 0, nil)
	assert.ErrorIs(t, err, ErrFormularioIncompleto)

	// A session missing its lab is incomplete.
	_, err = view.Crear(ctx, "Redes I", 0, []models.SesionClase{
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00"},
	})
	assert.ErrorIs(t, err, ErrFormularioIncompleto)

	assert.Zero(t, fake.Calls())
}

func TestHorariosCrearYListar(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	fake.horarios = []models.HorarioClase{
		{ID: 1, NombreMateria: "Quimica", IDUsuario: 99},
	}

	view := NewHorariosView(fake, profesor, logging.Nop())

	horario, err := view.Crear(ctx, "Redes I", 0, []models.SesionClase{
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00", IDUbicacion: 3},
		{DiaSemana: "Jueves", HoraInicio: "08:00", HoraFin: "10:00", IDUbicacion: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, profesor.ID, horario.IDUsuario)

	// The professor only sees their own schedule after the refetch.
	horarios := view.Horarios()
	require.Len(t, horarios, 1)
	assert.Equal(t, "Redes I", horarios[0].NombreMateria)

	// An admin sees everyone's.
	adminView := NewHorariosView(fake, admin, logging.Nop())
	require.NoError(t, adminView.Load(ctx))
	assert.Len(t, adminView.Horarios(), 2)
}

func TestHorariosCrearParaOtroInstructor(t *testing.T) {
	ctx := context.Background()
	sesiones := []models.SesionClase{
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00", IDUbicacion: 3},
	}

	// An admin registers the schedule on behalf of a professor; the
	// schedule belongs to the professor, not the admin.
	fake := newFakeBackend()
	view := NewHorariosView(fake, admin, logging.Nop())
	horario, err := view.Crear(ctx, "Redes I", profesor.ID, sesiones)
	require.NoError(t, err)
	assert.Equal(t, profesor.ID, horario.IDUsuario)

	// A professor cannot assign the schedule to someone else.
	fake = newFakeBackend()
	view = NewHorariosView(fake, profesor, logging.Nop())
	_, err = view.Crear(ctx, "Redes I", admin.ID, sesiones)
	assert.ErrorIs(t, err, ErrAccesoDenegado)
	assert.Zero(t, fake.Calls())

	// Passing their own id explicitly is fine.
	horario, err = NewHorariosView(fake, profesor, logging.Nop()).Crear(ctx, "Redes I", profesor.ID, sesiones)
	require.NoError(t, err)
	assert.Equal(t, profesor.ID, horario.IDUsuario)
}

func TestHorariosCrearPublicaEvento(t *testing.T) {
	bus := events.NewEventBus()
	var recibido *events.Event
	bus.Subscribe(events.EventHorarioCreado, func(e *events.Event) error {
		recibido = e
		return nil
	})

	view := NewHorariosView(newFakeBackend(), profesor, logging.Nop()).WithEvents(bus)
	_, err := view.Crear(context.Background(), "Redes I", 0, []models.SesionClase{
		{DiaSemana: "Lunes", HoraInicio: "08:00", HoraFin: "10:00", IDUbicacion: 3},
	})
	require.NoError(t, err)

	require.NotNil(t, recibido)
	var payload events.HorarioEventPayload
	require.NoError(t, json.Unmarshal(recibido.Payload, &payload))
	assert.Equal(t, profesor.ID, payload.UserID)
	assert.Equal(t, "Redes I", payload.NombreMateria)
	assert.Equal(t, 1, payload.Sesiones)
}
