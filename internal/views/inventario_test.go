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

func TestInventarioGestionRequiereAdmin(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	view := NewInventarioView(fake, fake, estudiante, logging.Nop())

	_, err := view.CrearLaboratorio(ctx, "Lab E-401", "Piso 4")
	assert.ErrorIs(t, err, ErrAccesoDenegado)

	_, err = view.CrearEquipo(ctx, "PC-01", "i5/8GB", models.EstadoOperativo, 3)
	assert.ErrorIs(t, err, ErrAccesoDenegado)

	assert.ErrorIs(t, view.EliminarLaboratorio(ctx, 3), ErrAccesoDenegado)
	assert.ErrorIs(t, view.EliminarEquipo(ctx, 7), ErrAccesoDenegado)
	assert.ErrorIs(t, view.CambiarEstadoEquipo(ctx, 7, models.EstadoDanado), ErrAccesoDenegado)

	assert.Zero(t, fake.Calls(), "gated mutations must not reach the network")
}

func TestInventarioBrowseAbiertoATodos(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	fake.labs = []models.Laboratorio{{ID: 3, Nombre: "Lab A", Descripcion: "Piso 1"}}
	fake.equipos = []models.Equipo{
		{ID: 7, Nombre: "PC-01", Modelo: "i5/8GB", Estado: models.EstadoOperativo, IDLaboratorio: 3},
		{ID: 8, Nombre: "PC-02", Modelo: "i5/8GB", Estado: models.EstadoMantenimiento, IDLaboratorio: 3},
	}

	view := NewInventarioView(fake, fake, estudiante, logging.Nop())
	require.NoError(t, view.LoadLaboratorios(ctx))
	require.NoError(t, view.LoadEquipos(ctx, 3))

	assert.Len(t, view.Laboratorios(), 1)
	assert.Len(t, view.Equipos(), 2)

	operativos := view.EquiposOperativos()
	require.Len(t, operativos, 1)
	assert.Equal(t, int64(7), operativos[0].ID)
}

func TestCrearLaboratorioValidacion(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	view := NewInventarioView(fake, fake, admin, logging.Nop())

	_, err := view.CrearLaboratorio(ctx, "", "Piso 4")
	assert.ErrorIs(t, err, ErrFormularioIncompleto)
	_, err = view.CrearLaboratorio(ctx, "Lab E-401", "")
	assert.ErrorIs(t, err, ErrFormularioIncompleto)
	assert.Zero(t, fake.Calls())
}

func TestCrearEquipoValidacion(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	view := NewInventarioView(fake, fake, admin, logging.Nop())

	_, err := view.CrearEquipo(ctx, "", "i5/8GB", models.EstadoOperativo, 3)
	assert.ErrorIs(t, err, ErrFormularioIncompleto)
	_, err = view.CrearEquipo(ctx, "PC-01", "i5/8GB", models.EstadoOperativo, 0)
	assert.ErrorIs(t, err, ErrFormularioIncompleto)
	_, err = view.CrearEquipo(ctx, "PC-01", "i5/8GB", "Roto", 3)
	assert.ErrorIs(t, err, ErrEstadoInvalido)
	assert.Zero(t, fake.Calls())
}

// Admin creates a lab, then equipment under it; each refetch includes
// the new record.
func TestInventarioFlujoCompleto(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	view := NewInventarioView(fake, fake, admin, logging.Nop())

	lab, err := view.CrearLaboratorio(ctx, "Lab E-401", "Piso 4")
	require.NoError(t, err)
	require.NotZero(t, lab.ID)

	encontrado := view.Laboratorio(lab.ID)
	require.NotNil(t, encontrado, "refetched list must include the new lab")
	assert.Equal(t, "Lab E-401", encontrado.Nombre)

	equipo, err := view.CrearEquipo(ctx, "PC-01", "i5/8GB", models.EstadoOperativo, lab.ID)
	require.NoError(t, err)
	require.NotZero(t, equipo.ID)

	equipos := view.Equipos()
	require.Len(t, equipos, 1)
	assert.Equal(t, lab.ID, equipos[0].IDLaboratorio)
	assert.Equal(t, "PC-01", equipos[0].Nombre)
}

func TestCambiarEstadoEquipo(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	fake.equipos = []models.Equipo{
		{ID: 7, Nombre: "PC-01", Modelo: "i5/8GB", Estado: models.EstadoOperativo, IDLaboratorio: 3},
	}

	view := NewInventarioView(fake, fake, admin, logging.Nop())
	require.NoError(t, view.LoadEquipos(ctx, 3))
	require.NoError(t, view.CambiarEstadoEquipo(ctx, 7, models.EstadoDanado))

	equipos := view.Equipos()
	require.Len(t, equipos, 1)
	assert.Equal(t, models.EstadoDanado, equipos[0].Estado)
	// The rest of the record survives the state change.
	assert.Equal(t, "PC-01", equipos[0].Nombre)
	assert.Equal(t, int64(3), equipos[0].IDLaboratorio)
}

func TestCambiarEstadoEquipoPublicaEvento(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	fake.equipos = []models.Equipo{
		{ID: 7, Nombre: "PC-01", Modelo: "i5/8GB", Estado: models.EstadoOperativo, IDLaboratorio: 3},
	}

	bus := events.NewEventBus()
	var recibido *events.Event
	bus.Subscribe(events.EventEquipoEstado, func(e *events.Event) error {
		recibido = e
		return nil
	})

	view := NewInventarioView(fake, fake, admin, logging.Nop()).WithEvents(bus)
	require.NoError(t, view.LoadEquipos(ctx, 3))
	require.NoError(t, view.CambiarEstadoEquipo(ctx, 7, models.EstadoMantenimiento))

	require.NotNil(t, recibido)
	var payload events.EquipoEventPayload
	require.NoError(t, json.Unmarshal(recibido.Payload, &payload))
	assert.Equal(t, int64(7), payload.EquipoID)
	assert.Equal(t, int64(3), payload.IDLaboratorio)
	assert.Equal(t, models.EstadoMantenimiento, payload.Estado)
}

func TestEliminarEquipoYLaboratorio(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	fake.labs = []models.Laboratorio{{ID: 3, Nombre: "Lab A", Descripcion: "Piso 1"}}
	fake.equipos = []models.Equipo{
		{ID: 7, Nombre: "PC-01", Modelo: "i5", Estado: models.EstadoOperativo, IDLaboratorio: 3},
	}

	view := NewInventarioView(fake, fake, superuser, logging.Nop())
	require.NoError(t, view.LoadLaboratorios(ctx))
	require.NoError(t, view.LoadEquipos(ctx, 3))

	require.NoError(t, view.EliminarEquipo(ctx, 7))
	assert.Empty(t, view.Equipos())

	require.NoError(t, view.EliminarLaboratorio(ctx, 3))
	assert.Empty(t, view.Laboratorios())
}
