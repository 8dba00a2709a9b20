package views

import (
	"context"
	"errors"
	"testing"

	"labreserva/internal/backend"
	"labreserva/internal/logging"
	"labreserva/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	estudiante = &models.Usuario{ID: 7, Name: "Ana", Email: "ana@uni.edu", Type: models.TipoEstudiante}
	profesor   = &models.Usuario{ID: 8, Name: "Luis", Email: "luis@uni.edu", Type: models.TipoProfesor}
	admin      = &models.Usuario{ID: 1, Name: "Root", Email: "root@uni.edu", Type: models.TipoAdministrador}
	superuser  = &models.Usuario{ID: 2, Name: "Super", Email: "super@uni.edu", Type: models.TipoSuperusuario}
)

// unscopedBackend ignores the server-side user filter, as a buggy or
// hostile backend could. The view must still cut foreign rows.
type unscopedBackend struct {
	*fakeBackend
}

func (u *unscopedBackend) ListReservas(ctx context.Context, params backend.ParamsReservas) ([]models.Reserva, error) {
	u.calls.Add(1)
	return append([]models.Reserva(nil), u.reservas...), nil
}

func TestReservaViewOwnershipScope(t *testing.T) {
	fake := newFakeBackend()
	fake.reservas = []models.Reserva{
		{ID: 1, FechaInicio: "2025-01-15T10:00", FechaFin: "2025-01-15T11:00", IDUsuario: 7, IDUbicacion: 3, Status: models.StatusPending},
		{ID: 2, FechaInicio: "2025-01-15T12:00", FechaFin: "2025-01-15T13:00", IDUsuario: 8, IDUbicacion: 3, Status: models.StatusActive},
	}

	view := NewReservaView(&unscopedBackend{fake}, estudiante, logging.Nop())
	view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
	require.NoError(t, view.Load(context.Background()))

	visibles := view.Visible()
	require.Len(t, visibles, 1)
	assert.Equal(t, int64(7), visibles[0].IDUsuario)
}

func TestReservaViewScopesRequestToOwnUser(t *testing.T) {
	fake := newFakeBackend()
	fake.reservas = []models.Reserva{
		{ID: 1, FechaInicio: "2025-01-15T10:00", IDUsuario: 7, IDUbicacion: 3},
		{ID: 2, FechaInicio: "2025-01-15T12:00", IDUsuario: 8, IDUbicacion: 3},
	}

	view := NewReservaView(fake, estudiante, logging.Nop())
	view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
	require.NoError(t, view.Load(context.Background()))
	require.Len(t, view.Visible(), 1)

	// An admin sees everyone's.
	adminView := NewReservaView(fake, admin, logging.Nop())
	adminView.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
	require.NoError(t, adminView.Load(context.Background()))
	assert.Len(t, adminView.Visible(), 2)
}

func TestReservaViewDateFilter(t *testing.T) {
	fake := newFakeBackend()
	fake.reservas = []models.Reserva{
		{ID: 1, FechaInicio: "2025-01-15T10:00", IDUsuario: 1, IDUbicacion: 3},
		{ID: 2, FechaInicio: "2025-01-16T10:00", IDUsuario: 1, IDUbicacion: 3},
	}

	view := NewReservaView(&unscopedBackend{fake}, admin, logging.Nop())

	for _, lab := range []int64{0, 3} {
		view.SetFiltro(FiltroReservas{Fecha: "2025-01-15", IDLaboratorio: lab})
		require.NoError(t, view.Load(context.Background()))

		visibles := view.Visible()
		require.Len(t, visibles, 1, "lab filter %d", lab)
		assert.Equal(t, "2025-01-15", visibles[0].Fecha())
	}
}

func TestReservaViewLabFilter(t *testing.T) {
	fake := newFakeBackend()
	fake.reservas = []models.Reserva{
		{ID: 1, FechaInicio: "2025-01-15T10:00", IDUsuario: 1, IDUbicacion: 3},
		{ID: 2, FechaInicio: "2025-01-15T10:00", IDUsuario: 1, IDUbicacion: 4},
	}

	view := NewReservaView(fake, admin, logging.Nop())
	view.SetFiltro(FiltroReservas{Fecha: "2025-01-15", IDLaboratorio: 4})
	require.NoError(t, view.Load(context.Background()))

	visibles := view.Visible()
	require.Len(t, visibles, 1)
	assert.Equal(t, int64(4), visibles[0].IDUbicacion)
}

func TestCrearReservaValidationBlocksNetwork(t *testing.T) {
	cases := []struct {
		name string
		form FormReserva
	}{
		{"sin fecha", FormReserva{HoraInicio: "10:00", HoraFin: "11:00", IDLaboratorio: 3}},
		{"sin hora inicio", FormReserva{Fecha: "2025-02-01", HoraFin: "11:00", IDLaboratorio: 3}},
		{"sin hora fin", FormReserva{Fecha: "2025-02-01", HoraInicio: "10:00", IDLaboratorio: 3}},
		{"sin laboratorio", FormReserva{Fecha: "2025-02-01", HoraInicio: "10:00", HoraFin: "11:00"}},
		{"equipo especifico sin equipo", FormReserva{Fecha: "2025-02-01", HoraInicio: "10:00", HoraFin: "11:00", IDLaboratorio: 3, EquipoEspecifico: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeBackend()
			view := NewReservaView(fake, estudiante, logging.Nop())

			_, err := view.Crear(context.Background(), tc.form)
			assert.ErrorIs(t, err, ErrFormularioIncompleto)
			assert.Zero(t, fake.Calls(), "an incomplete form must not reach the network")
		})
	}
}

func TestCrearReservaPayload(t *testing.T) {
	fake := newFakeBackend()
	view := NewReservaView(fake, estudiante, logging.Nop())
	view.SetFiltro(FiltroReservas{Fecha: "2025-02-01"})

	reserva, err := view.Crear(context.Background(), FormReserva{
		Fecha:            "2025-02-01",
		HoraInicio:       "10:00",
		HoraFin:          "11:00",
		IDLaboratorio:    3,
		IDEquipo:         7,
		EquipoEspecifico: true,
	})
	require.NoError(t, err)
	require.NotNil(t, reserva)

	sent := fake.lastReservaCreate
	assert.Equal(t, "2025-02-01T10:00", sent.FechaInicio)
	assert.Equal(t, "2025-02-01T11:00", sent.FechaFin)
	assert.Equal(t, []int64{7}, sent.Equipos)
	assert.Equal(t, models.StatusPending, sent.Status)
	assert.Equal(t, int64(7), sent.IDUsuario)
	assert.Equal(t, int64(3), sent.IDUbicacion)

	// Refetch after the mutation resyncs the visible list.
	assert.Len(t, view.Visible(), 1)
}

func TestCrearReservaTodoElLab(t *testing.T) {
	fake := newFakeBackend()
	view := NewReservaView(fake, profesor, logging.Nop())

	_, err := view.Crear(context.Background(), FormReserva{
		Fecha:         "2025-02-01",
		HoraInicio:    "10:00",
		HoraFin:       "12:00",
		IDLaboratorio: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{models.EquipoTodoElLab}, fake.lastReservaCreate.Equipos)
}

func TestCancelacionDosPasos(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm sin request", func(t *testing.T) {
		view := NewReservaView(newFakeBackend(), estudiante, logging.Nop())
		assert.ErrorIs(t, view.ConfirmCancel(ctx), ErrSinCancelacionPendiente)
	})

	t.Run("request y confirm", func(t *testing.T) {
		fake := newFakeBackend()
		fake.reservas = []models.Reserva{
			{ID: 10, FechaInicio: "2025-01-15T10:00", IDUsuario: 7, IDUbicacion: 3, Status: models.StatusPending},
		}
		view := NewReservaView(fake, estudiante, logging.Nop())
		view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
		require.NoError(t, view.Load(ctx))

		reserva, err := view.RequestCancel(10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), reserva.ID)
		// Nothing left the process yet besides the initial load.
		assert.Equal(t, int64(1), fake.Calls())

		require.NoError(t, view.ConfirmCancel(ctx))
		assert.Equal(t, []int64{10}, fake.cancelados)

		// Refetched: the row now shows cancelled and cannot be
		// cancelled again.
		_, err = view.RequestCancel(10)
		assert.ErrorIs(t, err, ErrReservaYaCancelada)
	})

	t.Run("abort descarta el pendiente", func(t *testing.T) {
		fake := newFakeBackend()
		fake.reservas = []models.Reserva{
			{ID: 11, FechaInicio: "2025-01-15T10:00", IDUsuario: 7, IDUbicacion: 3, Status: models.StatusPending},
		}
		view := NewReservaView(fake, estudiante, logging.Nop())
		view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
		require.NoError(t, view.Load(ctx))

		_, err := view.RequestCancel(11)
		require.NoError(t, err)
		view.AbortCancel()
		assert.ErrorIs(t, view.ConfirmCancel(ctx), ErrSinCancelacionPendiente)
		assert.Empty(t, fake.cancelados)
	})

	t.Run("reserva ajena", func(t *testing.T) {
		fake := newFakeBackend()
		fake.reservas = []models.Reserva{
			{ID: 12, FechaInicio: "2025-01-15T10:00", IDUsuario: 8, IDUbicacion: 3, Status: models.StatusPending},
		}
		view := NewReservaView(&unscopedBackend{fake}, estudiante, logging.Nop())
		view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
		require.NoError(t, view.Load(ctx))

		_, err := view.RequestCancel(12)
		assert.ErrorIs(t, err, ErrReservaAjena)
	})

	t.Run("admin cancela reservas ajenas", func(t *testing.T) {
		fake := newFakeBackend()
		fake.reservas = []models.Reserva{
			{ID: 13, FechaInicio: "2025-01-15T10:00", IDUsuario: 8, IDUbicacion: 3, Status: models.StatusActive},
		}
		view := NewReservaView(fake, admin, logging.Nop())
		view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
		require.NoError(t, view.Load(ctx))

		_, err := view.RequestCancel(13)
		require.NoError(t, err)
		require.NoError(t, view.ConfirmCancel(ctx))
		assert.Equal(t, []int64{13}, fake.cancelados)
	})
}

type failingReservas struct {
	*fakeBackend
}

func (f *failingReservas) ListReservas(ctx context.Context, params backend.ParamsReservas) ([]models.Reserva, error) {
	f.calls.Add(1)
	return nil, errors.New("backend caido")
}

func TestLoadFailureLeavesPriorState(t *testing.T) {
	fake := newFakeBackend()
	fake.reservas = []models.Reserva{
		{ID: 1, FechaInicio: "2025-01-15T10:00", IDUsuario: 1, IDUbicacion: 3},
	}

	view := NewReservaView(fake, admin, logging.Nop())
	view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})
	require.NoError(t, view.Load(context.Background()))
	require.Len(t, view.Visible(), 1)

	view.api = &failingReservas{fake}
	assert.Error(t, view.Load(context.Background()))
	assert.Len(t, view.Visible(), 1, "a failed fetch must not clobber the loaded list")
}

func TestStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	fake := newFakeBackend()
	fake.reservas = []models.Reserva{
		{ID: 1, FechaInicio: "2025-01-15T10:00", IDUsuario: 1, IDUbicacion: 3},
		{ID: 2, FechaInicio: "2025-01-16T10:00", IDUsuario: 1, IDUbicacion: 3},
	}

	view := NewReservaView(fake, admin, logging.Nop())
	view.SetFiltro(FiltroReservas{Fecha: "2025-01-15"})

	// While the first fetch is in flight the user flips the date and a
	// second fetch completes first. The first response is stale by the
	// time it lands and must not overwrite the newer list.
	fake.listHook = func() {
		fake.listHook = nil
		view.SetFiltro(FiltroReservas{Fecha: "2025-01-16"})
		require.NoError(t, view.Load(ctx))
	}

	require.NoError(t, view.Load(ctx))

	visibles := view.Visible()
	require.Len(t, visibles, 1)
	assert.Equal(t, "2025-01-16", visibles[0].Fecha())
}
