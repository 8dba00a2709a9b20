package views

import (
	"context"
	"sync/atomic"

	"labreserva/internal/backend"
	"labreserva/internal/models"
)

// fakeBackend is an in-memory stand-in for the remote service. Every
// method counts its calls so tests can assert that gated paths never
// touch the network.
type fakeBackend struct {
	calls atomic.Int64

	reservas   []models.Reserva
	labs       []models.Laboratorio
	equipos    []models.Equipo
	usuarios   []models.Usuario
	horarios   []models.HorarioClase
	nextID     int64
	failListas bool

	lastReservaCreate backend.ReservaCreate
	lastRegistro      backend.RegistroUsuario
	cancelados        []int64
	eliminados        []int64

	// listHook, when set, runs before each ListReservas returns; used
	// to interleave filter changes mid-flight.
	listHook func()
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100}
}

func (f *fakeBackend) Calls() int64 { return f.calls.Load() }

func (f *fakeBackend) genID() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (string, error) {
	f.calls.Add(1)
	return "tok", nil
}

func (f *fakeBackend) Me(ctx context.Context) (*models.Usuario, error) {
	f.calls.Add(1)
	return nil, backend.ErrUnauthorized
}

func (f *fakeBackend) Register(ctx context.Context, reg backend.RegistroUsuario) (*models.Usuario, error) {
	f.calls.Add(1)
	f.lastRegistro = reg
	u := models.Usuario{ID: f.genID(), Name: reg.Name, Email: reg.Email, Type: reg.Type}
	f.usuarios = append(f.usuarios, u)
	return &u, nil
}

func (f *fakeBackend) ListUsuarios(ctx context.Context) ([]models.Usuario, error) {
	f.calls.Add(1)
	return append([]models.Usuario(nil), f.usuarios...), nil
}

func (f *fakeBackend) DeleteUsuario(ctx context.Context, id int64) error {
	f.calls.Add(1)
	f.eliminados = append(f.eliminados, id)
	kept := f.usuarios[:0]
	for _, u := range f.usuarios {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	f.usuarios = kept
	return nil
}

func (f *fakeBackend) ListLaboratorios(ctx context.Context, params backend.ParamsLaboratorios) ([]models.Laboratorio, error) {
	f.calls.Add(1)
	if f.failListas {
		return nil, backend.ErrNotFound
	}
	return append([]models.Laboratorio(nil), f.labs...), nil
}

func (f *fakeBackend) CreateLaboratorio(ctx context.Context, in backend.LaboratorioCreate) (*models.Laboratorio, error) {
	f.calls.Add(1)
	lab := models.Laboratorio{ID: f.genID(), Nombre: in.Nombre, Descripcion: in.Descripcion}
	f.labs = append(f.labs, lab)
	return &lab, nil
}

func (f *fakeBackend) UpdateLaboratorio(ctx context.Context, id int64, in backend.LaboratorioCreate) (*models.Laboratorio, error) {
	f.calls.Add(1)
	for i := range f.labs {
		if f.labs[i].ID == id {
			f.labs[i].Nombre = in.Nombre
			f.labs[i].Descripcion = in.Descripcion
			return &f.labs[i], nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *fakeBackend) DeleteLaboratorio(ctx context.Context, id int64) error {
	f.calls.Add(1)
	kept := f.labs[:0]
	for _, l := range f.labs {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	f.labs = kept
	return nil
}

func (f *fakeBackend) ListEquipos(ctx context.Context, params backend.ParamsEquipos) ([]models.Equipo, error) {
	f.calls.Add(1)
	out := make([]models.Equipo, 0, len(f.equipos))
	for _, e := range f.equipos {
		if params.IDLaboratorio != 0 && e.IDLaboratorio != params.IDLaboratorio {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeBackend) GetEquipo(ctx context.Context, id int64) (*models.Equipo, error) {
	f.calls.Add(1)
	for i := range f.equipos {
		if f.equipos[i].ID == id {
			return &f.equipos[i], nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *fakeBackend) CreateEquipo(ctx context.Context, in backend.EquipoCreate) (*models.Equipo, error) {
	f.calls.Add(1)
	e := models.Equipo{ID: f.genID(), Nombre: in.Nombre, Modelo: in.Modelo, Estado: in.Estado, IDLaboratorio: in.IDLaboratorio}
	f.equipos = append(f.equipos, e)
	return &e, nil
}

func (f *fakeBackend) UpdateEquipo(ctx context.Context, id int64, in backend.EquipoCreate) (*models.Equipo, error) {
	f.calls.Add(1)
	for i := range f.equipos {
		if f.equipos[i].ID == id {
			f.equipos[i].Nombre = in.Nombre
			f.equipos[i].Modelo = in.Modelo
			f.equipos[i].Estado = in.Estado
			f.equipos[i].IDLaboratorio = in.IDLaboratorio
			return &f.equipos[i], nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *fakeBackend) DeleteEquipo(ctx context.Context, id int64) error {
	f.calls.Add(1)
	kept := f.equipos[:0]
	for _, e := range f.equipos {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	f.equipos = kept
	return nil
}

func (f *fakeBackend) ListReservas(ctx context.Context, params backend.ParamsReservas) ([]models.Reserva, error) {
	f.calls.Add(1)
	out := make([]models.Reserva, 0, len(f.reservas))
	for _, r := range f.reservas {
		if params.Fecha != "" && r.Fecha() != params.Fecha {
			continue
		}
		if params.IDUsuario != 0 && r.IDUsuario != params.IDUsuario {
			continue
		}
		out = append(out, r)
	}
	if f.listHook != nil {
		f.listHook()
	}
	return out, nil
}

func (f *fakeBackend) CreateReserva(ctx context.Context, in backend.ReservaCreate) (*models.Reserva, error) {
	f.calls.Add(1)
	f.lastReservaCreate = in
	r := models.Reserva{
		ID:          f.genID(),
		FechaInicio: in.FechaInicio,
		FechaFin:    in.FechaFin,
		IDUsuario:   in.IDUsuario,
		IDUbicacion: in.IDUbicacion,
		Equipos:     in.Equipos,
		Status:      in.Status,
	}
	f.reservas = append(f.reservas, r)
	return &r, nil
}

func (f *fakeBackend) CancelReserva(ctx context.Context, id int64) error {
	f.calls.Add(1)
	f.cancelados = append(f.cancelados, id)
	for i := range f.reservas {
		if f.reservas[i].ID == id {
			f.reservas[i].Status = models.StatusCancelled
		}
	}
	return nil
}

func (f *fakeBackend) CreateHorarioClase(ctx context.Context, in models.HorarioClase) (*models.HorarioClase, error) {
	f.calls.Add(1)
	in.ID = f.genID()
	f.horarios = append(f.horarios, in)
	return &in, nil
}

func (f *fakeBackend) ListHorariosClase(ctx context.Context) ([]models.HorarioClase, error) {
	f.calls.Add(1)
	return append([]models.HorarioClase(nil), f.horarios...), nil
}
