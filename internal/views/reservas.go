package views

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"labreserva/internal/backend"
	"labreserva/internal/domain"
	"labreserva/internal/events"
	"labreserva/internal/metrics"
	"labreserva/internal/models"

	"github.com/rs/zerolog"
)

// FiltroReservas is the client-side scope of the reservation screen.
// IDLaboratorio 0 means "all labs".
type FiltroReservas struct {
	Fecha         string
	IDLaboratorio int64
}

// FormReserva is a creation form in progress. IDEquipo 0 books the
// whole lab; EquipoEspecifico marks the "specific computer" mode, in
// which an equipment selection is mandatory.
type FormReserva struct {
	Fecha            string
	HoraInicio       string
	HoraFin          string
	IDLaboratorio    int64
	IDEquipo         int64
	EquipoEspecifico bool
}

// ReservaView holds the transient reservation screen state for one
// user: the last fetched list plus the active filter. Everything here
// is discarded when the chat navigates away; the backend owns the
// truth and every mutation is followed by a refetch.
type ReservaView struct {
	api     domain.ReservasAPI
	events  domain.EventPublisher
	worker  domain.SyncWorker
	logger  *zerolog.Logger
	usuario *models.Usuario

	mu            sync.Mutex
	filtro        FiltroReservas
	reservas      []models.Reserva
	pendingCancel int64

	// reqSeq tags each fetch; a response whose tag no longer matches
	// is stale (the filter changed underneath it) and is discarded.
	reqSeq atomic.Uint64
}

func NewReservaView(api domain.ReservasAPI, usuario *models.Usuario, logger *zerolog.Logger) *ReservaView {
	return &ReservaView{
		api:     api,
		usuario: usuario,
		logger:  logger,
	}
}

// WithEvents attaches the in-process event bus and the sheet-sync
// queue; both are optional.
func (v *ReservaView) WithEvents(events domain.EventPublisher, worker domain.SyncWorker) *ReservaView {
	v.events = events
	v.worker = worker
	return v
}

// SetFiltro changes the screen scope. The list is not touched here;
// the caller follows with Load.
func (v *ReservaView) SetFiltro(filtro FiltroReservas) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filtro = filtro
}

func (v *ReservaView) Filtro() FiltroReservas {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtro
}

// Load fetches the reservation list for the current filter. Non-admin
// users are always scoped to their own reservations server-side, so
// another user's bookings never reach this process. A failed fetch
// leaves the previously loaded list untouched. A response that arrives
// after the filter has changed again is discarded instead of
// overwriting fresher state.
func (v *ReservaView) Load(ctx context.Context) error {
	v.mu.Lock()
	filtro := v.filtro
	v.mu.Unlock()

	seq := v.reqSeq.Add(1)

	params := backend.ParamsReservas{Fecha: filtro.Fecha}
	if !v.usuario.Rol().Puede(models.CapCancelarCualquierReserva) {
		params.IDUsuario = v.usuario.ID
	}

	reservas, err := v.api.ListReservas(ctx, params)
	if err != nil {
		v.logger.Error().Err(err).Str("fecha", filtro.Fecha).Msg("failed to load reservas")
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.reqSeq.Load() {
		metrics.IncStaleResponse()
		v.logger.Debug().Uint64("seq", seq).Msg("discarding stale reservas response")
		return nil
	}
	v.reservas = reservas
	return nil
}

// Visible applies the client-side filter: exact calendar-day match,
// lab match (or all), and ownership for non-admin roles. The server
// already scopes by user and date, but the backend is not trusted to
// get the ownership cut right for privileged filters, so the same rule
// is applied again here.
func (v *ReservaView) Visible() []models.Reserva {
	v.mu.Lock()
	defer v.mu.Unlock()

	esAdmin := v.usuario.Rol().Puede(models.CapCancelarCualquierReserva)

	out := make([]models.Reserva, 0, len(v.reservas))
	for _, r := range v.reservas {
		if v.filtro.Fecha != "" && r.Fecha() != v.filtro.Fecha {
			continue
		}
		if v.filtro.IDLaboratorio != 0 && r.IDUbicacion != v.filtro.IDLaboratorio {
			continue
		}
		if !esAdmin && r.IDUsuario != v.usuario.ID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Validar checks the form locally. Incomplete forms never produce a
// network call.
func (f FormReserva) Validar() error {
	if f.Fecha == "" || f.HoraInicio == "" || f.HoraFin == "" || f.IDLaboratorio == 0 {
		return ErrFormularioIncompleto
	}
	if f.EquipoEspecifico && f.IDEquipo == 0 {
		return ErrFormularioIncompleto
	}
	return nil
}

// Crear submits the reservation and refetches the current filter. The
// start/end timestamps combine the calendar date with the two
// wall-clock times; the status always enters as pending and the
// backend decides the rest of the lifecycle.
func (v *ReservaView) Crear(ctx context.Context, form FormReserva) (*models.Reserva, error) {
	if !v.usuario.Rol().Puede(models.CapReservar) {
		return nil, ErrAccesoDenegado
	}
	if err := form.Validar(); err != nil {
		return nil, err
	}

	equipos := []int64{models.EquipoTodoElLab}
	if form.EquipoEspecifico {
		equipos = []int64{form.IDEquipo}
	}

	in := backend.ReservaCreate{
		FechaCreacion: time.Now().Format("2006-01-02T15:04"),
		FechaInicio:   form.Fecha + "T" + form.HoraInicio,
		FechaFin:      form.Fecha + "T" + form.HoraFin,
		IDUsuario:     v.usuario.ID,
		IDUbicacion:   form.IDLaboratorio,
		Equipos:       equipos,
		Status:        models.StatusPending,
	}

	reserva, err := v.api.CreateReserva(ctx, in)
	if err != nil {
		return nil, err
	}

	v.logger.Info().
		Int64("reserva_id", reserva.ID).
		Int64("user_id", v.usuario.ID).
		Int64("laboratorio_id", form.IDLaboratorio).
		Msg("reserva creada")

	if v.events != nil {
		_ = v.events.PublishJSON(events.EventReservaCreada, events.ReservaEventPayload{
			ReservaID:   reserva.ID,
			UserID:      v.usuario.ID,
			UserName:    v.usuario.Name,
			Laboratorio: reserva.IDUbicacion,
			Equipos:     reserva.Equipos,
			FechaInicio: reserva.FechaInicio,
			FechaFin:    reserva.FechaFin,
			Status:      reserva.Status,
		})
	}
	if v.worker != nil {
		_ = v.worker.EnqueueTask(ctx, "upsert_reserva", reserva.ID, reserva, "")
	}

	if err := v.Load(ctx); err != nil {
		// The creation went through; a failed refetch only leaves the
		// list one mutation behind.
		v.logger.Warn().Err(err).Msg("refetch after create failed")
	}
	return reserva, nil
}

// RequestCancel is the first half of the two-step cancel. It checks
// that the reservation is visible, still cancellable, and owned by the
// caller (admins may cancel anyone's), then records the pending id for
// ConfirmCancel. Nothing reaches the network yet.
func (v *ReservaView) RequestCancel(id int64) (*models.Reserva, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var reserva *models.Reserva
	for i := range v.reservas {
		if v.reservas[i].ID == id {
			reserva = &v.reservas[i]
			break
		}
	}
	if reserva == nil {
		return nil, backend.ErrNotFound
	}
	if reserva.Cancelada() {
		return nil, ErrReservaYaCancelada
	}
	if reserva.IDUsuario != v.usuario.ID && !v.usuario.Rol().Puede(models.CapCancelarCualquierReserva) {
		return nil, ErrReservaAjena
	}

	v.pendingCancel = id
	return reserva, nil
}

// ConfirmCancel issues the cancellation recorded by RequestCancel and
// refetches the list.
func (v *ReservaView) ConfirmCancel(ctx context.Context) error {
	v.mu.Lock()
	id := v.pendingCancel
	v.pendingCancel = 0
	v.mu.Unlock()

	if id == 0 {
		return ErrSinCancelacionPendiente
	}

	if err := v.api.CancelReserva(ctx, id); err != nil {
		return err
	}

	v.logger.Info().Int64("reserva_id", id).Int64("user_id", v.usuario.ID).Msg("reserva cancelada")

	if v.events != nil {
		_ = v.events.PublishJSON(events.EventReservaCancelada, events.ReservaEventPayload{
			ReservaID: id,
			UserID:    v.usuario.ID,
			Status:    models.StatusCancelled,
		})
	}
	if v.worker != nil {
		_ = v.worker.EnqueueTask(ctx, "update_status", id, nil, models.StatusCancelled)
	}

	if err := v.Load(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after cancel failed")
	}
	return nil
}

// AbortCancel drops a pending cancellation without touching anything.
func (v *ReservaView) AbortCancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pendingCancel = 0
}
