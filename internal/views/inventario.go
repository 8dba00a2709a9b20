package views

import (
	"context"
	"sync"

	"labreserva/internal/backend"
	"labreserva/internal/domain"
	"labreserva/internal/events"
	"labreserva/internal/models"

	"github.com/rs/zerolog"
)

// InventarioView is the lab and equipment screen. Browsing is open to
// every role (students need the catalog to book); mutations require
// the management capabilities. After every mutation the affected
// collection is refetched instead of patched locally.
type InventarioView struct {
	labsAPI    domain.LaboratoriosAPI
	equiposAPI domain.EquiposAPI
	logger     *zerolog.Logger
	usuario    *models.Usuario
	events     domain.EventPublisher

	mu      sync.Mutex
	labs    []models.Laboratorio
	equipos []models.Equipo
	// labFiltro scopes the loaded equipment list; 0 means all labs.
	labFiltro int64
}

func NewInventarioView(labs domain.LaboratoriosAPI, equipos domain.EquiposAPI, usuario *models.Usuario, logger *zerolog.Logger) *InventarioView {
	return &InventarioView{
		labsAPI:    labs,
		equiposAPI: equipos,
		usuario:    usuario,
		logger:     logger,
	}
}

// WithEvents attaches the in-process event bus; optional.
func (v *InventarioView) WithEvents(bus domain.EventPublisher) *InventarioView {
	v.events = bus
	return v
}

func (v *InventarioView) LoadLaboratorios(ctx context.Context) error {
	labs, err := v.labsAPI.ListLaboratorios(ctx, backend.ParamsLaboratorios{})
	if err != nil {
		v.logger.Error().Err(err).Msg("failed to load laboratorios")
		return err
	}
	v.mu.Lock()
	v.labs = labs
	v.mu.Unlock()
	return nil
}

func (v *InventarioView) Laboratorios() []models.Laboratorio {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.labs
}

// Laboratorio returns the loaded lab with the given id, or nil.
func (v *InventarioView) Laboratorio(id int64) *models.Laboratorio {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.labs {
		if v.labs[i].ID == id {
			return &v.labs[i]
		}
	}
	return nil
}

// LoadEquipos fetches the equipment list, scoped to one lab when
// labID is non-zero.
func (v *InventarioView) LoadEquipos(ctx context.Context, labID int64) error {
	equipos, err := v.equiposAPI.ListEquipos(ctx, backend.ParamsEquipos{IDLaboratorio: labID})
	if err != nil {
		v.logger.Error().Err(err).Int64("laboratorio_id", labID).Msg("failed to load equipos")
		return err
	}
	v.mu.Lock()
	v.equipos = equipos
	v.labFiltro = labID
	v.mu.Unlock()
	return nil
}

func (v *InventarioView) Equipos() []models.Equipo {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.equipos
}

// EquiposOperativos returns the loaded equipment that can actually be
// booked.
func (v *InventarioView) EquiposOperativos() []models.Equipo {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Equipo, 0, len(v.equipos))
	for _, e := range v.equipos {
		if e.Estado == models.EstadoOperativo {
			out = append(out, e)
		}
	}
	return out
}

// CrearLaboratorio validates locally (both fields required), submits
// and refetches the lab list.
func (v *InventarioView) CrearLaboratorio(ctx context.Context, nombre, descripcion string) (*models.Laboratorio, error) {
	if !v.usuario.Rol().Puede(models.CapGestionarLaboratorios) {
		return nil, ErrAccesoDenegado
	}
	if nombre == "" || descripcion == "" {
		return nil, ErrFormularioIncompleto
	}

	lab, err := v.labsAPI.CreateLaboratorio(ctx, backend.LaboratorioCreate{Nombre: nombre, Descripcion: descripcion})
	if err != nil {
		return nil, err
	}
	v.logger.Info().Int64("laboratorio_id", lab.ID).Str("nombre", nombre).Msg("laboratorio creado")

	if err := v.LoadLaboratorios(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after lab create failed")
	}
	return lab, nil
}

func (v *InventarioView) ActualizarLaboratorio(ctx context.Context, id int64, nombre, descripcion string) error {
	if !v.usuario.Rol().Puede(models.CapGestionarLaboratorios) {
		return ErrAccesoDenegado
	}
	if nombre == "" || descripcion == "" {
		return ErrFormularioIncompleto
	}
	if _, err := v.labsAPI.UpdateLaboratorio(ctx, id, backend.LaboratorioCreate{Nombre: nombre, Descripcion: descripcion}); err != nil {
		return err
	}
	return v.LoadLaboratorios(ctx)
}

// EliminarLaboratorio removes a lab. Equipment cascade belongs to the
// backend; both collections are refetched to pick it up.
func (v *InventarioView) EliminarLaboratorio(ctx context.Context, id int64) error {
	if !v.usuario.Rol().Puede(models.CapGestionarLaboratorios) {
		return ErrAccesoDenegado
	}
	if err := v.labsAPI.DeleteLaboratorio(ctx, id); err != nil {
		return err
	}
	v.logger.Info().Int64("laboratorio_id", id).Msg("laboratorio eliminado")

	if err := v.LoadLaboratorios(ctx); err != nil {
		return err
	}
	v.mu.Lock()
	labFiltro := v.labFiltro
	v.mu.Unlock()
	return v.LoadEquipos(ctx, labFiltro)
}

// CrearEquipo validates the full record locally (all fields required,
// state within the closed enum), submits and refetches the equipment
// of the owning lab.
func (v *InventarioView) CrearEquipo(ctx context.Context, nombre, modelo, estado string, labID int64) (*models.Equipo, error) {
	if !v.usuario.Rol().Puede(models.CapGestionarEquipos) {
		return nil, ErrAccesoDenegado
	}
	if nombre == "" || modelo == "" || estado == "" || labID == 0 {
		return nil, ErrFormularioIncompleto
	}
	if !models.EstadoEquipoValido(estado) {
		return nil, ErrEstadoInvalido
	}

	equipo, err := v.equiposAPI.CreateEquipo(ctx, backend.EquipoCreate{
		Nombre:        nombre,
		Modelo:        modelo,
		Estado:        estado,
		IDLaboratorio: labID,
	})
	if err != nil {
		return nil, err
	}
	v.logger.Info().Int64("equipo_id", equipo.ID).Int64("laboratorio_id", labID).Msg("equipo creado")

	if err := v.LoadEquipos(ctx, labID); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after equipo create failed")
	}
	return equipo, nil
}

// CambiarEstadoEquipo updates only the operability state, keeping the
// rest of the record as loaded.
func (v *InventarioView) CambiarEstadoEquipo(ctx context.Context, id int64, estado string) error {
	if !v.usuario.Rol().Puede(models.CapGestionarEquipos) {
		return ErrAccesoDenegado
	}
	if !models.EstadoEquipoValido(estado) {
		return ErrEstadoInvalido
	}

	var actual *models.Equipo
	v.mu.Lock()
	for i := range v.equipos {
		if v.equipos[i].ID == id {
			actual = &v.equipos[i]
			break
		}
	}
	labFiltro := v.labFiltro
	v.mu.Unlock()

	if actual == nil {
		fetched, err := v.equiposAPI.GetEquipo(ctx, id)
		if err != nil {
			return err
		}
		actual = fetched
	}

	_, err := v.equiposAPI.UpdateEquipo(ctx, id, backend.EquipoCreate{
		Nombre:        actual.Nombre,
		Modelo:        actual.Modelo,
		Estado:        estado,
		IDLaboratorio: actual.IDLaboratorio,
	})
	if err != nil {
		return err
	}
	v.logger.Info().Int64("equipo_id", id).Str("estado", estado).Msg("estado de equipo actualizado")

	if v.events != nil {
		_ = v.events.PublishJSON(events.EventEquipoEstado, events.EquipoEventPayload{
			EquipoID:      id,
			IDLaboratorio: actual.IDLaboratorio,
			Estado:        estado,
		})
	}
	return v.LoadEquipos(ctx, labFiltro)
}

func (v *InventarioView) EliminarEquipo(ctx context.Context, id int64) error {
	if !v.usuario.Rol().Puede(models.CapGestionarEquipos) {
		return ErrAccesoDenegado
	}
	if err := v.equiposAPI.DeleteEquipo(ctx, id); err != nil {
		return err
	}
	v.logger.Info().Int64("equipo_id", id).Msg("equipo eliminado")

	v.mu.Lock()
	labFiltro := v.labFiltro
	v.mu.Unlock()
	return v.LoadEquipos(ctx, labFiltro)
}
