package models

import "strings"

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// EquipoTodoElLab is the sentinel equipment id meaning "whole lab".
const EquipoTodoElLab int64 = 0

// Reserva mirrors the backend record. Timestamps are kept as the wire
// strings ("2025-02-01T10:00") because the backend combines a calendar
// date and a wall-clock time without zone information.
type Reserva struct {
	ID            int64   `json:"id"`
	FechaCreacion string  `json:"fecha_creacion,omitempty"`
	FechaInicio   string  `json:"fecha_inicio"`
	FechaFin      string  `json:"fecha_fin"`
	IDUsuario     int64   `json:"id_usuario"`
	IDUbicacion   int64   `json:"id_ubicacion"`
	Equipos       []int64 `json:"equipos"`
	Status        string  `json:"status"`
}

// Fecha returns the calendar-day component of the start timestamp.
func (r *Reserva) Fecha() string {
	if i := strings.IndexByte(r.FechaInicio, 'T'); i >= 0 {
		return r.FechaInicio[:i]
	}
	return r.FechaInicio
}

// HoraInicio returns the time-of-day component of the start timestamp.
func (r *Reserva) HoraInicio() string {
	return horaDe(r.FechaInicio)
}

// HoraFin returns the time-of-day component of the end timestamp.
func (r *Reserva) HoraFin() string {
	return horaDe(r.FechaFin)
}

func horaDe(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[i+1:]
	}
	return ""
}

// EsTodoElLab reports whether the reservation covers the whole lab
// rather than specific equipment. An empty list and the zero sentinel
// are equivalent.
func (r *Reserva) EsTodoElLab() bool {
	if len(r.Equipos) == 0 {
		return true
	}
	for _, id := range r.Equipos {
		if id != EquipoTodoElLab {
			return false
		}
	}
	return true
}

// Cancelada reports whether the reservation is already cancelled; the
// cancel action is hidden for these.
func (r *Reserva) Cancelada() bool {
	return r.Status == StatusCancelled
}
