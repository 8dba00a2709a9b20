package models

// DiasSemana in the order offered to the user when building sessions.
var DiasSemana = []string{
	"Lunes",
	"Martes",
	"Miércoles",
	"Jueves",
	"Viernes",
	"Sábado",
	"Domingo",
}

// SesionClase is one weekly slot of a recurring class schedule.
type SesionClase struct {
	DiaSemana      string `json:"dia_semana"`
	HoraInicio     string `json:"hora_inicio"`
	HoraFin        string `json:"hora_fin"`
	IDUbicacion    int64  `json:"id_ubicacion"`
	Estado         string `json:"estado"`
	IDHorarioClase int64  `json:"id_horario_clase,omitempty"`
}

// Completa reports whether the session has every required field.
func (s *SesionClase) Completa() bool {
	return s.DiaSemana != "" && s.HoraInicio != "" && s.HoraFin != "" && s.IDUbicacion != 0
}

// HorarioClase is a recurring weekly booking tied to an instructor.
type HorarioClase struct {
	ID            int64         `json:"id,omitempty"`
	NombreMateria string        `json:"nombre_materia"`
	IDUsuario     int64         `json:"id_usuario"`
	Sesiones      []SesionClase `json:"sesiones"`
}
