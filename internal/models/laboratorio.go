package models

type Laboratorio struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

// Estados de un equipo. El backend usa exactamente estos literales.
const (
	EstadoOperativo     = "Operativo"
	EstadoMantenimiento = "Mantenimiento"
	EstadoDanado        = "Dañado"
)

// EstadosEquipo lists the closed set of equipment states in the order
// they are offered to the user.
var EstadosEquipo = []string{EstadoOperativo, EstadoMantenimiento, EstadoDanado}

// EstadoEquipoValido reports whether estado belongs to the closed enum.
func EstadoEquipoValido(estado string) bool {
	for _, e := range EstadosEquipo {
		if e == estado {
			return true
		}
	}
	return false
}

type Equipo struct {
	ID            int64  `json:"id"`
	Nombre        string `json:"nombre"`
	Modelo        string `json:"modelo"`
	Estado        string `json:"estado"`
	IDLaboratorio int64  `json:"id_laboratorio"`
}
