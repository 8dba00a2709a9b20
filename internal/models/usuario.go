package models

import "strings"

// Tipos de usuario tal como los entrega el backend en el campo `type`.
const (
	TipoSuperusuario  = "SUPERUSUARIO"
	TipoAdministrador = "ADMINISTRADOR"
	TipoProfesor      = "PROFESOR"
	TipoEstudiante    = "ESTUDIANTE"
)

type Usuario struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

func (u *Usuario) Rol() Rol {
	return ParseRol(u.Type)
}

// Rol is the local role enum derived from the backend user type.
type Rol string

const (
	RolEstudiante   Rol = "student"
	RolProfesor     Rol = "professor"
	RolAdmin        Rol = "admin"
	RolSuperusuario Rol = "superuser"
)

// ParseRol maps the backend `type` field to the local role.
// Unknown values degrade to the least privileged role.
func ParseRol(tipo string) Rol {
	switch strings.ToUpper(strings.TrimSpace(tipo)) {
	case TipoSuperusuario:
		return RolSuperusuario
	case TipoAdministrador:
		return RolAdmin
	case TipoProfesor:
		return RolProfesor
	case TipoEstudiante:
		return RolEstudiante
	default:
		return RolEstudiante
	}
}

// TipoAPI is the inverse of ParseRol, used when registering users.
func (r Rol) TipoAPI() string {
	switch r {
	case RolSuperusuario:
		return TipoSuperusuario
	case RolAdmin:
		return TipoAdministrador
	case RolProfesor:
		return TipoProfesor
	default:
		return TipoEstudiante
	}
}

// Capacidad is a single permission. Every screen consults the same
// role-to-capability mapping instead of re-implementing role checks.
type Capacidad int

const (
	CapReservar Capacidad = iota
	CapCrearHorarios
	CapGestionarLaboratorios
	CapGestionarEquipos
	CapGestionarUsuarios
	CapCancelarCualquierReserva
	CapCrearAdministradores
)

// Puede resolves the capability set for a role. This is the only place
// in the codebase where roles are mapped to permissions.
func (r Rol) Puede(c Capacidad) bool {
	switch r {
	case RolSuperusuario:
		return true
	case RolAdmin:
		return c != CapCrearAdministradores
	case RolProfesor:
		return c == CapReservar || c == CapCrearHorarios
	case RolEstudiante:
		return c == CapReservar
	default:
		return false
	}
}

// EsAdministrativo reports whether the role has admin-level access.
func (r Rol) EsAdministrativo() bool {
	return r == RolAdmin || r == RolSuperusuario
}
