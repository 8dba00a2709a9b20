package views

import "errors"

// Errores de las vistas. Se traducen a mensajes de usuario en la capa
// del bot; aqui solo marcan la causa.
var (
	// ErrAccesoDenegado: the caller's role does not allow the view or
	// action. Raised before any network call is issued.
	ErrAccesoDenegado = errors.New("acceso denegado")

	// ErrFormularioIncompleto: a required field is missing. The
	// submission is blocked locally, no request leaves the process.
	ErrFormularioIncompleto = errors.New("formulario incompleto")

	// ErrEstadoInvalido: equipment state outside the closed enum.
	ErrEstadoInvalido = errors.New("estado de equipo invalido")

	// ErrAutoEliminacion: an administrator tried to delete their own
	// account.
	ErrAutoEliminacion = errors.New("no puedes eliminar tu propia cuenta")

	// ErrReservaYaCancelada: cancel requested on a reservation whose
	// status is already cancelled.
	ErrReservaYaCancelada = errors.New("la reserva ya esta cancelada")

	// ErrSinCancelacionPendiente: confirm arrived without a preceding
	// cancel request.
	ErrSinCancelacionPendiente = errors.New("no hay cancelacion pendiente")

	// ErrReservaAjena: a non-admin tried to cancel a reservation owned
	// by another user.
	ErrReservaAjena = errors.New("la reserva pertenece a otro usuario")
)
