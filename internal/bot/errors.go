package bot

import (
	"errors"

	"labreserva/internal/backend"
	"labreserva/internal/views"
)

// getErrorMessage translates an error into something the user can
// act on. Every error is terminal per action; the user retries by
// re-submitting.
func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return "⚠️ Tu sesión expiró o las credenciales no son válidas. Usa /start para iniciar sesión de nuevo."

	case errors.Is(err, backend.ErrForbidden), errors.Is(err, views.ErrAccesoDenegado):
		return "⛔ No tienes permisos para esta acción."

	case errors.Is(err, backend.ErrNotFound):
		return "⚠️ El registro solicitado ya no existe."

	case errors.Is(err, backend.ErrConflict):
		return "⚠️ El laboratorio o equipo ya está reservado en ese horario. Elige otro horario."

	case errors.Is(err, views.ErrFormularioIncompleto):
		return "⚠️ Faltan datos obligatorios. Completa el formulario antes de enviar."

	case errors.Is(err, views.ErrEstadoInvalido):
		return "⚠️ Estado de equipo no válido."

	case errors.Is(err, views.ErrAutoEliminacion):
		return "⚠️ No puedes eliminar tu propia cuenta."

	case errors.Is(err, views.ErrReservaYaCancelada):
		return "⚠️ Esa reserva ya está cancelada."

	case errors.Is(err, views.ErrReservaAjena):
		return "⛔ Esa reserva pertenece a otro usuario."

	case errors.Is(err, views.ErrSinCancelacionPendiente):
		return "⚠️ No hay ninguna cancelación pendiente de confirmar."
	}

	return "❌ Ocurrió un error al procesar tu solicitud. Inténtalo de nuevo más tarde."
}
