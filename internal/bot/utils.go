package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labreserva/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Botones del menú principal.
const (
	btnReservar     = "📅 Reservar"
	btnMisReservas  = "🗓 Mis reservas"
	btnLaboratorios = "🏢 Laboratorios"
	btnEquipos      = "🖥 Equipos"
	btnUsuarios     = "👥 Usuarios"
	btnHorarios     = "📚 Horarios de clase"
	btnExportar     = "📊 Exportar"
	btnSalir        = "🚪 Cerrar sesión"
)

const (
	statusIconPending   = "⏳"
	statusIconActive    = "✅"
	statusIconScheduled = "📌"
	statusIconCompleted = "🏁"
	statusIconCancelled = "❌"
)

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send inline keyboard")
	}
}

// sendMainMenu renders the role-gated home screen. Which buttons show
// up is decided by the same capability mapping the views enforce.
func (b *Bot) sendMainMenu(chatID int64, sesion *models.Sesion) {
	rol := sesion.Rol()

	rows := [][]tgbotapi.KeyboardButton{
		{
			tgbotapi.NewKeyboardButton(btnReservar),
			tgbotapi.NewKeyboardButton(btnMisReservas),
		},
	}

	segunda := []tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButton(btnLaboratorios),
	}
	if rol.Puede(models.CapCrearHorarios) {
		segunda = append(segunda, tgbotapi.NewKeyboardButton(btnHorarios))
	}
	rows = append(rows, segunda)

	if rol.EsAdministrativo() {
		rows = append(rows, []tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnEquipos),
			tgbotapi.NewKeyboardButton(btnUsuarios),
			tgbotapi.NewKeyboardButton(btnExportar),
		})
	}

	rows = append(rows, []tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButton(btnSalir),
	})

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	text := fmt.Sprintf("👋 Hola, %s.\nElige una opción:", sesion.Usuario.Name)
	if _, err := b.tgService.SendWithKeyboard(chatID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send main menu")
	}
}

func (b *Bot) setStep(ctx context.Context, chatID int64, step string, data map[string]interface{}) {
	if err := b.sesiones.SetStep(ctx, chatID, step, data); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to set step")
	}
}

func (b *Bot) updateData(ctx context.Context, chatID int64, key string, value interface{}) {
	if err := b.sesiones.UpdateData(ctx, chatID, key, value); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to update session data")
	}
}

func (b *Bot) clearStep(ctx context.Context, chatID int64) {
	b.setStep(ctx, chatID, "", nil)
}

// parseFecha accepts "AAAA-MM-DD" or "DD.MM.AAAA" and returns the
// canonical wire form plus the parsed day.
func parseFecha(s string) (string, time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "02.01.2006", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), t, nil
		}
	}
	return "", time.Time{}, fmt.Errorf("fecha inválida: %q", s)
}

// parseHora validates an "HH:MM" wall-clock time within lab opening
// hours.
func parseHora(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("hora inválida: %q", s)
	}
	hora := t.Format("15:04")
	if hora < models.HoraApertura || hora > models.HoraCierre {
		return "", fmt.Errorf("el laboratorio abre de %s a %s", models.HoraApertura, models.HoraCierre)
	}
	return hora, nil
}

func statusIcon(status string) string {
	switch status {
	case models.StatusActive:
		return statusIconActive
	case models.StatusScheduled:
		return statusIconScheduled
	case models.StatusCompleted:
		return statusIconCompleted
	case models.StatusCancelled:
		return statusIconCancelled
	default:
		return statusIconPending
	}
}

// formatReserva renders one reservation entry for listings.
func formatReserva(r *models.Reserva, lab *models.Laboratorio) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s *Reserva #%d*\n", statusIcon(r.Status), r.ID))
	if lab != nil {
		sb.WriteString(fmt.Sprintf("   🏢 %s\n", lab.Nombre))
	} else {
		sb.WriteString(fmt.Sprintf("   🏢 Laboratorio %d\n", r.IDUbicacion))
	}
	sb.WriteString(fmt.Sprintf("   📅 %s  🕐 %s–%s\n", r.Fecha(), r.HoraInicio(), r.HoraFin()))
	if r.EsTodoElLab() {
		sb.WriteString("   🖥 Todo el laboratorio\n")
	} else {
		equipos := make([]string, 0, len(r.Equipos))
		for _, id := range r.Equipos {
			equipos = append(equipos, fmt.Sprintf("%d", id))
		}
		sb.WriteString(fmt.Sprintf("   🖥 Equipos: %s\n", strings.Join(equipos, ", ")))
	}
	return sb.String()
}

func equipoIcon(estado string) string {
	switch estado {
	case models.EstadoMantenimiento:
		return "🟡"
	case models.EstadoDanado:
		return "🔴"
	default:
		return "🟢"
	}
}

func formatEquipo(e *models.Equipo) string {
	return fmt.Sprintf("%s *%s* (%s) — %s", equipoIcon(e.Estado), e.Nombre, e.Modelo, e.Estado)
}
