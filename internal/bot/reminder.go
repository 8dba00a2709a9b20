package bot

import (
	"context"
	"fmt"
	"time"

	"labreserva/internal/backend"
	"labreserva/internal/models"
)

// StartReminders schedules the daily next-day reservation reminders.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tgService == nil {
		return
	}

	go func() {
		// Parse reminder hour from config (default to 9 if invalid)
		hour := 9
		if b.config.Bot.ReminderTime != "" {
			var m int
			_, err := fmt.Sscanf(b.config.Bot.ReminderTime, "%d:%d", &hour, &m)
			if err != nil {
				b.logger.Error().Err(err).Str("reminder_time", b.config.Bot.ReminderTime).Msg("Invalid reminder time format")
				return
			}
		}

		// First wait until next reminder time local time, then tick every 24h.
		wait := timeUntilNextHour(hour)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendRecordatoriosDeManana(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

// sendRecordatoriosDeManana messages every chat with an authenticated
// session about its reservations for tomorrow. Each lookup runs under
// that session's own token, so a chat only ever sees its own rows.
func (b *Bot) sendRecordatoriosDeManana(ctx context.Context) {
	sesiones, err := b.sesiones.SesionesActivas(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("recordatorio: list sesiones error")
		return
	}

	manana := time.Now().Add(24 * time.Hour).Format("2006-01-02")
	for i := range sesiones {
		sesion := &sesiones[i]
		reservas, err := b.api.ListReservas(b.authCtx(ctx, sesion), backend.ParamsReservas{
			Fecha:     manana,
			IDUsuario: sesion.Usuario.ID,
		})
		if err != nil {
			b.logger.Error().Err(err).Int64("chat_id", sesion.ChatID).Msg("recordatorio: list reservas error")
			continue
		}

		var pendientes []models.Reserva
		for _, r := range reservas {
			if debeRecordar(r.Status) {
				pendientes = append(pendientes, r)
			}
		}
		if len(pendientes) == 0 {
			continue
		}

		if _, err := b.tgService.SendMessage(sesion.ChatID, formatRecordatorio(pendientes)); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", sesion.ChatID).Msg("recordatorio: send error")
		}
	}
}

// debeRecordar filters out reservations the user no longer needs to
// hear about.
func debeRecordar(status string) bool {
	switch status {
	case models.StatusPending, models.StatusScheduled, models.StatusActive:
		return true
	default:
		return false
	}
}

func formatRecordatorio(reservas []models.Reserva) string {
	texto := fmt.Sprintf("🔔 *Recordatorio:* mañana tienes %d reserva(s):\n\n", len(reservas))
	for i := range reservas {
		texto += formatReserva(&reservas[i], nil)
	}
	return texto
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
