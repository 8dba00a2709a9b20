package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"labreserva/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestRecordatoriosDeManana(t *testing.T) {
	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 1)}
	sesiones := newMockSesiones()
	sesiones.sesiones[123] = &models.Sesion{
		ChatID:  123,
		Token:   "tok",
		Usuario: &models.Usuario{ID: 7, Name: "Ana", Type: models.TipoEstudiante},
	}

	manana := time.Now().Add(24 * time.Hour).Format("2006-01-02")
	api := &mockBackend{reservas: []models.Reserva{
		{ID: 1, FechaInicio: manana + "T10:00", FechaFin: manana + "T11:00", IDUsuario: 7, IDUbicacion: 3, Equipos: []int64{0}, Status: models.StatusScheduled},
		{ID: 2, FechaInicio: manana + "T12:00", FechaFin: manana + "T13:00", IDUsuario: 7, IDUbicacion: 3, Equipos: []int64{0}, Status: models.StatusCancelled},
	}}

	b := testBot(t, tg, sesiones, api)
	b.sendRecordatoriosDeManana(context.Background())

	textos := tg.textos()
	if len(textos) != 1 {
		t.Fatalf("expected 1 reminder message, got %d", len(textos))
	}
	if !strings.Contains(textos[0], "Recordatorio") {
		t.Errorf("expected reminder header, got %q", textos[0])
	}
	if !strings.Contains(textos[0], "Reserva #1") {
		t.Errorf("expected reserva 1 in reminder, got %q", textos[0])
	}
	if strings.Contains(textos[0], "Reserva #2") {
		t.Errorf("cancelled reserva must not be reminded, got %q", textos[0])
	}
}

func TestRecordatoriosSinSesiones(t *testing.T) {
	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 1)}
	b := testBot(t, tg, newMockSesiones(), &mockBackend{})

	b.sendRecordatoriosDeManana(context.Background())

	if len(tg.sentMessages) != 0 {
		t.Fatalf("expected no messages without active sessions, got %d", len(tg.sentMessages))
	}
}

func TestDebeRecordar(t *testing.T) {
	cases := map[string]bool{
		models.StatusPending:   true,
		models.StatusScheduled: true,
		models.StatusActive:    true,
		models.StatusCompleted: false,
		models.StatusCancelled: false,
	}
	for status, want := range cases {
		if got := debeRecordar(status); got != want {
			t.Errorf("debeRecordar(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestTimeUntilNextHour(t *testing.T) {
	d := timeUntilNextHour(9)
	if d <= 0 || d > 24*time.Hour {
		t.Fatalf("expected wait within (0, 24h], got %s", d)
	}
}
