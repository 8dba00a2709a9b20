package bot

import (
	"testing"

	"labreserva/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseFecha(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"2025-02-01", "2025-02-01", false},
		{"01.02.2025", "2025-02-01", false},
		{"01/02/2025", "2025-02-01", false},
		{"  2025-02-01  ", "2025-02-01", false},
		{"2025-13-01", "", true},
		{"mañana", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, _, err := parseFecha(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestParseHora(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"10:00", "10:00", false},
		{models.HoraApertura, models.HoraApertura, false},
		{models.HoraCierre, models.HoraCierre, false},
		{"07:59", "", true},
		{"20:01", "", true},
		{"25:00", "", true},
		{"diez", "", true},
	}

	for _, tt := range tests {
		got, err := parseHora(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got)
	}
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, statusIconActive, statusIcon(models.StatusActive))
	assert.Equal(t, statusIconCancelled, statusIcon(models.StatusCancelled))
	assert.Equal(t, statusIconPending, statusIcon(models.StatusPending))
	assert.Equal(t, statusIconPending, statusIcon("desconocido"))
}

func TestEquipoIcon(t *testing.T) {
	assert.Equal(t, "🟢", equipoIcon(models.EstadoOperativo))
	assert.Equal(t, "🟡", equipoIcon(models.EstadoMantenimiento))
	assert.Equal(t, "🔴", equipoIcon(models.EstadoDanado))
}

func TestFormatReserva(t *testing.T) {
	r := &models.Reserva{
		ID:          4,
		FechaInicio: "2025-02-01T10:00",
		FechaFin:    "2025-02-01T11:00",
		IDUbicacion: 3,
		Equipos:     []int64{7},
		Status:      models.StatusPending,
	}
	lab := &models.Laboratorio{ID: 3, Nombre: "Redes"}

	out := formatReserva(r, lab)
	assert.Contains(t, out, "Reserva #4")
	assert.Contains(t, out, "Redes")
	assert.Contains(t, out, "10:00–11:00")
	assert.Contains(t, out, "7")

	r.Equipos = nil
	out = formatReserva(r, nil)
	assert.Contains(t, out, "Todo el laboratorio")
	assert.Contains(t, out, "Laboratorio 3")
}
