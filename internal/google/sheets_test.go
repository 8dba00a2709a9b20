package google

import (
	"testing"

	"labreserva/internal/models"
)

func TestReservaRowValues(t *testing.T) {
	reserva := &models.Reserva{
		ID:          42,
		FechaInicio: "2025-02-01T10:00",
		FechaFin:    "2025-02-01T11:00",
		IDUsuario:   7,
		IDUbicacion: 3,
		Equipos:     []int64{7, 9},
		Status:      models.StatusPending,
	}

	row := reservaRowValues(reserva)
	if len(row) != 8 {
		t.Fatalf("expected 8 columns, got %d", len(row))
	}
	if row[0] != int64(42) || row[3] != "7,9" || row[6] != models.StatusPending {
		t.Fatalf("unexpected row: %v", row)
	}

	reserva.Equipos = nil
	row = reservaRowValues(reserva)
	if row[3] != "todo el laboratorio" {
		t.Fatalf("expected whole-lab marker, got %v", row[3])
	}
}

func TestCellID(t *testing.T) {
	cases := []struct {
		row  []interface{}
		want int64
	}{
		{nil, 0},
		{[]interface{}{float64(5)}, 5},
		{[]interface{}{"12"}, 12},
		{[]interface{}{" 12 "}, 12},
		{[]interface{}{"id"}, 0},
		{[]interface{}{true}, 0},
	}

	for _, tc := range cases {
		if got := cellID(tc.row); got != tc.want {
			t.Fatalf("cellID(%v) = %d, want %d", tc.row, got, tc.want)
		}
	}
}

func TestRowCache(t *testing.T) {
	s := &SheetsService{rowCache: make(map[int64]int)}

	if _, ok := s.getCachedRow(1); ok {
		t.Fatalf("expected empty cache")
	}

	s.setCachedRow(1, 4)
	row, ok := s.getCachedRow(1)
	if !ok || row != 4 {
		t.Fatalf("expected cached row 4, got %d %v", row, ok)
	}

	s.ClearCache()
	if _, ok := s.getCachedRow(1); ok {
		t.Fatalf("expected cache cleared")
	}
}
