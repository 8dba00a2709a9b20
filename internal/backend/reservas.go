package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"labreserva/internal/models"
)

// ParamsReservas are the server-side filters of the reservation
// listing. Anything finer (lab, calendar day) se filtra en el cliente.
type ParamsReservas struct {
	Fecha     string
	IDUsuario int64
}

func (p ParamsReservas) encode() string {
	q := url.Values{}
	if p.Fecha != "" {
		q.Set("fecha", p.Fecha)
	}
	if p.IDUsuario != 0 {
		q.Set("id_usuario", strconv.FormatInt(p.IDUsuario, 10))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListReservas returns reservations matching the server-side filter.
func (c *Client) ListReservas(ctx context.Context, params ParamsReservas) ([]models.Reserva, error) {
	var reservas []models.Reserva
	if err := c.doGet(ctx, "reservas_list", "/api/reservas/"+params.encode(), &reservas); err != nil {
		return nil, err
	}
	return reservas, nil
}

// ReservaCreate is the creation payload. FechaInicio/FechaFin are the
// combined "YYYY-MM-DDTHH:MM" strings.
type ReservaCreate struct {
	FechaCreacion string  `json:"fecha_creacion,omitempty"`
	FechaInicio   string  `json:"fecha_inicio"`
	FechaFin      string  `json:"fecha_fin"`
	IDUsuario     int64   `json:"id_usuario"`
	IDUbicacion   int64   `json:"id_ubicacion"`
	Equipos       []int64 `json:"equipos"`
	Status        string  `json:"status"`
}

// CreateReserva submits a reservation. Conflict detection belongs to
// the backend; a 409 surfaces as ErrConflict.
func (c *Client) CreateReserva(ctx context.Context, in ReservaCreate) (*models.Reserva, error) {
	var reserva models.Reserva
	err := c.doJSON(ctx, "reservas_create", http.MethodPost, "/api/reservas/", in, &reserva)
	if err != nil {
		return nil, err
	}
	return &reserva, nil
}

// CancelReserva marks a reservation cancelled.
func (c *Client) CancelReserva(ctx context.Context, id int64) error {
	body := map[string]string{"status": models.StatusCancelled}
	return c.doJSON(ctx, "reservas_cancel", http.MethodPatch, fmt.Sprintf("/api/reservas/%d", id), body, nil)
}
