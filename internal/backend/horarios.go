package backend

import (
	"context"
	"net/http"

	"labreserva/internal/models"
)

// CreateHorarioClase submits a recurring class schedule.
func (c *Client) CreateHorarioClase(ctx context.Context, in models.HorarioClase) (*models.HorarioClase, error) {
	var horario models.HorarioClase
	err := c.doJSON(ctx, "horarios_create", http.MethodPost, "/horarios-clase/", in, &horario)
	if err != nil {
		return nil, err
	}
	return &horario, nil
}

// ListHorariosClase returns every class schedule.
func (c *Client) ListHorariosClase(ctx context.Context) ([]models.HorarioClase, error) {
	var horarios []models.HorarioClase
	if err := c.doGet(ctx, "horarios_list", "/horarios-clase/", &horarios); err != nil {
		return nil, err
	}
	return horarios, nil
}
