package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"labreserva/internal/models"
)

const cacheKeyLaboratorios = "catalogo:laboratorios"

// ParamsLaboratorios are the optional query params of the lab listing.
type ParamsLaboratorios struct {
	Limit   int
	Offset  int
	OrderBy string
	Nombre  string
}

func (p ParamsLaboratorios) vacio() bool {
	return p == ParamsLaboratorios{}
}

func (p ParamsLaboratorios) encode() string {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.OrderBy != "" {
		q.Set("order_by", p.OrderBy)
	}
	if p.Nombre != "" {
		q.Set("nombre", p.Nombre)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListLaboratorios returns labs. The unfiltered listing goes through
// the redis read-through cache when one is configured.
func (c *Client) ListLaboratorios(ctx context.Context, params ParamsLaboratorios) ([]models.Laboratorio, error) {
	var labs []models.Laboratorio

	if params.vacio() && c.readCache(ctx, cacheKeyLaboratorios, &labs) {
		return labs, nil
	}

	if err := c.doGet(ctx, "laboratorios_list", "/laboratorios/laboratorios"+params.encode(), &labs); err != nil {
		return nil, err
	}

	if params.vacio() {
		c.writeCache(ctx, cacheKeyLaboratorios, labs)
	}
	return labs, nil
}

// LaboratorioCreate is the create/update payload for a lab.
type LaboratorioCreate struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

// CreateLaboratorio creates a lab and returns the record with its
// generated id.
func (c *Client) CreateLaboratorio(ctx context.Context, in LaboratorioCreate) (*models.Laboratorio, error) {
	var lab models.Laboratorio
	err := c.doJSON(ctx, "laboratorios_create", http.MethodPost, "/laboratorios/laboratorios", in, &lab)
	if err != nil {
		return nil, err
	}
	c.dropCache(ctx, cacheKeyLaboratorios)
	return &lab, nil
}

// UpdateLaboratorio patches a lab. The backend mounts the id directly
// after the collection path, without a separator.
func (c *Client) UpdateLaboratorio(ctx context.Context, id int64, in LaboratorioCreate) (*models.Laboratorio, error) {
	var lab models.Laboratorio
	err := c.doJSON(ctx, "laboratorios_update", http.MethodPatch,
		fmt.Sprintf("/laboratorios/laboratorios%d", id), in, &lab)
	if err != nil {
		return nil, err
	}
	c.dropCache(ctx, cacheKeyLaboratorios)
	return &lab, nil
}

// DeleteLaboratorio removes a lab by id. Equipment cascade is the
// backend's responsibility.
func (c *Client) DeleteLaboratorio(ctx context.Context, id int64) error {
	if err := c.doDelete(ctx, "laboratorios_delete", fmt.Sprintf("/laboratorios/laboratorios%d", id)); err != nil {
		return err
	}
	c.dropCache(ctx, cacheKeyLaboratorios)
	return nil
}
