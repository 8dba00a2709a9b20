package views

import (
	"context"
	"strings"
	"sync"

	"labreserva/internal/backend"
	"labreserva/internal/domain"
	"labreserva/internal/models"

	"github.com/rs/zerolog"
)

// UsuariosView is the account administration screen. It is gated
// entirely to admin-level roles: any other role gets an access-denied
// error before a single request is issued.
type UsuariosView struct {
	api     domain.AuthAPI
	logger  *zerolog.Logger
	usuario *models.Usuario

	mu       sync.Mutex
	usuarios []models.Usuario
}

func NewUsuariosView(api domain.AuthAPI, usuario *models.Usuario, logger *zerolog.Logger) *UsuariosView {
	return &UsuariosView{
		api:     api,
		usuario: usuario,
		logger:  logger,
	}
}

func (v *UsuariosView) puedeGestionar() bool {
	return v.usuario.Rol().Puede(models.CapGestionarUsuarios)
}

func (v *UsuariosView) Load(ctx context.Context) error {
	if !v.puedeGestionar() {
		return ErrAccesoDenegado
	}

	usuarios, err := v.api.ListUsuarios(ctx)
	if err != nil {
		v.logger.Error().Err(err).Msg("failed to load usuarios")
		return err
	}
	v.mu.Lock()
	v.usuarios = usuarios
	v.mu.Unlock()
	return nil
}

func (v *UsuariosView) Usuarios() []models.Usuario {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.usuarios
}

// Filtrar is the local search: case-insensitive substring over name
// and email, combined with an exact role match when rol is non-empty.
// No server round-trip.
func (v *UsuariosView) Filtrar(texto string, rol models.Rol) []models.Usuario {
	v.mu.Lock()
	defer v.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(texto))

	out := make([]models.Usuario, 0, len(v.usuarios))
	for _, u := range v.usuarios {
		if rol != "" && u.Rol() != rol {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Crear registers a new account. Creating another administrator is a
// superuser-only action; everything else needs the regular management
// capability. The list is refetched on success.
func (v *UsuariosView) Crear(ctx context.Context, name, email, password string, rol models.Rol) (*models.Usuario, error) {
	if !v.puedeGestionar() {
		return nil, ErrAccesoDenegado
	}
	if rol.EsAdministrativo() && !v.usuario.Rol().Puede(models.CapCrearAdministradores) {
		return nil, ErrAccesoDenegado
	}
	if name == "" || email == "" || password == "" {
		return nil, ErrFormularioIncompleto
	}

	creado, err := v.api.Register(ctx, backend.RegistroUsuario{
		Name:     name,
		Email:    email,
		Password: password,
		Type:     rol.TipoAPI(),
	})
	if err != nil {
		return nil, err
	}
	v.logger.Info().Int64("user_id", creado.ID).Str("rol", string(rol)).Msg("usuario creado")

	if err := v.Load(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("refetch after user create failed")
	}
	return creado, nil
}

// Eliminar removes an account by id. Deleting the caller's own
// account is refused locally.
func (v *UsuariosView) Eliminar(ctx context.Context, id int64) error {
	if !v.puedeGestionar() {
		return ErrAccesoDenegado
	}
	if id == v.usuario.ID {
		return ErrAutoEliminacion
	}

	if err := v.api.DeleteUsuario(ctx, id); err != nil {
		return err
	}
	v.logger.Info().Int64("user_id", id).Msg("usuario eliminado")

	return v.Load(ctx)
}
