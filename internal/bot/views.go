package bot

import (
	"context"
	"sync"

	"labreserva/internal/backend"
	"labreserva/internal/models"
	"labreserva/internal/views"
)

// vistaSet is the transient screen state of one chat. It lives in
// process memory only and is dropped on logout or restart; the backend
// remains the source of truth.
type vistaSet struct {
	usuarioID  int64
	reservas   *views.ReservaView
	inventario *views.InventarioView
	usuarios   *views.UsuariosView
	horarios   *views.HorariosView
}

type vistaCache struct {
	mu      sync.Mutex
	porChat map[int64]*vistaSet
}

func newVistaCache() *vistaCache {
	return &vistaCache{porChat: make(map[int64]*vistaSet)}
}

func (c *vistaCache) drop(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.porChat, chatID)
}

// vistasDe returns the chat's view set, building it on first use or
// when a different user logged into the chat.
func (b *Bot) vistasDe(chatID int64, usuario *models.Usuario) *vistaSet {
	b.vistas.mu.Lock()
	defer b.vistas.mu.Unlock()

	if v, ok := b.vistas.porChat[chatID]; ok && v.usuarioID == usuario.ID {
		return v
	}

	v := &vistaSet{
		usuarioID:  usuario.ID,
		reservas:   views.NewReservaView(b.api, usuario, b.logger).WithEvents(b.eventBus, b.worker),
		inventario: views.NewInventarioView(b.api, b.api, usuario, b.logger).WithEvents(b.eventBus),
		usuarios:   views.NewUsuariosView(b.api, usuario, b.logger),
		horarios:   views.NewHorariosView(b.api, usuario, b.logger).WithEvents(b.eventBus),
	}
	b.vistas.porChat[chatID] = v
	return v
}

// authCtx attaches the session's bearer token so backend calls run as
// the logged-in user.
func (b *Bot) authCtx(ctx context.Context, sesion *models.Sesion) context.Context {
	return backend.WithToken(ctx, sesion.Token)
}
