package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservaCreada    = "reserva_creada"
	EventReservaCancelada = "reserva_cancelada"
	EventEquipoEstado     = "equipo_estado_cambiado"
	EventHorarioCreado    = "horario_creado"
)

// ReservaEventPayload describes the minimal reservation snapshot for
// event consumers.
type ReservaEventPayload struct {
	ReservaID   int64   `json:"reserva_id"`
	UserID      int64   `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	Laboratorio int64   `json:"id_ubicacion"`
	Equipos     []int64 `json:"equipos,omitempty"`
	FechaInicio string  `json:"fecha_inicio,omitempty"`
	FechaFin    string  `json:"fecha_fin,omitempty"`
	Status      string  `json:"status"`
}

// EquipoEventPayload describes an equipment state transition.
type EquipoEventPayload struct {
	EquipoID      int64  `json:"equipo_id"`
	IDLaboratorio int64  `json:"id_laboratorio,omitempty"`
	Estado        string `json:"estado"`
}

// HorarioEventPayload describes a newly created class schedule.
type HorarioEventPayload struct {
	HorarioID     int64  `json:"horario_id"`
	UserID        int64  `json:"user_id"`
	NombreMateria string `json:"nombre_materia"`
	Sesiones      int    `json:"sesiones"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
