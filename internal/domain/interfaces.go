package domain

import (
	"context"
	"time"

	"labreserva/internal/backend"
	"labreserva/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AuthAPI covers the authentication and account endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*models.Usuario, error)
	Register(ctx context.Context, reg backend.RegistroUsuario) (*models.Usuario, error)
	ListUsuarios(ctx context.Context) ([]models.Usuario, error)
	DeleteUsuario(ctx context.Context, id int64) error
}

// LaboratoriosAPI covers the lab inventory endpoints.
type LaboratoriosAPI interface {
	ListLaboratorios(ctx context.Context, params backend.ParamsLaboratorios) ([]models.Laboratorio, error)
	CreateLaboratorio(ctx context.Context, in backend.LaboratorioCreate) (*models.Laboratorio, error)
	UpdateLaboratorio(ctx context.Context, id int64, in backend.LaboratorioCreate) (*models.Laboratorio, error)
	DeleteLaboratorio(ctx context.Context, id int64) error
}

// EquiposAPI covers the equipment inventory endpoints.
type EquiposAPI interface {
	ListEquipos(ctx context.Context, params backend.ParamsEquipos) ([]models.Equipo, error)
	GetEquipo(ctx context.Context, id int64) (*models.Equipo, error)
	CreateEquipo(ctx context.Context, in backend.EquipoCreate) (*models.Equipo, error)
	UpdateEquipo(ctx context.Context, id int64, in backend.EquipoCreate) (*models.Equipo, error)
	DeleteEquipo(ctx context.Context, id int64) error
}

// ReservasAPI covers the reservation endpoints.
type ReservasAPI interface {
	ListReservas(ctx context.Context, params backend.ParamsReservas) ([]models.Reserva, error)
	CreateReserva(ctx context.Context, in backend.ReservaCreate) (*models.Reserva, error)
	CancelReserva(ctx context.Context, id int64) error
}

// HorariosAPI covers the recurring class-schedule endpoints.
type HorariosAPI interface {
	CreateHorarioClase(ctx context.Context, in models.HorarioClase) (*models.HorarioClase, error)
	ListHorariosClase(ctx context.Context) ([]models.HorarioClase, error)
}

// BackendAPI is the full surface of the remote reservation service.
type BackendAPI interface {
	AuthAPI
	LaboratoriosAPI
	EquiposAPI
	ReservasAPI
	HorariosAPI
}

// SesionRepository persists per-chat sessions (token + user + step).
type SesionRepository interface {
	GetSesion(ctx context.Context, chatID int64) (*models.Sesion, error)
	SetSesion(ctx context.Context, sesion *models.Sesion) error
	ClearSesion(ctx context.Context, chatID int64) error
	SesionesActivas(ctx context.Context) ([]models.Sesion, error)
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

// SesionManager is the service-level session gate used by the bot.
type SesionManager interface {
	Login(ctx context.Context, chatID int64, email, password string) (*models.Sesion, error)
	Current(ctx context.Context, chatID int64) (*models.Sesion, error)
	Logout(ctx context.Context, chatID int64) error
	SetStep(ctx context.Context, chatID int64, step string, data map[string]interface{}) error
	UpdateData(ctx context.Context, chatID int64, key string, value interface{}) error
	SesionesActivas(ctx context.Context) ([]models.Sesion, error)
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

// EventPublisher notifies in-process subscribers of domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker queues reservation snapshots for the audit mirror.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, reservaID int64, reserva *models.Reserva, status string) error
}

// SheetsWriter applies reservation snapshots to the audit spreadsheet.
type SheetsWriter interface {
	UpsertReserva(ctx context.Context, reserva *models.Reserva) error
	UpdateReservaStatus(ctx context.Context, reservaID int64, status string) error
}

// TelegramSender is the raw bot API surface wrapped by the service.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// TelegramService is the thin wrapper the bot talks through, so tests
// can substitute a recorder.
type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
