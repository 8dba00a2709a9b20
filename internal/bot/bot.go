package bot

import (
	"context"
	"os"
	"time"

	"labreserva/internal/config"
	"labreserva/internal/domain"
	"labreserva/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bot drives the Telegram conversation. All reservation, inventory
// and account data lives behind the remote REST API; the bot only
// keeps per-chat sessions and transient view state.
type Bot struct {
	tgService domain.TelegramService
	config    *config.Config
	sesiones  domain.SesionManager
	api       domain.BackendAPI
	eventBus  domain.EventPublisher
	worker    domain.SyncWorker
	metrics   *Metrics
	logger    *zerolog.Logger

	vistas *vistaCache
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	sesiones domain.SesionManager,
	api domain.BackendAPI,
	eventBus domain.EventPublisher,
	worker domain.SyncWorker,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService: tgService,
		config:    cfg,
		sesiones:  sesiones,
		api:       api,
		eventBus:  eventBus,
		worker:    worker,
		metrics:   metrics,
		logger:    logger,
		vistas:    newVistaCache(),
	}, nil
}

// Pasos de conversación guardados en la sesión.
const (
	StepLoginEmail    = "login_email"
	StepLoginPassword = "login_password"

	StepReservaFecha      = "reserva_fecha"
	StepReservaHoraInicio = "reserva_hora_inicio"
	StepReservaHoraFin    = "reserva_hora_fin"

	StepMisReservasFecha = "mis_reservas_fecha"

	StepLabNombre      = "lab_nombre"
	StepLabDescripcion = "lab_descripcion"

	StepEquipoNombre = "equipo_nombre"
	StepEquipoModelo = "equipo_modelo"

	StepUsuarioNombre   = "usuario_nombre"
	StepUsuarioEmail    = "usuario_email"
	StepUsuarioPassword = "usuario_password"
	StepUsuarioBuscar   = "usuario_buscar"

	StepHorarioMateria    = "horario_materia"
	StepHorarioHoraInicio = "horario_hora_inicio"
	StepHorarioHoraFin    = "horario_hora_fin"

	StepExportFecha = "export_fecha"
)

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Stop stops receiving Telegram updates (best-effort).
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Cada update recibe su propio contexto acotado.
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		var chatID int64
		if update.Message != nil {
			chatID = update.Message.Chat.ID
		} else if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		if chatID == 0 {
			return
		}

		if b.isBlacklisted(chatID) {
			return
		}

		allowed, err := b.sesiones.CheckRateLimit(updateCtx, chatID, b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
		if err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Rate limit check failed")
		} else if !allowed {
			b.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
			if update.Message != nil {
				b.sendMessage(chatID, "⚠️ Estás enviando mensajes demasiado rápido. Espera un momento.")
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, update)
	})
}

func (b *Bot) isBlacklisted(chatID int64) bool {
	for _, id := range b.config.Blacklist {
		if id == chatID {
			return true
		}
	}
	return false
}
