package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labreserva/internal/api"
	"labreserva/internal/backend"
	"labreserva/internal/bot"
	"labreserva/internal/config"
	"labreserva/internal/domain"
	"labreserva/internal/events"
	"labreserva/internal/google"
	"labreserva/internal/logging"
	"labreserva/internal/metrics"
	"labreserva/internal/models"
	"labreserva/internal/repository"
	"labreserva/internal/service"
	"labreserva/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create export directory")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sesionRepo := initSesionRepo(ctx, cfg, &logger)

	apiClient := backend.New(cfg.Backend, &logger)
	if redisClient != nil && cfg.Backend.CacheTTL > 0 {
		apiClient.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTL)*time.Second)
	}

	sesiones := service.NewSesionService(apiClient, sesionRepo, cfg.Blacklist, &logger)

	sheetsService, err := initGoogleSheets(ctx, cfg, &logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Google Sheets mirror disabled")
	}

	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(sheetsService, redisClient, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	subscribeReservaEvents(ctx, eventBus, sheetsWorker, &logger)

	metrics.Register()
	botMetrics := bot.NewMetrics()

	if cfg.Monitoring.HealthCheckPort != 0 {
		opsServer := api.NewOpsServer(cfg.Monitoring, func(ctx context.Context) error {
			return repository.Ping(ctx, redisClient)
		}, &logger)
		go func() {
			if err := opsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Ops server error")
			}
		}()
		defer func() { _ = opsServer.Shutdown(context.Background()) }()
	}

	return startBot(ctx, cfg, sesiones, apiClient, eventBus, sheetsWorker, botMetrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

// initSesionRepo wires Redis-backed sessions with an in-memory
// fallback so a Redis outage logs people out at worst.
func initSesionRepo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverSesionRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(models.DefaultRedisTTL) * time.Second
	primary := repository.NewRedisSesionRepository(redisClient, ttl)
	fallback := repository.NewMemorySesionRepository(ttl)
	return redisClient, repository.NewFailoverSesionRepository(primary, fallback, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*google.SheetsService, error) {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.ReservasSpreadSheetID == "" {
		logger.Info().Msg("Google Sheets mirror not configured")
		return nil, nil
	}

	sheetsSvc, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.ReservasSpreadSheetID)
	if err != nil {
		return nil, err
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		return nil, err
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc, nil
}

// subscribeReservaEvents forwards reservation events to the Sheets
// sync queue. Creation already enqueues its own upsert; only status
// changes ride the bus.
func subscribeReservaEvents(
	ctx context.Context,
	bus *events.EventBus,
	sheetsWorker *worker.SheetsWorker,
	logger *zerolog.Logger,
) {
	if bus == nil || sheetsWorker == nil {
		return
	}

	statusHandler := func(ev *events.Event) error {
		var payload events.ReservaEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		if payload.Status == "" {
			logger.Error().Int64("reserva_id", payload.ReservaID).Msg("event bus: missing status")
			return nil
		}
		if err := sheetsWorker.EnqueueTask(ctx, worker.TaskUpdateStatus, payload.ReservaID, nil, payload.Status); err != nil {
			logger.Error().Err(err).Int64("reserva_id", payload.ReservaID).Msg("event bus: enqueue status")
		}
		return nil
	}

	bus.Subscribe(events.EventReservaCancelada, statusHandler)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	sesiones *service.SesionService,
	apiClient *backend.Client,
	eventBus *events.EventBus,
	sheetsWorker *worker.SheetsWorker,
	botMetrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	// A typed nil inside the interface would dodge the bot's nil checks.
	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}

	telegramBot, err := bot.NewBot(tgService, cfg, sesiones, apiClient, eventBus, syncWorker, botMetrics, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create bot")
		return err
	}

	telegramBot.StartReminders(ctx)

	logger.Info().Msg("Bot started...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}
