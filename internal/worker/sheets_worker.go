package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"labreserva/internal/domain"
	"labreserva/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert_reserva"
	TaskUpdateStatus = "update_status"
)

// SyncTask is one queued reservation snapshot on its way to the audit
// spreadsheet. The full retry state travels with the task; there is no
// durable store besides the redis queue itself.
type SyncTask struct {
	ID          string          `json:"id"`
	TaskType    string          `json:"task_type"`
	ReservaID   int64           `json:"reserva_id"`
	Reserva     *models.Reserva `json:"reserva,omitempty"`
	Status      string          `json:"status,omitempty"`
	RetryCount  int             `json:"retry_count"`
	CreatedAt   time.Time       `json:"created_at"`
	NextRetryAt time.Time       `json:"next_retry_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
}

// SheetsWorker drains the sync queue and applies each task to the
// spreadsheet. Redis is the primary queue; when it is unavailable the
// in-memory channel keeps the bot functional at the cost of losing
// queued tasks on restart.
type SheetsWorker struct {
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SheetsWorker{
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan SyncTask, models.WorkerQueueSize),
		redisQueueKey: "sheets:queue",
		deadLetterKey: "sheets:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// EnqueueTask schedules a snapshot via redis, falling back to the
// in-memory queue.
func (w *SheetsWorker) EnqueueTask(ctx context.Context, taskType string, reservaID int64, reserva *models.Reserva, status string) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if reservaID == 0 && (reserva == nil || reserva.ID == 0) {
		return errors.New("reserva id is required")
	}
	if reservaID == 0 {
		reservaID = reserva.ID
	}

	task := SyncTask{
		ID:        uuid.NewString(),
		TaskType:  taskType,
		ReservaID: reservaID,
		Reserva:   reserva,
		Status:    status,
		CreatedAt: time.Now(),
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("sync queue full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.sleep(ctx, w.processTask(ctx, t))
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.sleep(ctx, w.processTask(ctx, t))
			continue
		}

		select {
		case <-ctx.Done():
			return
		case t := <-w.queue:
			w.sleep(ctx, w.processTask(ctx, t))
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *SheetsWorker) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (w *SheetsWorker) tryLocalQueue() (SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return SyncTask{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (SyncTask, bool) {
	if w.redis == nil {
		return SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("redis BRPOP error")
		}
		return SyncTask{}, false
	}
	if len(res) != 2 {
		return SyncTask{}, false
	}
	var task SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return SyncTask{}, false
	}
	return task, true
}

// processTask applies the task, or requeues it when it is not due
// yet. The returned duration tells the main loop how long to idle
// before polling again, so a waiting retry never turns into a
// pop-push spin against redis.
func (w *SheetsWorker) processTask(ctx context.Context, task SyncTask) time.Duration {
	if wait := time.Until(task.NextRetryAt); !task.NextRetryAt.IsZero() && wait > 0 {
		w.requeue(ctx, task)
		if wait > w.pollInterval {
			wait = w.pollInterval
		}
		return wait
	}

	if err := w.handleTask(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return 0
	}

	w.logger.Debug().
		Str("task_id", task.ID).
		Str("type", task.TaskType).
		Int64("reserva_id", task.ReservaID).
		Msg("sync task completed")
	return 0
}

func (w *SheetsWorker) handleTask(ctx context.Context, task SyncTask) error {
	switch task.TaskType {
	case TaskUpsert:
		if task.Reserva == nil {
			return errors.New("reserva payload missing")
		}
		return w.sheets.UpsertReserva(ctx, task.Reserva)
	case TaskUpdateStatus:
		if task.ReservaID == 0 || task.Status == "" {
			return errors.New("reserva id or status missing")
		}
		return w.sheets.UpdateReservaStatus(ctx, task.ReservaID, task.Status)
	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

func (w *SheetsWorker) retryOrFail(ctx context.Context, task SyncTask, cause error) {
	task.RetryCount++
	task.LastError = cause.Error()

	if task.RetryCount >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).
			Str("task_id", task.ID).
			Int("retries", task.RetryCount).
			Msg("sync task exhausted retries")
		w.pushDeadLetter(ctx, task)
		return
	}

	task.NextRetryAt = time.Now().Add(w.retryPolicy.NextDelay(task.RetryCount))
	w.logger.Warn().Err(cause).
		Str("task_id", task.ID).
		Int("retry", task.RetryCount).
		Time("next_retry_at", task.NextRetryAt).
		Msg("sync task rescheduled")
	w.requeue(ctx, task)
}

func (w *SheetsWorker) requeue(ctx context.Context, task SyncTask) {
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err == nil {
			return
		}
	}
	select {
	case w.queue <- task:
	default:
		w.logger.Error().Str("task_id", task.ID).Msg("queue full, task dropped")
	}
}

func (w *SheetsWorker) pushRedis(ctx context.Context, task SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task SyncTask) {
	if w.redis == nil {
		w.logger.Error().Str("task_id", task.ID).Str("error", task.LastError).Msg("deadletter dropped, no redis")
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("task_id", task.ID).Msg("deadletter push")
	}
}
