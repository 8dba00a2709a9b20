package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics del lado Telegram. Las métricas de las llamadas al backend
// viven en internal/metrics.
type Metrics struct {
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	LoginsTotal          *prometheus.CounterVec
	ReservasCreadas      prometheus.Counter
	ReservasCanceladas   prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "labreserva_bot_errors_total",
			Help: "Total number of panics recovered in update handlers",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "labreserva_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labreserva_bot_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),

		ReservasCreadas: promauto.NewCounter(prometheus.CounterOpts{
			Name: "labreserva_bot_reservas_creadas_total",
			Help: "Total number of reservations created through the bot",
		}),

		ReservasCanceladas: promauto.NewCounter(prometheus.CounterOpts{
			Name: "labreserva_bot_reservas_canceladas_total",
			Help: "Total number of reservations cancelled through the bot",
		}),
	}
}
