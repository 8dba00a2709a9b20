package models

const (
	// DefaultRedisTTL tiempo de vida de la sesión de usuario en Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 horas en segundos

	// WorkerQueueSize tamaño de la cola del worker de sincronización
	WorkerQueueSize = 1000

	// DefaultPaginationSize tamaño de paginación por defecto
	DefaultPaginationSize = 8

	// DefaultReservasPaginationSize tamaño de paginación para listas de reservas
	DefaultReservasPaginationSize = 5

	// RateLimitMessages cantidad de mensajes por ventana
	RateLimitMessages = 20

	// RateLimitWindow ventana del límite de mensajes
	RateLimitWindow = 60 // 1 minuto en segundos

	// CatalogoCacheTTL tiempo de vida del caché del catálogo de laboratorios
	CatalogoCacheTTL = 30 * 60 // 30 minutos en segundos
)

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Horario de atención de los laboratorios: las reservas deben caer
// dentro de esta franja.
const (
	HoraApertura = "08:00"
	HoraCierre   = "20:00"
)
