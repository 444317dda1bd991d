package models

// DateLayout is the canonical night format used in storage, the API and
// the spreadsheet mirror.
const DateLayout = "2006-01-02"

const (
	// DefaultRedisTTL сколько секунд живет снимок занятости в Redis
	DefaultRedisTTL = 60 * 60 // один час

	// WorkerQueueSize емкость локальной очереди задач выгрузки
	WorkerQueueSize = 1000

	// DefaultRequestTimeoutSeconds таймаут обработки одного запроса API
	DefaultRequestTimeoutSeconds = 5
)
