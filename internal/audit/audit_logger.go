package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

const (
	EventCreate     = "CREATE"
	EventUpdate     = "UPDATE"
	EventTogglePaid = "TOGGLE_PAID"
	EventDelete     = "DELETE"
)

type Event struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	EntryID   int64     `json:"entry_id,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

type Logger struct {
	printf func(format string, v ...any)
}

func NewLogger() *Logger {
	return &Logger{printf: log.Printf}
}

// LogEntry records a successful mutation of entry.
func (a *Logger) LogEntry(eventType string, entry *models.LedgerEntry) {
	a.log(Event{
		EventType: eventType,
		EntryID:   entry.ID,
		Owner:     entry.Owner,
		Amount:    entry.Amount,
		Status:    "SUCCESS",
		Details: map[string]any{
			"descricao":       entry.Description,
			"tipo":            entry.Kind,
			"pago":            entry.Paid,
			"categoria_id":    entry.CategoryID,
			"data_vencimento": entry.DueDate.Format("2006-01-02"),
		},
	})
}

func (a *Logger) LogDelete(id int64) {
	a.log(Event{
		EventType: EventDelete,
		EntryID:   id,
		Status:    "SUCCESS",
	})
}

func (a *Logger) LogError(eventType string, entryID int64, err error) {
	a.log(Event{
		EventType: eventType,
		EntryID:   entryID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	event.EventID = uuid.New().String()
	event.Timestamp = time.Now()
	data, _ := json.Marshal(event)
	a.printf("AUDIT: %s", string(data))
}
