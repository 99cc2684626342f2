package events

import (
	"context"
	"time"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

const (
	TypeCreated     = "lancamento.created"
	TypeUpdated     = "lancamento.updated"
	TypePaidToggled = "lancamento.paid_toggled"
	TypeDeleted     = "lancamento.deleted"
)

// Event is published after a mutation has been committed.
type Event struct {
	Type       string              `json:"type"`
	EntryID    int64               `json:"entry_id"`
	Entry      *models.LedgerEntry `json:"entry,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
