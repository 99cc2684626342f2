package storage

import (
	"context"
	"time"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

// EntryStore persists ledger entries. Implementations enforce uniqueness of
// (description, due date, owner) and report it as models.ErrDuplicate.
type EntryStore interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListAll(ctx context.Context) ([]models.LedgerEntry, error)
	FindByDescription(ctx context.Context, description string) (*models.LedgerEntry, error)
	FindByMonth(ctx context.Context, year int, month time.Month) ([]models.LedgerEntry, error)
	FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error)
	Delete(ctx context.Context, id int64) (int64, error)
	// Update persists the mutable fields of entry. pago is written only when
	// withPaid is set; otherwise entry.Paid is refreshed from the stored row.
	Update(ctx context.Context, entry *models.LedgerEntry, withPaid bool) error
	// TogglePaid flips pago in a single write and returns the resulting entry.
	TogglePaid(ctx context.Context, id int64) (*models.LedgerEntry, error)
}
