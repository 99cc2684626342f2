package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/controlefinanceiro/lancamentos/internal/audit"
	"github.com/controlefinanceiro/lancamentos/internal/category"
	"github.com/controlefinanceiro/lancamentos/internal/events"
	"github.com/controlefinanceiro/lancamentos/internal/models"
	"github.com/controlefinanceiro/lancamentos/internal/storage"
)

// LedgerService implements the lançamento operations on top of an EntryStore
// and the external category directory.
type LedgerService struct {
	store     storage.EntryStore
	directory category.Directory
	publisher events.Publisher
	audit     *audit.Logger
	now       func() time.Time
}

// Option configures a LedgerService
type Option func(*LedgerService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithAuditLogger(a *audit.Logger) Option {
	return func(s *LedgerService) { s.audit = a }
}

func NewLedgerService(store storage.EntryStore, directory category.Directory, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     store,
		directory: directory,
		publisher: events.Noop{},
		audit:     audit.NewLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EditInput carries the fields replaced by a full edit. Paid is kept as is when nil.
type EditInput struct {
	ID          int64
	Description string
	Amount      float64
	Kind        models.Kind
	CategoryID  int64
	DueDate     time.Time
	Paid        *bool
}

// ValidateKind reports whether declared matches the kind the directory holds
// for categoryID. An unresolvable category never validates. It is the boolean
// form of the check Add and Edit run; those keep the error to tell a mismatch
// from an unreachable directory.
func ValidateKind(ctx context.Context, dir category.Directory, categoryID int64, declared models.Kind) bool {
	return checkKind(ctx, dir, categoryID, declared) == nil
}

func checkKind(ctx context.Context, dir category.Directory, categoryID int64, declared models.Kind) error {
	actual, err := dir.ResolveKind(ctx, categoryID)
	if err != nil {
		log.Printf("[LEDGER] Category %d unresolvable: %v", categoryID, err)
		return fmt.Errorf("category %d: %w", categoryID, models.ErrCategoryUnresolvable)
	}
	if actual != declared {
		log.Printf("[LEDGER] Kind mismatch - category: '%s', lancamento: '%s'", actual, declared)
		return fmt.Errorf("category %d is %s, lancamento is %s: %w", categoryID, actual, declared, models.ErrKindMismatch)
	}
	return nil
}

// Add validates the entry's kind against its category and stores it.
func (s *LedgerService) Add(ctx context.Context, entry *models.LedgerEntry) error {
	if err := checkKind(ctx, s.directory, entry.CategoryID, entry.Kind); err != nil {
		s.audit.LogError(audit.EventCreate, 0, err)
		return err
	}

	if err := s.store.Create(ctx, entry); err != nil {
		log.Printf("[LEDGER] Failed to add lancamento '%s': %v", entry.Description, err)
		s.audit.LogError(audit.EventCreate, 0, err)
		return err
	}

	log.Printf("[LEDGER] Added lancamento #%d '%s'", entry.ID, entry.Description)
	s.audit.LogEntry(audit.EventCreate, entry)
	s.publish(ctx, events.TypeCreated, entry.ID, entry)
	return nil
}

func (s *LedgerService) List(ctx context.Context) ([]models.LedgerEntry, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

func (s *LedgerService) FindByDescription(ctx context.Context, description string) (*models.LedgerEntry, error) {
	return s.store.FindByDescription(ctx, description)
}

// Monthly returns the entries due in the month of date, or models.ErrNotFound
// when there are none.
func (s *LedgerService) Monthly(ctx context.Context, date time.Time) ([]models.LedgerEntry, error) {
	entries, err := s.store.FindByMonth(ctx, date.Year(), date.Month())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("month %s: %w", date.Format("2006-01"), models.ErrNotFound)
	}
	return entries, nil
}

// Balance summarizes the month of date, judging overdue expenses against the
// service clock.
func (s *LedgerService) Balance(ctx context.Context, date time.Time) (models.Summary, error) {
	entries, err := s.store.FindByMonth(ctx, date.Year(), date.Month())
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(entries, s.now())
}

// CurrentBalance summarizes the current month.
func (s *LedgerService) CurrentBalance(ctx context.Context) (models.Summary, error) {
	return s.Balance(ctx, s.now())
}

func (s *LedgerService) Delete(ctx context.Context, id int64) (int64, error) {
	count, err := s.store.Delete(ctx, id)
	if err != nil {
		s.audit.LogError(audit.EventDelete, id, err)
		return 0, fmt.Errorf("delete %d: %w: %v", id, models.ErrWrite, err)
	}
	if count == 0 {
		return 0, fmt.Errorf("delete %d: %w", id, models.ErrNotFound)
	}

	log.Printf("[LEDGER] Deleted lancamento #%d", id)
	s.audit.LogDelete(id)
	s.publish(ctx, events.TypeDeleted, id, nil)
	return count, nil
}

// TogglePaid flips the paid flag and nothing else. No category check is made.
func (s *LedgerService) TogglePaid(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	entry, err := s.store.TogglePaid(ctx, id)
	if err != nil {
		s.audit.LogError(audit.EventTogglePaid, id, err)
		return nil, err
	}

	log.Printf("[LEDGER] Lancamento #%d paid=%t", id, entry.Paid)
	s.audit.LogEntry(audit.EventTogglePaid, entry)
	s.publish(ctx, events.TypePaidToggled, id, entry)
	return entry, nil
}

// Edit replaces the entry's fields after re-validating the kind against the
// new category.
func (s *LedgerService) Edit(ctx context.Context, in EditInput) (*models.LedgerEntry, error) {
	entry, err := s.store.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if err := checkKind(ctx, s.directory, in.CategoryID, in.Kind); err != nil {
		s.audit.LogError(audit.EventUpdate, in.ID, err)
		return nil, err
	}

	entry.Description = in.Description
	entry.Amount = in.Amount
	entry.Kind = in.Kind
	entry.CategoryID = in.CategoryID
	entry.DueDate = models.DateOnly(in.DueDate)
	if in.Paid != nil {
		entry.Paid = *in.Paid
	}

	if err := s.store.Update(ctx, entry, in.Paid != nil); err != nil {
		log.Printf("[LEDGER] Failed to update lancamento #%d: %v", in.ID, err)
		s.audit.LogError(audit.EventUpdate, in.ID, err)
		return nil, err
	}

	log.Printf("[LEDGER] Updated lancamento #%d", in.ID)
	s.audit.LogEntry(audit.EventUpdate, entry)
	s.publish(ctx, events.TypeUpdated, entry.ID, entry)
	return entry, nil
}

func (s *LedgerService) publish(ctx context.Context, eventType string, id int64, entry *models.LedgerEntry) {
	event := events.Event{Type: eventType, EntryID: id, Entry: entry, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[LEDGER] Failed to publish %s for #%d: %v", eventType, id, err)
	}
}
