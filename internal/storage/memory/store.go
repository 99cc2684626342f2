package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/controlefinanceiro/lancamentos/internal/models"
	"github.com/controlefinanceiro/lancamentos/internal/storage"
)

type uniqueKey struct {
	description string
	dueDate     time.Time
	owner       string
}

func keyOf(e *models.LedgerEntry) uniqueKey {
	return uniqueKey{e.Description, models.DateOnly(e.DueDate), e.Owner}
}

// EntryStore keeps entries in a map guarded by a mutex. It is used for local
// runs without Postgres and by the service tests.
type EntryStore struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]models.LedgerEntry
	keys    map[uniqueKey]int64
	now     func() time.Time
}

func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[int64]models.LedgerEntry),
		keys:    make(map[uniqueKey]int64),
		now:     time.Now,
	}
}

func (s *EntryStore) Create(ctx context.Context, entry *models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.DueDate = models.DateOnly(entry.DueDate)
	k := keyOf(entry)
	if _, exists := s.keys[k]; exists {
		return fmt.Errorf("create %q: %w", entry.Description, models.ErrDuplicate)
	}

	s.nextID++
	entry.ID = s.nextID
	if entry.InsertedAt.IsZero() {
		entry.InsertedAt = s.now()
	}
	s.entries[entry.ID] = *entry
	s.keys[k] = entry.ID
	return nil
}

// sorted returns entries matching keep ordered by id. Caller holds the lock.
func (s *EntryStore) sorted(keep func(models.LedgerEntry) bool) []models.LedgerEntry {
	result := make([]models.LedgerEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *EntryStore) ListAll(ctx context.Context) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sorted(func(models.LedgerEntry) bool { return true }), nil
}

func (s *EntryStore) FindByDescription(ctx context.Context, description string) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := s.sorted(func(e models.LedgerEntry) bool { return e.Description == description })
	if len(matches) == 0 {
		return nil, models.ErrNotFound
	}
	return &matches[0], nil
}

func (s *EntryStore) FindByMonth(ctx context.Context, year int, month time.Month) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sorted(func(e models.LedgerEntry) bool { return e.InMonth(year, month) }), nil
}

func (s *EntryStore) FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &e, nil
}

func (s *EntryStore) Delete(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return 0, nil
	}
	delete(s.keys, keyOf(&e))
	delete(s.entries, id)
	return 1, nil
}

func (s *EntryStore) Update(ctx context.Context, entry *models.LedgerEntry, withPaid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[entry.ID]
	if !ok {
		return models.ErrNotFound
	}
	if !withPaid {
		entry.Paid = prev.Paid
	}

	entry.DueDate = models.DateOnly(entry.DueDate)
	k := keyOf(entry)
	if id, exists := s.keys[k]; exists && id != entry.ID {
		return fmt.Errorf("update %d: %w", entry.ID, models.ErrDuplicate)
	}

	delete(s.keys, keyOf(&prev))
	s.entries[entry.ID] = *entry
	s.keys[k] = entry.ID
	return nil
}

func (s *EntryStore) TogglePaid(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	e.Paid = !e.Paid
	s.entries[id] = e
	return &e, nil
}

var _ storage.EntryStore = (*EntryStore)(nil)
