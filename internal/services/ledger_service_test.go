package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlefinanceiro/lancamentos/internal/category"
	"github.com/controlefinanceiro/lancamentos/internal/events"
	"github.com/controlefinanceiro/lancamentos/internal/models"
	"github.com/controlefinanceiro/lancamentos/internal/storage/memory"
)

const (
	educationCategory int64 = 1
	salaryCategory    int64 = 2
	missingCategory   int64 = 99
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newDirectory() *MockDirectory {
	dir := &MockDirectory{}
	dir.On("ResolveKind", educationCategory).Return(models.KindExpense, nil)
	dir.On("ResolveKind", salaryCategory).Return(models.KindIncome, nil)
	dir.On("ResolveKind", missingCategory).Return(models.Kind(""), category.ErrNoCategory)
	return dir
}

func newTestService() (*LedgerService, *memory.EntryStore, *recordingPublisher) {
	store := memory.NewEntryStore()
	publisher := &recordingPublisher{}
	service := NewLedgerService(store, newDirectory(),
		WithClock(func() time.Time { return fixedNow }),
		WithPublisher(publisher),
	)
	return service, store, publisher
}

func expense(desc string, amount float64, due time.Time) *models.LedgerEntry {
	return &models.LedgerEntry{
		Description: desc,
		Amount:      amount,
		Kind:        models.KindExpense,
		CategoryID:  educationCategory,
		DueDate:     due,
	}
}

func TestValidateKind(t *testing.T) {
	dir := newDirectory()
	ctx := context.Background()

	assert.True(t, ValidateKind(ctx, dir, educationCategory, models.KindExpense))
	assert.False(t, ValidateKind(ctx, dir, educationCategory, models.KindIncome))
	assert.True(t, ValidateKind(ctx, dir, salaryCategory, models.KindIncome))
	assert.False(t, ValidateKind(ctx, dir, missingCategory, models.KindExpense))
}

func TestLedgerService_Add(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	t.Run("successful add", func(t *testing.T) {
		service, _, publisher := newTestService()

		entry := expense("Inglês", 460.5, due)
		require.NoError(t, service.Add(ctx, entry))
		assert.NotZero(t, entry.ID)
		assert.Equal(t, []string{events.TypeCreated}, publisher.types())
	})

	t.Run("kind mismatch", func(t *testing.T) {
		service, store, publisher := newTestService()

		entry := expense("Salário", 5000, due)
		entry.CategoryID = salaryCategory

		err := service.Add(ctx, entry)
		assert.ErrorIs(t, err, models.ErrKindMismatch)

		all, _ := store.ListAll(ctx)
		assert.Empty(t, all)
		assert.Empty(t, publisher.types())
	})

	t.Run("unresolvable category", func(t *testing.T) {
		service, _, _ := newTestService()

		entry := expense("Mistério", 10, due)
		entry.CategoryID = missingCategory

		err := service.Add(ctx, entry)
		assert.ErrorIs(t, err, models.ErrCategoryUnresolvable)
	})

	t.Run("duplicate", func(t *testing.T) {
		service, _, _ := newTestService()

		require.NoError(t, service.Add(ctx, expense("Inglês", 460.5, due)))
		err := service.Add(ctx, expense("Inglês", 300, due))
		assert.ErrorIs(t, err, models.ErrDuplicate)
	})

	t.Run("publisher failure does not fail add", func(t *testing.T) {
		store := memory.NewEntryStore()
		service := NewLedgerService(store, newDirectory(),
			WithPublisher(&recordingPublisher{err: errors.New("broker down")}))

		assert.NoError(t, service.Add(ctx, expense("Luz", 120, due)))
	})
}

func TestLedgerService_List(t *testing.T) {
	service, _, _ := newTestService()

	entries, err := service.List(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLedgerService_Monthly(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.Add(ctx, expense("Aluguel", 1500, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, service.Add(ctx, expense("Condomínio", 400, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, service.Add(ctx, expense("Aluguel", 1500, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))))

	entries, err := service.Monthly(ctx, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = service.Monthly(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLedgerService_Balance(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	t.Run("empty month", func(t *testing.T) {
		_, err := service.CurrentBalance(ctx)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	paid := expense("Escola", 100, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	paid.Paid = true
	require.NoError(t, service.Add(ctx, paid))
	require.NoError(t, service.Add(ctx, expense("Luz", 50, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, service.Add(ctx, expense("Internet", 30, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, service.Add(ctx, &models.LedgerEntry{
		Description: "Salário",
		Amount:      200,
		Kind:        models.KindIncome,
		CategoryID:  salaryCategory,
		DueDate:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, service.Add(ctx, expense("Fora do mês", 999, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))))

	t.Run("current month", func(t *testing.T) {
		summary, err := service.CurrentBalance(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 380.0, summary.TotalValue)
		assert.Equal(t, 180.0, summary.TotalExpenses)
		assert.Equal(t, 200.0, summary.TotalIncome)
		assert.Equal(t, 100.0, summary.BalancePaid)
		assert.Equal(t, 50.0, summary.TotalOverdue)
		assert.Equal(t, 30.0, summary.TotalUpcoming)
		assert.Equal(t, 100.0, summary.MonthlyBalance)
	})

	t.Run("past month is fully overdue", func(t *testing.T) {
		summary, err := service.Balance(ctx, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, 999.0, summary.TotalOverdue)
		assert.Equal(t, 0.0, summary.TotalUpcoming)
	})
}

func TestLedgerService_Delete(t *testing.T) {
	service, _, publisher := newTestService()
	ctx := context.Background()

	entry := expense("Cinema", 40, fixedNow)
	require.NoError(t, service.Add(ctx, entry))

	t.Run("nonexistent id", func(t *testing.T) {
		count, err := service.Delete(ctx, 12345)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Equal(t, int64(0), count)
	})

	t.Run("existing id", func(t *testing.T) {
		count, err := service.Delete(ctx, entry.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)

		_, err = service.TogglePaid(ctx, entry.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Equal(t, []string{events.TypeCreated, events.TypeDeleted}, publisher.types())
	})
}

func TestLedgerService_TogglePaid(t *testing.T) {
	service, store, _ := newTestService()
	ctx := context.Background()

	entry := expense("Academia", 90, fixedNow)
	require.NoError(t, service.Add(ctx, entry))

	toggled, err := service.TogglePaid(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Paid)

	toggled, err = service.TogglePaid(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Paid)

	stored, err := store.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, stored.Paid)
	assert.Equal(t, entry.Description, stored.Description)
}

func TestLedgerService_Edit(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	t.Run("full replace", func(t *testing.T) {
		service, _, publisher := newTestService()
		entry := expense("Inglês", 460.5, due)
		require.NoError(t, service.Add(ctx, entry))

		paid := true
		updated, err := service.Edit(ctx, EditInput{
			ID:          entry.ID,
			Description: "Bônus",
			Amount:      700,
			Kind:        models.KindIncome,
			CategoryID:  salaryCategory,
			DueDate:     due.AddDate(0, 1, 0),
			Paid:        &paid,
		})
		require.NoError(t, err)
		assert.Equal(t, "Bônus", updated.Description)
		assert.Equal(t, models.KindIncome, updated.Kind)
		assert.Equal(t, salaryCategory, updated.CategoryID)
		assert.True(t, updated.Paid)
		assert.Equal(t, []string{events.TypeCreated, events.TypeUpdated}, publisher.types())
	})

	t.Run("missing entry", func(t *testing.T) {
		service, _, _ := newTestService()
		_, err := service.Edit(ctx, EditInput{ID: 77, Kind: models.KindExpense, CategoryID: educationCategory})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("kind mismatch leaves entry untouched", func(t *testing.T) {
		service, store, _ := newTestService()
		entry := expense("Inglês", 460.5, due)
		require.NoError(t, service.Add(ctx, entry))

		_, err := service.Edit(ctx, EditInput{
			ID:          entry.ID,
			Description: "Trocado",
			Amount:      1,
			Kind:        models.KindExpense,
			CategoryID:  salaryCategory,
			DueDate:     due,
		})
		assert.ErrorIs(t, err, models.ErrKindMismatch)

		stored, _ := store.FindByID(ctx, entry.ID)
		assert.Equal(t, "Inglês", stored.Description)
	})

	t.Run("edit into duplicate", func(t *testing.T) {
		service, _, _ := newTestService()
		require.NoError(t, service.Add(ctx, expense("Água", 80, due)))
		other := expense("Gás", 60, due)
		require.NoError(t, service.Add(ctx, other))

		_, err := service.Edit(ctx, EditInput{
			ID:          other.ID,
			Description: "Água",
			Amount:      60,
			Kind:        models.KindExpense,
			CategoryID:  educationCategory,
			DueDate:     due,
		})
		assert.ErrorIs(t, err, models.ErrDuplicate)
	})
}

// interleavingStore runs between once, right after the first FindByID, to
// simulate a write committed by another request in the meantime.
type interleavingStore struct {
	*memory.EntryStore
	between func()
}

func (s *interleavingStore) FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	e, err := s.EntryStore.FindByID(ctx, id)
	if s.between != nil {
		between := s.between
		s.between = nil
		between()
	}
	return e, err
}

func TestLedgerService_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	t.Run("toggle keeps a concurrent edit", func(t *testing.T) {
		store := &interleavingStore{EntryStore: memory.NewEntryStore()}
		service := NewLedgerService(store, newDirectory(), WithClock(func() time.Time { return fixedNow }))

		entry := expense("Aluguel", 100, due)
		require.NoError(t, service.Add(ctx, entry))

		store.between = func() {
			edited := *entry
			edited.Description = "Aluguel reajustado"
			edited.Amount = 999
			require.NoError(t, store.EntryStore.Update(ctx, &edited, false))
		}

		toggled, err := service.TogglePaid(ctx, entry.ID)
		require.NoError(t, err)
		assert.True(t, toggled.Paid)
		if store.between != nil {
			// toggle never read the row, so the edit lands afterwards
			store.between()
		}

		stored, err := store.EntryStore.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.True(t, stored.Paid)
		assert.Equal(t, "Aluguel reajustado", stored.Description)
		assert.Equal(t, 999.0, stored.Amount)
	})

	t.Run("edit without pago keeps a concurrent toggle", func(t *testing.T) {
		store := &interleavingStore{EntryStore: memory.NewEntryStore()}
		service := NewLedgerService(store, newDirectory(), WithClock(func() time.Time { return fixedNow }))

		entry := expense("Luz", 120, due)
		require.NoError(t, service.Add(ctx, entry))

		store.between = func() {
			_, err := store.EntryStore.TogglePaid(ctx, entry.ID)
			require.NoError(t, err)
		}

		updated, err := service.Edit(ctx, EditInput{
			ID:          entry.ID,
			Description: "Luz",
			Amount:      135,
			Kind:        models.KindExpense,
			CategoryID:  educationCategory,
			DueDate:     due,
		})
		require.NoError(t, err)
		assert.True(t, updated.Paid)

		stored, err := store.EntryStore.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.True(t, stored.Paid)
		assert.Equal(t, 135.0, stored.Amount)
	})
}
