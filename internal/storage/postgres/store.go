package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/controlefinanceiro/lancamentos/internal/models"
	"github.com/controlefinanceiro/lancamentos/internal/storage"
)

// uniqueViolation is the SQLSTATE raised when uq_descricao_data_vencimento_login is hit.
const uniqueViolation = "23505"

const entryColumns = `id, descricao, valor, pago, tipo, categoria_id, data_vencimento, login, data_insercao`

const selectColumns = `SELECT ` + entryColumns + ` FROM lancamentos`

type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	var kind string
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Paid, &kind, &e.CategoryID, &e.DueDate, &e.Owner, &e.InsertedAt); err != nil {
		return nil, err
	}
	e.Kind = models.Kind(kind)
	e.DueDate = models.DateOnly(e.DueDate)
	return &e, nil
}

func translateWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, models.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w: %v", op, models.ErrWrite, err)
}

func (p *EntryStore) Create(ctx context.Context, entry *models.LedgerEntry) error {
	const query = `INSERT INTO lancamentos (descricao, valor, pago, tipo, categoria_id, data_vencimento, login, data_insercao)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	if entry.InsertedAt.IsZero() {
		entry.InsertedAt = time.Now()
	}
	entry.DueDate = models.DateOnly(entry.DueDate)

	err := p.db.QueryRowContext(ctx, query,
		entry.Description, entry.Amount, entry.Paid, string(entry.Kind),
		entry.CategoryID, entry.DueDate, entry.Owner, entry.InsertedAt,
	).Scan(&entry.ID)
	if err != nil {
		return translateWriteError("insert lancamento", err)
	}
	return nil
}

func (p *EntryStore) query(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *EntryStore) ListAll(ctx context.Context) ([]models.LedgerEntry, error) {
	return p.query(ctx, selectColumns+` ORDER BY id`)
}

func (p *EntryStore) FindByDescription(ctx context.Context, description string) (*models.LedgerEntry, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+` WHERE descricao = $1 ORDER BY id LIMIT 1`, description)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	return e, err
}

func (p *EntryStore) FindByMonth(ctx context.Context, year int, month time.Month) ([]models.LedgerEntry, error) {
	return p.query(ctx, selectColumns+`
	WHERE EXTRACT(YEAR FROM data_vencimento) = $1 AND EXTRACT(MONTH FROM data_vencimento) = $2
	ORDER BY id`, year, int(month))
}

func (p *EntryStore) FindByID(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	row := p.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	return e, err
}

func (p *EntryStore) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := p.db.ExecContext(ctx, `DELETE FROM lancamentos WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (p *EntryStore) Update(ctx context.Context, entry *models.LedgerEntry, withPaid bool) error {
	entry.DueDate = models.DateOnly(entry.DueDate)
	args := []any{
		entry.Description, entry.Amount, string(entry.Kind),
		entry.CategoryID, entry.DueDate, entry.Owner,
	}

	set := `descricao = $1, valor = $2, tipo = $3, categoria_id = $4, data_vencimento = $5, login = $6`
	if withPaid {
		args = append(args, entry.Paid)
		set += `, pago = $7`
	}
	args = append(args, entry.ID)
	query := fmt.Sprintf(`UPDATE lancamentos SET %s WHERE id = $%d RETURNING pago`, set, len(args))

	err := p.db.QueryRowContext(ctx, query, args...).Scan(&entry.Paid)
	if err == sql.ErrNoRows {
		return models.ErrNotFound
	}
	if err != nil {
		return translateWriteError("update lancamento", err)
	}
	return nil
}

func (p *EntryStore) TogglePaid(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	row := p.db.QueryRowContext(ctx,
		`UPDATE lancamentos SET pago = NOT pago WHERE id = $1 RETURNING `+entryColumns, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, translateWriteError("toggle pago", err)
	}
	return e, nil
}

var _ storage.EntryStore = (*EntryStore)(nil)
