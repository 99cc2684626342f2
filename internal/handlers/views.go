package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/controlefinanceiro/lancamentos/internal/category"
	"github.com/controlefinanceiro/lancamentos/internal/models"
)

const viewDateLayout = "02/01/2006"

var inputDateLayouts = []string{"2006-01-02", viewDateLayout, time.RFC3339}

// ParseDate accepts YYYY-MM-DD, DD/MM/YYYY or an RFC 3339 timestamp and keeps
// only the calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Date is a calendar date in request bodies
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// EntryView is how a lançamento is returned to clients
type EntryView struct {
	ID           int64   `json:"id"`
	Description  string  `json:"descricao"`
	Amount       float64 `json:"valor"`
	Paid         bool    `json:"pago"`
	Kind         string  `json:"tipo"`
	DueDate      string  `json:"data_vencimento"`
	CategoryID   int64   `json:"categoria_id"`
	CategoryName string  `json:"categoria_nome"`
}

type EntryListView struct {
	Entries []EntryView `json:"lancamentos"`
}

type MessageView struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type EditView struct {
	Message string    `json:"message"`
	Entry   EntryView `json:"lancamento"`
}

func newEntryView(e models.LedgerEntry, categoryName string) EntryView {
	return EntryView{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Paid:         e.Paid,
		Kind:         string(e.Kind),
		DueDate:      e.DueDate.Format(viewDateLayout),
		CategoryID:   e.CategoryID,
		CategoryName: categoryName,
	}
}

func presentEntry(ctx context.Context, dir category.Directory, e models.LedgerEntry) EntryView {
	return newEntryView(e, category.NameOrPlaceholder(ctx, dir, e.CategoryID))
}

func presentEntries(ctx context.Context, dir category.Directory, entries []models.LedgerEntry) EntryListView {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.CategoryID
	}
	names := category.ResolveNames(ctx, dir, ids)

	views := make([]EntryView, len(entries))
	for i, e := range entries {
		views[i] = newEntryView(e, names[e.CategoryID])
	}
	return EntryListView{Entries: views}
}
