package models

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies an entry as an expense or an income. The values match the
// ones stored in the lancamentos table and served by the category directory.
type Kind string

const (
	KindExpense Kind = "Despesa"
	KindIncome  Kind = "Receita"
)

// ParseKind accepts the stored Portuguese names and their English aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "despesa", "expense":
		return KindExpense, nil
	case "receita", "income":
		return KindIncome, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// LedgerEntry represents a lançamento: a single expense or income record
type LedgerEntry struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"descricao" db:"descricao"`
	Amount      float64   `json:"valor" db:"valor"`
	Paid        bool      `json:"pago" db:"pago"`
	Kind        Kind      `json:"tipo" db:"tipo"`
	CategoryID  int64     `json:"categoria_id" db:"categoria_id"`
	DueDate     time.Time `json:"data_vencimento" db:"data_vencimento"`
	Owner       string    `json:"login" db:"login"`
	InsertedAt  time.Time `json:"data_insercao" db:"data_insercao"`
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InMonth reports whether the due date falls in the given calendar month.
func (e LedgerEntry) InMonth(year int, month time.Month) bool {
	y, m, _ := e.DueDate.Date()
	return y == year && m == month
}
