package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/controlefinanceiro/lancamentos/internal/models"
)

// Summarize computes the balance of one month of entries. today decides which
// unpaid expenses are overdue: those due strictly before it. An empty input
// yields models.ErrNotFound so callers can tell "no data" from a zero balance.
func Summarize(entries []models.LedgerEntry, today time.Time) (models.Summary, error) {
	if len(entries) == 0 {
		return models.Summary{}, models.ErrNotFound
	}
	today = models.DateOnly(today)

	var total, expenses, income, paid, unpaid, overdue decimal.Decimal
	for _, e := range entries {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)

		switch e.Kind {
		case models.KindExpense:
			expenses = expenses.Add(amount)
			if e.Paid {
				paid = paid.Add(amount)
				continue
			}
			unpaid = unpaid.Add(amount)
			if models.DateOnly(e.DueDate).Before(today) {
				overdue = overdue.Add(amount)
			}
		case models.KindIncome:
			income = income.Add(amount)
		}
	}

	return models.Summary{
		MonthlyBalance: toFloat(income.Sub(paid)),
		BalancePaid:    toFloat(paid),
		TotalUpcoming:  toFloat(unpaid.Sub(overdue)),
		TotalOverdue:   toFloat(overdue),
		TotalExpenses:  toFloat(expenses),
		TotalIncome:    toFloat(income),
		TotalValue:     toFloat(total),
	}, nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
