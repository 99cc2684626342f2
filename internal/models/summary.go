package models

// Summary is the monthly balance of a set of entries
type Summary struct {
	MonthlyBalance float64 `json:"saldo_mes"`
	BalancePaid    float64 `json:"saldo_pago"`
	TotalUpcoming  float64 `json:"total_a_vencer"`
	TotalOverdue   float64 `json:"total_atrasadas"`
	TotalExpenses  float64 `json:"total_despesas"`
	TotalIncome    float64 `json:"total_receitas"`
	TotalValue     float64 `json:"total_valor"`
}
