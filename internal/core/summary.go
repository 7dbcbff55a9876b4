package core

// PeriodSummary totals one calendar month or year.
type PeriodSummary struct {
	Income  Money
	Expense Money
	Net     Money
}

// NewPeriodSummary fills in Net.
func NewPeriodSummary(income, expense Money) PeriodSummary {
	return PeriodSummary{Income: income, Expense: expense, Net: income.Sub(expense)}
}

// CategoryTotal represents an amount aggregated by category.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Total      Money
}

// TrendPoint is one month of the income/expense trend.
type TrendPoint struct {
	Month   string // YYYY-MM
	Income  Money
	Expense Money
}

func (p TrendPoint) Net() Money {
	return p.Income.Sub(p.Expense)
}
