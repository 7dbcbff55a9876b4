package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func (a *App) runReport(ctx context.Context, args []string) error {
	sub, rest, err := subcommand(args, "report", "month", "year", "breakdown", "trend", "balances")
	if err != nil {
		return err
	}
	store, err := a.Service.Store()
	if err != nil {
		return err
	}
	fs := a.newFlags("report " + sub)
	today := core.DateOf(a.now())

	switch sub {
	case "month":
		year := fs.Int("year", today.Year(), "year")
		month := fs.Int("month", today.Month(), "month 1-12")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		s, err := store.MonthlySummary(ctx, *year, *month)
		if err != nil {
			return err
		}
		renderTitle(a.Out, fmt.Sprintf("%s %d", time.Month(*month), *year))
		renderSummary(a, s)
		return nil

	case "year":
		year := fs.Int("year", today.Year(), "year")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		s, err := store.YearlySummary(ctx, *year)
		if err != nil {
			return err
		}
		renderTitle(a.Out, fmt.Sprint(*year))
		renderSummary(a, s)
		return nil

	case "breakdown":
		firstOfMonth := core.NewDate(today.Year(), today.Month(), 1)
		from := fs.String("from", firstOfMonth.String(), "first date, inclusive")
		to := fs.String("to", today.String(), "last date, inclusive")
		typ := fs.String("type", string(core.Expense), "income or expense")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		tt, err := core.ParseTransactionType(*typ)
		if err != nil {
			return err
		}
		fromDate, err := core.ParseDate(*from)
		if err != nil {
			return fmt.Errorf("date %q: %w", *from, err)
		}
		toDate, err := core.ParseDate(*to)
		if err != nil {
			return fmt.Errorf("date %q: %w", *to, err)
		}
		totals, err := store.CategoryBreakdown(ctx, fromDate, toDate, tt)
		if err != nil {
			return err
		}

		var sum core.Money
		for _, ct := range totals {
			sum = sum.Add(ct.Total)
		}
		rows := make([][]string, 0, len(totals))
		for _, ct := range totals {
			rows = append(rows, []string{ct.Name, ct.Total.String(), share(ct.Total, sum)})
		}
		renderTitle(a.Out, fmt.Sprintf("%s by category, %s to %s", tt, fromDate, toDate))
		renderTable(a.Out, []string{"Category", "Total", "Share"}, rows, 1, 2)
		return nil

	case "trend":
		months := fs.Int("months", a.Config.TrendMonths, "trailing window in months")
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		points, err := store.MonthlyTrend(ctx, *months)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(points))
		for _, p := range points {
			rows = append(rows, []string{p.Month, p.Income.String(), p.Expense.String(), signed(p.Net())})
		}
		renderTitle(a.Out, fmt.Sprintf("Last %d months", *months))
		renderTable(a.Out, []string{"Month", "Income", "Expense", "Net"}, rows, 1, 2, 3)
		return nil

	default: // balances
		if ok, err := parse(fs, rest); !ok {
			return err
		}
		accounts, err := store.ListAccounts(ctx)
		if err != nil {
			return err
		}
		debit, err := store.TotalByAccountType(ctx, core.Debit)
		if err != nil {
			return err
		}
		credit, err := store.TotalByAccountType(ctx, core.Credit)
		if err != nil {
			return err
		}
		cash, err := store.CashOnHand(ctx)
		if err != nil {
			return err
		}
		renderTable(a.Out, accountHeaders, accountRows(accounts), 4, 5)
		renderTable(a.Out, []string{"Debit total", "Credit total", "Cash on hand"},
			[][]string{{debit.String(), credit.String(), signed(cash)}}, 0, 1, 2)
		return nil
	}
}

func renderSummary(a *App, s core.PeriodSummary) {
	renderTable(a.Out, []string{"Income", "Expense", "Net"},
		[][]string{{s.Income.String(), s.Expense.String(), signed(s.Net)}}, 0, 1, 2)
}

// share formats part/total as a percentage with one decimal.
func share(part, total core.Money) string {
	if total.IsZero() {
		return "-"
	}
	pct := part.Decimal().Div(total.Decimal()).Mul(decimal.NewFromInt(100))
	return pct.StringFixed(1) + "%"
}
