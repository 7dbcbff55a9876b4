package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"fintrack/internal/core"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	positive    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	negative    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

// renderTable writes rows under headers. Columns listed in numeric are right aligned.
func renderTable(w io.Writer, headers []string, rows [][]string, numeric ...int) {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if right[col] {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
}

func renderTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

// signed colours an amount by sign.
func signed(m core.Money) string {
	switch {
	case m.Cents > 0:
		return positive.Render(m.String())
	case m.Cents < 0:
		return negative.Render(m.String())
	default:
		return m.String()
	}
}

func accountRows(accounts []core.Account) [][]string {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{
			fmt.Sprint(a.ID),
			a.Name,
			string(a.Type),
			a.Currency,
			a.InitialBalance.String(),
			signed(a.CurrentBalance),
		})
	}
	return rows
}

func categoryRows(categories []core.Category) [][]string {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, string(c.Type), c.Description})
	}
	return rows
}

func transactionRows(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{
			fmt.Sprint(t.ID),
			t.Date.String(),
			t.AccountName,
			t.CategoryName,
			string(t.Type),
			signed(t.SignedAmount()),
			t.Description,
		})
	}
	return rows
}
