package mintport

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// BalanceCSV describes one balance table to render.
type BalanceCSV struct {
	Balances []TrendEntry
	// AccountName, when set, adds an "Account Name" column to the default
	// layout.
	AccountName string
	// ReportType selects the column layout. Net report types render paired
	// series as Date, <positive>, <negative>, Net; every other supported
	// type (or an empty value) renders Date, Amount. Unrecognized types are
	// an error, never a silently wrong layout.
	ReportType ReportType
}

// FormatBalancesCSV renders a fetched balance series as CSV. Trailing rows
// whose every amount is zero are dropped, except that the first row always
// survives: a table of nothing but zeros still renders one row.
func FormatBalancesCSV(p BalanceCSV) (string, error) {
	switch p.ReportType {
	case NetIncome:
		return formatNetCSV(p.Balances, "Income", "Expenses"), nil
	case NetWorth:
		return formatNetCSV(p.Balances, "Assets", "Debts"), nil
	case "", AssetsTime, DebtsTime, IncomeTime, SpendingTime:
		return formatAmountCSV(p.Balances, p.AccountName), nil
	default:
		return "", fmt.Errorf("mintport: unsupported report type %q", p.ReportType)
	}
}

// formatAmountCSV renders the single-series layout: Date, Amount and
// optionally the account name on every row.
func formatAmountCSV(balances []TrendEntry, accountName string) string {
	header := []any{"Date", "Amount"}
	if accountName != "" {
		header = append(header, "Account Name")
	}

	rows := [][]any{header}
	for _, entry := range trimTrailingZeros(balances, func(e TrendEntry) bool { return e.Amount == 0 }) {
		row := []any{entry.Date.String(), entry.Amount}
		if accountName != "" {
			row = append(row, accountName)
		}
		rows = append(rows, row)
	}
	return FormatCSV(rows)
}

// netRow is one merged row of a paired report. negative keeps the sign the
// report client normalized it to (zero or below).
type netRow struct {
	date     string
	positive float64
	negative float64
}

func (r netRow) zero() bool { return r.positive == 0 && r.negative == 0 }

// formatNetCSV renders paired series as Date, <positive>, <negative>, Net.
// Consecutive entries sharing a date but not a series type merge into one
// row; a lone entry gets an implicit zero for the missing side. The Net
// column is computed in fixed-point decimal and rendered with exactly two
// decimals, so 123.45-12.35 is "111.10" and an all-zero row is "0.00".
func formatNetCSV(balances []TrendEntry, positiveLabel, negativeLabel string) string {
	var merged []netRow
	for i := 0; i < len(balances); i++ {
		entry := balances[i]
		row := netRow{date: entry.Date.String()}
		row.set(entry)
		if i+1 < len(balances) {
			next := balances[i+1]
			if next.Date == entry.Date && next.Type != entry.Type {
				row.set(next)
				i++
			}
		}
		merged = append(merged, row)
	}

	rows := [][]any{{"Date", positiveLabel, negativeLabel, "Net"}}
	for _, row := range trimTrailingZeros(merged, netRow.zero) {
		net := decimal.NewFromFloat(row.positive).Add(decimal.NewFromFloat(row.negative))
		rows = append(rows, []any{row.date, row.positive, math.Abs(row.negative), net.StringFixed(2)})
	}
	return FormatCSV(rows)
}

// set places the entry's amount on the side its series tag names. Untagged
// entries (synthesized zero days) land on the positive side, which is
// indistinguishable for a zero amount.
func (r *netRow) set(entry TrendEntry) {
	if entry.Type.negative() {
		r.negative = entry.Amount
	} else {
		r.positive = entry.Amount
	}
}

// trimTrailingZeros drops rows from the end while zero reports true, but
// always keeps the first row.
func trimTrailingZeros[T any](rows []T, zero func(T) bool) []T {
	end := len(rows)
	for end > 1 && zero(rows[end-1]) {
		end--
	}
	return rows[:end]
}
