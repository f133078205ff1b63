package mintport

import (
	"errors"

	"github.com/mintport/mintport/date"
)

// ErrNoHistory is returned when a monthly series is too empty to anchor a
// history interval. Retrying does not help; there is simply nothing to export.
var ErrNoHistory = errors.New("mintport: unable to determine start of account history")

// ResolveHistoryInterval computes the date interval over which daily balances
// should be fetched, given the account's all-time monthly series.
//
// The interval starts on the first day of the first reported month. It ends
// one month past the last month with a nonzero balance: the API has been
// observed to report daily activity days into the first month whose monthly
// balance is zero, so one extra month is fetched as a safety margin. The end
// is clamped to today because monthly data occasionally implies a future end
// date. For an all-zero series the margin still applies, so the interval
// spans the first two months.
func ResolveHistoryInterval(monthly []TrendEntry) (date.Range, error) {
	return resolveHistoryIntervalAt(monthly, date.Today())
}

func resolveHistoryIntervalAt(monthly []TrendEntry, today date.Date) (date.Range, error) {
	if len(monthly) == 0 || monthly[0].Date.IsZero() {
		return date.Range{}, ErrNoHistory
	}
	start := monthly[0].Date.StartOfMonth()

	// scan backward over trailing zero months to find the last nonzero one
	var lastNonzeroMonth date.Date
	i := len(monthly) - 1
	for i > 0 && monthly[i].Amount == 0 {
		i--
		lastNonzeroMonth = monthly[i].Date
	}

	end := today
	if !lastNonzeroMonth.IsZero() {
		provisional := lastNonzeroMonth.StartOfMonth().AddMonth(1).EndOfMonth()
		end = date.Min(provisional, today)
	}
	return date.Range{From: start, To: end}, nil
}
