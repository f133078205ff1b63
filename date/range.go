package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Days returns the number of days covered by the range, boundaries included.
func (r Range) Days() int {
	days := 0
	for d := r.From; !d.After(r.To); d = d.Add(1) {
		days++
	}
	return days
}

// Dates returns every day in the range in ascending order.
func (r Range) Dates() []Date {
	var dates []Date
	for d := r.From; !d.After(r.To); d = d.Add(1) {
		dates = append(dates, d)
	}
	return dates
}

// SplitDays splits the range into consecutive sub-ranges of at most maxDays
// days each. The last sub-range may be shorter. maxDays must be positive.
func (r Range) SplitDays(maxDays int) []Range {
	if maxDays <= 0 {
		panic(fmt.Sprintf("invalid maxDays %d", maxDays))
	}
	var windows []Range
	for from := r.From; !from.After(r.To); from = from.Add(maxDays) {
		to := from.Add(maxDays - 1)
		if to.After(r.To) {
			to = r.To
		}
		windows = append(windows, Range{From: from, To: to})
	}
	return windows
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
