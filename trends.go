package mintport

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/mintport/mintport/date"
)

// ErrReportUnavailable is returned when no candidate report type yields a
// series for an account.
var ErrReportUnavailable = errors.New("mintport: no report type matches the account")

// monthlyReportCandidates are the report types probed, in order, to find an
// account's monthly balance series. The API does not expose whether an
// account is an asset or a debt; it simply omits the series when the report
// type does not match, so the probe tries assets first and falls through.
var monthlyReportCandidates = []ReportType{AssetsTime, DebtsTime}

// FilterClause is one search filter of a trends request.
type FilterClause struct {
	Type      string `json:"type"`
	AccountID string `json:"accountId,omitempty"`
}

// AccountIDFilter restricts a trends report to a single account.
func AccountIDFilter(accountID string) FilterClause {
	return FilterClause{Type: "AccountIdFilter", AccountID: accountID}
}

type dateFilter struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

var dateFilterAllTime = dateFilter{Type: string(FilterAllTime)}

type searchFilter struct {
	MatchAll bool           `json:"matchAll"`
	Filters  []FilterClause `json:"filters"`
}

type reportView struct {
	Type ReportType `json:"type"`
}

type trendsRequest struct {
	ReportView    reportView     `json:"reportView"`
	DateFilter    dateFilter     `json:"dateFilter"`
	SearchFilters []searchFilter `json:"searchFilters"`
	Offset        int            `json:"offset"`
	Limit         int            `json:"limit"`
}

type trendsResponse struct {
	// Trend is nil, not empty, when the report type does not apply to the
	// queried accounts.
	Trend []TrendEntry `json:"Trend"`
}

// TrendQuery describes one page of a trends report.
type TrendQuery struct {
	ReportType ReportType
	Filters    []FilterClause
	// Dates restricts the report; nil means all time.
	Dates  *date.Range
	Offset int
	// Limit of zero means the vendor maximum.
	Limit int
}

// FetchTrends issues one trends request. present is false when the vendor
// omitted the series entirely, which it does instead of returning zeros when
// the report type does not match the account.
func (c *Client) FetchTrends(ctx context.Context, q TrendQuery) (entries []TrendEntry, present bool, err error) {
	filters := q.Filters
	if filters == nil {
		filters = []FilterClause{}
	}
	req := trendsRequest{
		ReportView:    reportView{Type: q.ReportType},
		DateFilter:    dateFilterAllTime,
		SearchFilters: []searchFilter{{MatchAll: true, Filters: filters}},
		Offset:        q.Offset,
		Limit:         q.Limit,
	}
	if req.Limit <= 0 {
		req.Limit = DefaultPageLimit
	}
	if q.Dates != nil {
		req.DateFilter = dateFilter{
			Type:      string(FilterCustom),
			StartDate: q.Dates.From.String(),
			// the API rejects future end dates
			EndDate: date.Min(q.Dates.To, date.Today()).String(),
		}
	}

	var resp trendsResponse
	if err := c.doJSON(ctx, http.MethodPost, "/pfm/v1/trends", req, &resp); err != nil {
		return nil, false, err
	}
	return resp.Trend, resp.Trend != nil, nil
}

// FetchDailyTrends fetches one window of daily balances and normalizes the
// result: entries come back date-ordered, covering every day of the window
// (an absent series becomes one zero entry per day, with no series type), and
// amounts of negative series halves (debt, expense) are negated here so no
// caller ever derives sign from the series tag again.
func (c *Client) FetchDailyTrends(ctx context.Context, reportType ReportType, filters []FilterClause, window date.Range) ([]TrendEntry, error) {
	entries, present, err := c.FetchTrends(ctx, TrendQuery{
		ReportType: reportType,
		Filters:    filters,
		Dates:      &window,
	})
	if err != nil {
		return nil, err
	}
	if !present {
		days := window.Dates()
		entries = make([]TrendEntry, len(days))
		for i, day := range days {
			entries[i] = TrendEntry{Date: day}
		}
		return entries, nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	for i, entry := range entries {
		if entry.Type.negative() {
			entries[i].Amount = -entry.Amount
		}
	}
	return entries, nil
}

// FetchMonthlyBalancesForAccount fetches an account's all-time monthly
// balance series by probing monthlyReportCandidates in order, and returns the
// report type that matched. This is technically a paginated API, but the
// vendor page size covers more than 83 years of months.
func (c *Client) FetchMonthlyBalancesForAccount(ctx context.Context, accountID string) ([]TrendEntry, ReportType, error) {
	for _, reportType := range monthlyReportCandidates {
		entries, present, err := c.FetchTrends(ctx, TrendQuery{
			ReportType: reportType,
			Filters:    []FilterClause{AccountIDFilter(accountID)},
		})
		if err != nil {
			return nil, "", err
		}
		if present {
			return entries, reportType, nil
		}
	}
	return nil, "", ErrReportUnavailable
}

// FetchNetWorthBalances fetches the all-time net worth report: one ASSET and
// one DEBT entry per month.
func (c *Client) FetchNetWorthBalances(ctx context.Context, offset, limit int) ([]TrendEntry, error) {
	entries, _, err := c.FetchTrends(ctx, TrendQuery{ReportType: NetWorth, Offset: offset, Limit: limit})
	return entries, err
}
