package mintport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mintport/mintport/async"
	"github.com/mintport/mintport/date"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Progress reports how far a multi-account balance run has advanced. The
// percentage is computed against the total window count of all accounts, so
// it moves smoothly even though accounts are processed one at a time.
type Progress struct {
	CompletedAccounts  int
	TotalAccounts      int
	CompletePercentage float64
}

// ProgressFunc receives progress updates. It may be called often; a UI should
// throttle on its side. Successive calls within one run never report a lower
// percentage.
type ProgressFunc func(Progress)

// TrendProgressFunc receives progress for a single-trend run.
type TrendProgressFunc func(completePercentage float64)

// AccountBalances is the per-account outcome of a balance run. A failed
// account has no balances and Succeeded false; it never aborts its siblings.
type AccountBalances struct {
	AccountName string
	Balances    []TrendEntry
	Succeeded   bool
}

// ExporterConfig configures an Exporter. The zero value uses the vendor
// defaults.
type ExporterConfig struct {
	// MaxWindowDays bounds each daily-trends request. Defaults to
	// DefaultMaxWindowDays.
	MaxWindowDays int
	// Rate paces the per-window requests.
	Rate async.RunOptions
	// Retry is applied to every network call.
	Retry async.RetryOptions
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Exporter coordinates balance-history runs: it resolves each target's fetch
// interval, splits it into windows, fetches the windows under rate limits
// with retry, and reassembles the results.
type Exporter struct {
	client        *Client
	maxWindowDays int
	rate          async.RunOptions
	retry         async.RetryOptions
	log           *zap.Logger

	// trendFlight coalesces concurrent trend requests: a second request
	// joins the in-flight fetch instead of duplicating its network calls.
	trendFlight singleflight.Group
}

// NewExporter returns an Exporter using client for all API access.
func NewExporter(client *Client, cfg ExporterConfig) *Exporter {
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = DefaultMaxWindowDays
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Exporter{
		client:        client,
		maxWindowDays: cfg.MaxWindowDays,
		rate:          cfg.Rate,
		retry:         cfg.Retry,
		log:           cfg.Logger,
	}
}

// accountPlan is the fetch plan for one account: the windows to request and
// the report type that matched the account. A plan with no windows marks an
// account whose history could not be determined; it is reported as failed
// without blocking the run.
type accountPlan struct {
	account    Account
	reportType ReportType
	windows    []date.Range
}

// FetchAllAccountBalances fetches the complete daily balance history of every
// account visible to the authenticated user.
//
// Accounts are planned concurrently (one cheap monthly request each) and then
// fetched strictly one account at a time: the vendor rate-limits per
// credential across all requests, so cross-account concurrency is unsafe.
// Within an account, windows are fetched concurrently under the configured
// rate. onProgress, if non-nil, observes every completed window.
func (e *Exporter) FetchAllAccountBalances(ctx context.Context, onProgress ProgressFunc) ([]AccountBalances, error) {
	log := e.log.With(zap.String("run", uuid.NewString()))

	accounts, err := async.WithRetry(ctx, e.retry, func(ctx context.Context) ([]Account, error) {
		return e.client.FetchAccounts(ctx, 0, 0)
	})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	log.Info("starting balance export", zap.Int("accounts", len(accounts)))

	// plan all accounts first so progress can be computed against the total
	// window count of the whole run
	ops := make([]func(context.Context) (accountPlan, error), len(accounts))
	for i, account := range accounts {
		account := account
		ops[i] = func(ctx context.Context) (accountPlan, error) {
			plan := accountPlan{account: account}
			windows, reportType, err := e.planAccountHistory(ctx, account.ID)
			if err != nil {
				// zero windows; the account is reported failed later
				log.Warn("unable to determine account history",
					zap.String("account", account.ID), zap.Error(err))
				return plan, nil
			}
			plan.windows, plan.reportType = windows, reportType
			return plan, nil
		}
	}
	plans, err := async.Run(ctx, e.rate, ops)
	if err != nil {
		return nil, err
	}

	totalUnits := 0
	for _, plan := range plans {
		totalUnits += len(plan.windows)
	}

	results := make([]AccountBalances, 0, len(plans))
	completedUnits := 0
	for i, plan := range plans {
		i := i
		balances, err := e.fetchWindows(ctx, plan.reportType,
			[]FilterClause{AccountIDFilter(plan.account.ID)}, plan.windows,
			func(done int) {
				if onProgress != nil {
					onProgress(Progress{
						CompletedAccounts:  i,
						TotalAccounts:      len(plans),
						CompletePercentage: percentage(completedUnits+done, totalUnits),
					})
				}
			})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("account balance fetch failed",
				zap.String("account", plan.account.ID),
				zap.Int("windows", len(plan.windows)),
				zap.Error(err))
			results = append(results, AccountBalances{AccountName: plan.account.Name})
		} else {
			results = append(results, AccountBalances{
				AccountName: plan.account.Name,
				Balances:    balances,
				Succeeded:   true,
			})
		}
		// accounts run sequentially, so every window of this account is
		// accounted for before the next account starts
		completedUnits += len(plan.windows)
	}

	log.Info("balance export finished",
		zap.Int("accounts", len(results)),
		zap.Int("windows", totalUnits))
	return results, nil
}

// planAccountHistory resolves the account's history interval from its monthly
// series and splits it into request windows.
func (e *Exporter) planAccountHistory(ctx context.Context, accountID string) ([]date.Range, ReportType, error) {
	monthly, err := async.WithRetry(ctx, e.retry,
		func(ctx context.Context) (monthlyBalances, error) {
			entries, rt, err := e.client.FetchMonthlyBalancesForAccount(ctx, accountID)
			return monthlyBalances{entries, rt}, err
		})
	if err != nil {
		return nil, "", err
	}
	interval, err := ResolveHistoryInterval(monthly.entries)
	if err != nil {
		return nil, "", err
	}
	return interval.SplitDays(e.maxWindowDays), monthly.reportType, nil
}

type monthlyBalances struct {
	entries    []TrendEntry
	reportType ReportType
}

// fetchWindows fetches every window concurrently under the rate limit, each
// request wrapped in retry, and concatenates the results in window order
// regardless of completion order. onUnit observes the count of completed
// windows; calls are serialized so counts arrive in increasing order.
func (e *Exporter) fetchWindows(ctx context.Context, reportType ReportType, filters []FilterClause, windows []date.Range, onUnit func(done int)) ([]TrendEntry, error) {
	if reportType == "" {
		return nil, errors.New("mintport: invalid report type")
	}

	var mu sync.Mutex
	done := 0

	ops := make([]func(context.Context) ([]TrendEntry, error), len(windows))
	for i, window := range windows {
		window := window
		ops[i] = func(ctx context.Context) ([]TrendEntry, error) {
			entries, err := async.WithRetry(ctx, e.retry, func(ctx context.Context) ([]TrendEntry, error) {
				return e.client.FetchDailyTrends(ctx, reportType, filters, window)
			})
			if err != nil {
				return nil, err
			}
			if onUnit != nil {
				mu.Lock()
				done++
				onUnit(done)
				mu.Unlock()
			}
			return entries, nil
		}
	}

	perWindow, err := async.Run(ctx, e.rate, ops)
	if err != nil {
		return nil, err
	}
	var balances []TrendEntry
	for _, entries := range perWindow {
		balances = append(balances, entries...)
	}
	return balances, nil
}

// FetchTrendDailyBalances fetches daily balances for one trend selection.
//
// A request made while another is already in flight joins that run and
// returns its result instead of issuing duplicate network calls; the gate is
// "a fetch is running", not the selection's identity. For all-time trends the
// declared start date is ignored and re-derived from the data, because the
// vendor's reported all-time range can be years too early.
func (e *Exporter) FetchTrendDailyBalances(ctx context.Context, trend TrendState, onProgress TrendProgressFunc) ([]TrendEntry, error) {
	v, err, _ := e.trendFlight.Do("trend", func() (any, error) {
		return e.fetchTrendDailyBalances(ctx, trend, onProgress)
	})
	if err != nil {
		return nil, err
	}
	return v.([]TrendEntry), nil
}

func (e *Exporter) fetchTrendDailyBalances(ctx context.Context, trend TrendState, onProgress TrendProgressFunc) ([]TrendEntry, error) {
	if !IsSupportedTrendReport(trend.ReportType) {
		return nil, fmt.Errorf("mintport: unsupported trend report %q", trend.ReportType)
	}

	filters := make([]FilterClause, 0, len(trend.AccountIDs))
	for _, id := range trend.AccountIDs {
		filters = append(filters, AccountIDFilter(id))
	}

	interval, err := e.resolveTrendInterval(ctx, trend, filters)
	if err != nil {
		return nil, err
	}
	windows := interval.SplitDays(e.maxWindowDays)

	e.log.Info("starting trend export",
		zap.String("report", string(trend.ReportType)),
		zap.Stringer("interval", interval),
		zap.Int("windows", len(windows)))

	return e.fetchWindows(ctx, trend.ReportType, filters, windows, func(done int) {
		if onProgress != nil {
			onProgress(percentage(done, len(windows)))
		}
	})
}

// resolveTrendInterval turns the trend's declared date range into the range
// to fetch. All-time starts are recomputed from the monthly series.
func (e *Exporter) resolveTrendInterval(ctx context.Context, trend TrendState, filters []FilterClause) (date.Range, error) {
	if trend.FixedFilter == FilterAllTime {
		monthly, err := async.WithRetry(ctx, e.retry, func(ctx context.Context) ([]TrendEntry, error) {
			entries, present, err := e.client.FetchTrends(ctx, TrendQuery{
				ReportType: trend.ReportType,
				Filters:    filters,
			})
			if err != nil {
				return nil, err
			}
			if !present {
				return nil, ErrNoHistory
			}
			return entries, nil
		})
		if err != nil {
			return date.Range{}, err
		}
		return ResolveHistoryInterval(monthly)
	}

	from, err := date.Parse(trend.FromDate)
	if err != nil {
		return date.Range{}, fmt.Errorf("mintport: invalid trend start date: %w", err)
	}
	to, err := date.Parse(trend.ToDate)
	if err != nil {
		return date.Range{}, fmt.Errorf("mintport: invalid trend end date: %w", err)
	}
	return date.Range{From: from, To: date.Min(to, date.Today())}, nil
}

// percentage avoids the float artifacts a plain division can leave in a
// value that is displayed directly (e.g. 7/70 rendering as 0.09999999...).
func percentage(done, total int) float64 {
	if total == 0 {
		return 0
	}
	pct, _ := decimal.NewFromInt(int64(done)).
		DivRound(decimal.NewFromInt(int64(total)), 6).Float64()
	return pct
}

// Status is the coarse outcome a UI derives its screen from.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "error"
)

// Summarize reduces a run's results to a UI status and the count of failed
// accounts. Partial success is success; the failed count is surfaced as a
// plain "N accounts failed to download" style figure.
func Summarize(results []AccountBalances) (Status, int) {
	failed := 0
	for _, r := range results {
		if !r.Succeeded {
			failed++
		}
	}
	if len(results) == 0 || failed == len(results) {
		return StatusFailed, failed
	}
	return StatusSuccess, failed
}
