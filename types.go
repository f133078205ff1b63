package mintport

import "github.com/mintport/mintport/date"

// ReportType identifies a trends report served by the vendor API.
type ReportType string

const (
	AssetsTime   ReportType = "ASSETS_TIME"
	DebtsTime    ReportType = "DEBTS_TIME"
	SpendingTime ReportType = "SPENDING_TIME"
	IncomeTime   ReportType = "INCOME_TIME"
	NetIncome    ReportType = "NET_INCOME"
	NetWorth     ReportType = "NET_WORTH"
)

// IsSupportedTrendReport reports whether daily balances can be generated for
// the given report type. Reports grouped by tag, category or type cannot.
func IsSupportedTrendReport(t ReportType) bool {
	switch t {
	case AssetsTime, DebtsTime, IncomeTime, SpendingTime, NetIncome, NetWorth:
		return true
	default:
		return false
	}
}

// SeriesType tags one half of a paired report. It is assigned by which report
// query produced the entry, never derived from the amount's value.
type SeriesType string

const (
	SeriesAsset   SeriesType = "ASSET"
	SeriesDebt    SeriesType = "DEBT"
	SeriesIncome  SeriesType = "INCOME"
	SeriesExpense SeriesType = "EXPENSE"
)

// negative reports whether the series is the negative half of a pair.
// Amounts of negative halves are sign-normalized by the report client, so
// nothing above that layer re-derives sign from the tag.
func (s SeriesType) negative() bool { return s == SeriesDebt || s == SeriesExpense }

// TrendEntry is one balance data point of a trends report.
type TrendEntry struct {
	Date   date.Date  `json:"date"`
	Amount float64    `json:"amount"`
	Type   SeriesType `json:"type"`
}

// FixedDateFilter is a named date range understood by the vendor API.
type FixedDateFilter string

const (
	FilterLast7Days    FixedDateFilter = "LAST_7_DAYS"
	FilterLast14Days   FixedDateFilter = "LAST_14_DAYS"
	FilterThisMonth    FixedDateFilter = "THIS_MONTH"
	FilterLastMonth    FixedDateFilter = "LAST_MONTH"
	FilterLast3Months  FixedDateFilter = "LAST_3_MONTHS"
	FilterLast6Months  FixedDateFilter = "LAST_6_MONTHS"
	FilterLast12Months FixedDateFilter = "LAST_12_MONTHS"
	FilterThisYear     FixedDateFilter = "THIS_YEAR"
	FilterLastYear     FixedDateFilter = "LAST_YEAR"
	FilterAllTime      FixedDateFilter = "ALL_TIME"
	FilterCustom       FixedDateFilter = "CUSTOM"
)

// TrendState describes the trend selection a caller wants daily balances for.
// It mirrors what the host page's trend screen exposes; reading that screen is
// the caller's concern.
type TrendState struct {
	ReportType ReportType
	// AccountIDs restricts the report to specific accounts. Empty means all
	// accounts eligible for the report type.
	AccountIDs []string
	// DeselectedAccountIDs lists accounts the user explicitly removed.
	DeselectedAccountIDs []string
	FixedFilter          FixedDateFilter
	FromDate             string
	ToDate               string
}

// Vendor limits, empirically derived. They are defaults for the matching
// config fields rather than hard-coded behavior: changing them changes
// request counts against the live API.
const (
	// DefaultMaxWindowDays is the widest date range for which the trends
	// endpoint still returns daily granularity.
	DefaultMaxWindowDays = 43
	// DefaultPageLimit is the vendor's maximum (and default) page size.
	DefaultPageLimit = 1000
)
