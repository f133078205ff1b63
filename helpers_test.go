package mintport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mintport/mintport/date"
)

// doerFunc adapts a function to the Doer interface.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func jsonResponse(status int, v any) *http.Response {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return textResponse(status, string(raw))
}

// staticCreds is a CredentialSource with a fixed key and an invalidation
// counter.
type staticCreds struct {
	key         string
	mu          sync.Mutex
	invalidated int
}

func (s *staticCreds) Credential(context.Context) (string, error) { return s.key, nil }

func (s *staticCreds) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
	return nil
}

// fakeAPI emulates the vendor endpoints the exporter talks to.
type fakeAPI struct {
	mu sync.Mutex

	accounts []Account
	// monthly balance series per account, served for monthlyReport only
	monthly       map[string][]TrendEntry
	monthlyReport map[string]ReportType
	// accounts whose daily window fetches always fail
	failDaily map[string]bool
	// trend series served for all-time queries without an account filter
	trendMonthly []TrendEntry

	trendRequests int
	dailyDelay    func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		monthly:       map[string][]TrendEntry{},
		monthlyReport: map[string]ReportType{},
		failDaily:     map[string]bool{},
	}
}

func (f *fakeAPI) client() *Client {
	return NewClient(&staticCreds{key: "test-key"}, ClientConfig{HTTP: doerFunc(f.do)})
}

func (f *fakeAPI) do(req *http.Request) (*http.Response, error) {
	switch {
	case req.Method == http.MethodGet && strings.HasPrefix(req.URL.Path, "/pfm/v1/accounts"):
		f.mu.Lock()
		defer f.mu.Unlock()
		return jsonResponse(200, map[string]any{"Account": f.accounts}), nil
	case req.Method == http.MethodPost && req.URL.Path == "/pfm/v1/trends":
		return f.trends(req)
	default:
		return textResponse(404, "not found"), nil
	}
}

func (f *fakeAPI) trends(req *http.Request) (*http.Response, error) {
	var q trendsRequest
	if err := json.NewDecoder(req.Body).Decode(&q); err != nil {
		return textResponse(400, err.Error()), nil
	}
	f.mu.Lock()
	f.trendRequests++
	delay := f.dailyDelay
	f.mu.Unlock()

	accountID := ""
	if len(q.SearchFilters) > 0 && len(q.SearchFilters[0].Filters) > 0 {
		accountID = q.SearchFilters[0].Filters[0].AccountID
	}

	if q.DateFilter.Type == string(FilterAllTime) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if accountID == "" {
			return jsonResponse(200, map[string]any{"Trend": f.trendMonthly}), nil
		}
		if f.monthlyReport[accountID] != q.ReportView.Type {
			// the vendor omits the series when the report type does not match
			return jsonResponse(200, map[string]any{}), nil
		}
		return jsonResponse(200, map[string]any{"Trend": f.monthly[accountID]}), nil
	}

	// custom range: daily balances
	if delay != nil {
		delay()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDaily[accountID] {
		return textResponse(500, "internal error"), nil
	}
	from, err := date.Parse(q.DateFilter.StartDate)
	if err != nil {
		return textResponse(400, err.Error()), nil
	}
	to, err := date.Parse(q.DateFilter.EndDate)
	if err != nil {
		return textResponse(400, err.Error()), nil
	}
	seriesType := SeriesAsset
	if q.ReportView.Type == DebtsTime {
		seriesType = SeriesDebt
	}
	var entries []TrendEntry
	for _, day := range (date.Range{From: from, To: to}).Dates() {
		entries = append(entries, TrendEntry{Date: day, Amount: 1, Type: seriesType})
	}
	return jsonResponse(200, map[string]any{"Trend": entries}), nil
}

func entry(day string, amount float64, t SeriesType) TrendEntry {
	return TrendEntry{Date: date.MustParse(day), Amount: amount, Type: t}
}
