package mintport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mintport/mintport/async"
)

// MaxTransactionsPerDownload is the most transactions the download endpoint
// returns in one CSV page, whether by design or by bug. Larger histories are
// fetched page by page and stitched back together.
const MaxTransactionsPerDownload = 10000

const dateSortDescending = "DATE_DESCENDING"

// transactionRetryDelay spaces transaction page retries out; the download
// endpoint is noticeably less tolerant of rapid retries than the trends one.
const transactionRetryDelay = 500 * time.Millisecond

type transactionSearchRequest struct {
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchFilters []FilterClause `json:"searchFilters,omitempty"`
	DateFilter    dateFilter     `json:"dateFilter"`
	Sort          string         `json:"sort"`
}

// FetchTransactionCount returns the total number of transactions in the
// user's history.
func (c *Client) FetchTransactionCount(ctx context.Context) (int, error) {
	var resp struct {
		MetaData struct {
			TotalSize int `json:"totalSize"`
		} `json:"metaData"`
	}
	req := transactionSearchRequest{
		Limit:      50,
		DateFilter: dateFilterAllTime,
		Sort:       dateSortDescending,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/pfm/v1/transactions/search", req, &resp); err != nil {
		return 0, err
	}
	return resp.MetaData.TotalSize, nil
}

// DownloadTransactionsPage fetches one CSV page of the transaction history,
// newest first. A limit of zero means the endpoint maximum.
func (c *Client) DownloadTransactionsPage(ctx context.Context, offset, limit int) (string, error) {
	if limit <= 0 {
		limit = MaxTransactionsPerDownload
	}
	req := transactionSearchRequest{
		Limit:         limit,
		Offset:        offset,
		SearchFilters: []FilterClause{},
		DateFilter:    dateFilterAllTime,
		Sort:          dateSortDescending,
	}
	return c.doText(ctx, http.MethodPost, "/pfm/v1/transactions/search/download", req)
}

// DownloadAllTransactions fetches the complete transaction history as one CSV
// document, fanning the pages out through the rate-limited runner.
func (e *Exporter) DownloadAllTransactions(ctx context.Context) (string, error) {
	total, err := async.WithRetry(ctx, e.retry, func(ctx context.Context) (int, error) {
		return e.client.FetchTransactionCount(ctx)
	})
	if err != nil {
		return "", err
	}

	pageCount := (total + MaxTransactionsPerDownload - 1) / MaxTransactionsPerDownload
	retry := e.retry
	retry.Delay = transactionRetryDelay

	ops := make([]func(context.Context) (string, error), pageCount)
	for i := range ops {
		offset := i * MaxTransactionsPerDownload
		ops[i] = func(ctx context.Context) (string, error) {
			return async.WithRetry(ctx, retry, func(ctx context.Context) (string, error) {
				return e.client.DownloadTransactionsPage(ctx, offset, MaxTransactionsPerDownload)
			})
		}
	}
	pages, err := async.Run(ctx, e.rate, ops)
	if err != nil {
		return "", err
	}
	return ConcatenateCSVPages(pages), nil
}

// ConcatenateCSVPages joins CSV pages into one document, dropping the header
// row of every page but the first.
func ConcatenateCSVPages(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			if _, rest, found := strings.Cut(page, "\n"); found {
				page = rest
			} else {
				page = ""
			}
		}
		b.WriteString(page)
	}
	return b.String()
}
