// Package mintport exports balance and transaction history from a Mint-style
// personal-finance service that offers no official export.
//
// The service's internal REST API is replayed with an ephemeral API key
// obtained by the caller (a CredentialSource). Balance history is only served
// at daily granularity for short date ranges, so the exporter discovers each
// account's history interval from a monthly report, splits it into API-safe
// windows, fetches the windows under rate and concurrency limits with retry,
// and reshapes the merged series into CSV.
//
// All fetched data is transient: it lives in memory for one export run and is
// never persisted by this package.
package mintport
