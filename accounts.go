package mintport

import (
	"context"
	"fmt"
	"net/http"
	"slices"
)

// AccountCategory splits account types into the two halves of a net-worth
// report.
type AccountCategory string

const (
	CategoryAsset AccountCategory = "ASSET"
	CategoryDebt  AccountCategory = "DEBT"
)

// AccountType is the closed set of account types the vendor reports.
type AccountType string

const (
	BankAccount          AccountType = "BankAccount"
	CashAccount          AccountType = "CashAccount"
	CreditAccount        AccountType = "CreditAccount"
	InsuranceAccount     AccountType = "InsuranceAccount"
	InvestmentAccount    AccountType = "InvestmentAccount"
	LoanAccount          AccountType = "LoanAccount"
	RealEstateAccount    AccountType = "RealEstateAccount"
	VehicleAccount       AccountType = "VehicleAccount"
	OtherPropertyAccount AccountType = "OtherPropertyAccount"
)

// accountCategoryByType maps every known account type to its category.
var accountCategoryByType = map[AccountType]AccountCategory{
	BankAccount:          CategoryAsset,
	CashAccount:          CategoryAsset,
	CreditAccount:        CategoryDebt,
	InsuranceAccount:     CategoryAsset,
	InvestmentAccount:    CategoryAsset,
	LoanAccount:          CategoryDebt,
	RealEstateAccount:    CategoryAsset,
	VehicleAccount:       CategoryAsset,
	OtherPropertyAccount: CategoryAsset,
}

// PropertyAccountTypes are physical-property accounts. They hold value but
// never cash flow, so income-style reports exclude them.
var PropertyAccountTypes = []AccountType{
	RealEstateAccount,
	VehicleAccount,
	OtherPropertyAccount,
}

// Category returns the asset/debt category of the account type. ok is false
// for types outside the known set.
func (t AccountType) Category() (category AccountCategory, ok bool) {
	category, ok = accountCategoryByType[t]
	return category, ok
}

// Account is one account visible to the authenticated user.
type Account struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	InstitutionName string      `json:"fiName"`
	Type            AccountType `json:"type"`
}

type accountsResponse struct {
	Account []Account `json:"Account"`
}

// FetchAccounts lists all accounts of the authenticated user. A limit of zero
// means the vendor maximum, which comfortably covers a single user, so one
// page is enough.
func (c *Client) FetchAccounts(ctx context.Context, offset, limit int) ([]Account, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	var resp accountsResponse
	path := fmt.Sprintf("/pfm/v1/accounts?offset=%d&limit=%d", offset, limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Account, nil
}

// TrendAccountFilter returns the account-type inclusion rule for a trend
// report. Asset and debt reports keep their own category, net worth keeps
// everything, and cash-flow reports keep accounts money moves through:
// property and insurance accounts are excluded, and cash accounts are
// excluded as soon as the user deselected anything (the vendor UI does the
// same silently).
func TrendAccountFilter(trend TrendState) func(AccountType) bool {
	switch trend.ReportType {
	case AssetsTime:
		return func(t AccountType) bool {
			category, ok := t.Category()
			return ok && category == CategoryAsset
		}
	case DebtsTime:
		return func(t AccountType) bool {
			category, ok := t.Category()
			return ok && category == CategoryDebt
		}
	case IncomeTime, SpendingTime, NetIncome:
		return func(t AccountType) bool {
			if t == InsuranceAccount || slices.Contains(PropertyAccountTypes, t) {
				return false
			}
			if t == CashAccount && len(trend.DeselectedAccountIDs) > 0 {
				return false
			}
			_, ok := t.Category()
			return ok
		}
	default:
		return func(AccountType) bool { return true }
	}
}

// FetchTrendAccounts lists the accounts that participate in the given trend:
// accounts of an eligible type minus explicit deselections.
func (c *Client) FetchTrendAccounts(ctx context.Context, trend TrendState) ([]Account, error) {
	accounts, err := c.FetchAccounts(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	include := TrendAccountFilter(trend)
	kept := accounts[:0:0]
	for _, a := range accounts {
		if !include(a.Type) {
			continue
		}
		if slices.Contains(trend.DeselectedAccountIDs, a.ID) {
			continue
		}
		kept = append(kept, a)
	}
	return kept, nil
}
