package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/gobank/pkg/model"
)

// AllAccounts lists the authenticated user's accounts.
func (c *Client) AllAccounts(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := c.do(ctx, http.MethodGet, "/account/getall", nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// AccountDetails fetches a single account by number. A 404 surfaces as a
// *StatusError; callers that treat "unknown account" as a valid external
// recipient check IsNotFound.
func (c *Client) AccountDetails(ctx context.Context, accountNumber string) (*model.Account, error) {
	var account model.Account
	if err := c.do(ctx, http.MethodGet, "/account/details/"+url.PathEscape(accountNumber), nil, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SearchAccounts finds recipient candidates by name or number fragment.
func (c *Client) SearchAccounts(ctx context.Context, term string) ([]model.AccountSummary, error) {
	q := url.Values{"term": {term}}
	var results []model.AccountSummary
	if err := c.do(ctx, http.MethodGet, "/account/search", q, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateLimits changes an account's transfer/withdrawal caps (back-office).
func (c *Client) UpdateLimits(ctx context.Context, update model.LimitsUpdate) error {
	return c.do(ctx, http.MethodPut, "/account/limits", nil, update, nil)
}

// CreateAccount opens a new account for a customer (back-office).
func (c *Client) CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	var account model.Account
	if err := c.do(ctx, http.MethodPost, "/account/create", nil, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DisableAccount deactivates an account (back-office).
func (c *Client) DisableAccount(ctx context.Context, accountNumber string) error {
	return c.do(ctx, http.MethodPut, "/account/disable/"+url.PathEscape(accountNumber), nil, nil, nil)
}
