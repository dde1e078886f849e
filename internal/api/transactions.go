package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/gobank/pkg/model"
)

// AllTransactions lists every transaction visible to the caller.
func (c *Client) AllTransactions(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction/getall", nil, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// FilterTransactions lists transactions matching the filter server-side.
func (c *Client) FilterTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction/filter", filter.Query(), nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// AccountTransactions lists one account's transactions.
func (c *Client) AccountTransactions(ctx context.Context, accountNumber string) ([]model.Transaction, error) {
	var txs []model.Transaction
	path := "/transaction/byaccount/" + url.PathEscape(accountNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// AccountTransactionsFiltered lists one account's transactions matching the
// filter server-side.
func (c *Client) AccountTransactionsFiltered(ctx context.Context, accountNumber string, filter model.TransactionFilter) ([]model.Transaction, error) {
	var txs []model.Transaction
	path := "/transaction/byaccount/" + url.PathEscape(accountNumber) + "/filter"
	if err := c.do(ctx, http.MethodGet, path, filter.Query(), nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// TransferPreview fetches the non-binding quote for a draft transfer,
// including currency-exchange terms when source and destination currencies
// differ.
func (c *Client) TransferPreview(ctx context.Context, req model.TransferRequest) (*model.TransferPreview, error) {
	var preview model.TransferPreview
	if err := c.do(ctx, http.MethodPost, "/transaction/transfer/preview", nil, req, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Transfer submits a transfer for execution.
func (c *Client) Transfer(ctx context.Context, req model.TransferRequest) (*model.TransferResult, error) {
	var result model.TransferResult
	if err := c.do(ctx, http.MethodPost, "/transaction/transfer", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
