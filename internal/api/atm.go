package api

import (
	"context"
	"net/http"

	"github.com/me/gobank/pkg/model"
)

// Deposit performs an ATM deposit.
func (c *Client) Deposit(ctx context.Context, req model.ATMRequest) (*model.ATMResult, error) {
	var result model.ATMResult
	if err := c.do(ctx, http.MethodPost, "/atm/deposit", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Withdraw performs an ATM withdrawal.
func (c *Client) Withdraw(ctx context.Context, req model.ATMRequest) (*model.ATMResult, error) {
	var result model.ATMResult
	if err := c.do(ctx, http.MethodPost, "/atm/withdraw", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
