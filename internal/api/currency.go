package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/gobank/pkg/model"
)

// ExchangeRate quotes a conversion between two currencies.
func (c *Client) ExchangeRate(ctx context.Context, from, to string, amount float64) (*model.ExchangeRate, error) {
	q := url.Values{
		"fromCurrency": {from},
		"toCurrency":   {to},
		"amount":       {strconv.FormatFloat(amount, 'f', -1, 64)},
	}
	var rate model.ExchangeRate
	if err := c.do(ctx, http.MethodGet, "/currency/exchange-rate", q, nil, &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}
