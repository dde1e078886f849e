package model

import (
	"net/url"
	"strconv"
	"time"
)

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
)

// Transaction is a single ledger entry as reported by the remote API.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TransactionFilter narrows transaction listings. Zero-valued fields are
// ignored. The same filter drives both the server-side filter endpoint
// (via Query) and the client-side fallback.
type TransactionFilter struct {
	Type      TransactionType
	FromDate  time.Time
	ToDate    time.Time
	MinAmount float64
	MaxAmount float64
	// Counterparty matches either side of the transaction.
	Counterparty string
}

// IsZero reports whether the filter restricts nothing.
func (f TransactionFilter) IsZero() bool {
	return f.Type == "" && f.FromDate.IsZero() && f.ToDate.IsZero() &&
		f.MinAmount == 0 && f.MaxAmount == 0 && f.Counterparty == ""
}

// Query encodes the filter as the querystring the filter endpoints expect.
func (f TransactionFilter) Query() url.Values {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if !f.FromDate.IsZero() {
		q.Set("fromDate", f.FromDate.UTC().Format(time.RFC3339))
	}
	if !f.ToDate.IsZero() {
		q.Set("toDate", f.ToDate.UTC().Format(time.RFC3339))
	}
	if f.MinAmount > 0 {
		q.Set("minAmount", strconv.FormatFloat(f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount > 0 {
		q.Set("maxAmount", strconv.FormatFloat(f.MaxAmount, 'f', -1, 64))
	}
	if f.Counterparty != "" {
		q.Set("counterparty", f.Counterparty)
	}
	return q
}

// Matches reports whether a transaction passes the filter. Used by the
// client-side fallback when no server-side filter endpoint is available.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if !f.FromDate.IsZero() && tx.Timestamp.Before(f.FromDate) {
		return false
	}
	if !f.ToDate.IsZero() && tx.Timestamp.After(f.ToDate) {
		return false
	}
	if f.MinAmount > 0 && tx.Amount < f.MinAmount {
		return false
	}
	if f.MaxAmount > 0 && tx.Amount > f.MaxAmount {
		return false
	}
	if f.Counterparty != "" && tx.FromAccount != f.Counterparty && tx.ToAccount != f.Counterparty {
		return false
	}
	return true
}
