package model

// Account is a bank account as reported by the remote API.
//
// The client never mutates balances or limits directly; the server is the
// source of truth. Daily-used counters reset server-side at midnight.
type Account struct {
	AccountNumber string  `json:"accountNumber"`
	OwnerID       string  `json:"ownerId"`
	Currency      string  `json:"currency"`
	Balance       float64 `json:"balance"`
	Active        bool    `json:"active"`

	// Per-transaction and daily caps for outgoing transfers.
	TransferLimit      float64 `json:"transferLimit"`
	DailyTransferLimit float64 `json:"dailyTransferLimit"`
	TransferUsedToday  float64 `json:"transferUsedToday"`

	// Per-transaction and daily caps for ATM withdrawals.
	WithdrawalLimit      float64 `json:"withdrawalLimit"`
	DailyWithdrawalLimit float64 `json:"dailyWithdrawalLimit"`
	WithdrawalUsedToday  float64 `json:"withdrawalUsedToday"`
}

// RemainingDailyTransfer returns today's remaining transfer headroom.
func (a *Account) RemainingDailyTransfer() float64 {
	return a.DailyTransferLimit - a.TransferUsedToday
}

// RemainingDailyWithdrawal returns today's remaining withdrawal headroom.
func (a *Account) RemainingDailyWithdrawal() float64 {
	return a.DailyWithdrawalLimit - a.WithdrawalUsedToday
}

// AccountSummary is the reduced shape returned by the recipient search
// endpoint: enough to pick a destination, nothing more.
type AccountSummary struct {
	AccountNumber string `json:"accountNumber"`
	OwnerName     string `json:"ownerName"`
	Currency      string `json:"currency"`
}

// LimitsUpdate is the back-office request to change an account's caps.
type LimitsUpdate struct {
	AccountNumber        string  `json:"accountNumber"`
	TransferLimit        float64 `json:"transferLimit"`
	DailyTransferLimit   float64 `json:"dailyTransferLimit"`
	WithdrawalLimit      float64 `json:"withdrawalLimit"`
	DailyWithdrawalLimit float64 `json:"dailyWithdrawalLimit"`
}

// CreateAccountRequest is the back-office request to open an account.
type CreateAccountRequest struct {
	OwnerID  string `json:"ownerId"`
	Currency string `json:"currency"`
}
