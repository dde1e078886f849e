// Package atm is the single-shot sibling of the transfer workflow: a
// converted limit snapshot, the four-rule amount validation, and one
// deposit or withdraw call.
package atm

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/limits"
	"github.com/me/gobank/internal/rates"
	"github.com/me/gobank/pkg/model"
)

// Kind selects the ATM operation.
type Kind int

const (
	Deposit Kind = iota
	Withdraw
)

func (k Kind) String() string {
	if k == Withdraw {
		return "withdraw"
	}
	return "deposit"
}

// ErrNoAccount rejects operations before an account is selected.
var ErrNoAccount = errors.New("no account selected")

// ErrInvalidAmount rejects a submit while amount validation fails.
var ErrInvalidAmount = errors.New("amount is not valid")

// API is the slice of the gateway the workflow needs.
type API interface {
	Deposit(ctx context.Context, req model.ATMRequest) (*model.ATMResult, error)
	Withdraw(ctx context.Context, req model.ATMRequest) (*model.ATMResult, error)
}

// AccountSource refreshes accounts after a successful operation and
// resolves the fresh copy of the selected account.
type AccountSource interface {
	Find(accountNumber string) *model.Account
	Refresh(ctx context.Context) error
}

// Workflow drives one ATM interaction.
type Workflow struct {
	api      API
	rates    *rates.Service
	accounts AccountSource
	logger   *slog.Logger

	mu        sync.Mutex
	account   *model.Account
	kind      Kind
	snapshot  limits.Snapshot
	amount    float64
	amountErr error
	errMsg    string
	loading   bool
}

// New creates an ATM workflow.
func New(a API, rs *rates.Service, accounts AccountSource, logger *slog.Logger) *Workflow {
	return &Workflow{
		api:      a,
		rates:    rs,
		accounts: accounts,
		logger:   logger.With("component", "atm"),
	}
}

// SelectAccount points the workflow at an account and recomputes the
// currency-converted limit snapshot (fixed EUR defaults converted into the
// account's currency).
func (w *Workflow) SelectAccount(ctx context.Context, account *model.Account) {
	snapshot := limits.SnapshotFor(ctx, w.rates, account.Currency)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.account = account
	w.snapshot = snapshot
	w.errMsg = ""
	w.validateLocked()
}

// SetKind switches between deposit and withdrawal and revalidates.
func (w *Workflow) SetKind(kind Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.kind = kind
	w.validateLocked()
}

// SetAmount updates the amount and revalidates.
func (w *Workflow) SetAmount(amount float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.amount = amount
	w.validateLocked()
}

// validateLocked applies the four amount rules adapted per kind: a
// withdrawal is bounded by the balance and the withdrawal caps, a deposit
// only by the deposit caps. Callers hold w.mu.
func (w *Workflow) validateLocked() {
	if w.account == nil || w.amount == 0 {
		w.amountErr = nil
		return
	}

	if w.kind == Withdraw {
		w.amountErr = limits.CheckAmount(
			w.amount,
			w.account.Balance,
			minPositive(w.snapshot.SingleWithdrawal, w.account.WithdrawalLimit),
			minPositive(w.snapshot.DailyWithdrawal, w.account.DailyWithdrawalLimit),
			w.account.WithdrawalUsedToday,
		)
		return
	}

	w.amountErr = limits.CheckAmount(
		w.amount,
		limits.Unlimited,
		w.snapshot.SingleDeposit,
		w.snapshot.DailyDeposit,
		0,
	)
}

// minPositive picks the tighter of two caps, ignoring absent (zero) ones.
func minPositive(a, b float64) float64 {
	if a <= 0 {
		return b
	}
	if b <= 0 || a < b {
		return a
	}
	return b
}

// Submit performs the deposit or withdrawal. On success the account and
// transaction data are refetched and the selected account is re-resolved
// from the fresh list, so limit-usage fields reflect the server's
// post-transaction state rather than a local guess.
func (w *Workflow) Submit(ctx context.Context) (*model.ATMResult, error) {
	w.mu.Lock()
	if w.account == nil {
		w.mu.Unlock()
		return nil, ErrNoAccount
	}
	if w.amountErr != nil || w.amount <= 0 {
		w.mu.Unlock()
		return nil, ErrInvalidAmount
	}
	req := model.ATMRequest{AccountNumber: w.account.AccountNumber, Amount: w.amount}
	kind := w.kind
	w.errMsg = ""
	w.loading = true
	w.mu.Unlock()

	var (
		result *model.ATMResult
		err    error
	)
	if kind == Withdraw {
		result, err = w.api.Withdraw(ctx, req)
	} else {
		result, err = w.api.Deposit(ctx, req)
	}

	if err != nil {
		w.mu.Lock()
		w.errMsg = failureMessage(err)
		w.loading = false
		w.mu.Unlock()
		return nil, err
	}

	if rerr := w.accounts.Refresh(ctx); rerr != nil {
		w.logger.Warn("account refresh after atm operation failed", "err", rerr)
	}

	w.mu.Lock()
	if fresh := w.accounts.Find(req.AccountNumber); fresh != nil {
		w.account = fresh
	}
	w.amount = 0
	w.loading = false
	w.mu.Unlock()

	w.logger.Info("atm operation complete", "kind", kind.String(),
		"account", req.AccountNumber, "amount", req.Amount)
	return result, nil
}

// failureMessage maps submission errors to user-facing wording.
func failureMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Status == 422 {
			return "Insufficient funds or ATM limit exceeded."
		}
		if se.Message != "" {
			return se.Message
		}
	}
	if api.IsTransport(err) {
		return "Could not reach the bank. Check your connection and try again."
	}
	return "Operation failed. Please try again."
}

// Account returns the selected account, or nil.
func (w *Workflow) Account() *model.Account {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account
}

// Snapshot returns the current converted limit snapshot.
func (w *Workflow) Snapshot() limits.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

// AmountError returns the first violated amount rule, or nil.
func (w *Workflow) AmountError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amountErr
}

// ErrorMessage returns the user-facing failure text ("" if none).
func (w *Workflow) ErrorMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// Loading reports whether a submit is in flight.
func (w *Workflow) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}
