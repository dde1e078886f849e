// Package transfer orchestrates one inter-account transfer: recipient
// validation, local limit pre-checks, a debounced server preview fetch for
// currency-exchange quoting, and final submission.
package transfer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/debounce"
	"github.com/me/gobank/internal/limits"
	"github.com/me/gobank/pkg/model"
)

// Destination validation errors.
var (
	ErrSameAccount = errors.New("destination equals the source account")
	// ErrOwnAccountAssisted: employees may not move a customer's money
	// between the customer's own accounts from the assisted panel.
	ErrOwnAccountAssisted = errors.New("transfers between the customer's own accounts are not allowed here")
	// ErrNotReady rejects a submit while validation fails or a submit runs.
	ErrNotReady = errors.New("transfer is not ready to submit")
)

// User-facing failure messages.
const (
	msgLimitOrFunds = "Insufficient funds or transfer limit exceeded."
	msgConnection   = "Could not reach the bank. Check your connection and try again."
	msgGeneric      = "Transfer failed. Please try again."
)

// API is the slice of the gateway the workflow needs.
type API interface {
	TransferPreview(ctx context.Context, req model.TransferRequest) (*model.TransferPreview, error)
	Transfer(ctx context.Context, req model.TransferRequest) (*model.TransferResult, error)
	AccountDetails(ctx context.Context, accountNumber string) (*model.Account, error)
	SearchAccounts(ctx context.Context, term string) ([]model.AccountSummary, error)
}

// AccountSource supplies the user's own accounts and refreshes them after a
// successful transfer.
type AccountSource interface {
	Accounts() []model.Account
	Find(accountNumber string) *model.Account
	Owns(accountNumber string) bool
	Refresh(ctx context.Context) error
}

// Config tunes the workflow's timing and mode.
type Config struct {
	// PreviewDebounce is the trailing delay before a preview fetch.
	PreviewDebounce time.Duration
	// SearchDebounce is the independent delay for recipient search.
	SearchDebounce time.Duration
	// SearchMinLength gates recipient search; shorter terms clear results.
	SearchMinLength int
	// SuccessDisplay is how long the success state stays before auto-close.
	SuccessDisplay time.Duration
	// RequestTimeout bounds the background preview/search calls.
	RequestTimeout time.Duration
	// Assisted marks the employee-assisted back-office mode.
	Assisted bool
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		PreviewDebounce: 300 * time.Millisecond,
		SearchDebounce:  300 * time.Millisecond,
		SearchMinLength: 2,
		SuccessDisplay:  2 * time.Second,
		RequestTimeout:  15 * time.Second,
	}
}

// Draft is the ephemeral form state. It lives for one modal interaction and
// is discarded on close, submit, or cancel.
type Draft struct {
	Source      *model.Account
	Destination string
	Amount      float64
	Description string
}

// Workflow is the transfer state machine.
type Workflow struct {
	api      API
	accounts AccountSource
	cfg      Config
	logger   *slog.Logger

	mu    sync.Mutex
	state State
	draft Draft

	amountErr error
	destErr   error
	destOwn   bool
	preview   *model.TransferPreview
	errMsg    string

	previewDeb    *debounce.Debouncer
	searchDeb     *debounce.Debouncer
	searchResults []model.AccountSummary

	onClosed func()
}

// New creates a transfer workflow in the Idle state.
func New(a API, accounts AccountSource, cfg Config, logger *slog.Logger) *Workflow {
	return &Workflow{
		api:        a,
		accounts:   accounts,
		cfg:        cfg,
		logger:     logger.With("component", "transfer"),
		state:      StateIdle,
		previewDeb: debounce.New(cfg.PreviewDebounce),
		searchDeb:  debounce.New(cfg.SearchDebounce),
	}
}

// OnClosed installs a callback fired when the workflow auto-closes after
// success, so dependent views can refresh.
func (w *Workflow) OnClosed(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClosed = fn
}

// Begin opens the form. The source defaults to the given account, or the
// first available one when nil.
func (w *Workflow) Begin(source *model.Account) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if source == nil {
		if owned := w.accounts.Accounts(); len(owned) > 0 {
			source = &owned[0]
		}
	}

	w.state = StateEditing
	w.draft = Draft{Source: source}
	w.amountErr = nil
	w.destErr = nil
	w.destOwn = false
	w.preview = nil
	w.errMsg = ""
	w.searchResults = nil
	w.previewDeb.Bump()
	w.searchDeb.Bump()
}

// SetSource switches the source account to another of the user's own.
func (w *Workflow) SetSource(ctx context.Context, accountNumber string) {
	acct := w.accounts.Find(accountNumber)
	if acct == nil {
		return
	}

	w.mu.Lock()
	w.draft.Source = acct
	w.mu.Unlock()

	w.revalidate(ctx)
}

// SetAmount updates the amount and re-runs validation.
func (w *Workflow) SetAmount(ctx context.Context, amount float64) {
	w.mu.Lock()
	w.draft.Amount = amount
	w.mu.Unlock()

	w.revalidate(ctx)
}

// SetDestination updates the destination and re-runs validation, including
// the recipient lookup (skipped entirely when destination == source).
func (w *Workflow) SetDestination(ctx context.Context, accountNumber string) {
	w.mu.Lock()
	w.draft.Destination = accountNumber
	w.mu.Unlock()

	w.revalidate(ctx)
}

// SetDescription updates the free-text description. Descriptions do not
// affect validity or the preview.
func (w *Workflow) SetDescription(description string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Description = description
}

// revalidate runs the synchronous checks, then either schedules a debounced
// preview fetch (structurally valid draft) or falls back to Editing with no
// preview.
func (w *Workflow) revalidate(ctx context.Context) {
	w.mu.Lock()
	draft := w.draft
	w.errMsg = ""
	w.amountErr = w.checkAmount(draft)
	w.mu.Unlock()

	destErr, destOwn := w.checkDestination(ctx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()

	// The draft may have moved on while the lookup ran; stale results are
	// dropped, not merged.
	if w.draft.Destination != draft.Destination {
		return
	}
	w.destErr = destErr
	w.destOwn = destOwn

	if w.structurallyValidLocked() {
		w.state = StatePreviewPending
		w.previewDeb.Trigger(func(gen uint64) { w.fetchPreview(gen) })
		return
	}

	w.state = StateEditing
	w.preview = nil
	w.previewDeb.Bump()
}

// checkAmount applies the four ordered amount rules against the source.
func (w *Workflow) checkAmount(draft Draft) error {
	if draft.Source == nil || draft.Amount == 0 {
		return nil
	}
	s := draft.Source
	return limits.CheckAmount(draft.Amount, s.Balance, s.TransferLimit, s.DailyTransferLimit, s.TransferUsedToday)
}

// checkDestination validates the recipient. A destination equal to the
// source is rejected outright with no lookup. A lookup resolving to one of
// the user's own other accounts is informational (destOwn), unless the
// workflow runs in assisted mode, where it is a hard error. A 404 means
// "valid external recipient".
func (w *Workflow) checkDestination(ctx context.Context, draft Draft) (destErr error, destOwn bool) {
	dest := draft.Destination
	if dest == "" {
		return nil, false
	}
	if draft.Source != nil && dest == draft.Source.AccountNumber {
		return ErrSameAccount, false
	}

	if _, err := w.api.AccountDetails(ctx, dest); err != nil {
		// Unknown account or lookup trouble: treat as an external
		// recipient and let the server be the judge on submit.
		return nil, false
	}

	if w.accounts.Owns(dest) {
		if w.cfg.Assisted {
			return ErrOwnAccountAssisted, false
		}
		return nil, true
	}
	return nil, false
}

// structurallyValidLocked: non-empty destination, positive amount, and no
// outstanding field error. Callers hold w.mu.
func (w *Workflow) structurallyValidLocked() bool {
	return w.draft.Destination != "" &&
		w.draft.Amount > 0 &&
		w.amountErr == nil &&
		w.destErr == nil
}

// fetchPreview runs on the debouncer's timer goroutine. Only the latest
// generation's result is applied; preview failures silently drop back to
// Editing — the preview is advisory UI, never a blocking error.
func (w *Workflow) fetchPreview(gen uint64) {
	w.mu.Lock()
	req := w.requestLocked(false)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RequestTimeout)
	defer cancel()

	preview, err := w.api.TransferPreview(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.previewDeb.Current(gen) || w.state != StatePreviewPending {
		return
	}
	if err != nil {
		w.logger.Debug("preview fetch failed", "err", err)
		w.preview = nil
		w.state = StateEditing
		return
	}
	w.preview = preview
	w.state = StatePreviewReady
}

func (w *Workflow) requestLocked(accept bool) model.TransferRequest {
	req := model.TransferRequest{
		ToAccount:          w.draft.Destination,
		Amount:             w.draft.Amount,
		Description:        w.draft.Description,
		AcceptExchangeRate: accept,
	}
	if w.draft.Source != nil {
		req.FromAccount = w.draft.Source.AccountNumber
	}
	return req
}

// Search runs the debounced recipient search. Terms shorter than the
// minimum clear the results and cancel any pending search. Stale responses
// never overwrite a newer search's results.
func (w *Workflow) Search(term string) {
	if len(term) < w.cfg.SearchMinLength {
		w.mu.Lock()
		w.searchResults = nil
		w.mu.Unlock()
		w.searchDeb.Bump()
		return
	}

	w.searchDeb.Trigger(func(gen uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RequestTimeout)
		defer cancel()

		results, err := w.api.SearchAccounts(ctx, term)

		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.searchDeb.Current(gen) {
			return
		}
		if err != nil {
			w.logger.Debug("recipient search failed", "err", err)
			return
		}
		w.searchResults = results
	})
}

// Submit sends the transfer. Reachable from PreviewReady, or from Editing
// when validation passes without a preview. The request carries whether the
// user accepted the previewed exchange rate. On success the accounts are
// refetched and the success state auto-closes after the display interval.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StatePreviewReady && w.state != StateEditing {
		w.mu.Unlock()
		return ErrNotReady
	}
	if !w.structurallyValidLocked() {
		w.mu.Unlock()
		return ErrNotReady
	}
	accept := w.preview != nil && w.preview.CurrencyExchangeApplied
	req := w.requestLocked(accept)
	w.errMsg = ""
	w.state = StateSubmitting
	w.mu.Unlock()

	_, err := w.api.Transfer(ctx, req)
	if err != nil {
		msg := failureMessage(err)
		w.mu.Lock()
		w.errMsg = msg
		w.state = StateFailed
		w.mu.Unlock()
		return err
	}

	if err := w.accounts.Refresh(ctx); err != nil {
		w.logger.Warn("account refresh after transfer failed", "err", err)
	}

	w.mu.Lock()
	w.state = StateSucceeded
	w.mu.Unlock()

	time.AfterFunc(w.cfg.SuccessDisplay, w.close)
	return nil
}

// close returns to Idle after the success display and notifies the caller.
func (w *Workflow) close() {
	w.mu.Lock()
	if w.state != StateSucceeded {
		w.mu.Unlock()
		return
	}
	w.state = StateIdle
	w.draft = Draft{}
	w.preview = nil
	fn := w.onClosed
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel discards the draft and returns to Idle.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateIdle
	w.draft = Draft{}
	w.preview = nil
	w.errMsg = ""
	w.previewDeb.Bump()
	w.searchDeb.Bump()
}

// failureMessage maps submission errors to user-facing wording: a 422 means
// a limit/funds violation the local checks missed; other statuses surface
// the server's message when present; no response at all is a connectivity
// problem worth retrying.
func failureMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Status == 422 {
			return msgLimitOrFunds
		}
		if se.Message != "" {
			return se.Message
		}
		return msgGeneric
	}
	if api.IsTransport(err) {
		return msgConnection
	}
	return msgGeneric
}

// State returns the current machine state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the current form state.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Preview returns the current preview, or nil.
func (w *Workflow) Preview() *model.TransferPreview {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.preview
}

// AmountError returns the first violated amount rule, or nil.
func (w *Workflow) AmountError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.amountErr
}

// DestinationError returns the destination validation error, or nil.
func (w *Workflow) DestinationError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destErr
}

// DestinationIsOwn reports the informational "this is your own account"
// annotation (never set in assisted mode, where it is an error instead).
func (w *Workflow) DestinationIsOwn() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destOwn
}

// ErrorMessage returns the user-facing submission failure text ("" if none).
func (w *Workflow) ErrorMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// SearchResults returns the latest recipient search results.
func (w *Workflow) SearchResults() []model.AccountSummary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchResults
}
