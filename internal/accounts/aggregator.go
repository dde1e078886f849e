// Package accounts aggregates the user's accounts and their multi-currency
// balances into a single EUR total.
package accounts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/rates"
	"github.com/me/gobank/pkg/model"
)

// API is the slice of the gateway the aggregator needs.
type API interface {
	AllAccounts(ctx context.Context) ([]model.Account, error)
}

// SessionInfo lets the aggregator fail fast before any network call.
type SessionInfo interface {
	IsLoggedIn() bool
}

// Service holds the fetched account list, the EUR total, and the locally
// selected account. The total is never independently consistent with the
// list: it is recomputed right after every successful fetch.
type Service struct {
	api     API
	rates   *rates.Service
	session SessionInfo
	logger  *slog.Logger

	mu       sync.Mutex
	accounts []model.Account
	totalEUR float64
	current  string
	loading  bool
	errMsg   string
}

// NewService creates the aggregator.
func NewService(a API, rs *rates.Service, session SessionInfo, logger *slog.Logger) *Service {
	return &Service{
		api:     a,
		rates:   rs,
		session: session,
		logger:  logger.With("component", "accounts"),
	}
}

// FetchAll loads the account list and then recomputes the EUR total as a
// strictly sequential dependent step. When not logged in it sets the error
// state and returns before any network call.
func (s *Service) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.errMsg = ""
	s.loading = true
	s.mu.Unlock()

	if !s.session.IsLoggedIn() {
		s.setError("not authenticated")
		return api.ErrNotAuthenticated
	}

	accounts, err := s.api.AllAccounts(ctx)
	if err != nil {
		s.setError(err.Error())
		return err
	}

	s.mu.Lock()
	s.accounts = accounts
	// Keep the selection pointing at the fresh copy of the same account.
	if s.current != "" && s.findLocked(s.current) == nil {
		s.current = ""
	}
	s.mu.Unlock()

	total := s.totalInEUR(ctx, accounts)

	s.mu.Lock()
	s.totalEUR = total
	s.loading = false
	s.mu.Unlock()

	s.logger.Debug("accounts fetched", "count", len(accounts), "total_eur", total)
	return nil
}

// Refresh clears the rate cache and refetches, forcing fresh conversions.
func (s *Service) Refresh(ctx context.Context) error {
	s.rates.ClearCache()
	return s.FetchAll(ctx)
}

// totalInEUR sums every balance in EUR. Zero accounts total zero with no
// network traffic. The rate layer already degrades to its approximate
// table on fetch failure, so the total is always defined.
func (s *Service) totalInEUR(ctx context.Context, accounts []model.Account) float64 {
	if len(accounts) == 0 {
		return 0
	}

	byCurrency := make(map[string]float64)
	for _, a := range accounts {
		byCurrency[a.Currency] += a.Balance
	}
	return s.rates.ConvertAllToEUR(ctx, byCurrency)
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.loading = false
	s.mu.Unlock()
}

// Accounts returns a copy of the fetched list.
func (s *Service) Accounts() []model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// TotalEUR returns the last computed EUR total.
func (s *Service) TotalEUR() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalEUR
}

// Loading reports whether a fetch is in progress.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current error string ("" when none).
func (s *Service) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Select points the current-account marker at an account number. Purely
// local state: it triggers no refetch. Returns false for unknown numbers.
func (s *Service) Select(accountNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(accountNumber) == nil {
		return false
	}
	s.current = accountNumber
	return true
}

// Current returns the selected account from the latest fetched list, or nil.
func (s *Service) Current() *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.current)
}

// Find returns the account with the given number from the latest list.
func (s *Service) Find(accountNumber string) *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(accountNumber)
}

// Owns reports whether the given number belongs to one of the user's own
// fetched accounts.
func (s *Service) Owns(accountNumber string) bool {
	return s.Find(accountNumber) != nil
}

func (s *Service) findLocked(accountNumber string) *model.Account {
	for i := range s.accounts {
		if s.accounts[i].AccountNumber == accountNumber {
			a := s.accounts[i]
			return &a
		}
	}
	return nil
}
