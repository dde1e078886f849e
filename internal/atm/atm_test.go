package atm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/limits"
	"github.com/me/gobank/internal/rates"
	"github.com/me/gobank/pkg/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAPI struct {
	mu        sync.Mutex
	deposits  []model.ATMRequest
	withdraws []model.ATMRequest
	err       error
}

func (f *fakeAPI) Deposit(_ context.Context, req model.ATMRequest) (*model.ATMResult, error) {
	f.mu.Lock()
	f.deposits = append(f.deposits, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &model.ATMResult{TransactionID: "tx-d"}, nil
}

func (f *fakeAPI) Withdraw(_ context.Context, req model.ATMRequest) (*model.ATMResult, error) {
	f.mu.Lock()
	f.withdraws = append(f.withdraws, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &model.ATMResult{TransactionID: "tx-w"}, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts []model.Account
	refreshs int
}

func (f *fakeAccounts) Find(number string) *model.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].AccountNumber == number {
			a := f.accounts[i]
			return &a
		}
	}
	return nil
}

func (f *fakeAccounts) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshs++
	return nil
}

type fixedExchange struct{ rate float64 }

func (f fixedExchange) ExchangeRate(_ context.Context, from, to string, amount float64) (*model.ExchangeRate, error) {
	return &model.ExchangeRate{FromCurrency: from, ToCurrency: to, Rate: f.rate, ConvertedAmount: amount * f.rate}, nil
}

func newWorkflow(fake *fakeAPI, accounts *fakeAccounts, rate float64) *Workflow {
	rs := rates.NewService(fixedExchange{rate: rate}, discardLogger())
	return New(fake, rs, accounts, discardLogger())
}

func eurAccount() model.Account {
	return model.Account{
		AccountNumber: "ACC-1", Currency: "EUR", Balance: 1500, Active: true,
		WithdrawalLimit: 400, DailyWithdrawalLimit: 900, WithdrawalUsedToday: 200,
	}
}

func TestSelectAccountConvertsLimitSnapshot(t *testing.T) {
	account := model.Account{AccountNumber: "ACC-USD", Currency: "USD", Balance: 100}
	w := newWorkflow(&fakeAPI{}, &fakeAccounts{}, 1.1)

	w.SelectAccount(context.Background(), &account)

	snap := w.Snapshot()
	if snap.Currency != "USD" {
		t.Errorf("snapshot currency %q, want USD", snap.Currency)
	}
	if snap.SingleWithdrawal != limits.DefaultSingleWithdrawalEUR*1.1 {
		t.Errorf("single withdrawal %v, want %v", snap.SingleWithdrawal, limits.DefaultSingleWithdrawalEUR*1.1)
	}
}

func TestWithdrawalValidation(t *testing.T) {
	// Account caps (400 single, 900 daily with 200 used) are tighter than
	// the converted EUR defaults, so they win.
	account := eurAccount()

	tests := []struct {
		name   string
		amount float64
		want   error
	}{
		{"zero is a non-error empty state", 0, nil},
		{"within every cap", 300, nil},
		{"exactly the single cap", 400, nil},
		{"past the single cap", 401, limits.ErrSingleLimit},
	}

	w := newWorkflow(&fakeAPI{}, &fakeAccounts{}, 1.0)
	w.SelectAccount(context.Background(), &account)
	w.SetKind(Withdraw)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.SetAmount(tt.amount)
			if got := w.AmountError(); !errors.Is(got, tt.want) {
				t.Errorf("amount %v: got %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestWithdrawalDailyHeadroomIsBoundaryExact(t *testing.T) {
	account := eurAccount() // daily 900, used 200: headroom 700 but single cap 400
	account.WithdrawalLimit = 0 // only the daily cap applies

	w := newWorkflow(&fakeAPI{}, &fakeAccounts{}, 1.0)
	w.SelectAccount(context.Background(), &account)
	w.SetKind(Withdraw)

	w.SetAmount(700)
	if err := w.AmountError(); err != nil {
		t.Errorf("exactly the headroom: got %v, want nil", err)
	}
	w.SetAmount(700.01)
	if err := w.AmountError(); !errors.Is(err, limits.ErrDailyLimit) {
		t.Errorf("past the headroom: got %v, want ErrDailyLimit", err)
	}
}

func TestWithdrawalBoundedByBalance(t *testing.T) {
	account := eurAccount()
	account.Balance = 50

	w := newWorkflow(&fakeAPI{}, &fakeAccounts{}, 1.0)
	w.SelectAccount(context.Background(), &account)
	w.SetKind(Withdraw)
	w.SetAmount(60)

	if err := w.AmountError(); !errors.Is(err, limits.ErrInsufficientBalance) {
		t.Errorf("got %v, want ErrInsufficientBalance", err)
	}
}

func TestDepositIgnoresBalanceButKeepsCaps(t *testing.T) {
	account := eurAccount()
	account.Balance = 0

	w := newWorkflow(&fakeAPI{}, &fakeAccounts{}, 1.0)
	w.SelectAccount(context.Background(), &account)
	w.SetKind(Deposit)

	// Far beyond the balance but within the deposit caps.
	w.SetAmount(3000)
	if err := w.AmountError(); err != nil {
		t.Errorf("got %v, want nil for a deposit within caps", err)
	}

	w.SetAmount(limits.DefaultSingleDepositEUR + 1)
	if err := w.AmountError(); !errors.Is(err, limits.ErrSingleLimit) {
		t.Errorf("got %v, want ErrSingleLimit", err)
	}
}

func TestSubmitRequiresSelectionAndValidAmount(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(&fakeAPI{}, &fakeAccounts{}, 1.0)

	if _, err := w.Submit(ctx); !errors.Is(err, ErrNoAccount) {
		t.Errorf("got %v, want ErrNoAccount", err)
	}

	account := eurAccount()
	w.SelectAccount(ctx, &account)
	if _, err := w.Submit(ctx); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestSubmitRefreshesAndReresolvesAccount(t *testing.T) {
	ctx := context.Background()
	account := eurAccount()
	fresh := account
	fresh.Balance = 1300
	fresh.WithdrawalUsedToday = 400

	fake := &fakeAPI{}
	accounts := &fakeAccounts{accounts: []model.Account{fresh}}
	w := newWorkflow(fake, accounts, 1.0)

	w.SelectAccount(ctx, &account)
	w.SetKind(Withdraw)
	w.SetAmount(200)

	result, err := w.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.TransactionID != "tx-w" {
		t.Errorf("transaction %q, want tx-w", result.TransactionID)
	}
	if len(fake.withdraws) != 1 || fake.withdraws[0].Amount != 200 {
		t.Errorf("withdraw requests %+v, want one for 200", fake.withdraws)
	}
	if accounts.refreshs != 1 {
		t.Errorf("refreshed %d times, want 1", accounts.refreshs)
	}
	// The workflow must now hold the server's post-transaction copy.
	if got := w.Account(); got == nil || got.WithdrawalUsedToday != 400 {
		t.Errorf("account %+v, want the refreshed copy with usedToday=400", got)
	}
}

func TestSubmitFailureMapsTo422Message(t *testing.T) {
	ctx := context.Background()
	account := eurAccount()
	fake := &fakeAPI{err: &api.StatusError{Status: 422, Message: "limit exceeded"}}
	w := newWorkflow(fake, &fakeAccounts{}, 1.0)

	w.SelectAccount(ctx, &account)
	w.SetKind(Withdraw)
	w.SetAmount(100)

	if _, err := w.Submit(ctx); err == nil {
		t.Fatal("expected submit failure")
	}
	if msg := w.ErrorMessage(); msg != "Insufficient funds or ATM limit exceeded." {
		t.Errorf("message %q", msg)
	}
}
