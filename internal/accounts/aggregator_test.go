package accounts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/rates"
	"github.com/me/gobank/pkg/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAPI struct {
	accounts []model.Account
	err      error
	calls    int32
}

func (f *fakeAPI) AllAccounts(context.Context) ([]model.Account, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

type fakeSession struct{ loggedIn bool }

func (f fakeSession) IsLoggedIn() bool { return f.loggedIn }

type fixedExchange struct{ rates map[string]float64 }

func (f fixedExchange) ExchangeRate(_ context.Context, from, to string, amount float64) (*model.ExchangeRate, error) {
	rate := f.rates[from+"->"+to]
	return &model.ExchangeRate{FromCurrency: from, ToCurrency: to, Rate: rate, ConvertedAmount: amount * rate}, nil
}

func newService(fake *fakeAPI, loggedIn bool) *Service {
	rs := rates.NewService(fixedExchange{rates: map[string]float64{"USD->EUR": 0.9}}, discardLogger())
	return NewService(fake, rs, fakeSession{loggedIn: loggedIn}, discardLogger())
}

func TestFetchAllFailsFastWhenLoggedOut(t *testing.T) {
	fake := &fakeAPI{accounts: []model.Account{{AccountNumber: "A"}}}
	svc := newService(fake, false)

	err := svc.FetchAll(context.Background())
	if !errors.Is(err, api.ErrNotAuthenticated) {
		t.Fatalf("got %v, want ErrNotAuthenticated", err)
	}
	if fake.calls != 0 {
		t.Errorf("hit the network %d times while logged out", fake.calls)
	}
	if svc.Err() == "" {
		t.Error("error state not set")
	}
	if svc.Loading() {
		t.Error("loading flag stuck after fail-fast")
	}
}

func TestFetchAllTotalsAcrossCurrencies(t *testing.T) {
	fake := &fakeAPI{accounts: []model.Account{
		{AccountNumber: "A", Currency: "EUR", Balance: 100},
		{AccountNumber: "B", Currency: "USD", Balance: 200},
		{AccountNumber: "C", Currency: "USD", Balance: 50},
	}}
	svc := newService(fake, true)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := 100 + 250*0.9
	if got := svc.TotalEUR(); got != want {
		t.Errorf("total = %v, want %v", got, want)
	}
	if len(svc.Accounts()) != 3 {
		t.Errorf("got %d accounts, want 3", len(svc.Accounts()))
	}
	if svc.Err() != "" || svc.Loading() {
		t.Errorf("unexpected state: err=%q loading=%v", svc.Err(), svc.Loading())
	}
}

func TestFetchAllWithZeroAccounts(t *testing.T) {
	svc := newService(&fakeAPI{}, true)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := svc.TotalEUR(); got != 0 {
		t.Errorf("total = %v, want 0", got)
	}
}

func TestFetchErrorSurfacesAndKeepsNothing(t *testing.T) {
	fake := &fakeAPI{err: errors.New("boom")}
	svc := newService(fake, true)

	if err := svc.FetchAll(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	if svc.Err() != "boom" {
		t.Errorf("error state %q, want boom", svc.Err())
	}
}

func TestSelectionFollowsFreshList(t *testing.T) {
	fake := &fakeAPI{accounts: []model.Account{
		{AccountNumber: "A", Currency: "EUR", Balance: 1},
		{AccountNumber: "B", Currency: "EUR", Balance: 2},
	}}
	svc := newService(fake, true)

	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if svc.Select("Z") {
		t.Error("selecting an unknown account must fail")
	}
	if !svc.Select("B") {
		t.Fatal("selecting a fetched account must succeed")
	}
	if cur := svc.Current(); cur == nil || cur.AccountNumber != "B" {
		t.Fatalf("current = %+v, want B", cur)
	}

	// B disappears from the next fetch; the selection must clear rather
	// than dangle.
	fake.accounts = fake.accounts[:1]
	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if cur := svc.Current(); cur != nil {
		t.Errorf("current = %+v, want nil after the account vanished", cur)
	}
}

func TestOwns(t *testing.T) {
	fake := &fakeAPI{accounts: []model.Account{{AccountNumber: "A", Currency: "EUR"}}}
	svc := newService(fake, true)
	if err := svc.FetchAll(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if !svc.Owns("A") {
		t.Error("expected A to be owned")
	}
	if svc.Owns("X") {
		t.Error("X is not in the fetched list")
	}
}

func TestFilterTransactions(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	txs := []model.Transaction{
		{ID: "1", Type: model.TransactionDeposit, Amount: 50, Timestamp: day(1), ToAccount: "A"},
		{ID: "2", Type: model.TransactionTransfer, Amount: 200, Timestamp: day(5), FromAccount: "A", ToAccount: "B"},
		{ID: "3", Type: model.TransactionWithdrawal, Amount: 75, Timestamp: day(10), FromAccount: "A"},
	}

	tests := []struct {
		name    string
		filter  model.TransactionFilter
		wantIDs []string
	}{
		{"zero filter returns everything", model.TransactionFilter{}, []string{"1", "2", "3"}},
		{"by type", model.TransactionFilter{Type: model.TransactionTransfer}, []string{"2"}},
		{"by date range", model.TransactionFilter{FromDate: day(2), ToDate: day(9)}, []string{"2"}},
		{"by amount", model.TransactionFilter{MinAmount: 60, MaxAmount: 100}, []string{"3"}},
		{"by counterparty", model.TransactionFilter{Counterparty: "B"}, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTransactions(txs, tt.filter)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d transactions, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
