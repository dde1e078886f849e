package limits

import (
	"context"

	"github.com/me/gobank/internal/rates"
)

// Fixed EUR defaults for ATM operations. The ATM workflow converts these
// into the selected account's currency whenever the selection changes.
const (
	DefaultSingleWithdrawalEUR = 2000
	DefaultDailyWithdrawalEUR  = 5000
	DefaultSingleDepositEUR    = 5000
	DefaultDailyDepositEUR     = 10000
)

// Snapshot is a per-currency view of the ATM caps, converted from the EUR
// defaults at selection time.
type Snapshot struct {
	Currency         string
	SingleWithdrawal float64
	DailyWithdrawal  float64
	SingleDeposit    float64
	DailyDeposit     float64
}

// SnapshotFor converts the EUR default caps into the account currency.
func SnapshotFor(ctx context.Context, rs *rates.Service, currency string) Snapshot {
	rate := rs.RateFromEUR(ctx, currency)
	return Snapshot{
		Currency:         currency,
		SingleWithdrawal: DefaultSingleWithdrawalEUR * rate,
		DailyWithdrawal:  DefaultDailyWithdrawalEUR * rate,
		SingleDeposit:    DefaultSingleDepositEUR * rate,
		DailyDeposit:     DefaultDailyDepositEUR * rate,
	}
}
