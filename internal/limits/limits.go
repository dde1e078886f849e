// Package limits holds the client-side amount validation shared by the
// transfer and ATM workflows. The server re-enforces everything; these
// checks exist to catch violations before a request is made.
package limits

import "errors"

// Validation errors in the order the rules are evaluated. The first
// violated rule is the one surfaced.
var (
	ErrAmountNotPositive   = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("amount exceeds the account balance")
	ErrSingleLimit         = errors.New("amount exceeds the per-transaction limit")
	ErrDailyLimit          = errors.New("amount exceeds the remaining daily limit")
)

// CheckAmount applies the four amount rules in order:
//
//  1. amount > 0
//  2. amount <= balance
//  3. amount <= singleLimit
//  4. usedToday + amount <= dailyLimit
//
// Boundary-exact: an amount equal to the remaining headroom passes; one
// unit above fails. Passing Unlimited as balance skips rule 2 (deposits
// have no balance constraint). A zero limit means the account carries no
// cap for that rule.
func CheckAmount(amount, balance, singleLimit, dailyLimit, usedToday float64) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}
	if balance >= 0 && amount > balance {
		return ErrInsufficientBalance
	}
	if singleLimit > 0 && amount > singleLimit {
		return ErrSingleLimit
	}
	if dailyLimit > 0 && usedToday+amount > dailyLimit {
		return ErrDailyLimit
	}
	return nil
}

// Unlimited disables the balance rule in CheckAmount.
const Unlimited = -1
