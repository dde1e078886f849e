package model

import (
	"testing"
	"time"
)

func TestTransactionFilter_Query(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := TransactionFilter{
		Type:         TransactionTransfer,
		FromDate:     from,
		MinAmount:    10.5,
		Counterparty: "NL01BANK0123456789",
	}

	q := f.Query()
	if got := q.Get("type"); got != "transfer" {
		t.Errorf("type = %q, want transfer", got)
	}
	if got := q.Get("fromDate"); got != "2026-01-01T00:00:00Z" {
		t.Errorf("fromDate = %q", got)
	}
	if got := q.Get("minAmount"); got != "10.5" {
		t.Errorf("minAmount = %q", got)
	}
	if q.Has("maxAmount") || q.Has("toDate") {
		t.Errorf("zero fields must be omitted, got %v", q)
	}
}

func TestTransactionFilter_Matches(t *testing.T) {
	base := Transaction{
		Type:        TransactionTransfer,
		FromAccount: "A",
		ToAccount:   "B",
		Amount:      100,
		Timestamp:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   bool
	}{
		{"zero filter", TransactionFilter{}, true},
		{"type match", TransactionFilter{Type: TransactionTransfer}, true},
		{"type mismatch", TransactionFilter{Type: TransactionDeposit}, false},
		{"amount in range", TransactionFilter{MinAmount: 50, MaxAmount: 150}, true},
		{"amount below min", TransactionFilter{MinAmount: 101}, false},
		{"amount above max", TransactionFilter{MaxAmount: 99}, false},
		{"counterparty from", TransactionFilter{Counterparty: "A"}, true},
		{"counterparty to", TransactionFilter{Counterparty: "B"}, true},
		{"counterparty miss", TransactionFilter{Counterparty: "C"}, false},
		{"before window", TransactionFilter{FromDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}, false},
		{"after window", TransactionFilter{ToDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(base); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
