package accounts

import "github.com/me/gobank/pkg/model"

// FilterTransactions applies a filter to an in-memory transaction list.
// Client-side fallback for deployments without a server-side filter
// endpoint: an approximation that only sees already-fetched pages, not a
// substitute for server-side filtering at scale.
func FilterTransactions(txs []model.Transaction, f model.TransactionFilter) []model.Transaction {
	if f.IsZero() {
		return txs
	}
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
