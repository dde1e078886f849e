package mockbank

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/gobank/pkg/model"
)

// --- accounts ---

func (s *Server) handleAccountsGetAll(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	s.mu.Lock()
	var out []model.Account
	for _, a := range s.accounts {
		if a.OwnerID == user.ID || user.IsEmployee() {
			out = append(out, *a)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAccountDetails(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "accountNumber")

	s.mu.Lock()
	a, ok := s.accounts[number]
	var copied model.Account
	if ok {
		copied = *a
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, copied)
}

func (s *Server) handleAccountSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("term"))

	s.mu.Lock()
	results := []model.AccountSummary{}
	for _, a := range s.accounts {
		if !a.Active {
			continue
		}
		owner := ""
		if ur, ok := s.usersByID[a.OwnerID]; ok {
			owner = ur.user.FullName()
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.AccountNumber), term) &&
			!strings.Contains(strings.ToLower(owner), term) {
			continue
		}
		results = append(results, model.AccountSummary{
			AccountNumber: a.AccountNumber,
			OwnerName:     owner,
			Currency:      a.Currency,
		})
	}
	s.mu.Unlock()

	sort.Slice(results, func(i, j int) bool { return results[i].AccountNumber < results[j].AccountNumber })
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleAccountLimits(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	var update model.LimitsUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[update.AccountNumber]
	if ok {
		a.TransferLimit = update.TransferLimit
		a.DailyTransferLimit = update.DailyTransferLimit
		a.WithdrawalLimit = update.WithdrawalLimit
		a.DailyWithdrawalLimit = update.DailyWithdrawalLimit
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	var req model.CreateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}

	s.mu.Lock()
	if _, ok := s.usersByID[req.OwnerID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "owner not found")
		return
	}
	account := &model.Account{
		AccountNumber: fmt.Sprintf("NL01GOBA%010d", len(s.accounts)+1),
		OwnerID:       req.OwnerID,
		Currency:      req.Currency,
		Active:        true,
		TransferLimit: 1000, DailyTransferLimit: 3000,
		WithdrawalLimit: 500, DailyWithdrawalLimit: 1000,
	}
	s.accounts[account.AccountNumber] = account
	copied := *account
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, copied)
}

func (s *Server) handleAccountDisable(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	number := chi.URLParam(r, "accountNumber")

	s.mu.Lock()
	a, ok := s.accounts[number]
	if ok {
		a.Active = false
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- transactions ---

// visibleTransactions returns the caller's ledger slice under s.mu.
func (s *Server) visibleTransactions(user *model.User) []model.Transaction {
	owned := make(map[string]bool)
	for _, a := range s.accounts {
		if a.OwnerID == user.ID {
			owned[a.AccountNumber] = true
		}
	}
	var out []model.Transaction
	for _, tx := range s.transactions {
		if user.IsEmployee() || owned[tx.FromAccount] || owned[tx.ToAccount] {
			out = append(out, tx)
		}
	}
	return out
}

// parseFilter decodes the filter querystring used by the filter endpoints.
func parseFilter(r *http.Request) model.TransactionFilter {
	q := r.URL.Query()
	f := model.TransactionFilter{
		Type:         model.TransactionType(q.Get("type")),
		Counterparty: q.Get("counterparty"),
	}
	if v := q.Get("fromDate"); v != "" {
		f.FromDate, _ = time.Parse(time.RFC3339, v)
	}
	if v := q.Get("toDate"); v != "" {
		f.ToDate, _ = time.Parse(time.RFC3339, v)
	}
	if v := q.Get("minAmount"); v != "" {
		f.MinAmount, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("maxAmount"); v != "" {
		f.MaxAmount, _ = strconv.ParseFloat(v, 64)
	}
	return f
}

func (s *Server) handleTransactionsGetAll(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	s.mu.Lock()
	out := s.visibleTransactions(user)
	s.mu.Unlock()

	if out == nil {
		out = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactionsFilter(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	filter := parseFilter(r)

	s.mu.Lock()
	visible := s.visibleTransactions(user)
	s.mu.Unlock()

	out := []model.Transaction{}
	for _, tx := range visible {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactionsByAccount(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "accountNumber")
	filter := parseFilter(r)

	s.mu.Lock()
	if _, ok := s.accounts[number]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	out := []model.Transaction{}
	for _, tx := range s.transactions {
		if tx.FromAccount != number && tx.ToAccount != number {
			continue
		}
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// --- transfers ---

func (s *Server) handleTransferPreview(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	from, okFrom := s.accounts[req.FromAccount]
	to, okTo := s.accounts[req.ToAccount]
	var preview model.TransferPreview
	if okFrom && okTo && from.Currency != to.Currency {
		rt := rate(from.Currency, to.Currency)
		preview = model.TransferPreview{
			CurrencyExchangeApplied: true,
			Exchange: &model.ExchangeInfo{
				FromCurrency:    from.Currency,
				ToCurrency:      to.Currency,
				Rate:            rt,
				ConvertedAmount: req.Amount * rt,
			},
		}
	}
	s.mu.Unlock()

	if !okFrom {
		writeError(w, http.StatusNotFound, "source account not found")
		return
	}
	// Unknown destinations are treated as external accounts: same-currency,
	// no exchange terms.
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	var req model.TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.accounts[req.FromAccount]
	if !ok {
		writeError(w, http.StatusNotFound, "source account not found")
		return
	}
	if from.OwnerID != user.ID && !user.IsEmployee() {
		writeError(w, http.StatusForbidden, "not your account")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
		return
	}
	if req.Amount > from.Balance {
		writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
		return
	}
	if from.TransferLimit > 0 && req.Amount > from.TransferLimit {
		writeError(w, http.StatusUnprocessableEntity, "transfer limit exceeded")
		return
	}
	if from.DailyTransferLimit > 0 && from.TransferUsedToday+req.Amount > from.DailyTransferLimit {
		writeError(w, http.StatusUnprocessableEntity, "daily transfer limit exceeded")
		return
	}

	to, internal := s.accounts[req.ToAccount]
	if internal && from.Currency != to.Currency && !req.AcceptExchangeRate {
		writeError(w, http.StatusUnprocessableEntity, "exchange rate not accepted")
		return
	}

	from.Balance -= req.Amount
	from.TransferUsedToday += req.Amount
	if internal {
		to.Balance += req.Amount * rate(from.Currency, to.Currency)
	}

	tx := model.Transaction{
		ID:          uuid.NewString(),
		Type:        model.TransactionTransfer,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Currency:    from.Currency,
		Description: req.Description,
		Timestamp:   time.Now().UTC(),
	}
	s.transactions = append(s.transactions, tx)

	writeJSON(w, http.StatusOK, model.TransferResult{
		TransactionID: tx.ID,
		NewBalance:    from.Balance,
	})
}

// --- currency ---

func (s *Server) handleExchangeRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("fromCurrency")
	to := q.Get("toCurrency")
	amount, _ := strconv.ParseFloat(q.Get("amount"), 64)
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "fromCurrency and toCurrency are required")
		return
	}

	rt := rate(from, to)
	writeJSON(w, http.StatusOK, model.ExchangeRate{
		FromCurrency:    from,
		ToCurrency:      to,
		Rate:            rt,
		ConvertedAmount: amount * rt,
	})
}

// --- users (back office) ---

func (s *Server) userPage(w http.ResponseWriter, r *http.Request, include func(model.User) bool) {
	page, limit := parsePage(r)

	s.mu.Lock()
	var all []model.User
	for _, rec := range s.usersByID {
		if include(rec.user) {
			all = append(all, rec.user)
		}
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	writeJSON(w, http.StatusOK, model.UserPage{
		Users: all[start:end],
		Page:  page,
		Limit: limit,
		Total: len(all),
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	s.userPage(w, r, func(model.User) bool { return true })
}

func (s *Server) handleUsersDisabled(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	s.userPage(w, r, func(u model.User) bool { return !u.Active })
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	rec, ok := s.usersByID[id]
	var copied model.User
	if ok {
		copied = rec.user
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, copied)
}

func (s *Server) handleUserEnable(w http.ResponseWriter, r *http.Request) {
	if requireEmployee(w, r) == nil {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	rec, ok := s.usersByID[id]
	if ok {
		rec.user.Active = true
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- atm ---

func (s *Server) handleATM(withdraw bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		var req model.ATMRequest
		if !decodeBody(w, r, &req) {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		account, ok := s.accounts[req.AccountNumber]
		if !ok {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		if account.OwnerID != user.ID && !user.IsEmployee() {
			writeError(w, http.StatusForbidden, "not your account")
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
			return
		}

		txType := model.TransactionDeposit
		if withdraw {
			txType = model.TransactionWithdrawal
			if req.Amount > account.Balance {
				writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
				return
			}
			if account.WithdrawalLimit > 0 && req.Amount > account.WithdrawalLimit {
				writeError(w, http.StatusUnprocessableEntity, "withdrawal limit exceeded")
				return
			}
			if account.DailyWithdrawalLimit > 0 &&
				account.WithdrawalUsedToday+req.Amount > account.DailyWithdrawalLimit {
				writeError(w, http.StatusUnprocessableEntity, "daily withdrawal limit exceeded")
				return
			}
			account.Balance -= req.Amount
			account.WithdrawalUsedToday += req.Amount
		} else {
			account.Balance += req.Amount
		}

		tx := model.Transaction{
			ID:        uuid.NewString(),
			Type:      txType,
			Amount:    req.Amount,
			Currency:  account.Currency,
			Timestamp: time.Now().UTC(),
		}
		if withdraw {
			tx.FromAccount = account.AccountNumber
		} else {
			tx.ToAccount = account.AccountNumber
		}
		s.transactions = append(s.transactions, tx)

		writeJSON(w, http.StatusOK, model.ATMResult{
			TransactionID: tx.ID,
			NewBalance:    account.Balance,
		})
	}
}
