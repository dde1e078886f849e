// Package mockbank is an in-memory stand-in for the remote banking API,
// used for local development and end-to-end tests. It issues expiring
// bearer tokens, enforces 401s, and implements the consumed REST surface:
// auth, accounts, transactions with transfer preview, currency rates,
// users, and ATM operations.
package mockbank

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/gobank/pkg/model"
)

// toEUR is the mock's fixed rate table (value of one unit in EUR).
var toEUR = map[string]float64{
	"EUR": 1.0,
	"USD": 0.92,
	"GBP": 1.17,
	"CHF": 1.04,
	"PLN": 0.23,
}

type tokenRecord struct {
	userID    string
	expiresAt time.Time
}

type userRecord struct {
	user     model.User
	password string
}

// Server holds the mock's in-memory state.
type Server struct {
	logger   *slog.Logger
	tokenTTL time.Duration

	mu            sync.Mutex
	users         map[string]*userRecord // by username
	usersByID     map[string]*userRecord
	tokens        map[string]tokenRecord
	refreshTokens map[string]string // refresh token -> user ID
	accounts      map[string]*model.Account
	transactions  []model.Transaction
}

// Option configures the mock server.
type Option func(*Server)

// WithTokenTTL sets the issued token lifetime. Tests use very short TTLs to
// exercise the refresh protocol.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// NewServer creates a mock bank pre-seeded with two customers and one
// employee (usernames alice, carol, bob; password "letmein" for all).
func NewServer(logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		logger:        logger.With("component", "mockbank"),
		tokenTTL:      time.Hour,
		users:         make(map[string]*userRecord),
		usersByID:     make(map[string]*userRecord),
		tokens:        make(map[string]tokenRecord),
		refreshTokens: make(map[string]string),
		accounts:      make(map[string]*model.Account),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	s.addUser(model.User{ID: "u-alice", Username: "alice", FirstName: "Alice", LastName: "Janssen",
		Email: "alice@example.com", Role: model.RoleCustomer, Active: true}, "letmein")
	s.addUser(model.User{ID: "u-carol", Username: "carol", FirstName: "Carol", LastName: "de Vries",
		Email: "carol@example.com", Role: model.RoleCustomer, Active: true}, "letmein")
	s.addUser(model.User{ID: "u-bob", Username: "bob", FirstName: "Bob", LastName: "Visser",
		Email: "bob@example.com", Role: model.RoleEmployee, Active: true}, "letmein")
	s.addUser(model.User{ID: "u-dave", Username: "dave", FirstName: "Dave", LastName: "Smit",
		Email: "dave@example.com", Role: model.RoleCustomer, Active: false}, "letmein")

	s.addAccount(&model.Account{
		AccountNumber: "NL01GOBA0000000001", OwnerID: "u-alice", Currency: "EUR", Balance: 2500,
		Active: true, TransferLimit: 1000, DailyTransferLimit: 3000,
		WithdrawalLimit: 500, DailyWithdrawalLimit: 1000,
	})
	s.addAccount(&model.Account{
		AccountNumber: "NL01GOBA0000000002", OwnerID: "u-alice", Currency: "USD", Balance: 800,
		Active: true, TransferLimit: 1000, DailyTransferLimit: 3000,
		WithdrawalLimit: 500, DailyWithdrawalLimit: 1000,
	})
	s.addAccount(&model.Account{
		AccountNumber: "NL01GOBA0000000009", OwnerID: "u-carol", Currency: "EUR", Balance: 150,
		Active: true, TransferLimit: 1000, DailyTransferLimit: 3000,
		WithdrawalLimit: 500, DailyWithdrawalLimit: 1000,
	})
}

func (s *Server) addUser(u model.User, password string) {
	rec := &userRecord{user: u, password: password}
	s.users[u.Username] = rec
	s.usersByID[u.ID] = rec
}

func (s *Server) addAccount(a *model.Account) {
	s.accounts[a.AccountNumber] = a
}

// Handler returns the chi router for the full REST surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.Post("/auth/refresh", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/auth/validate", s.handleValidate)

		r.Get("/account/getall", s.handleAccountsGetAll)
		r.Get("/account/details/{accountNumber}", s.handleAccountDetails)
		r.Get("/account/search", s.handleAccountSearch)
		r.Put("/account/limits", s.handleAccountLimits)
		r.Post("/account/create", s.handleAccountCreate)
		r.Put("/account/disable/{accountNumber}", s.handleAccountDisable)

		r.Get("/transaction/getall", s.handleTransactionsGetAll)
		r.Get("/transaction/filter", s.handleTransactionsFilter)
		r.Get("/transaction/byaccount/{accountNumber}", s.handleTransactionsByAccount)
		r.Get("/transaction/byaccount/{accountNumber}/filter", s.handleTransactionsByAccount)
		r.Post("/transaction/transfer/preview", s.handleTransferPreview)
		r.Post("/transaction/transfer", s.handleTransfer)

		r.Get("/currency/exchange-rate", s.handleExchangeRate)

		r.Get("/users", s.handleUsers)
		r.Get("/users/disabled", s.handleUsersDisabled)
		r.Get("/users/{id}", s.handleUserByID)
		r.Put("/users/{id}/enable", s.handleUserEnable)

		r.Post("/atm/deposit", s.handleATM(false))
		r.Post("/atm/withdraw", s.handleATM(true))
	})

	return r
}

// writeJSON writes a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the bank API error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// rate returns the conversion factor between two currencies, composed
// through the fixed EUR table.
func rate(from, to string) float64 {
	f, ok := toEUR[from]
	if !ok {
		f = 1.0
	}
	t, ok := toEUR[to]
	if !ok {
		t = 1.0
	}
	return f / t
}

func parsePage(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return page, limit
}

func newToken() string { return uuid.NewString() }
