package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/store"
	"github.com/me/gobank/pkg/model"
)

// AuthAPI is the slice of the gateway the session needs. All four calls
// bypass the gateway's 401-refresh coordination.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Validate(ctx context.Context) (*model.User, error)
	RefreshExchange(ctx context.Context, refreshToken string) (*model.LoginResponse, error)
}

// Manager owns the session. It implements api.Credentials so the gateway
// can source tokens and drive the refresh protocol without ever touching
// session fields directly.
type Manager struct {
	mu   sync.Mutex
	sess Session

	store    store.Store
	api      AuthAPI
	strategy RefreshStrategy
	logger   *slog.Logger
	now      func() time.Time
	onLogout func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithNow replaces the clock. Tests pin it.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRefreshStrategy selects the refresh behavior (default: revalidate).
func WithRefreshStrategy(s RefreshStrategy) Option {
	return func(m *Manager) { m.strategy = s }
}

// WithLogoutHook installs a callback invoked after the session is cleared.
// The UI uses it to send the user back to the login surface.
func WithLogoutHook(fn func()) Option {
	return func(m *Manager) { m.onLogout = fn }
}

// NewManager creates a Manager and rehydrates any persisted session from
// the store. Wire the gateway in afterwards with SetAPI.
func NewManager(st store.Store, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:    st,
		strategy: RefreshRevalidate,
		logger:   logger.With("component", "session"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rehydrate()
	return m
}

// SetAPI wires the gateway in. The gateway and the session reference each
// other, so one side has to connect after construction.
func (m *Manager) SetAPI(a AuthAPI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = a
}

// rehydrate loads the persisted session, treating anything unparseable as
// absent. Stored blobs can be corrupt or the literal "null"/"undefined"
// left behind by older clients; none of that may fail construction.
func (m *Manager) rehydrate() {
	ctx := context.Background()

	m.sess.AccessToken = m.loadString(ctx, keyToken)
	m.sess.RefreshToken = m.loadString(ctx, keyRefreshToken)

	if raw := m.loadString(ctx, keyExpiresAt); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			m.sess.ExpiresAt = ms
		}
	}

	if raw := m.loadString(ctx, keyUser); raw != "" {
		var user model.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			m.sess.User = &user
		} else {
			m.logger.Warn("discarding corrupt stored user blob")
		}
	}
}

// loadString reads a key, normalizing absence and junk sentinels to "".
func (m *Manager) loadString(ctx context.Context, key string) string {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("read store", "key", key, "err", err)
		return ""
	}
	if !ok || raw == "null" || raw == "undefined" {
		return ""
	}
	return raw
}

// Token returns the current bearer token ("" when none).
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.AccessToken
}

// CurrentUser returns the authenticated user, or nil.
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.User
}

// IsLoggedIn reports whether a token is held and its expiry is in the future.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.LoggedIn(m.now())
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Login authenticates and persists the issued credentials. The server's
// expiresIn (seconds) is converted to an absolute epoch-ms expiry at
// receipt time. Errors propagate untouched; there is no retry.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return err
	}

	expiresAt := m.now().UnixMilli() + resp.ExpiresIn*1000

	m.mu.Lock()
	m.sess = Session{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         resp.User,
	}
	m.mu.Unlock()

	m.persist(ctx)
	m.logger.Info("logged in", "user", resp.User.FullName())
	return nil
}

// persist writes the whole session to the durable store in one transaction.
// A storage failure is logged, not fatal: the in-memory session still works
// for this process lifetime.
func (m *Manager) persist(ctx context.Context) {
	m.mu.Lock()
	sess := m.sess
	m.mu.Unlock()

	userJSON := ""
	if sess.User != nil {
		if data, err := json.Marshal(sess.User); err == nil {
			userJSON = string(data)
		}
	}

	pairs := map[string]string{
		keyToken:        sess.AccessToken,
		keyRefreshToken: sess.RefreshToken,
		keyUser:         userJSON,
		keyExpiresAt:    strconv.FormatInt(sess.ExpiresAt, 10),
	}
	if err := m.store.SetMany(ctx, pairs); err != nil {
		m.logger.Warn("persist session", "err", err)
	}
}

// Logout best-effort invalidates the token server-side, then clears the
// in-memory session and the durable store. Idempotent: logging out while
// logged out only re-clears already-clear state.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.sess.AccessToken
	m.sess = Session{}
	m.mu.Unlock()

	if token != "" && m.api != nil {
		if err := m.api.Logout(ctx, token); err != nil {
			m.logger.Debug("remote logout ignored", "err", err)
		}
	}

	if err := m.store.DeleteAll(ctx, keyToken, keyRefreshToken, keyUser, keyExpiresAt); err != nil {
		m.logger.Warn("clear session store", "err", err)
	}

	m.logger.Info("logged out")
	if m.onLogout != nil {
		m.onLogout()
	}
}

// ForceLogout implements api.Credentials: the gateway calls it when the
// refresh protocol fails irrecoverably.
func (m *Manager) ForceLogout(ctx context.Context) {
	m.Logout(ctx)
}

// Validate asks the server who the current token belongs to and refreshes
// the stored user on success. Returns nil without any network traffic when
// not logged in. A 401 or a no-response failure forces a logout; any other
// error is swallowed and nil returned.
func (m *Manager) Validate(ctx context.Context) *model.User {
	if !m.IsLoggedIn() {
		return nil
	}

	user, err := m.api.Validate(ctx)
	if err != nil {
		if api.IsUnauthorized(err) || api.IsTransport(err) {
			m.logger.Info("token rejected, logging out", "err", err)
			m.Logout(ctx)
		} else {
			m.logger.Debug("validate swallowed", "err", err)
		}
		return nil
	}

	m.mu.Lock()
	m.sess.User = user
	m.mu.Unlock()

	if data, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, keyUser, string(data)); err != nil {
			m.logger.Warn("persist user", "err", err)
		}
	}
	return user
}

// Refresh implements api.Credentials. It reports false immediately when no
// refresh token is held. The revalidate strategy delegates to Validate and
// treats "a user came back" as success; the exchange strategy trades the
// refresh token for a fresh pair.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()
	refreshToken := m.sess.RefreshToken
	strategy := m.strategy
	m.mu.Unlock()

	if refreshToken == "" {
		return false
	}

	switch strategy {
	case RefreshExchange:
		resp, err := m.api.RefreshExchange(ctx, refreshToken)
		if err != nil {
			m.logger.Debug("refresh exchange failed", "err", err)
			return false
		}

		expiresAt := m.now().UnixMilli() + resp.ExpiresIn*1000
		m.mu.Lock()
		m.sess.AccessToken = resp.Token
		if resp.RefreshToken != "" {
			m.sess.RefreshToken = resp.RefreshToken
		}
		m.sess.ExpiresAt = expiresAt
		if resp.User != nil {
			m.sess.User = resp.User
		}
		m.mu.Unlock()

		m.persist(ctx)
		return true

	default:
		return m.Validate(ctx) != nil
	}
}
