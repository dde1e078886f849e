package mockbank

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/me/gobank/pkg/model"
)

type ctxKey string

const ctxKeyUser ctxKey = "mockbank_user"

// currentUser extracts the authenticated user placed by authMiddleware.
func currentUser(r *http.Request) *model.User {
	if u, ok := r.Context().Value(ctxKeyUser).(*model.User); ok {
		return u
	}
	return nil
}

// authMiddleware enforces a valid, unexpired bearer token and stashes the
// owning user in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		s.mu.Lock()
		rec, found := s.tokens[token]
		var user *model.User
		if found && time.Now().Before(rec.expiresAt) {
			if ur, ok := s.usersByID[rec.userID]; ok {
				u := ur.user
				user = &u
			}
		}
		s.mu.Unlock()

		if user == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireEmployee guards back-office handlers.
func requireEmployee(w http.ResponseWriter, r *http.Request) *model.User {
	user := currentUser(r)
	if user == nil || !user.IsEmployee() {
		writeError(w, http.StatusForbidden, "employee role required")
		return nil
	}
	return user
}

func (s *Server) issueTokens(userID string) model.LoginResponse {
	token := newToken()
	refresh := newToken()

	s.mu.Lock()
	s.tokens[token] = tokenRecord{userID: userID, expiresAt: time.Now().Add(s.tokenTTL)}
	s.refreshTokens[refresh] = userID
	var user *model.User
	if ur, ok := s.usersByID[userID]; ok {
		u := ur.user
		user = &u
	}
	s.mu.Unlock()

	return model.LoginResponse{
		Token:        token,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenTTL / time.Second),
		User:         user,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	rec, ok := s.users[req.Username]
	s.mu.Unlock()

	if !ok || rec.password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !rec.user.Active {
		writeError(w, http.StatusForbidden, "account is not activated yet")
		return
	}

	writeJSON(w, http.StatusOK, s.issueTokens(rec.user.ID))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	delete(s.tokens, req.Token)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	userID, ok := s.refreshTokens[req.RefreshToken]
	if ok {
		// Single use: a rotated refresh token replaces the old one.
		delete(s.refreshTokens, req.RefreshToken)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, s.issueTokens(userID))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
