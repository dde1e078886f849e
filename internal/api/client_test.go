package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/gobank/pkg/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCreds scripts the session side of the refresh protocol.
type fakeCreds struct {
	mu           sync.Mutex
	token        string
	refreshOK    bool
	nextToken    string
	refreshDelay time.Duration

	refreshCalls int32
	forcedLogout int32
}

func (f *fakeCreds) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) Refresh(context.Context) bool {
	atomic.AddInt32(&f.refreshCalls, 1)
	if f.refreshDelay > 0 {
		time.Sleep(f.refreshDelay)
	}
	if !f.refreshOK {
		return false
	}
	f.mu.Lock()
	f.token = f.nextToken
	f.mu.Unlock()
	return true
}

func (f *fakeCreds) ForceLogout(context.Context) {
	atomic.AddInt32(&f.forcedLogout, 1)
}

// newTestClient points a client with the given creds at handler.
func newTestClient(t *testing.T, handler http.Handler, creds Credentials) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	c.SetCredentials(creds)
	return c
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	creds := &fakeCreds{
		token:     "stale",
		refreshOK: true,
		nextToken: "fresh",
		// Long enough that every in-flight 401 registers as a waiter
		// before the refresher settles.
		refreshDelay: 250 * time.Millisecond,
	}

	var served200 int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		atomic.AddInt32(&served200, 1)
		json.NewEncoder(w).Encode([]model.Account{})
	})
	client := newTestClient(t, handler, creds)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.AllAccounts(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&creds.refreshCalls); got != 1 {
		t.Errorf("refresh ran %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&served200); got != n {
		t.Errorf("served %d successful replays, want %d", got, n)
	}
}

func TestSecond401AfterReplayIsTerminal(t *testing.T) {
	// Refresh "succeeds" but the server keeps rejecting: the client must
	// not loop, and must not start a second refresh cycle.
	creds := &fakeCreds{token: "stale", refreshOK: true, nextToken: "still-bad"}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(t, handler, creds)

	_, err := client.AllAccounts(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("got %v, want ErrSessionExpired", err)
	}
	if got := atomic.LoadInt32(&creds.refreshCalls); got != 1 {
		t.Errorf("refresh ran %d times, want 1", got)
	}
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	creds := &fakeCreds{token: "stale", refreshOK: false}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(t, handler, creds)

	_, err := client.AllAccounts(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("got %v, want ErrSessionExpired", err)
	}
	if got := atomic.LoadInt32(&creds.forcedLogout); got != 1 {
		t.Errorf("forced logout %d times, want 1", got)
	}
}

func TestNoResponseSurfacesAsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second, discardLogger())
	_, err := client.AllAccounts(context.Background())

	if !IsTransport(err) {
		t.Fatalf("got %v, want *TransportError", err)
	}
	var te *TransportError
	if errors.As(err, &te) && te.Op != "GET /account/getall" {
		t.Errorf("Op = %q, want GET /account/getall", te.Op)
	}
}

func TestRequestHeadersInjected(t *testing.T) {
	var gotAuth, gotRequestID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		json.NewEncoder(w).Encode([]model.Account{})
	})
	client := newTestClient(t, handler, &fakeCreds{token: "tok-abc"})

	if _, err := client.AllAccounts(context.Background()); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want Bearer tok-abc", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-Id header missing")
	}
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(model.ErrorResponse{Code: "LIMIT", Message: "daily transfer limit exceeded"})
	})
	client := newTestClient(t, handler, &fakeCreds{token: "tok"})

	_, err := client.Transfer(context.Background(), model.TransferRequest{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want *StatusError", err)
	}
	if se.Status != 422 || se.Code != "LIMIT" || se.Message != "daily transfer limit exceeded" {
		t.Errorf("unexpected status error: %+v", se)
	}
}

func TestNoCredentialsMeansNoRetry(t *testing.T) {
	var hits int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second, discardLogger())
	_, err := client.AllAccounts(context.Background())

	if !IsUnauthorized(err) {
		t.Fatalf("got %v, want 401 status error", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}
