package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/gobank/internal/mockbank"
)

// startMockBank starts an in-process bank and points the CLI at it via env.
func startMockBank(t *testing.T) {
	t.Helper()

	srv := httptest.NewServer(mockbank.NewServer(quietLogger()).Handler())
	t.Cleanup(srv.Close)

	t.Setenv("GOBANK_API_URL", srv.URL)
	t.Setenv("GOBANK_STORE_PATH", filepath.Join(t.TempDir(), "state.db"))
	t.Setenv("GOBANK_LOG_LEVEL", "error")
}

// runCommand executes bankctl with args and returns captured stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	root := NewRootCmd()
	root.SetArgs(args)
	runErr := root.Execute()

	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestLoginListsAccountsAndPersists(t *testing.T) {
	startMockBank(t)

	out, err := runCommand(t, "login", "-u", "alice", "-p", "letmein")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as Alice") {
		t.Errorf("login output %q", out)
	}

	// A separate invocation rehydrates the persisted session.
	out, err = runCommand(t, "accounts")
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if !strings.Contains(out, "NL01GOBA0000000001") || !strings.Contains(out, "Total:") {
		t.Errorf("accounts output %q", out)
	}

	out, err = runCommand(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "alice") {
		t.Errorf("whoami output %q", out)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	startMockBank(t)

	if _, err := runCommand(t, "accounts"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("got %v, want a not-logged-in error", err)
	}
}

func TestBadCredentialsSurfaceTheServerMessage(t *testing.T) {
	startMockBank(t)

	_, err := runCommand(t, "login", "-u", "alice", "-p", "wrong")
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("got %v, want invalid credentials", err)
	}
}

func TestLogoutClearsTheSession(t *testing.T) {
	startMockBank(t)

	if _, err := runCommand(t, "login", "-u", "alice", "-p", "letmein"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := runCommand(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := runCommand(t, "accounts"); err == nil {
		t.Error("accounts succeeded after logout")
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
