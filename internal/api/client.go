// Package api is the authenticated gateway to the remote banking API.
//
// Every outbound request gets the current bearer token at send time. A 401
// triggers the refresh protocol: one refresh runs at a time, concurrent
// 401s wait for its outcome, and each original request is replayed at most
// once. Requests that got no response at all surface as *TransportError so
// callers can tell connectivity problems from authorization ones.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/me/gobank/pkg/model"
)

// Credentials is the session's face toward the gateway. The gateway never
// mutates session fields itself; it only asks for a token, asks for a
// refresh, and forces a logout when refresh fails.
type Credentials interface {
	// Token returns the current bearer token, or "" when none is held.
	Token() string
	// Refresh attempts to obtain a usable token. Reports success.
	Refresh(ctx context.Context) bool
	// ForceLogout clears the session after an irrecoverable refresh failure.
	ForceLogout(ctx context.Context)
}

// Client is the HTTP client for the banking API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	gate    refreshGate
	logger  *slog.Logger
}

// NewClient creates a gateway client. timeout bounds every request
// (connect through body read); zero means 15 seconds.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger.With("component", "api"),
	}
}

// SetCredentials wires the session in after construction. The session layer
// itself calls through this client, so the two are connected post-hoc.
func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

// do performs an authenticated request with the full 401-refresh-replay
// protocol. out, when non-nil, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, data, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.creds != nil {
		if _, err := c.refreshAndWait(ctx); err != nil {
			return err
		}

		// Replay exactly once with the refreshed token.
		status, data, err = c.send(ctx, method, path, query, body)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// Second 401 after replay is terminal; no second refresh cycle.
			return fmt.Errorf("%s %s: %w", method, path, ErrSessionExpired)
		}
	}

	return decodeBody(status, data, out)
}

// doNoRetry performs a request without the 401 coordination. The auth
// endpoints themselves use it: the refresh path must never re-enter the
// refresh path.
func (c *Client) doNoRetry(ctx context.Context, method, path string, query url.Values, body, out any) error {
	status, data, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return decodeBody(status, data, out)
}

// send issues one HTTP request and reads the full response body.
// A failure to get any response is normalized into *TransportError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	op := method + " " + path

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	// Token is sourced at send time, not at call time: a replay after a
	// refresh picks up the fresh token automatically.
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("response", "method", method, "path", path, "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}

// refreshAndWait implements the single-flight refresh. The first goroutine
// to hit a 401 becomes the refresher; the rest wait for its outcome and
// resume in registration order with the same result.
func (c *Client) refreshAndWait(ctx context.Context) (string, error) {
	refresher, wait := c.gate.begin()
	if !refresher {
		select {
		case token := <-wait:
			if token == "" {
				return "", ErrSessionExpired
			}
			return token, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	c.logger.Debug("token refresh started")

	if c.creds.Refresh(ctx) {
		if token := c.creds.Token(); token != "" {
			c.gate.settle(token)
			c.logger.Debug("token refresh succeeded")
			return token, nil
		}
	}

	c.gate.settle("")
	c.logger.Warn("token refresh failed, clearing session")
	c.creds.ForceLogout(ctx)
	return "", ErrSessionExpired
}

// decodeBody turns a status+body pair into either a decoded payload or a
// *StatusError carrying the server's business message.
func decodeBody(status int, data []byte, out any) error {
	if status >= 200 && status < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response (status %d): %w", status, err)
		}
		return nil
	}

	se := &StatusError{Status: status}
	var body model.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		se.Code = body.Code
		se.Message = body.Message
	}
	return se
}
