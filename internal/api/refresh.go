package api

import "sync"

// refreshGate coordinates the single-flight token refresh.
//
// Invariant: while a refresh is in flight exactly one goroutine runs it;
// every other 401 registers a waiter instead of starting its own refresh.
// Waiters are settled in registration order with the same outcome, and the
// waiter list is reset exactly once per cycle so a waiter can never receive
// a second delivery from a later cycle.
type refreshGate struct {
	mu       sync.Mutex
	inFlight bool
	waiters  []chan string
}

// begin either elects the caller as the refresher (refresher == true) or
// registers it as a waiter and returns the channel carrying the outcome:
// the new token on success, the empty string on failure.
func (g *refreshGate) begin() (refresher bool, wait <-chan string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.inFlight {
		g.inFlight = true
		return true, nil
	}

	// Buffered so settle never blocks on a waiter that gave up.
	ch := make(chan string, 1)
	g.waiters = append(g.waiters, ch)
	return false, ch
}

// settle delivers the outcome to all waiters in FIFO order and resets the
// gate for the next cycle. token == "" signals failure.
func (g *refreshGate) settle(token string) {
	g.mu.Lock()
	waiters := g.waiters
	g.waiters = nil
	g.inFlight = false
	g.mu.Unlock()

	for _, ch := range waiters {
		ch <- token
	}
}
