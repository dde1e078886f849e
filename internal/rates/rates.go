// Package rates is a time-bounded read-through cache for currency
// conversion rates. Balance display must degrade gracefully: when the rate
// endpoint is unreachable the cache substitutes documented approximate
// rates instead of failing.
package rates

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/me/gobank/pkg/model"
)

// EUR is the reporting currency every aggregate converts into.
const EUR = "EUR"

// DefaultTTL is how long a fetched rate stays valid.
const DefaultTTL = 5 * time.Minute

// ExchangeAPI is the slice of the gateway the cache needs.
type ExchangeAPI interface {
	ExchangeRate(ctx context.Context, from, to string, amount float64) (*model.ExchangeRate, error)
}

type entry struct {
	rate      float64
	fetchedAt time.Time
}

// Service caches rates per ordered currency pair. Population is idempotent:
// two concurrent fetches of the same pair may both write; last write wins.
type Service struct {
	api    ExchangeAPI
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]entry

	ttl      time.Duration
	now      func() time.Time
	fallback map[string]float64
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the cache validity window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithNow replaces the clock. Tests pin it.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFallback replaces the approximate to-EUR rate table used when the
// rate endpoint fails.
func WithFallback(table map[string]float64) Option {
	return func(s *Service) { s.fallback = table }
}

// NewService creates a rate cache backed by the given gateway.
func NewService(a ExchangeAPI, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		api:      a,
		logger:   logger.With("component", "rates"),
		cache:    make(map[string]entry),
		ttl:      DefaultTTL,
		now:      time.Now,
		fallback: fallbackToEUR,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func pairKey(from, to string) string { return from + "->" + to }

// RateToEUR returns the rate converting one unit of currency into EUR.
// Never fails: a fetch error falls back to the approximate table.
func (s *Service) RateToEUR(ctx context.Context, currency string) float64 {
	return s.rate(ctx, currency, EUR)
}

// RateFromEUR returns the rate converting one EUR into the currency.
func (s *Service) RateFromEUR(ctx context.Context, currency string) float64 {
	return s.rate(ctx, EUR, currency)
}

// rate resolves one ordered pair: identity for EUR->EUR, cache when fresh,
// fetch on miss or staleness, fallback table on fetch failure.
func (s *Service) rate(ctx context.Context, from, to string) float64 {
	if from == to {
		return 1.0
	}

	key := pairKey(from, to)

	s.mu.Lock()
	if e, ok := s.cache[key]; ok && s.now().Sub(e.fetchedAt) < s.ttl {
		s.mu.Unlock()
		return e.rate
	}
	s.mu.Unlock()

	quote, err := s.api.ExchangeRate(ctx, from, to, 1)
	if err != nil {
		rate := s.approximate(from, to)
		s.logger.Warn("rate fetch failed, using approximate rate",
			"from", from, "to", to, "rate", rate, "err", err)
		return rate
	}

	s.mu.Lock()
	s.cache[key] = entry{rate: quote.Rate, fetchedAt: s.now()}
	s.mu.Unlock()
	return quote.Rate
}

// approximate resolves a pair from the fixed to-EUR table. Unknown
// currencies come back as 1.0, which keeps totals defined if wrong.
func (s *Service) approximate(from, to string) float64 {
	toEUR := func(cur string) float64 {
		if cur == EUR {
			return 1.0
		}
		if r, ok := s.fallback[cur]; ok && r > 0 {
			return r
		}
		return 1.0
	}
	return toEUR(from) / toEUR(to)
}

// Convert converts an amount between two currencies, composed through EUR.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if from == to {
		return amount
	}
	return amount * s.RateToEUR(ctx, from) * s.RateFromEUR(ctx, to)
}

// ConvertAllToEUR converts per-currency sums into EUR and totals them. One
// cache-aware lookup per distinct currency, executed concurrently.
func (s *Service) ConvertAllToEUR(ctx context.Context, byCurrency map[string]float64) float64 {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total float64
	)

	for currency, amount := range byCurrency {
		wg.Add(1)
		go func(currency string, amount float64) {
			defer wg.Done()
			converted := amount * s.RateToEUR(ctx, currency)
			mu.Lock()
			total += converted
			mu.Unlock()
		}(currency, amount)
	}

	wg.Wait()
	return total
}

// ClearCache drops every entry. The account aggregator calls this when it
// wants a forced refresh.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]entry)
	s.mu.Unlock()
}
