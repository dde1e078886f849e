package rates

// fallbackToEUR holds approximate to-EUR rates used when the exchange-rate
// endpoint is unreachable. These are rough constants, not refreshed; they
// keep balance display working, nothing else.
var fallbackToEUR = map[string]float64{
	"USD": 0.92,
	"GBP": 1.17,
	"CHF": 1.04,
	"SEK": 0.088,
	"NOK": 0.086,
	"DKK": 0.13,
	"PLN": 0.23,
	"CZK": 0.04,
	"HUF": 0.0025,
	"JPY": 0.0062,
}

// FallbackRateToEUR exposes the approximate table for callers that apply
// the same degradation locally (the balance aggregator).
func FallbackRateToEUR(currency string) float64 {
	if currency == EUR {
		return 1.0
	}
	if r, ok := fallbackToEUR[currency]; ok {
		return r
	}
	return 1.0
}
