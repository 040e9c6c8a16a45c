package marketdata

import (
	"fmt"

	"github.com/bcdannyboy/europt/models"
)

// DefaultVolatility backstops the estimator chain when no market-derived
// estimate is available.
const DefaultVolatility = 0.2

// Quote is a resolved market snapshot for one underlying.
type Quote struct {
	Symbol      string  `json:"symbol"`
	Spot        float64 `json:"spot"`
	Sigma       float64 `json:"sigma"`
	SigmaSource string  `json:"sigma_source"`
}

// Provider resolves a market snapshot from one upstream source.
type Provider interface {
	Name() string
	Quote(symbol string) (*Quote, error)
}

// Resolve tries each provider in order and returns the first usable quote.
// A quote missing a volatility is patched with DefaultVolatility; a missing
// spot cannot be patched, so when every provider fails the returned error
// wraps models.ErrUpstreamDataUnavailable.
func Resolve(symbol string, providers ...Provider) (*Quote, error) {
	var lastErr error
	for _, p := range providers {
		q, err := p.Quote(symbol)
		if err != nil {
			lastErr = fmt.Errorf("%s: %s", p.Name(), err)
			continue
		}
		if q == nil || q.Spot <= 0 {
			lastErr = fmt.Errorf("%s: no spot price for %s", p.Name(), symbol)
			continue
		}

		if q.Sigma <= 0 {
			q.Sigma = DefaultVolatility
			q.SigmaSource = "default"
		}
		return q, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return nil, fmt.Errorf("%w: %s: %s", models.ErrUpstreamDataUnavailable, symbol, lastErr)
}
