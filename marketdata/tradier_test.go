package marketdata

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bcdannyboy/europt/pricing"
	"github.com/bcdannyboy/europt/tradier"
)

func historyOf(days []tradier.DailyQuote) func(symbol, start, end, token string) (*tradier.QuoteHistory, error) {
	return func(symbol, start, end, token string) (*tradier.QuoteHistory, error) {
		h := &tradier.QuoteHistory{}
		h.History.Day = days
		return h, nil
	}
}

func trendingHistory(n int, last float64) []tradier.DailyQuote {
	// Walks the close back from last by alternating moves so every
	// estimator sees real variation.
	days := make([]tradier.DailyQuote, n)
	c := last
	for i := n - 1; i >= 0; i-- {
		o := c * 0.998
		days[i] = tradier.DailyQuote{Open: o, High: c * 1.006, Low: o * 0.994, Close: c}
		if i%2 == 0 {
			c /= 1.012
		} else {
			c *= 1.004
		}
	}
	return days
}

func flatHistory(n int, level float64) []tradier.DailyQuote {
	days := make([]tradier.DailyQuote, n)
	for i := range days {
		days[i] = tradier.DailyQuote{Open: level, High: level, Low: level, Close: level}
	}
	return days
}

func TestTradierProviderPrefersImpliedVol(t *testing.T) {
	date := time.Now().AddDate(0, 0, 45).Format("2006-01-02")
	chain := &tradier.OptionChain{ExpirationDate: date}
	chain.Options.Option = []tradier.Option{
		{OptionType: "call", Strike: 100, Greeks: tradier.OptionGreeks{MidIv: 0.23}},
		{OptionType: "call", Strike: 120, Greeks: tradier.OptionGreeks{MidIv: 0.31}},
		{OptionType: "put", Strike: 100, Greeks: tradier.OptionGreeks{MidIv: 0.5}},
	}

	p := NewTradierProvider("tok", 0.05)
	p.history = historyOf(trendingHistory(60, 100))
	p.chains = func(symbol, token string, minDTE, maxDTE int) (map[string]*tradier.OptionChain, error) {
		return map[string]*tradier.OptionChain{date: chain}, nil
	}

	q, err := p.Quote("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SigmaSource != "implied" {
		t.Fatalf("sigma source = %q, want implied", q.SigmaSource)
	}
	// Nearest strike to spot 100 is the 100 call, not the 120.
	if q.Sigma != 0.23 {
		t.Errorf("sigma = %v, want 0.23 from the ATM call", q.Sigma)
	}
}

func TestTradierProviderCalibratesFromMids(t *testing.T) {
	const trueSigma = 0.25
	date := time.Now().AddDate(0, 0, 45).Format("2006-01-02")
	expiry, _ := time.Parse("2006-01-02", date)
	yearsToExpiry := time.Until(expiry).Hours() / 24 / 365

	spot := 100.0
	chain := &tradier.OptionChain{ExpirationDate: date}
	for _, strike := range []float64{90, 95, 100, 105, 110} {
		mid, err := pricing.CallPrice(spot, strike, yearsToExpiry, 0.05, trueSigma)
		if err != nil {
			t.Fatalf("fixture pricing error: %v", err)
		}
		chain.Options.Option = append(chain.Options.Option, tradier.Option{
			OptionType: "call",
			Strike:     strike,
			Bid:        mid - 0.01,
			Ask:        mid + 0.01,
		})
	}

	p := NewTradierProvider("tok", 0.05)
	p.history = historyOf(trendingHistory(60, spot))
	p.chains = func(symbol, token string, minDTE, maxDTE int) (map[string]*tradier.OptionChain, error) {
		return map[string]*tradier.OptionChain{date: chain}, nil
	}

	q, err := p.Quote("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SigmaSource != "calibrated" {
		t.Fatalf("sigma source = %q, want calibrated", q.SigmaSource)
	}
	if math.Abs(q.Sigma-trueSigma) > 5e-3 {
		t.Errorf("calibrated sigma = %v, want ~%v", q.Sigma, trueSigma)
	}
}

func TestTradierProviderFallsBackToRealized(t *testing.T) {
	p := NewTradierProvider("tok", 0.05)
	p.history = historyOf(trendingHistory(120, 250))
	p.chains = func(symbol, token string, minDTE, maxDTE int) (map[string]*tradier.OptionChain, error) {
		return nil, fmt.Errorf("chains unavailable")
	}

	q, err := p.Quote("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SigmaSource != "realized" {
		t.Fatalf("sigma source = %q, want realized", q.SigmaSource)
	}
	if q.Sigma <= 0 || q.Sigma > 2 {
		t.Errorf("realized sigma %v outside plausible range", q.Sigma)
	}
	if q.Spot != 250 {
		t.Errorf("spot = %v, want last close 250", q.Spot)
	}
}

func TestTradierProviderFlatHistoryLeavesSigmaUnset(t *testing.T) {
	p := NewTradierProvider("tok", 0.05)
	p.history = historyOf(flatHistory(60, 100))
	p.chains = func(symbol, token string, minDTE, maxDTE int) (map[string]*tradier.OptionChain, error) {
		return nil, fmt.Errorf("chains unavailable")
	}

	q, err := p.Quote("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Sigma != 0 {
		t.Fatalf("sigma = %v, want 0 for flat history", q.Sigma)
	}

	// Resolve backstops the unset volatility.
	resolved, err := Resolve("SPY", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Sigma != DefaultVolatility || resolved.SigmaSource != "default" {
		t.Errorf("resolved sigma = %v (%q), want default backstop", resolved.Sigma, resolved.SigmaSource)
	}
}

func TestTradierProviderEmptyHistory(t *testing.T) {
	p := NewTradierProvider("tok", 0.05)
	p.history = historyOf(nil)

	if _, err := p.Quote("SPY"); err == nil {
		t.Fatal("expected error for empty history")
	}
}
