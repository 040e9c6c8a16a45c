package marketdata

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bcdannyboy/europt/models"
	"github.com/bcdannyboy/europt/pricing"
	"github.com/bcdannyboy/europt/tradier"
)

const (
	chainMinDTE = 20
	chainMaxDTE = 90

	// calibrationBand bounds calibration strikes to +/-15% of spot;
	// deep wings quote too wide to fit a single volatility.
	calibrationBand      = 0.15
	minCalibrationQuotes = 3
)

// TradierProvider resolves quotes from the Tradier market-data API. The
// volatility preference order is option-implied, then calibrated from chain
// mid prices, then realized from daily history.
type TradierProvider struct {
	Token        string
	RiskFreeRate float64

	history func(symbol, start, end, token string) (*tradier.QuoteHistory, error)
	chains  func(symbol, token string, minDTE, maxDTE int) (map[string]*tradier.OptionChain, error)
}

func NewTradierProvider(token string, riskFreeRate float64) *TradierProvider {
	return &TradierProvider{
		Token:        token,
		RiskFreeRate: riskFreeRate,
		history:      tradier.GetDailyHistory,
		chains:       tradier.GetOptionChains,
	}
}

func (t *TradierProvider) Name() string { return "tradier" }

func (t *TradierProvider) Quote(symbol string) (*Quote, error) {
	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	history, err := t.history(symbol, start.Format("2006-01-02"), end.Format("2006-01-02"), t.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %s", err)
	}

	days := history.History.Day
	if len(days) == 0 {
		return nil, fmt.Errorf("empty history for %s", symbol)
	}

	result := &Quote{
		Symbol: symbol,
		Spot:   days[len(days)-1].Close,
	}

	if sigma, source := t.chainVolatility(symbol, result.Spot); sigma > 0 {
		result.Sigma = sigma
		result.SigmaSource = source
		return result, nil
	}

	opens := make([]float64, len(days))
	highs := make([]float64, len(days))
	lows := make([]float64, len(days))
	closes := make([]float64, len(days))
	for i, day := range days {
		opens[i] = day.Open
		highs[i] = day.High
		lows[i] = day.Low
		closes[i] = day.Close
	}

	estimates := models.RealizedVolatilities(opens, highs, lows, closes)
	if sigma := models.MedianVolatility(estimates); sigma > 0 {
		result.Sigma = sigma
		result.SigmaSource = "realized"
	}

	return result, nil
}

// chainVolatility extracts a volatility from the nearest-dated option chain,
// preferring the quoted ATM implied vol and falling back to a least-squares
// calibration against call mids. Returns 0 when the chain gives nothing.
func (t *TradierProvider) chainVolatility(symbol string, spot float64) (float64, string) {
	chains, err := t.chains(symbol, t.Token, chainMinDTE, chainMaxDTE)
	if err != nil || len(chains) == 0 {
		return 0, ""
	}

	dates := make([]string, 0, len(chains))
	for date := range chains {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	chain := chains[dates[0]]
	expiry, err := time.Parse("2006-01-02", dates[0])
	if err != nil {
		return 0, ""
	}
	yearsToExpiry := time.Until(expiry).Hours() / 24 / 365
	if yearsToExpiry <= 0 {
		return 0, ""
	}

	if iv := atmImpliedVol(chain, spot); iv > 0 {
		return iv, "implied"
	}

	mids, strikes := calibrationQuotes(chain, spot)
	if len(strikes) >= minCalibrationQuotes {
		if sigma, err := pricing.CalibrateSigma(mids, strikes, spot, yearsToExpiry, t.RiskFreeRate); err == nil {
			return sigma, "calibrated"
		}
	}

	return 0, ""
}

// atmImpliedVol picks the quoted mid IV of the call nearest the spot.
func atmImpliedVol(chain *tradier.OptionChain, spot float64) float64 {
	best := 0.0
	bestDistance := math.Inf(1)
	for _, opt := range chain.Options.Option {
		if opt.OptionType != "call" || opt.Greeks.MidIv <= 0 {
			continue
		}
		if distance := math.Abs(opt.Strike - spot); distance < bestDistance {
			bestDistance = distance
			best = opt.Greeks.MidIv
		}
	}
	return best
}

// calibrationQuotes collects near-the-money call mid prices with live
// two-sided markets.
func calibrationQuotes(chain *tradier.OptionChain, spot float64) (mids, strikes []float64) {
	for _, opt := range chain.Options.Option {
		if opt.OptionType != "call" || opt.Bid <= 0 || opt.Ask < opt.Bid {
			continue
		}
		if math.Abs(opt.Strike-spot) > calibrationBand*spot {
			continue
		}
		mids = append(mids, (opt.Bid+opt.Ask)/2)
		strikes = append(strikes, opt.Strike)
	}
	return mids, strikes
}
