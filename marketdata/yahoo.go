package marketdata

import (
	"fmt"
	"time"

	"github.com/markcheno/go-quote"

	"github.com/bcdannyboy/europt/models"
)

// YahooProvider derives spot and realized volatility from Yahoo Finance
// daily bars. It needs no credentials, which makes it the usual fallback
// behind the Tradier provider.
type YahooProvider struct {
	Lookback time.Duration // history window, defaults to one year
}

func (y *YahooProvider) Name() string { return "yahoo" }

func (y *YahooProvider) Quote(symbol string) (*Quote, error) {
	lookback := y.Lookback
	if lookback <= 0 {
		lookback = 365 * 24 * time.Hour
	}

	end := time.Now()
	start := end.Add(-lookback)

	bars, err := quote.NewQuoteFromYahoo(symbol, start.Format("2006-01-02"), end.Format("2006-01-02"), quote.Daily, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch yahoo history: %s", err)
	}
	if len(bars.Close) == 0 {
		return nil, fmt.Errorf("empty yahoo history for %s", symbol)
	}

	result := &Quote{
		Symbol: symbol,
		Spot:   bars.Close[len(bars.Close)-1],
	}

	estimates := models.RealizedVolatilities(bars.Open, bars.High, bars.Low, bars.Close)
	if sigma := models.MedianVolatility(estimates); sigma > 0 {
		result.Sigma = sigma
		result.SigmaSource = "realized"
	}

	return result, nil
}
