package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// Realized-volatility estimators over daily OHLC series. Each returns an
// annualized volatility, or 0 when the input is too short or malformed;
// callers treat 0 as "estimate unavailable".

// CloseToCloseVolatility is the annualized sample standard deviation of
// daily log returns.
func CloseToCloseVolatility(closes []float64) float64 {
	n := len(closes)
	if n < 3 {
		return 0
	}

	returns := make([]float64, n-1)
	for i := 1; i < n; i++ {
		returns[i-1] = math.Log(closes[i] / closes[i-1])
	}

	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}

// ParkinsonVolatility estimates volatility from daily high/low ranges.
func ParkinsonVolatility(highs, lows []float64) float64 {
	n := len(highs)
	if n == 0 || n != len(lows) {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		logRatio := math.Log(highs[i] / lows[i])
		sum += logRatio * logRatio
	}

	return math.Sqrt(sum/(4*float64(n)*math.Log(2))) * math.Sqrt(tradingDaysPerYear)
}

// GarmanKlassVolatility combines high/low range and open/close moves.
func GarmanKlassVolatility(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	if n == 0 || n != len(highs) || n != len(lows) || n != len(closes) {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		hl := 0.5 * math.Pow(math.Log(highs[i]/lows[i]), 2)
		co := (2*math.Log(2) - 1) * math.Pow(math.Log(closes[i]/opens[i]), 2)
		sum += hl - co
	}

	return math.Sqrt(sum / float64(n) * tradingDaysPerYear)
}

// RogersSatchellVolatility is drift-independent, usable for trending series.
func RogersSatchellVolatility(opens, highs, lows, closes []float64) float64 {
	rs := rogersSatchellDailyVariance(opens, highs, lows, closes)
	if rs <= 0 {
		return 0
	}
	return math.Sqrt(rs * tradingDaysPerYear)
}

// YangZhangVolatility combines overnight, open-to-close, and
// Rogers-Satchell variances with the standard k weighting.
func YangZhangVolatility(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	if n < 3 || n != len(highs) || n != len(lows) || n != len(closes) {
		return 0
	}

	k := 0.34 / (1.34 + (float64(n)+1)/(float64(n)-1))
	overnight := overnightVariance(opens, closes, n)
	openClose := openCloseVariance(opens, closes, n)
	rs := rogersSatchellDailyVariance(opens, highs, lows, closes)

	variance := overnight + k*openClose + (1-k)*rs
	if variance <= 0 {
		return 0
	}

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}

func overnightVariance(opens, closes []float64, n int) float64 {
	sum := 0.0
	mean := 0.0
	for i := 1; i < n; i++ {
		logReturn := math.Log(opens[i] / closes[i-1])
		mean += logReturn
		sum += logReturn * logReturn
	}
	mean /= float64(n - 1)
	return (sum/float64(n-1) - mean*mean) * float64(n) / float64(n-1)
}

func openCloseVariance(opens, closes []float64, n int) float64 {
	sum := 0.0
	mean := 0.0
	for i := 0; i < n; i++ {
		logReturn := math.Log(closes[i] / opens[i])
		mean += logReturn
		sum += logReturn * logReturn
	}
	mean /= float64(n)
	return (sum/float64(n) - mean*mean) * float64(n) / float64(n-1)
}

func rogersSatchellDailyVariance(opens, highs, lows, closes []float64) float64 {
	n := len(opens)
	if n == 0 || n != len(highs) || n != len(lows) || n != len(closes) {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Log(highs[i]/closes[i])*math.Log(highs[i]/opens[i]) +
			math.Log(lows[i]/closes[i])*math.Log(lows[i]/opens[i])
	}

	return sum / float64(n)
}

// RealizedVolatilities runs every estimator over the same OHLC window and
// returns the usable (positive, finite) results keyed by estimator name.
func RealizedVolatilities(opens, highs, lows, closes []float64) map[string]float64 {
	results := make(map[string]float64)

	estimates := []struct {
		name string
		vol  float64
	}{
		{"close_to_close", CloseToCloseVolatility(closes)},
		{"parkinson", ParkinsonVolatility(highs, lows)},
		{"garman_klass", GarmanKlassVolatility(opens, highs, lows, closes)},
		{"rogers_satchell", RogersSatchellVolatility(opens, highs, lows, closes)},
		{"yang_zhang", YangZhangVolatility(opens, highs, lows, closes)},
		{"garch", GARCHVolatility(closes)},
	}

	for _, e := range estimates {
		if e.vol > 0 && !math.IsNaN(e.vol) && !math.IsInf(e.vol, 0) {
			results[e.name] = e.vol
		}
	}

	return results
}

// MedianVolatility reduces an estimator map to a single robust estimate.
// Returns 0 when no estimates are available.
func MedianVolatility(estimates map[string]float64) float64 {
	if len(estimates) == 0 {
		return 0
	}

	vols := make([]float64, 0, len(estimates))
	for _, v := range estimates {
		vols = append(vols, v)
	}
	sort.Float64s(vols)

	return stat.Quantile(0.5, stat.Empirical, vols, nil)
}
