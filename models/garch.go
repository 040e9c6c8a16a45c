package models

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	garchChainLength = 2000
	garchBurnIn      = 200
	garchStepSize    = 0.01
	garchSeed        = 1
)

// GARCH11 holds the parameters of a GARCH(1,1) variance process.
type GARCH11 struct {
	Omega float64
	Alpha float64
	Beta  float64
}

func (g GARCH11) valid() bool {
	return g.Omega > 0 && g.Alpha >= 0 && g.Beta >= 0 && g.Alpha+g.Beta < 1
}

// LogLikelihood scores the parameters against a daily log-return series.
func (g GARCH11) LogLikelihood(returns []float64) float64 {
	variance := g.Omega / (1 - g.Alpha - g.Beta)

	logLik := 0.0
	for i := 1; i < len(returns); i++ {
		variance = g.Omega + g.Alpha*returns[i-1]*returns[i-1] + g.Beta*variance
		logLik += -0.5*math.Log(2*math.Pi) - 0.5*math.Log(variance) - 0.5*returns[i]*returns[i]/variance
	}

	return logLik
}

// ConditionalVolatility runs the variance recursion to the end of the series
// and annualizes the result.
func (g GARCH11) ConditionalVolatility(returns []float64) float64 {
	variance := g.Omega / (1 - g.Alpha - g.Beta)

	for i := 1; i < len(returns); i++ {
		variance = g.Omega + g.Alpha*returns[i-1]*returns[i-1] + g.Beta*variance
	}

	return math.Sqrt(variance * tradingDaysPerYear)
}

// EstimateGARCH11 fits GARCH(1,1) by maximum likelihood: a short seeded MCMC
// walk locates the high-likelihood region, then Nelder-Mead polishes the
// chain average. The seeded walk keeps repeated fits identical.
func EstimateGARCH11(returns []float64) (GARCH11, error) {
	if len(returns) < 30 {
		return GARCH11{}, fmt.Errorf("%w: need at least 30 returns for GARCH, got %d", ErrInsufficientSamples, len(returns))
	}

	src := rand.NewSource(garchSeed)
	step := distuv.Normal{Mu: 0, Sigma: garchStepSize, Src: src}
	accept := distuv.Uniform{Min: 0, Max: 1, Src: src}

	chain := make([]GARCH11, garchChainLength)
	chain[0] = GARCH11{Omega: 1e-6, Alpha: 0.1, Beta: 0.8}

	for i := 1; i < garchChainLength; i++ {
		// Omega lives on a much smaller scale than Alpha and Beta.
		proposal := GARCH11{
			Omega: chain[i-1].Omega + step.Rand()*garchStepSize,
			Alpha: chain[i-1].Alpha + step.Rand(),
			Beta:  chain[i-1].Beta + step.Rand(),
		}

		if !proposal.valid() {
			chain[i] = chain[i-1]
			continue
		}

		logAcceptProb := proposal.LogLikelihood(returns) - chain[i-1].LogLikelihood(returns)
		if math.Log(accept.Rand()) < logAcceptProb {
			chain[i] = proposal
		} else {
			chain[i] = chain[i-1]
		}
	}

	avg := GARCH11{}
	for i := garchBurnIn; i < garchChainLength; i++ {
		avg.Omega += chain[i].Omega
		avg.Alpha += chain[i].Alpha
		avg.Beta += chain[i].Beta
	}
	n := float64(garchChainLength - garchBurnIn)
	avg.Omega /= n
	avg.Alpha /= n
	avg.Beta /= n

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			g := GARCH11{Omega: x[0], Alpha: x[1], Beta: x[2]}
			if !g.valid() {
				return math.MaxFloat64
			}
			return -g.LogLikelihood(returns)
		},
	}

	result, err := optimize.Minimize(problem, []float64{avg.Omega, avg.Alpha, avg.Beta}, nil, &optimize.NelderMead{})
	if err != nil {
		// The chain average is still a usable fit.
		return avg, nil
	}

	fitted := GARCH11{Omega: result.X[0], Alpha: result.X[1], Beta: result.X[2]}
	if !fitted.valid() {
		return avg, nil
	}

	return fitted, nil
}

// GARCHVolatility is the conditional-volatility estimator over a close
// series. Returns 0 when the series is too short or the fit degenerates.
func GARCHVolatility(closes []float64) float64 {
	if len(closes) < 31 {
		return 0
	}

	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = math.Log(closes[i] / closes[i-1])
	}

	// A degenerate series carries no volatility information; fitting it
	// would only chase numerical noise.
	if v := stat.Variance(returns, nil); math.IsNaN(v) || v < 1e-12 {
		return 0
	}

	params, err := EstimateGARCH11(returns)
	if err != nil {
		return 0
	}

	return params.ConditionalVolatility(returns)
}
