package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/bcdannyboy/europt/models"
)

const (
	maxIterations = 100
	ivTolerance   = 1e-8
	minVega       = 1e-10

	sigmaFloor   = 1e-4
	sigmaCeiling = 5.0
)

// ImpliedVolatility solves for the volatility that reproduces the observed
// option price via Newton-Raphson on the closed form.
func ImpliedVolatility(target, s, k, t, r float64, kind models.OptionKind) (float64, error) {
	if target <= 0 {
		return 0, fmt.Errorf("%w: target price must be positive, got %v", models.ErrInvalidParameters, target)
	}
	if s <= 0 || k <= 0 || t <= 0 {
		return 0, fmt.Errorf("%w: spot, strike and expiry must be positive", models.ErrInvalidParameters)
	}

	sigma := 0.5
	for i := 0; i < maxIterations; i++ {
		price, err := Price(s, k, t, r, sigma, kind)
		if err != nil {
			return 0, err
		}

		diff := price - target
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}

		vega := analyticVega(s, k, t, r, sigma)
		if vega < minVega {
			return 0, fmt.Errorf("implied volatility: vega vanished at sigma=%v", sigma)
		}

		sigma -= diff / vega
		if sigma <= 0 {
			sigma = sigmaFloor
		}
	}

	return 0, fmt.Errorf("implied volatility did not converge after %d iterations", maxIterations)
}

// CalibrateSigma fits a single volatility to a strip of call quotes by
// least squares over strikes, using Nelder-Mead on the pricing error.
func CalibrateSigma(marketPrices, strikes []float64, s, t, r float64) (float64, error) {
	if len(marketPrices) == 0 || len(marketPrices) != len(strikes) {
		return 0, fmt.Errorf("%w: need matching non-empty price and strike slices, got %d and %d",
			models.ErrInvalidParameters, len(marketPrices), len(strikes))
	}
	if s <= 0 || t <= 0 {
		return 0, fmt.Errorf("%w: spot and expiry must be positive", models.ErrInvalidParameters)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			sigma := x[0]
			if sigma < sigmaFloor || sigma > sigmaCeiling {
				return math.MaxFloat64
			}

			mse := 0.0
			for i, strike := range strikes {
				modelPrice, err := CallPrice(s, strike, t, r, sigma)
				if err != nil {
					return math.MaxFloat64
				}
				mse += math.Pow(modelPrice-marketPrices[i], 2)
			}
			return mse / float64(len(strikes))
		},
	}

	result, err := optimize.Minimize(problem, []float64{0.2}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, fmt.Errorf("calibrate sigma: %w", err)
	}

	sigma := result.X[0]
	if sigma < sigmaFloor || sigma > sigmaCeiling || math.IsNaN(sigma) {
		return 0, fmt.Errorf("calibrate sigma: converged to unusable volatility %v", sigma)
	}

	return sigma, nil
}
