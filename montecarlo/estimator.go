package montecarlo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/bcdannyboy/europt/models"
)

// zCritical95 is the fixed normal critical value for the 95% interval.
const zCritical95 = 1.96

// PayoffEstimate is one discounted Monte Carlo price with its standard
// error and 95% confidence interval. Immutable after creation.
type PayoffEstimate struct {
	Price    float64 `json:"price"`
	StdError float64 `json:"std_error"`
	Low      float64 `json:"ci_low"`
	High     float64 `json:"ci_high"`
}

// AveragedPayoffs returns the undiscounted payoff per path row, with each
// antithetic pair averaged before any aggregation. Averaging the matched
// pair first is what realizes the variance reduction; averaging two
// separate means afterwards is not equivalent.
func AveragedPayoffs(paths *models.PathSet, k float64, kind models.OptionKind) ([]float64, error) {
	if paths == nil || paths.Normal == nil || paths.Antithetic == nil {
		return nil, fmt.Errorf("%w: nil path set", models.ErrInvalidParameters)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: strike must be positive, got %v", models.ErrInvalidParameters, k)
	}
	if kind != models.Call && kind != models.Put {
		return nil, fmt.Errorf("%w: unknown option kind %q", models.ErrInvalidParameters, kind)
	}

	normal, antithetic := paths.TerminalValues()
	payoffs := make([]float64, len(normal))
	for i := range normal {
		if kind == models.Call {
			payoffs[i] = 0.5 * (math.Max(normal[i]-k, 0) + math.Max(antithetic[i]-k, 0))
		} else {
			payoffs[i] = 0.5 * (math.Max(k-normal[i], 0) + math.Max(k-antithetic[i], 0))
		}
	}

	return payoffs, nil
}

// Estimate converts a path set into a discounted price estimate with a
// standard error and 95% confidence interval. The standard error is
// computed on the undiscounted payoff vector and discounted consistently.
func Estimate(paths *models.PathSet, k, r, t float64, kind models.OptionKind) (PayoffEstimate, error) {
	if t <= 0 {
		return PayoffEstimate{}, fmt.Errorf("%w: time to expiry must be positive, got %v", models.ErrInvalidParameters, t)
	}

	payoffs, err := AveragedPayoffs(paths, k, kind)
	if err != nil {
		return PayoffEstimate{}, err
	}
	if len(payoffs) < 2 {
		return PayoffEstimate{}, fmt.Errorf("%w: standard error needs at least 2 paths, got %d", models.ErrInsufficientSamples, len(payoffs))
	}

	mean, std := stat.MeanStdDev(payoffs, nil)
	stdErr := stat.StdErr(std, float64(len(payoffs)))

	discount := math.Exp(-r * t)
	price := discount * mean
	se := discount * stdErr

	return PayoffEstimate{
		Price:    price,
		StdError: se,
		Low:      price - zCritical95*se,
		High:     price + zCritical95*se,
	}, nil
}
