package montecarlo

import (
	"fmt"
	"math"

	"github.com/bcdannyboy/europt/models"
	"github.com/bcdannyboy/europt/pricing"
)

// ConvergenceRow captures the estimator output at one path count, with
// the distance to the closed-form benchmark.
type ConvergenceRow struct {
	NumSimulations int     `json:"num_simulations"`
	Price          float64 `json:"price"`
	StdError       float64 `json:"std_error"`
	Width          float64 `json:"ci_width"`
	AbsError       float64 `json:"abs_error"`
}

// ConvergenceStudy reruns the full simulate-and-estimate pipeline at each
// requested path count, using a seed derived per run so the rows are
// independent draws. CI width is expected to shrink like 1/sqrt(n).
func ConvergenceStudy(p models.SimulationParameters, seed uint64, sizes []int) ([]ConvergenceRow, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: convergence study needs at least one size", models.ErrInvalidParameters)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("convergence study: %w", err)
	}

	benchmark, err := pricing.CallPrice(p.S0, p.K, p.T, p.R, p.Sigma)
	if err != nil {
		return nil, fmt.Errorf("convergence study: %w", err)
	}

	rows := make([]ConvergenceRow, 0, len(sizes))
	for i, n := range sizes {
		if n < 2 {
			return nil, fmt.Errorf("%w: convergence size %d below 2", models.ErrInsufficientSamples, n)
		}

		q := p
		q.NumSimulations = n

		paths, err := models.SimulateGBM(q, seed+uint64(i))
		if err != nil {
			return nil, fmt.Errorf("convergence study at n=%d: %w", n, err)
		}
		est, err := Estimate(paths, q.K, q.R, q.T, models.Call)
		if err != nil {
			return nil, fmt.Errorf("convergence study at n=%d: %w", n, err)
		}

		rows = append(rows, ConvergenceRow{
			NumSimulations: n,
			Price:          est.Price,
			StdError:       est.StdError,
			Width:          est.High - est.Low,
			AbsError:       math.Abs(est.Price - benchmark),
		})
	}

	return rows, nil
}
