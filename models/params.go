package models

import "fmt"

type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// SimulationParameters holds the full input set for one pricing request.
type SimulationParameters struct {
	S0             float64 `json:"s0"`              // Spot price of the underlying
	K              float64 `json:"strike"`          // Strike price
	T              float64 `json:"maturity"`        // Time to expiry in years
	R              float64 `json:"risk_free_rate"`  // Continuously compounded risk-free rate
	Sigma          float64 `json:"sigma"`           // Annualized volatility
	NumSimulations int     `json:"num_simulations"` // Antithetic path pairs per run
	NumSteps       int     `json:"num_steps"`       // Time steps per path
}

func NewSimulationParameters(s0, k, t, r, sigma float64, numSimulations, numSteps int) SimulationParameters {
	return SimulationParameters{
		S0:             s0,
		K:              k,
		T:              t,
		R:              r,
		Sigma:          sigma,
		NumSimulations: numSimulations,
		NumSteps:       numSteps,
	}
}

// Validate rejects any parameter set that would produce NaN or Inf prices
// downstream. Errors wrap ErrInvalidParameters.
func (p SimulationParameters) Validate() error {
	switch {
	case p.S0 <= 0:
		return fmt.Errorf("%w: spot price must be positive, got %v", ErrInvalidParameters, p.S0)
	case p.K <= 0:
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameters, p.K)
	case p.T <= 0:
		return fmt.Errorf("%w: time to expiry must be positive, got %v", ErrInvalidParameters, p.T)
	case p.Sigma <= 0:
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidParameters, p.Sigma)
	case p.NumSimulations < 1:
		return fmt.Errorf("%w: need at least one simulation, got %d", ErrInvalidParameters, p.NumSimulations)
	case p.NumSteps < 1:
		return fmt.Errorf("%w: need at least one time step, got %d", ErrInvalidParameters, p.NumSteps)
	}
	return nil
}
