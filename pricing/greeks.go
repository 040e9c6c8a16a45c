package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bcdannyboy/europt/models"
)

// DefaultBumpSize is the finite-difference bump applied to each input.
const DefaultBumpSize = 0.01

type GreeksBundle struct {
	Delta float64 `json:"delta"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Gamma float64 `json:"gamma"`
	Rho   float64 `json:"rho"`
}

// FiniteDifferenceGreeks bumps each closed-form input independently with
// symmetric central differences. Theta uses a reversed bump direction,
// (C(T-eps) - C(T+eps)) / 2eps, so it reports price decay per unit of time
// passed rather than the raw derivative in T. That is the intended sign
// convention.
func FiniteDifferenceGreeks(s, k, t, r, sigma, eps float64) (GreeksBundle, error) {
	if eps <= 0 {
		return GreeksBundle{}, fmt.Errorf("%w: bump size must be positive, got %v", models.ErrInvalidParameters, eps)
	}
	if err := checkInputs(s, k, t, sigma); err != nil {
		return GreeksBundle{}, err
	}
	// The down-bumps must leave every leg inside the closed-form domain.
	if t <= eps {
		return GreeksBundle{}, fmt.Errorf("%w: time to expiry %v must exceed bump size %v", models.ErrInvalidParameters, t, eps)
	}
	if sigma <= eps {
		return GreeksBundle{}, fmt.Errorf("%w: volatility %v must exceed bump size %v", models.ErrInvalidParameters, sigma, eps)
	}
	if s <= eps {
		return GreeksBundle{}, fmt.Errorf("%w: spot %v must exceed bump size %v", models.ErrInvalidParameters, s, eps)
	}

	base, err := CallPrice(s, k, t, r, sigma)
	if err != nil {
		return GreeksBundle{}, err
	}

	legs := []struct {
		s, t, r, sigma float64
	}{
		{s + eps, t, r, sigma},
		{s - eps, t, r, sigma},
		{s, t, r, sigma + eps},
		{s, t, r, sigma - eps},
		{s, t - eps, r, sigma},
		{s, t + eps, r, sigma},
		{s, t, r + eps, sigma},
		{s, t, r - eps, sigma},
	}
	prices := make([]float64, len(legs))
	for i, leg := range legs {
		price, err := CallPrice(leg.s, k, leg.t, leg.r, leg.sigma)
		if err != nil {
			return GreeksBundle{}, err
		}
		prices[i] = price
	}

	sUp, sDown := prices[0], prices[1]
	volUp, volDown := prices[2], prices[3]
	tDown, tUp := prices[4], prices[5]
	rUp, rDown := prices[6], prices[7]

	return GreeksBundle{
		Delta: (sUp - sDown) / (2 * eps),
		Vega:  (volUp - volDown) / (2 * eps),
		Theta: (tDown - tUp) / (2 * eps),
		Gamma: (sUp - 2*base + sDown) / (eps * eps),
		Rho:   (rUp - rDown) / (2 * eps),
	}, nil
}

// AnalyticGreeks returns the closed-form call Greeks. Used as the Newton
// step in implied-volatility solving and as a cross-check against the
// finite-difference bundle; the report always carries the FD values.
func AnalyticGreeks(s, k, t, r, sigma float64) (GreeksBundle, error) {
	if err := checkInputs(s, k, t, sigma); err != nil {
		return GreeksBundle{}, err
	}

	d1, d2 := d1d2(s, k, t, r, sigma)
	pdf := distuv.UnitNormal.Prob(d1)
	discount := math.Exp(-r * t)

	return GreeksBundle{
		Delta: distuv.UnitNormal.CDF(d1),
		Vega:  s * pdf * math.Sqrt(t),
		Theta: -(s*pdf*sigma)/(2*math.Sqrt(t)) - r*k*discount*distuv.UnitNormal.CDF(d2),
		Gamma: pdf / (s * sigma * math.Sqrt(t)),
		Rho:   k * t * discount * distuv.UnitNormal.CDF(d2),
	}, nil
}

func analyticVega(s, k, t, r, sigma float64) float64 {
	d1, _ := d1d2(s, k, t, r, sigma)
	return s * distuv.UnitNormal.Prob(d1) * math.Sqrt(t)
}
