package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bcdannyboy/europt/models"
)

// checkInputs guards the closed form against the log/division domain.
// T=0 and sigma=0 are rejected here rather than propagated as NaN.
func checkInputs(s, k, t, sigma float64) error {
	switch {
	case s <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", models.ErrInvalidParameters, s)
	case k <= 0:
		return fmt.Errorf("%w: strike must be positive, got %v", models.ErrInvalidParameters, k)
	case t <= 0:
		return fmt.Errorf("%w: time to expiry must be positive, got %v", models.ErrInvalidParameters, t)
	case sigma <= 0:
		return fmt.Errorf("%w: volatility must be positive, got %v", models.ErrInvalidParameters, sigma)
	}
	return nil
}

func d1d2(s, k, t, r, sigma float64) (float64, float64) {
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return d1, d2
}

// CallPrice returns the Black-Scholes price of a European call.
func CallPrice(s, k, t, r, sigma float64) (float64, error) {
	if err := checkInputs(s, k, t, sigma); err != nil {
		return 0, err
	}

	d1, d2 := d1d2(s, k, t, r, sigma)
	price := s*distuv.UnitNormal.CDF(d1) - k*math.Exp(-r*t)*distuv.UnitNormal.CDF(d2)
	return price, nil
}

// PutPrice returns the Black-Scholes price of a European put.
func PutPrice(s, k, t, r, sigma float64) (float64, error) {
	if err := checkInputs(s, k, t, sigma); err != nil {
		return 0, err
	}

	d1, d2 := d1d2(s, k, t, r, sigma)
	price := k*math.Exp(-r*t)*distuv.UnitNormal.CDF(-d2) - s*distuv.UnitNormal.CDF(-d1)
	return price, nil
}

// Price dispatches on the option kind.
func Price(s, k, t, r, sigma float64, kind models.OptionKind) (float64, error) {
	switch kind {
	case models.Call:
		return CallPrice(s, k, t, r, sigma)
	case models.Put:
		return PutPrice(s, k, t, r, sigma)
	}
	return 0, fmt.Errorf("%w: unknown option kind %q", models.ErrInvalidParameters, kind)
}
