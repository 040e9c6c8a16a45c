package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/bcdannyboy/europt/models"
)

const priceTolerance = 1e-9

func TestCallPriceReference(t *testing.T) {
	got, err := CallPrice(100, 100, 1.0, 0.05, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 10.450583572185565
	if math.Abs(got-want) > priceTolerance {
		t.Errorf("call price = %v, want %v", got, want)
	}
}

func TestPutPriceReference(t *testing.T) {
	got, err := PutPrice(100, 100, 1.0, 0.05, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 5.573526022256971
	if math.Abs(got-want) > priceTolerance {
		t.Errorf("put price = %v, want %v", got, want)
	}
}

func TestPutCallParity(t *testing.T) {
	tests := []struct {
		name            string
		s, k, t, r, vol float64
	}{
		{"at the money", 100, 100, 1.0, 0.05, 0.2},
		{"out of the money call", 100, 120, 0.5, 0.03, 0.25},
		{"in the money call", 120, 100, 2.0, 0.01, 0.15},
		{"high volatility", 50, 55, 0.25, 0.07, 0.8},
		{"negative rate", 100, 95, 1.0, -0.005, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := CallPrice(tt.s, tt.k, tt.t, tt.r, tt.vol)
			if err != nil {
				t.Fatalf("call error: %v", err)
			}
			put, err := PutPrice(tt.s, tt.k, tt.t, tt.r, tt.vol)
			if err != nil {
				t.Fatalf("put error: %v", err)
			}

			want := tt.s - tt.k*math.Exp(-tt.r*tt.t)
			if got := call - put; math.Abs(got-want) > priceTolerance {
				t.Errorf("parity violated: call-put = %v, want %v", got, want)
			}
		})
	}
}

func TestPriceInvalidInputs(t *testing.T) {
	tests := []struct {
		name            string
		s, k, t, r, vol float64
	}{
		{"zero spot", 0, 100, 1.0, 0.05, 0.2},
		{"negative spot", -100, 100, 1.0, 0.05, 0.2},
		{"zero strike", 100, 0, 1.0, 0.05, 0.2},
		{"zero expiry", 100, 100, 0, 0.05, 0.2},
		{"negative expiry", 100, 100, -1.0, 0.05, 0.2},
		{"zero volatility", 100, 100, 1.0, 0.05, 0},
		{"negative volatility", 100, 100, 1.0, 0.05, -0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CallPrice(tt.s, tt.k, tt.t, tt.r, tt.vol); !errors.Is(err, models.ErrInvalidParameters) {
				t.Errorf("call: expected ErrInvalidParameters, got %v", err)
			}
			if _, err := PutPrice(tt.s, tt.k, tt.t, tt.r, tt.vol); !errors.Is(err, models.ErrInvalidParameters) {
				t.Errorf("put: expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func TestShortMaturityApproachesIntrinsic(t *testing.T) {
	// As T -> 0+ the call price collapses to max(S-K, 0).
	itm, err := CallPrice(110, 100, 1e-6, 0.05, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(itm-10) > 0.01 {
		t.Errorf("short-maturity ITM call = %v, want ~10", itm)
	}

	otm, err := CallPrice(90, 100, 1e-6, 0.05, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if otm > 1e-6 {
		t.Errorf("short-maturity OTM call = %v, want ~0", otm)
	}
}

func TestPriceDispatch(t *testing.T) {
	call, err := Price(100, 100, 1.0, 0.05, 0.2, models.Call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	direct, _ := CallPrice(100, 100, 1.0, 0.05, 0.2)
	if call != direct {
		t.Errorf("dispatch call = %v, direct = %v", call, direct)
	}

	if _, err := Price(100, 100, 1.0, 0.05, 0.2, models.OptionKind("straddle")); !errors.Is(err, models.ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters for unknown kind, got %v", err)
	}
}
