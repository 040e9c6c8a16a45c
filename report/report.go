package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/leekchan/accounting"
	"github.com/xhhuango/json"

	"github.com/bcdannyboy/europt/marketdata"
	"github.com/bcdannyboy/europt/models"
	"github.com/bcdannyboy/europt/montecarlo"
	"github.com/bcdannyboy/europt/pricing"
)

// Summary aggregates everything a pricing run produced: the simulated and
// closed-form prices, the greeks, and the optional sensitivity studies.
type Summary struct {
	RunID          string                       `json:"run_id"`
	GeneratedAt    string                       `json:"generated_at"`
	Parameters     models.SimulationParameters  `json:"parameters"`
	Market         *marketdata.Quote            `json:"market,omitempty"`
	CallEstimate   montecarlo.PayoffEstimate    `json:"call_estimate"`
	PutEstimate    montecarlo.PayoffEstimate    `json:"put_estimate"`
	CallClosedForm float64                      `json:"call_closed_form"`
	PutClosedForm  float64                      `json:"put_closed_form"`
	Greeks         pricing.GreeksBundle         `json:"greeks"`
	AnalyticGreeks pricing.GreeksBundle         `json:"analytic_greeks"`
	Grid           []montecarlo.SensitivityCell `json:"grid,omitempty"`
	Convergence    []montecarlo.ConvergenceRow  `json:"convergence,omitempty"`
}

// NewSummary stamps a fresh summary with a run ID and timestamp.
func NewSummary(p models.SimulationParameters) *Summary {
	return &Summary{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Parameters:  p,
	}
}

// WriteJSON persists the summary to path.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %s", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %s", path, err)
	}

	return nil
}

// RenderTable writes a terminal-friendly view of the summary.
func (s *Summary) RenderTable(w io.Writer) {
	money := accounting.Accounting{Symbol: "$", Precision: 4}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "run\t%s\t%s\n", s.RunID, s.GeneratedAt)
	if s.Market != nil {
		fmt.Fprintf(tw, "market\t%s spot=%s\tsigma=%.4f (%s)\n",
			s.Market.Symbol, money.FormatMoney(s.Market.Spot), s.Market.Sigma, s.Market.SigmaSource)
	}
	fmt.Fprintf(tw, "contract\tS0=%s K=%s\tT=%.4g r=%.4g sigma=%.4g\n",
		money.FormatMoney(s.Parameters.S0), money.FormatMoney(s.Parameters.K),
		s.Parameters.T, s.Parameters.R, s.Parameters.Sigma)
	fmt.Fprintf(tw, "scale\t%d paths x %d steps\tantithetic\n",
		s.Parameters.NumSimulations, s.Parameters.NumSteps)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "\tmonte carlo\tclosed form\t95%% CI\n")
	fmt.Fprintf(tw, "call\t%s\t%s\t[%s, %s] +/- %.4f\n",
		money.FormatMoney(s.CallEstimate.Price), money.FormatMoney(s.CallClosedForm),
		money.FormatMoney(s.CallEstimate.Low), money.FormatMoney(s.CallEstimate.High),
		s.CallEstimate.StdError)
	fmt.Fprintf(tw, "put\t%s\t%s\t[%s, %s] +/- %.4f\n",
		money.FormatMoney(s.PutEstimate.Price), money.FormatMoney(s.PutClosedForm),
		money.FormatMoney(s.PutEstimate.Low), money.FormatMoney(s.PutEstimate.High),
		s.PutEstimate.StdError)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "\tfinite difference\tanalytic\n")
	fmt.Fprintf(tw, "delta\t%.6f\t%.6f\n", s.Greeks.Delta, s.AnalyticGreeks.Delta)
	fmt.Fprintf(tw, "gamma\t%.6f\t%.6f\n", s.Greeks.Gamma, s.AnalyticGreeks.Gamma)
	fmt.Fprintf(tw, "vega\t%.6f\t%.6f\n", s.Greeks.Vega, s.AnalyticGreeks.Vega)
	fmt.Fprintf(tw, "theta\t%.6f\t%.6f\n", s.Greeks.Theta, s.AnalyticGreeks.Theta)
	fmt.Fprintf(tw, "rho\t%.6f\t%.6f\n", s.Greeks.Rho, s.AnalyticGreeks.Rho)

	if len(s.Grid) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "grid\t%d cells\n", len(s.Grid))
	}
	if len(s.Convergence) > 0 {
		last := s.Convergence[len(s.Convergence)-1]
		fmt.Fprintf(tw, "convergence\t%d sizes, final CI width %.4f at n=%d\n",
			len(s.Convergence), last.Width, last.NumSimulations)
	}

	tw.Flush()
}
