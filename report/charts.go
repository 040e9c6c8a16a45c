package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/bcdannyboy/europt/models"
	"github.com/bcdannyboy/europt/montecarlo"
)

// priceGrid adapts a row-major sensitivity grid (spot outer, volatility
// inner) to the plotter's grid interface.
type priceGrid struct {
	cells       []montecarlo.SensitivityCell
	s0Points    int
	sigmaPoints int
}

func (g priceGrid) Dims() (c, r int) { return g.s0Points, g.sigmaPoints }

func (g priceGrid) Z(c, r int) float64 { return g.cells[c*g.sigmaPoints+r].Price }

func (g priceGrid) X(c int) float64 { return g.cells[c*g.sigmaPoints].S0 }

func (g priceGrid) Y(r int) float64 { return g.cells[r].Sigma }

// SavePriceHeatmap renders the sensitivity grid as a spot-by-volatility
// heatmap.
func SavePriceHeatmap(cells []montecarlo.SensitivityCell, s0Points, sigmaPoints int, path string) error {
	if len(cells) == 0 || len(cells) != s0Points*sigmaPoints {
		return fmt.Errorf("grid dimensions %dx%d do not match %d cells", s0Points, sigmaPoints, len(cells))
	}

	grid := priceGrid{cells: cells, s0Points: s0Points, sigmaPoints: sigmaPoints}

	low, high := priceRange(cells)
	if high <= low {
		high = low + 1
	}
	colors := moreland.SmoothBlueRed()
	colors.SetMin(low)
	colors.SetMax(high)

	p := plot.New()
	p.Title.Text = "Call Price by Spot and Volatility"
	p.X.Label.Text = "Spot"
	p.Y.Label.Text = "Volatility"
	p.Add(plotter.NewHeatMap(grid, colors.Palette(255)))

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

func priceRange(cells []montecarlo.SensitivityCell) (low, high float64) {
	low, high = cells[0].Price, cells[0].Price
	for _, cell := range cells[1:] {
		if cell.Price < low {
			low = cell.Price
		}
		if cell.Price > high {
			high = cell.Price
		}
	}
	return low, high
}

// SaveSamplePaths renders the first count simulated paths.
func SaveSamplePaths(paths *models.PathSet, count int, path string) error {
	if paths == nil || paths.Normal == nil {
		return fmt.Errorf("no paths to plot")
	}

	rows, cols := paths.Normal.Dims()
	if count > rows {
		count = rows
	}

	p := plot.New()
	p.Title.Text = "Simulated GBM Paths"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Price"
	p.Add(plotter.NewGrid())

	for i := 0; i < count; i++ {
		pts := make(plotter.XYs, cols)
		for j := 0; j < cols; j++ {
			pts[j].X = float64(j)
			pts[j].Y = paths.Normal.At(i, j)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build path line: %s", err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
	}

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// SavePayoffHistogram renders the distribution of pair-averaged payoffs.
func SavePayoffHistogram(payoffs []float64, path string) error {
	if len(payoffs) == 0 {
		return fmt.Errorf("no payoffs to plot")
	}

	values := make(plotter.Values, len(payoffs))
	copy(values, payoffs)

	hist, err := plotter.NewHist(values, 40)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %s", err)
	}
	hist.Normalize(1)

	p := plot.New()
	p.Title.Text = "Payoff Distribution"
	p.X.Label.Text = "Payoff"
	p.Y.Label.Text = "Density"
	p.Add(hist)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// SaveConvergenceChart renders CI width against sample count on log-log
// axes, where the Monte Carlo rate shows up as a straight line.
func SaveConvergenceChart(rows []montecarlo.ConvergenceRow, path string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no convergence rows to plot")
	}

	pts := make(plotter.XYs, len(rows))
	for i, row := range rows {
		pts[i].X = float64(row.NumSimulations)
		pts[i].Y = row.Width
	}

	p := plot.New()
	p.Title.Text = "Confidence Interval Width"
	p.X.Label.Text = "Simulations"
	p.Y.Label.Text = "95% CI Width"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	if err := plotutil.AddLinePoints(p, "ci width", pts); err != nil {
		return fmt.Errorf("failed to build convergence line: %s", err)
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
