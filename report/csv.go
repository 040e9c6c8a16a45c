package report

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/bcdannyboy/europt/montecarlo"
)

type gridRow struct {
	S0    float64 `csv:"s0"`
	Sigma float64 `csv:"sigma"`
	Price float64 `csv:"price"`
}

type convergenceRow struct {
	NumSimulations int     `csv:"num_simulations"`
	Price          float64 `csv:"price"`
	StdError       float64 `csv:"std_error"`
	Width          float64 `csv:"ci_width"`
	AbsError       float64 `csv:"abs_error"`
}

// WriteGridCSV exports the sensitivity grid, one row per cell.
func WriteGridCSV(path string, cells []montecarlo.SensitivityCell) error {
	rows := make([]gridRow, len(cells))
	for i, cell := range cells {
		rows[i] = gridRow{S0: cell.S0, Sigma: cell.Sigma, Price: cell.Price}
	}
	return writeCSV(path, &rows)
}

// WriteConvergenceCSV exports the convergence study, one row per sample size.
func WriteConvergenceCSV(path string, study []montecarlo.ConvergenceRow) error {
	rows := make([]convergenceRow, len(study))
	for i, r := range study {
		rows[i] = convergenceRow{
			NumSimulations: r.NumSimulations,
			Price:          r.Price,
			StdError:       r.StdError,
			Width:          r.Width,
			AbsError:       r.AbsError,
		}
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %s", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("failed to write %s: %s", path, err)
	}

	return nil
}
