package models

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PathSet holds a matched pair of GBM path matrices, each of shape
// numSimulations x (numSteps+1). Row i of Antithetic is driven by the
// negated innovations of row i of Normal, so the two must always be
// consumed together, never mixed across runs.
type PathSet struct {
	Normal     *mat.Dense
	Antithetic *mat.Dense
}

func (ps *PathSet) NumPaths() int {
	r, _ := ps.Normal.Dims()
	return r
}

func (ps *PathSet) NumSteps() int {
	_, c := ps.Normal.Dims()
	return c - 1
}

// TerminalValues returns copies of the last column of both matrices.
func (ps *PathSet) TerminalValues() (normal, antithetic []float64) {
	rows, cols := ps.Normal.Dims()
	normal = make([]float64, rows)
	antithetic = make([]float64, rows)
	for i := 0; i < rows; i++ {
		normal[i] = ps.Normal.At(i, cols-1)
		antithetic[i] = ps.Antithetic.At(i, cols-1)
	}
	return normal, antithetic
}

// SimulateGBM generates the matched normal/antithetic path pair for the
// given parameters. The innovation matrix is drawn in a single row-major
// pass from the seeded source, then the exact-discretization recurrence
//
//	S[t+1] = S[t] * exp((r - sigma^2/2)*dt + sigma*sqrt(dt)*z)
//
// is applied per row by a worker pool. The same seed and parameters always
// produce bit-identical output regardless of GOMAXPROCS.
func SimulateGBM(p SimulationParameters, seed uint64) (*PathSet, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("simulate gbm: %w", err)
	}

	numSims := p.NumSimulations
	numSteps := p.NumSteps

	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	z := mat.NewDense(numSims, numSteps, nil)
	for i := 0; i < numSims; i++ {
		for j := 0; j < numSteps; j++ {
			z.Set(i, j, dist.Rand())
		}
	}

	dt := p.T / float64(numSteps)
	drift := (p.R - 0.5*p.Sigma*p.Sigma) * dt
	volStep := p.Sigma * math.Sqrt(dt)

	normal := mat.NewDense(numSims, numSteps+1, nil)
	antithetic := mat.NewDense(numSims, numSteps+1, nil)

	var wg sync.WaitGroup
	numWorkers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (numSims + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			end := start + rowsPerWorker
			if end > numSims {
				end = numSims
			}

			for i := start; i < end; i++ {
				s := p.S0
				sAnti := p.S0
				normal.Set(i, 0, s)
				antithetic.Set(i, 0, sAnti)

				for j := 0; j < numSteps; j++ {
					zij := z.At(i, j)
					s *= math.Exp(drift + volStep*zij)
					sAnti *= math.Exp(drift - volStep*zij)
					normal.Set(i, j+1, s)
					antithetic.Set(i, j+1, sAnti)
				}
			}
		}(w * rowsPerWorker)
	}

	wg.Wait()

	return &PathSet{Normal: normal, Antithetic: antithetic}, nil
}
