package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"

	"github.com/bcdannyboy/europt/config"
	"github.com/bcdannyboy/europt/marketdata"
	"github.com/bcdannyboy/europt/models"
	"github.com/bcdannyboy/europt/montecarlo"
	"github.com/bcdannyboy/europt/pricing"
	"github.com/bcdannyboy/europt/report"
)

const sampleChartPaths = 25

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	params := cfg.Pricing.SimulationParameters()

	var quote *marketdata.Quote
	if cfg.Market.Symbol != "" {
		var providers []marketdata.Provider
		if cfg.Market.TradierToken != "" {
			providers = append(providers, marketdata.NewTradierProvider(cfg.Market.TradierToken, params.R))
		}
		providers = append(providers, &marketdata.YahooProvider{})

		quote, err = marketdata.Resolve(cfg.Market.Symbol, providers...)
		if err != nil {
			log.Fatalf("failed to resolve market data: %s", err)
		}

		params.S0 = quote.Spot
		params.Sigma = quote.Sigma
		fmt.Printf("Resolved %s: spot %.2f, sigma %.4f (%s)\n", quote.Symbol, quote.Spot, quote.Sigma, quote.SigmaSource)

		if params.K == 0 {
			params.K = atmStrike(quote.Spot)
			fmt.Printf("Defaulted strike to at-the-money %.2f\n", params.K)
		}
	}

	fmt.Printf("Pricing S0=%.2f K=%.2f T=%.4g r=%.4g sigma=%.4g over %d paths x %d steps\n",
		params.S0, params.K, params.T, params.R, params.Sigma, params.NumSimulations, params.NumSteps)

	stopMonitor := make(chan struct{})
	go monitorCPUUsage(stopMonitor)

	start := time.Now()
	paths, err := models.SimulateGBM(params, cfg.Pricing.Seed)
	if err != nil {
		log.Fatalf("simulation failed: %s", err)
	}
	fmt.Printf("Simulated %d antithetic path pairs in %s\n", params.NumSimulations, time.Since(start).Round(time.Millisecond))

	callEstimate, err := montecarlo.Estimate(paths, params.K, params.R, params.T, models.Call)
	if err != nil {
		log.Fatalf("call estimate failed: %s", err)
	}
	putEstimate, err := montecarlo.Estimate(paths, params.K, params.R, params.T, models.Put)
	if err != nil {
		log.Fatalf("put estimate failed: %s", err)
	}

	callClosedForm, err := pricing.CallPrice(params.S0, params.K, params.T, params.R, params.Sigma)
	if err != nil {
		log.Fatalf("closed-form call failed: %s", err)
	}
	putClosedForm, err := pricing.PutPrice(params.S0, params.K, params.T, params.R, params.Sigma)
	if err != nil {
		log.Fatalf("closed-form put failed: %s", err)
	}

	greeks, err := pricing.FiniteDifferenceGreeks(params.S0, params.K, params.T, params.R, params.Sigma, pricing.DefaultBumpSize)
	if err != nil {
		log.Fatalf("finite-difference greeks failed: %s", err)
	}
	analytic, err := pricing.AnalyticGreeks(params.S0, params.K, params.T, params.R, params.Sigma)
	if err != nil {
		log.Fatalf("analytic greeks failed: %s", err)
	}

	gridCfg := montecarlo.GridConfig{
		S0Min:          cfg.Grid.S0Min,
		S0Max:          cfg.Grid.S0Max,
		S0Points:       cfg.Grid.S0Points,
		SigmaMin:       cfg.Grid.SigmaMin,
		SigmaMax:       cfg.Grid.SigmaMax,
		SigmaPoints:    cfg.Grid.SigmaPoints,
		K:              params.K,
		T:              params.T,
		R:              params.R,
		SamplesPerCell: cfg.Grid.SamplesPerCell,
		Seed:           cfg.Pricing.Seed,
		ShowProgress:   cfg.Output.Progress,
	}

	fmt.Printf("Sweeping %dx%d sensitivity grid\n", gridCfg.S0Points, gridCfg.SigmaPoints)
	cells, err := montecarlo.Sweep(gridCfg)
	if err != nil {
		log.Fatalf("sensitivity sweep failed: %s", err)
	}

	study, err := montecarlo.ConvergenceStudy(params, cfg.Pricing.Seed, cfg.ConvergenceSizes)
	if err != nil {
		log.Fatalf("convergence study failed: %s", err)
	}

	close(stopMonitor)

	summary := report.NewSummary(params)
	summary.Market = quote
	summary.CallEstimate = callEstimate
	summary.PutEstimate = putEstimate
	summary.CallClosedForm = callClosedForm
	summary.PutClosedForm = putClosedForm
	summary.Greeks = greeks
	summary.AnalyticGreeks = analytic
	summary.Grid = cells
	summary.Convergence = study

	if err := summary.WriteJSON(cfg.Output.JSONFile); err != nil {
		log.Fatalf("failed to write summary: %s", err)
	}
	if err := report.WriteGridCSV(cfg.Output.GridCSV, cells); err != nil {
		log.Printf("failed to write grid csv: %s", err)
	}
	if err := report.WriteConvergenceCSV(cfg.Output.ConvergenceCSV, study); err != nil {
		log.Printf("failed to write convergence csv: %s", err)
	}

	if cfg.Output.Charts {
		writeCharts(cfg, paths, params, cells, study)
	}

	summary.RenderTable(os.Stdout)
	fmt.Printf("Successfully wrote pricing run %s to %s\n", summary.RunID, cfg.Output.JSONFile)
}

// atmStrike rounds the spot to the nearest listed-strike increment.
func atmStrike(spot float64) float64 {
	k := math.Round(spot/5) * 5
	if k <= 0 {
		return spot
	}
	return k
}

func writeCharts(cfg *config.Config, paths *models.PathSet, params models.SimulationParameters, cells []montecarlo.SensitivityCell, study []montecarlo.ConvergenceRow) {
	if err := os.MkdirAll(cfg.Output.ChartDir, 0755); err != nil {
		log.Printf("failed to create chart dir: %s", err)
		return
	}

	if err := report.SaveSamplePaths(paths, sampleChartPaths, filepath.Join(cfg.Output.ChartDir, "paths.png")); err != nil {
		log.Printf("failed to write paths chart: %s", err)
	}

	payoffs, err := montecarlo.AveragedPayoffs(paths, params.K, models.Call)
	if err != nil {
		log.Printf("failed to compute payoffs for histogram: %s", err)
	} else if err := report.SavePayoffHistogram(payoffs, filepath.Join(cfg.Output.ChartDir, "payoffs.png")); err != nil {
		log.Printf("failed to write payoff histogram: %s", err)
	}

	if err := report.SavePriceHeatmap(cells, cfg.Grid.S0Points, cfg.Grid.SigmaPoints, filepath.Join(cfg.Output.ChartDir, "heatmap.png")); err != nil {
		log.Printf("failed to write heatmap: %s", err)
	}

	if err := report.SaveConvergenceChart(study, filepath.Join(cfg.Output.ChartDir, "convergence.png")); err != nil {
		log.Printf("failed to write convergence chart: %s", err)
	}
}

func monitorCPUUsage(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			percentage, err := cpu.Percent(time.Second, false)
			if err == nil && len(percentage) > 0 {
				fmt.Printf("CPU Usage: %.2f%%\n", percentage[0])
			}
		}
	}
}
