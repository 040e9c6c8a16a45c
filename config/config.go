package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/bcdannyboy/europt/models"
)

// PricingConfig describes the contract and the simulation scale.
type PricingConfig struct {
	S0             float64 `yaml:"s0"`
	Strike         float64 `yaml:"strike"`
	Maturity       float64 `yaml:"maturity"`
	RiskFreeRate   float64 `yaml:"risk_free_rate"`
	Sigma          float64 `yaml:"sigma"`
	NumSimulations int     `yaml:"num_simulations"`
	NumSteps       int     `yaml:"num_steps"`
	Seed           uint64  `yaml:"seed"`
}

// GridConfig bounds the spot/volatility sensitivity sweep.
type GridConfig struct {
	S0Min          float64 `yaml:"s0_min"`
	S0Max          float64 `yaml:"s0_max"`
	S0Points       int     `yaml:"s0_points"`
	SigmaMin       float64 `yaml:"sigma_min"`
	SigmaMax       float64 `yaml:"sigma_max"`
	SigmaPoints    int     `yaml:"sigma_points"`
	SamplesPerCell int     `yaml:"samples_per_cell"`
}

// MarketConfig controls live quote resolution. When Symbol is empty the
// engine prices the configured contract as-is, fully offline.
type MarketConfig struct {
	Symbol       string `yaml:"symbol"`
	TradierToken string `yaml:"tradier_token"`
}

// OutputConfig names the artifacts a run leaves behind.
type OutputConfig struct {
	JSONFile       string `yaml:"json_file"`
	GridCSV        string `yaml:"grid_csv"`
	ConvergenceCSV string `yaml:"convergence_csv"`
	ChartDir       string `yaml:"chart_dir"`
	Charts         bool   `yaml:"charts"`
	Progress       bool   `yaml:"progress"`
}

type Config struct {
	Pricing          PricingConfig `yaml:"pricing"`
	Grid             GridConfig    `yaml:"grid"`
	Market           MarketConfig  `yaml:"market"`
	Output           OutputConfig  `yaml:"output"`
	ConvergenceSizes []int         `yaml:"convergence_sizes"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Pricing: PricingConfig{
			S0:             100,
			Strike:         105,
			Maturity:       1.0,
			RiskFreeRate:   0.05,
			Sigma:          0.2,
			NumSimulations: 100000,
			NumSteps:       252,
			Seed:           123,
		},
		Grid: GridConfig{
			S0Min:          80,
			S0Max:          120,
			S0Points:       9,
			SigmaMin:       0.1,
			SigmaMax:       0.5,
			SigmaPoints:    9,
			SamplesPerCell: 20000,
		},
		Market: MarketConfig{},
		Output: OutputConfig{
			JSONFile:       "jpricing.json",
			GridCSV:        "grid.csv",
			ConvergenceCSV: "convergence.csv",
			ChartDir:       "charts",
			Charts:         true,
			Progress:       true,
		},
		ConvergenceSizes: []int{1000, 4000, 16000, 64000},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %s", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %s", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Pricing.S0 = getEnvFloat("EUROPT_S0", c.Pricing.S0)
	c.Pricing.Strike = getEnvFloat("EUROPT_STRIKE", c.Pricing.Strike)
	c.Pricing.Maturity = getEnvFloat("EUROPT_MATURITY", c.Pricing.Maturity)
	c.Pricing.RiskFreeRate = getEnvFloat("EUROPT_RISK_FREE_RATE", c.Pricing.RiskFreeRate)
	c.Pricing.Sigma = getEnvFloat("EUROPT_SIGMA", c.Pricing.Sigma)
	c.Pricing.NumSimulations = getEnvInt("EUROPT_NUM_SIMULATIONS", c.Pricing.NumSimulations)
	c.Pricing.NumSteps = getEnvInt("EUROPT_NUM_STEPS", c.Pricing.NumSteps)
	c.Pricing.Seed = getEnvUint("EUROPT_SEED", c.Pricing.Seed)

	c.Market.Symbol = getEnv("EUROPT_SYMBOL", c.Market.Symbol)
	c.Market.TradierToken = getEnv("TRADIER_KEY", c.Market.TradierToken)

	c.Output.Progress = getEnvBool("EUROPT_PROGRESS", c.Output.Progress)
}

// Validate checks the pricing section against the simulation contract. The
// grid section is validated by the sweep itself. In ticker mode a zero
// strike is legal: it resolves to the at-the-money level once the quote
// arrives.
func (c *Config) Validate() error {
	p := c.Pricing.SimulationParameters()
	if p.K == 0 && c.Market.Symbol != "" {
		p.K = p.S0
	}
	return p.Validate()
}

// SimulationParameters converts the pricing section into the engine's
// parameter struct.
func (p PricingConfig) SimulationParameters() models.SimulationParameters {
	return models.NewSimulationParameters(p.S0, p.Strike, p.Maturity, p.RiskFreeRate, p.Sigma, p.NumSimulations, p.NumSteps)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
