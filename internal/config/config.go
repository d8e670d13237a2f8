package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"marketbrief/internal/validate"
)

// Config holds all configuration for the marketbrief data layer.
type Config struct {
	// API keys for the metric providers
	AlphavantageAPIKey string `mapstructure:"alphavantage_api_key"`
	FMPAPIKey          string `mapstructure:"fmp_api_key"`
	AnalysisAPIKey     string `mapstructure:"analysis_api_key"`

	// Base URLs for API endpoints (configurable for testing)
	AlphavantageBaseURL string `mapstructure:"alphavantage_base_url"`
	FMPBaseURL          string `mapstructure:"fmp_base_url"`
	QuoteBaseURL        string `mapstructure:"quote_base_url"`
	AnalysisBaseURL     string `mapstructure:"analysis_base_url"`

	// What to fetch
	IndexSymbol      string `mapstructure:"index_symbol"`
	EarningsSymbol   string `mapstructure:"earnings_symbol"`
	TreasuryMaturity string `mapstructure:"treasury_maturity"`
	Region           string `mapstructure:"region"`

	// EPS sanity bound overrides. Defaults match the S&P 500 profile;
	// other indices tune them without a code change.
	EPSQuarterlyLow  float64 `mapstructure:"eps_quarterly_low"`
	EPSQuarterlyHigh float64 `mapstructure:"eps_quarterly_high"`
	EPSRatioMin      float64 `mapstructure:"eps_ratio_min"`
	EPSRatioMax      float64 `mapstructure:"eps_ratio_max"`
	EPSTargetRatio   float64 `mapstructure:"eps_target_ratio"`

	// Analysis job polling
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"`
}

// EPSBounds folds the configured overrides into the EPS sanity bounds.
func (c *Config) EPSBounds() validate.Bounds {
	b := validate.EPSBounds()
	b.WrongUnitLow = c.EPSQuarterlyLow
	b.WrongUnitHigh = c.EPSQuarterlyHigh
	b.RatioMin = c.EPSRatioMin
	b.RatioMax = c.EPSRatioMax
	b.TargetRatio = c.EPSTargetRatio
	return b
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
//
// Expected environment variables:
//   - ALPHAVANTAGE_API_KEY
//   - FMP_API_KEY
//   - ANALYSIS_API_KEY
//   - ANALYSIS_BASE_URL
//   - ALPHAVANTAGE_BASE_URL (optional, defaults to production)
//   - FMP_BASE_URL (optional, defaults to production)
//   - QUOTE_BASE_URL (optional, defaults to production)
//   - INDEX_SYMBOL (optional, defaults to ^GSPC)
//   - EARNINGS_SYMBOL (optional, defaults to SPY)
//   - TREASURY_MATURITY (optional, defaults to 10year)
//   - REGION (optional, defaults to global)
//   - EPS_QUARTERLY_LOW / EPS_QUARTERLY_HIGH (optional, defaults 50 / 80)
//   - EPS_RATIO_MIN / EPS_RATIO_MAX (optional, defaults 0.03 / 0.05)
//   - EPS_TARGET_RATIO (optional, defaults to 0.04)
//   - POLL_INTERVAL (optional, defaults to 10s)
//   - MAX_POLL_ATTEMPTS (optional, defaults to 30)
func Load() (*Config, error) {
	v := viper.New()

	// Set up environment variable support
	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	// Set defaults
	epsDefaults := validate.EPSBounds()
	v.SetDefault("alphavantage_base_url", "https://www.alphavantage.co/query")
	v.SetDefault("fmp_base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("quote_base_url", "https://query1.finance.yahoo.com/v7/finance/quote")
	v.SetDefault("index_symbol", "^GSPC")
	v.SetDefault("earnings_symbol", "SPY")
	v.SetDefault("treasury_maturity", "10year")
	v.SetDefault("region", "global")
	v.SetDefault("eps_quarterly_low", epsDefaults.WrongUnitLow)
	v.SetDefault("eps_quarterly_high", epsDefaults.WrongUnitHigh)
	v.SetDefault("eps_ratio_min", epsDefaults.RatioMin)
	v.SetDefault("eps_ratio_max", epsDefaults.RatioMax)
	v.SetDefault("eps_target_ratio", epsDefaults.TargetRatio)
	v.SetDefault("poll_interval", "10s")
	v.SetDefault("max_poll_attempts", 30)

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.marketbrief")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	// Bind environment variables
	v.BindEnv("alphavantage_api_key", "ALPHAVANTAGE_API_KEY")
	v.BindEnv("fmp_api_key", "FMP_API_KEY")
	v.BindEnv("analysis_api_key", "ANALYSIS_API_KEY")
	v.BindEnv("alphavantage_base_url", "ALPHAVANTAGE_BASE_URL")
	v.BindEnv("fmp_base_url", "FMP_BASE_URL")
	v.BindEnv("quote_base_url", "QUOTE_BASE_URL")
	v.BindEnv("analysis_base_url", "ANALYSIS_BASE_URL")
	v.BindEnv("index_symbol", "INDEX_SYMBOL")
	v.BindEnv("earnings_symbol", "EARNINGS_SYMBOL")
	v.BindEnv("treasury_maturity", "TREASURY_MATURITY")
	v.BindEnv("region", "REGION")
	v.BindEnv("eps_quarterly_low", "EPS_QUARTERLY_LOW")
	v.BindEnv("eps_quarterly_high", "EPS_QUARTERLY_HIGH")
	v.BindEnv("eps_ratio_min", "EPS_RATIO_MIN")
	v.BindEnv("eps_ratio_max", "EPS_RATIO_MAX")
	v.BindEnv("eps_target_ratio", "EPS_TARGET_RATIO")
	v.BindEnv("poll_interval", "POLL_INTERVAL")
	v.BindEnv("max_poll_attempts", "MAX_POLL_ATTEMPTS")

	// Unmarshal config into struct
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	var missing []string
	if config.AlphavantageAPIKey == "" {
		missing = append(missing, "ALPHAVANTAGE_API_KEY")
	}
	if config.FMPAPIKey == "" {
		missing = append(missing, "FMP_API_KEY")
	}
	if config.AnalysisBaseURL == "" {
		missing = append(missing, "ANALYSIS_BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if config.EPSQuarterlyLow <= 0 || config.EPSQuarterlyLow >= config.EPSQuarterlyHigh {
		return nil, fmt.Errorf("eps_quarterly_low must be positive and below eps_quarterly_high, got [%g, %g]",
			config.EPSQuarterlyLow, config.EPSQuarterlyHigh)
	}
	if config.EPSRatioMin <= 0 || config.EPSRatioMin >= config.EPSRatioMax {
		return nil, fmt.Errorf("eps_ratio_min must be positive and below eps_ratio_max, got [%g, %g]",
			config.EPSRatioMin, config.EPSRatioMax)
	}
	if config.EPSTargetRatio < config.EPSRatioMin || config.EPSTargetRatio > config.EPSRatioMax {
		return nil, fmt.Errorf("eps_target_ratio %g must lie within [%g, %g]",
			config.EPSTargetRatio, config.EPSRatioMin, config.EPSRatioMax)
	}

	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", config.PollInterval)
	}
	if config.MaxPollAttempts <= 0 {
		return nil, fmt.Errorf("max_poll_attempts must be positive, got %d", config.MaxPollAttempts)
	}

	return config, nil
}
