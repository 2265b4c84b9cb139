// Package config carries every tunable the pipeline needs as an explicit
// value. The pipeline core never reads process environment itself; cmd loads
// a Config once and threads it through.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"transcript-insights-go/internal/retry"
)

type StrategyConfig struct {
	// Token-estimate cutoffs for strategy recommendation.
	BasicMaxTokens  int `koanf:"basic_max_tokens"`
	HybridMaxTokens int `koanf:"hybrid_max_tokens"`
}

type EnrichConfig struct {
	MinConfidence float64 `koanf:"min_confidence"`
	MinItems      int     `koanf:"min_items"`
}

type RetryConfig struct {
	Attempts       int `koanf:"attempts"`
	InitialDelayMs int `koanf:"initial_delay_ms"`
}

func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		Attempts:     r.Attempts,
		InitialDelay: time.Duration(r.InitialDelayMs) * time.Millisecond,
	}
}

type LLMConfig struct {
	GatewayURL  string  `koanf:"gateway_url"`
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	TimeoutSec  int     `koanf:"timeout_sec"`
	Temperature float64 `koanf:"temperature"`
	UseMock     bool    `koanf:"use_mock"`
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSec) * time.Second
}

type Config struct {
	Port     string         `koanf:"port"`
	Strategy StrategyConfig `koanf:"strategy"`
	Enrich   EnrichConfig   `koanf:"enrich"`
	Retry    RetryConfig    `koanf:"retry"`
	LLM      LLMConfig      `koanf:"llm"`
}

func Default() Config {
	return Config{
		Port: "8080",
		Strategy: StrategyConfig{
			BasicMaxTokens:  4000,
			HybridMaxTokens: 12000,
		},
		Enrich: EnrichConfig{
			MinConfidence: 0.5,
			MinItems:      1,
		},
		Retry: RetryConfig{
			Attempts:       3,
			InitialDelayMs: 500,
		},
		LLM: LLMConfig{
			TimeoutSec:  25,
			Temperature: 0.0,
		},
	}
}

// envKeys maps recognized environment variables onto config paths. Variables
// outside this table are ignored.
var envKeys = map[string]string{
	"PORT":                       "port",
	"STRATEGY_BASIC_MAX_TOKENS":  "strategy.basic_max_tokens",
	"STRATEGY_HYBRID_MAX_TOKENS": "strategy.hybrid_max_tokens",
	"ENRICHMENT_MIN_CONFIDENCE":  "enrich.min_confidence",
	"ENRICHMENT_MIN_ITEMS":       "enrich.min_items",
	"RETRY_ATTEMPTS":             "retry.attempts",
	"RETRY_INITIAL_DELAY_MS":     "retry.initial_delay_ms",
	"LLM_GATEWAY_URL":            "llm.gateway_url",
	"LLM_API_KEY":                "llm.api_key",
	"LLM_MODEL":                  "llm.model",
	"LLM_TIMEOUT_SEC":            "llm.timeout_sec",
	"LLM_TEMPERATURE":            "llm.temperature",
	"USE_MOCK_LLM":               "llm.use_mock",
}

// Load returns the defaults overridden by any recognized environment
// variables.
func Load() (Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(key string) string {
		return envKeys[key]
	}), nil); err != nil {
		return cfg, fmt.Errorf("load env config: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
