// Package config loads the law-agent runtime configuration from an
// optional YAML file and environment variables (spec §6), with explicit
// struct field values always winning over the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the law-agent runtime.
type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Tools         ToolsConfig         `yaml:"tools"`
	Memory        MemoryConfig        `yaml:"memory"`
	Agent         AgentConfig         `yaml:"agent"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig configures metrics and tracing export (ambient
// concern carried per SPEC_FULL.md's DOMAIN STACK; not disabled by any
// Non-goal).
type ObservabilityConfig struct {
	MetricsAddr   string  `yaml:"metrics_addr"`   // default ":9090"; not read: serve mounts /metrics on its own --addr
	TraceEndpoint string  `yaml:"trace_endpoint"` // OTLP gRPC collector endpoint; empty disables tracing
	TraceSampling float64 `yaml:"trace_sampling"` // default 1.0
	ServiceName   string  `yaml:"service_name"`   // default "law-agent"
	Environment   string  `yaml:"environment"`    // default "development"
}

// LLMConfig configures the chat-completion provider (C1).
type LLMConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	RouterModel     string        `yaml:"router_model"` // supplemented: faster model for routing
	SpecialistModel string        `yaml:"specialist_model"`
	Timeout         time.Duration `yaml:"timeout"`     // default 120s
	MaxRetries      int           `yaml:"max_retries"` // default 3
}

// EmbeddingConfig configures the embedding provider (C2).
type EmbeddingConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Dimension  int           `yaml:"dimension"` // not read: the embedding client derives the dimension from the model name
	Timeout    time.Duration `yaml:"timeout"`   // default 300s
	MaxRetries int           `yaml:"max_retries"`
}

// ToolsConfig configures tool-specific secrets (C7).
type ToolsConfig struct {
	BochaAPIKey     string        `yaml:"bocha_api_key"`   // web_search
	BochaEndpoint   string        `yaml:"bocha_endpoint"`  // web_search POST endpoint
	WeatherAPIKey   string        `yaml:"weather_api_key"` // weather, optional
	WeatherEndpoint string        `yaml:"weather_endpoint"`
	GoogleAPIKey    string        `yaml:"google_api_key"` // loaded from GOOGLE_API_KEY; no tool reads it
	GoogleCX        string        `yaml:"google_cx"`
	OutputDir       string        `yaml:"output_dir"`        // document_generator output, default ./output
	MaxObserve      int           `yaml:"max_observe"`       // default 2000
	CrawlerMaxChars int           `yaml:"crawler_max_chars"` // default 10000
	PythonTimeout   time.Duration `yaml:"python_timeout"`    // default 10s
	FileReadRoot    string        `yaml:"file_read_root"`    // default "."
}

// MemoryConfig configures the three-tier memory subsystem (C3-C6).
type MemoryConfig struct {
	VectorDBPath           string `yaml:"vector_db_path"`           // default ./data/vector_db
	VectorDBCollection     string `yaml:"vector_db_collection"`     // default "law_agent"
	SessionMemorySize      int    `yaml:"session_memory_size"`      // default 50
	ContextWindowSize      int    `yaml:"context_window_size"`      // default 10
	ContextRefineThreshold int    `yaml:"context_refine_threshold"` // default 5
}

// AgentConfig configures loop bounds shared by the ReAct/ToolCall/Critic
// machinery (C8-C12).
type AgentConfig struct {
	MaxSteps           int `yaml:"max_steps"`           // default 10
	MaxCriticRounds    int `yaml:"max_critic_rounds"`   // default 2
	DuplicateThreshold int `yaml:"duplicate_threshold"` // default 2
}

// Default returns the configuration with every spec-mandated default
// value set.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:           "qwen-max",
			RouterModel:     "qwen-flash",
			SpecialistModel: "qwen-max",
			Timeout:         120 * time.Second,
			MaxRetries:      3,
		},
		Embedding: EmbeddingConfig{
			Timeout:    300 * time.Second,
			MaxRetries: 3,
		},
		Tools: ToolsConfig{
			OutputDir:       "./output",
			MaxObserve:      2000,
			BochaEndpoint:   "https://api.bochaai.com/v1/web-search",
			WeatherEndpoint: "https://api.weatherapi.com/v1/current.json",
			CrawlerMaxChars: 10000,
			PythonTimeout:   10 * time.Second,
			FileReadRoot:    ".",
		},
		Memory: MemoryConfig{
			VectorDBPath:           "./data/vector_db",
			VectorDBCollection:     "law_agent",
			SessionMemorySize:      50,
			ContextWindowSize:      10,
			ContextRefineThreshold: 5,
		},
		Agent: AgentConfig{
			MaxSteps:           10,
			MaxCriticRounds:    2,
			DuplicateThreshold: 2,
		},
		Observability: ObservabilityConfig{
			MetricsAddr:   ":9090",
			TraceSampling: 1.0,
			ServiceName:   "law-agent",
			Environment:   "development",
		},
	}
}

// Load builds a Config starting from Default(), applying an optional YAML
// file at path (ignored if path is empty or missing), then environment
// variables, then finally re-applying any values already set by the
// caller on cfg before Load was invoked would be lost — so Load takes no
// caller-supplied overrides; apply those to the returned Config directly,
// consistent with spec §6 ("explicit struct values override env").
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays recognized environment variables onto cfg. Only
// unset (empty) fields are overridden so that an explicit YAML value
// still beats a looser env default, while env itself beats the
// hardcoded Default().
func applyEnv(cfg *Config) {
	setIfEmpty(&cfg.LLM.APIKey, firstEnv("LLM_API_KEY"))
	setIfEmpty(&cfg.LLM.BaseURL, firstEnv("LLM_BASE_URL"))
	setIfEmpty(&cfg.Embedding.APIKey, firstEnv("EMBEDDING_API_KEY", "LLM_API_KEY"))
	setIfEmpty(&cfg.Embedding.BaseURL, firstEnv("EMBEDDING_BASE_URL", "LLM_BASE_URL"))
	setIfEmpty(&cfg.Tools.BochaAPIKey, firstEnv("BOCHA_API_KEY"))
	setIfEmpty(&cfg.Tools.WeatherAPIKey, firstEnv("WEATHER_API_KEY"))
	setIfEmpty(&cfg.Tools.GoogleAPIKey, firstEnv("GOOGLE_API_KEY"))
	setIfEmpty(&cfg.Tools.GoogleCX, firstEnv("GOOGLE_CX"))
	if v := os.Getenv("BOCHA_ENDPOINT"); v != "" && cfg.Tools.BochaEndpoint == Default().Tools.BochaEndpoint {
		cfg.Tools.BochaEndpoint = v
	}
	if v := os.Getenv("WEATHER_ENDPOINT"); v != "" && cfg.Tools.WeatherEndpoint == Default().Tools.WeatherEndpoint {
		cfg.Tools.WeatherEndpoint = v
	}
	setIfEmpty(&cfg.Observability.TraceEndpoint, firstEnv("OTEL_EXPORTER_OTLP_ENDPOINT"))

	if v := os.Getenv("SESSION_MEMORY_SIZE"); v != "" && cfg.Memory.SessionMemorySize == Default().Memory.SessionMemorySize {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Memory.SessionMemorySize = n
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
