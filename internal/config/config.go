// Package config loads the service's environment-backed configuration,
// following the teacher's typed-config-struct shape but sourcing values
// from the process environment (optionally seeded by a local .env file)
// instead of a YAML document.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Host                   string
	Port                   int
	AnonRateLimitPerMinute int // per-IP cap when Redis is configured; 0 disables
}

type DatabaseConfig struct {
	DSN         string
	MaxOpenConn int
	MaxIdleConn int
}

type RedisConfig struct {
	URL string // empty disables the Redis-backed search cache and rate limit entirely
}

type AdapterTuning struct {
	RequestTimeoutSeconds int
	RateLimitDelaySeconds float64
	MaxResultsPerSource   int
	BoardTokens           []string // read from ADAPTER_BOARD_TOKENS but passed to no adapter; the ATS adapters use the per-ATS lists in SourceKeys
	Countries             []string // country codes the Adzuna adapter searches; the JobSpy entry does not read it
}

// SourceKeys holds the per-adapter credentials and board lists. Every
// field is optional; an adapter whose keys are unset reports itself
// unavailable rather than failing a search.
type SourceKeys struct {
	AdzunaAppID       string
	AdzunaAppKey      string
	ReedAPIKey        string
	USAJobsAPIKey     string
	USAJobsEmail      string
	FindworkAPIKey    string
	JoobleAPIKey      string
	SerpAPIKey        string
	CareerjetAffID    string
	JobDataAPIKey     string
	LeverBoards       []string
	AshbyBoards       []string
	WorkableBoards    []string
	GreenhouseBoards  []string
	LinkedInDirectTPR string // loaded but read by no adapter; LinkedInDirect derives f_TPR from the search's PostedInLastDays

	LinkedInBrowserMode bool   // best-effort: drive a persistent browser profile instead of the guest API
	LinkedInProfileDir  string // user-data-dir for the persistent profile; empty disables browser mode
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
}

type GoogleLLMConfig struct {
	APIKey string
}

type OllamaConfig struct {
	BaseURL string // local model runtime, default http://localhost:11434
}

type OpenWebUIConfig struct {
	BaseURL string // OpenAI-compatible gateway fronting multiple models
	APIKey  string
}

type LLMConfig struct {
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Google     GoogleLLMConfig
	Ollama     OllamaConfig
	OpenWebUI  OpenWebUIConfig
	TimeoutSec int
}

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Adapters   AdapterTuning
	SourceKeys SourceKeys
	LLM        LLMConfig
}

// Load reads configuration from the environment, first loading a local
// .env file if present (errors from a missing .env are ignored — it is
// optional in production where real env vars are already set).
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:                   getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                   getEnvInt("SERVER_PORT", 8090),
			AnonRateLimitPerMinute: getEnvInt("ANON_RATE_LIMIT_PER_MINUTE", 60),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DATABASE_DSN", ""),
			MaxOpenConn: getEnvInt("DATABASE_MAX_OPEN_CONN", 5),
			MaxIdleConn: getEnvInt("DATABASE_MAX_IDLE_CONN", 5),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Adapters: AdapterTuning{
			RequestTimeoutSeconds: getEnvInt("REQUEST_TIMEOUT", 15),
			RateLimitDelaySeconds: getEnvFloat("RATE_LIMIT_DELAY", 1.0),
			MaxResultsPerSource:   getEnvInt("MAX_RESULTS_PER_SOURCE", 100),
			BoardTokens:           getEnvList("ADAPTER_BOARD_TOKENS", nil),
			Countries:             getEnvList("ADAPTER_COUNTRIES", []string{"us", "gb"}),
		},
		LLM: LLMConfig{
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			Anthropic: AnthropicConfig{
				APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			},
			Google: GoogleLLMConfig{
				APIKey: getEnv("GOOGLE_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				BaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			},
			OpenWebUI: OpenWebUIConfig{
				BaseURL: getEnv("OWUI_BASE_URL", ""),
				APIKey:  getEnv("OWUI_API_KEY", ""),
			},
			TimeoutSec: getEnvInt("LLM_TIMEOUT_SECONDS", 300),
		},
		SourceKeys: SourceKeys{
			AdzunaAppID:       getEnv("ADZUNA_APP_ID", ""),
			AdzunaAppKey:      getEnv("ADZUNA_APP_KEY", ""),
			ReedAPIKey:        getEnv("REED_API_KEY", ""),
			USAJobsAPIKey:     getEnv("USAJOBS_API_KEY", ""),
			USAJobsEmail:      getEnv("USAJOBS_EMAIL", ""),
			FindworkAPIKey:    getEnv("FINDWORK_API_KEY", ""),
			JoobleAPIKey:      getEnv("JOOBLE_API_KEY", ""),
			SerpAPIKey:        getEnv("SERPAPI_KEY", ""),
			CareerjetAffID:    getEnv("CAREERJET_AFFID", ""),
			JobDataAPIKey:     getEnv("JOBDATA_API_KEY", ""),
			LeverBoards:       getEnvList("LEVER_BOARD_TOKENS", nil),
			AshbyBoards:       getEnvList("ASHBY_BOARD_TOKENS", nil),
			WorkableBoards:    getEnvList("WORKABLE_BOARD_TOKENS", nil),
			GreenhouseBoards:  getEnvList("GREENHOUSE_BOARD_TOKENS", nil),
			LinkedInDirectTPR:   getEnv("LINKEDIN_DIRECT_TPR", "r604800"),
			LinkedInBrowserMode: getEnvBool("LINKEDIN_BROWSER_MODE", false),
			LinkedInProfileDir:  getEnv("LINKEDIN_PROFILE_DIR", ""),
		},
	}

	return cfg
}

// Validate performs basic sanity checks so misconfiguration fails fast
// at startup rather than during the first request.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("DATABASE_DSN must be set")
	}
	if cfg.Adapters.MaxResultsPerSource <= 0 {
		return fmt.Errorf("MAX_RESULTS_PER_SOURCE must be positive, got %d", cfg.Adapters.MaxResultsPerSource)
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
