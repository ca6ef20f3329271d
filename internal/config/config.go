package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Links     LinksConfig     `yaml:"links" mapstructure:"links"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Feedback  FeedbackConfig  `yaml:"feedback" mapstructure:"feedback"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`

	// Source is the config file that was read, if any.
	Source string `yaml:"-" mapstructure:"-"`
}

// LLMConfig selects and configures the analysis provider.
// APIKey is optional here; credentials are usually taken from the environment.
type LLMConfig struct {
	Provider  string        `yaml:"provider" mapstructure:"provider"`
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKey    string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"` // 0 leaves the provider default
}

// StoreConfig configures the persistent key-value store.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // file, sqlite, memory
	Path   string `yaml:"path" mapstructure:"path"`
}

// HistoryConfig bounds the query history.
type HistoryConfig struct {
	Limit int `yaml:"limit" mapstructure:"limit"`
}

// CacheConfig configures the analysis result cache.
// It is off by default so that resubmitting a claim asks the provider again.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig throttles outbound provider requests.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// LinksConfig controls fetching of URLs found in submissions.
type LinksConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxPages      int           `yaml:"max_pages" mapstructure:"max_pages"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	MaxChars      int           `yaml:"max_chars" mapstructure:"max_chars"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// FeedbackConfig sets where feedback mail is addressed.
type FeedbackConfig struct {
	Recipient string `yaml:"recipient" mapstructure:"recipient"`
	Subject   string `yaml:"subject" mapstructure:"subject"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// HomeDir returns the application directory (~/.veritas), or ".veritas" when
// the home directory cannot be determined.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".veritas"
	}
	return filepath.Join(home, ".veritas")
}

// Default returns the built-in configuration.
func Default() *Config {
	home := HomeDir()
	return &Config{
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.5-flash",
			Timeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   filepath.Join(home, "store"),
		},
		History: HistoryConfig{Limit: 50},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       filepath.Join(home, "cache"),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 2, Burst: 2},
		Links: LinksConfig{
			Enabled:       false,
			MaxPages:      2,
			MaxBytes:      2_000_000,
			MaxChars:      8000,
			Timeout:       15 * time.Second,
			UserAgent:     "Veritas/0.1 (+https://github.com/ppiankov/veritas)",
			RespectRobots: true,
		},
		Batch: BatchConfig{Concurrency: 4},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:*"},
			MaxUploadBytes: 28 << 20,
		},
		Feedback: FeedbackConfig{
			Recipient: "feedback@veritas.local",
			Subject:   "Veritas AI Feedback",
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from defaults, the optional config file and
// VERITAS_* environment variables, in increasing priority.
// An empty path searches ~/.veritas/config.yaml and ./config.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(HomeDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("VERITAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	cfg.Source = v.ConfigFileUsed()
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 50
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("history.limit", d.History.Limit)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)
	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
	v.SetDefault("links.enabled", d.Links.Enabled)
	v.SetDefault("links.max_pages", d.Links.MaxPages)
	v.SetDefault("links.max_bytes", d.Links.MaxBytes)
	v.SetDefault("links.max_chars", d.Links.MaxChars)
	v.SetDefault("links.timeout", d.Links.Timeout)
	v.SetDefault("links.user_agent", d.Links.UserAgent)
	v.SetDefault("links.respect_robots", d.Links.RespectRobots)
	v.SetDefault("links.http_proxy", "")
	v.SetDefault("links.https_proxy", "")
	v.SetDefault("batch.concurrency", d.Batch.Concurrency)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("feedback.recipient", d.Feedback.Recipient)
	v.SetDefault("feedback.subject", d.Feedback.Subject)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
