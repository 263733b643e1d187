package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete Legalyze configuration.
// The structure matches the config.yaml file and can be overridden by
// LEGALYZE_* environment variables (LEGALYZE_LLM_API_KEY, LEGALYZE_SERVER_ADDR, ...).

type Config struct {
	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Client   ClientConfig   `json:"client" mapstructure:"client"`
	LLM      LLMConfig      `json:"llm" mapstructure:"llm"`
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Audit    AuditConfig    `json:"audit" mapstructure:"audit"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
	MinIO    MinIOConfig    `json:"minio" mapstructure:"minio"`
}

// ServerConfig contains the analysis backend's HTTP settings

type ServerConfig struct {
	Addr            string   `json:"addr" mapstructure:"addr"`
	Timeout         string   `json:"timeout" mapstructure:"timeout"`
	ShutdownTimeout string   `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	CORSOrigins     []string `json:"cors_origins" mapstructure:"cors_origins"`
}

// ClientConfig contains the settings used by the interactive client

type ClientConfig struct {
	ServerURL         string `json:"server_url" mapstructure:"server_url"`
	SuggestionFencing bool   `json:"suggestion_fencing" mapstructure:"suggestion_fencing"`
}

// LLMConfig contains model provider configuration. An empty APIKey puts the
// backend in mock mode.

type LLMConfig struct {
	Provider  string `json:"provider" mapstructure:"provider"`
	Endpoint  string `json:"endpoint" mapstructure:"endpoint"`
	Model     string `json:"model" mapstructure:"model"`
	APIKey    string `json:"api_key" mapstructure:"api_key"`
	MaxTokens int    `json:"max_tokens" mapstructure:"max_tokens"`
}

type AnalysisConfig struct {
	CacheTTL      string `json:"cache_ttl" mapstructure:"cache_ttl"`
	MaxUploadSize int64  `json:"max_upload_size" mapstructure:"max_upload_size"`
}

type AuditConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	DSN     string `json:"dsn" mapstructure:"dsn"`
}

type LogConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	JSON       bool   `json:"json" mapstructure:"json"`
	File       string `json:"file" mapstructure:"file"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
}

// MinIOConfig configures the optional object store documents can be opened from.

type MinIOConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	Endpoint      string `json:"endpoint" mapstructure:"endpoint"`
	AccessKey     string `json:"access_key" mapstructure:"access_key"`
	SecretKey     string `json:"secret_key" mapstructure:"secret_key"`
	UseSSL        bool   `json:"use_ssl" mapstructure:"use_ssl"`
	DefaultBucket string `json:"default_bucket" mapstructure:"default_bucket"`
}

// DefaultSearchPaths are the directories searched for config.yaml.
var DefaultSearchPaths = []string{".", "$HOME/.legalyze"}

// Load loads the configuration from file and environment variables.
// Without arguments it searches DefaultSearchPaths.
func Load(paths ...string) (*Config, error) {
	// Load .env first (ignore error if not present)
	_ = godotenv.Load()

	if len(paths) == 0 {
		paths = DefaultSearchPaths
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("LEGALYZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Log.File = resolvePath(cfg.Log.File)
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("client.server_url", "http://localhost:5000")
	v.SetDefault("client.suggestion_fencing", false)

	// LLM defaults; no key means mock responses
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_tokens", 2048)

	v.SetDefault("analysis.cache_ttl", "10m")
	v.SetDefault("analysis.max_upload_size", 10485760)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.dsn", "file:legalyze-audit?mode=memory&cache=shared")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "127.0.0.1:9000")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.default_bucket", "contracts")
}

// MockMode reports whether no model provider is configured.
func (c LLMConfig) MockMode() bool {
	return strings.TrimSpace(c.APIKey) == ""
}

// TTL returns the parsed cache TTL. Validate has already rejected bad values.
func (c AnalysisConfig) TTL() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// Durations returns the parsed request and shutdown timeouts.
func (c ServerConfig) Durations() (timeout, shutdown time.Duration) {
	timeout, _ = time.ParseDuration(c.Timeout)
	shutdown, _ = time.ParseDuration(c.ShutdownTimeout)
	return timeout, shutdown
}

// resolvePath resolves ~ to home directory and cleans the path
func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
