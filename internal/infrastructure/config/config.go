package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Engine   EngineConfig   `koanf:"engine"`

	Telemetry TelemetryConfig `koanf:"telemetry"`
	Security  SecurityConfig  `koanf:"security"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// CatalogConfig selects where requirement catalogs are loaded from.
// Source is "yaml" (Dir holds one bundle file per framework) or
// "postgres" (the database URL above, Table below).
type CatalogConfig struct {
	Source string `koanf:"source"`
	Dir    string `koanf:"dir"`
	Table  string `koanf:"table"`
}

type EngineConfig struct {
	SimilarityFloor        float64 `koanf:"similarity_floor"`
	HighThreshold          float64 `koanf:"high_threshold"`
	MediumThreshold        float64 `koanf:"medium_threshold"`
	ConfidenceThreshold    float64 `koanf:"confidence_threshold"`
	TopK                   int     `koanf:"top_k"`
	ReportUnmatchedClauses bool    `koanf:"report_unmatched_clauses"`
	EnableKeywordFallback  bool    `koanf:"enable_keyword_fallback"`
	KeywordMinOverlap      float64 `koanf:"keyword_min_overlap"`
	MaxParallelFrameworks  int     `koanf:"max_parallel_frameworks"`
}

type TelemetryConfig struct {
	OTLPEndpoint      string  `koanf:"otlp_endpoint"`
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	MetricsEnabled    bool    `koanf:"metrics_enabled"`
	SamplingRate      float64 `koanf:"sampling_rate"`
	PrometheusEnabled bool    `koanf:"prometheus_enabled"`
}

type SecurityConfig struct {
	AuthEnabled bool            `koanf:"auth_enabled"`
	JWTSecret   string          `koanf:"jwt_secret"`
	TokenExpiry time.Duration   `koanf:"token_expiry"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`
}

// Load builds the configuration from defaults, an optional YAML file and
// CGE_-prefixed environment variables, in increasing precedence. An empty
// path falls back to configs/config.yaml when present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Catalog: CatalogConfig{
			Source: "yaml",
			Dir:    "catalogs",
			Table:  "requirements",
		},
		Engine: EngineConfig{
			SimilarityFloor:        0.3,
			HighThreshold:          0.75,
			MediumThreshold:        0.5,
			ConfidenceThreshold:    0.75,
			TopK:                   3,
			ReportUnmatchedClauses: true,
			EnableKeywordFallback:  true,
			KeywordMinOverlap:      0.5,
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled:    true,
			SamplingRate:      0.1,
			PrometheusEnabled: true,
		},
		Security: SecurityConfig{
			TokenExpiry: 24 * time.Hour,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	explicit := path != ""
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// The default file is optional; a path the operator asked for is not.
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("CGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CGE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Catalog.Source {
	case "yaml":
		if c.Catalog.Dir == "" {
			return fmt.Errorf("catalog.dir is required for the yaml source")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres catalog source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Engine.SimilarityFloor < 0 || c.Engine.SimilarityFloor > 1 {
		return fmt.Errorf("engine.similarity_floor must be in [0,1], got %v", c.Engine.SimilarityFloor)
	}
	if c.Engine.MediumThreshold > c.Engine.HighThreshold {
		return fmt.Errorf("engine.medium_threshold %v exceeds engine.high_threshold %v",
			c.Engine.MediumThreshold, c.Engine.HighThreshold)
	}
	if c.Engine.TopK <= 0 {
		return fmt.Errorf("engine.top_k must be positive, got %d", c.Engine.TopK)
	}
	if c.Security.AuthEnabled && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required when auth is enabled")
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("telemetry.sampling_rate must be in [0,1], got %v", c.Telemetry.SamplingRate)
	}
	return nil
}

// IsDevelopment reports whether the instance runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
