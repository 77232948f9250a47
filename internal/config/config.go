package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sluice-go/sluice/internal/stats"
	"github.com/sluice-go/sluice/pkg/gate"
)

// Config is the top-level configuration for a sluice server.
type Config struct {
	Server ServerConfig
	Limits []LimitConfig
	Redis  *RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// LimitConfig describes one rate ceiling in the config file.
type LimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// RedisConfig enables the Redis stats backend when present.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Default returns a Config with sensible defaults: one conservative
// limit, in-memory stats.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Limits: []LimitConfig{
			{MaxRequests: 10, Window: time.Second},
		},
	}
}

// Validate checks that the config can produce a working server.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	for i, l := range c.Limits {
		if l.MaxRequests <= 0 {
			return fmt.Errorf("limits[%d]: max_requests must be positive, got %d", i, l.MaxRequests)
		}
		if l.Window <= 0 {
			return fmt.Errorf("limits[%d]: window must be positive, got %s", i, l.Window)
		}
	}
	if c.Redis != nil && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must not be empty when redis is configured")
	}
	return nil
}

// BuildLimits constructs fresh gate limits from the configured ceilings,
// preserving file order. Every call returns new descriptor identities, so
// applying a reloaded file always starts the changed set with clean
// ledgers.
func (c Config) BuildLimits() ([]*gate.Limit, error) {
	limits := make([]*gate.Limit, 0, len(c.Limits))
	for i, l := range c.Limits {
		limit, err := gate.NewLimit(l.MaxRequests, l.Window)
		if err != nil {
			return nil, fmt.Errorf("limits[%d]: %w", i, err)
		}
		limits = append(limits, limit)
	}
	return limits, nil
}

// StatsRedisConfig maps the optional redis block to the stats backend
// configuration. Returns false when redis is not configured.
func (c Config) StatsRedisConfig() (stats.RedisConfig, bool) {
	if c.Redis == nil {
		return stats.RedisConfig{}, false
	}
	return stats.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}, true
}

// LoadFile reads a YAML config file and merges it over defaults. Fields
// not present in the file keep their default values; a limits list in the
// file replaces the default list entirely.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	// Raw intermediate struct so windows can be written as "1s", "2m".
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
	if raw.Limits != nil {
		cfg.Limits = make([]LimitConfig, 0, len(raw.Limits))
		for i, l := range raw.Limits {
			window, err := time.ParseDuration(l.Window)
			if err != nil {
				return cfg, fmt.Errorf("parsing limits[%d].window: %w", i, err)
			}
			cfg.Limits = append(cfg.Limits, LimitConfig{
				MaxRequests: l.MaxRequests,
				Window:      window,
			})
		}
	}
	if raw.Redis != nil {
		cfg.Redis = &RedisConfig{
			Addr:     raw.Redis.Addr,
			Password: raw.Redis.Password,
			DB:       raw.Redis.DB,
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rawConfig is the YAML-friendly representation with string durations.
type rawConfig struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Limits []struct {
		MaxRequests int    `yaml:"max_requests"`
		Window      string `yaml:"window"`
	} `yaml:"limits"`
	Redis *struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// WriteExample writes an example config file to the given path.
func WriteExample(path string) error {
	example := `server:
  addr: ":8080"

limits:
  - max_requests: 2
    window: 1s
  - max_requests: 3
    window: 2s

# Optional: aggregate admission stats in Redis.
# redis:
#   addr: "localhost:6379"
`
	return os.WriteFile(path, []byte(example), 0o644)
}
