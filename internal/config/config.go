package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Game      GameConfig      `yaml:"game"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RateLimit is requests per second allowed per client; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// GameConfig holds the simulation tunables.
type GameConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	PayoutPeriod   time.Duration `yaml:"payout_period"`
	CitizenPeriod  time.Duration `yaml:"citizen_period"`
	ReconcileGrace time.Duration `yaml:"reconcile_grace"`
	LedgerRetries  int           `yaml:"ledger_retry_attempts"`
	EventBuffer    int           `yaml:"event_buffer"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			RateLimit: 10,
			RateBurst: 20,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "starbase.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Game: GameConfig{
			TickInterval:   10 * time.Second,
			PayoutPeriod:   time.Minute,
			CitizenPeriod:  time.Minute,
			ReconcileGrace: 5 * time.Minute,
			LedgerRetries:  3,
			EventBuffer:    256,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STARBASE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("STARBASE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("STARBASE_SERVER_PORT", &cfg.Server.Port); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("STARBASE_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STARBASE_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = limit
	}
	if err := envInt("STARBASE_RATE_BURST", &cfg.Server.RateBurst); err != nil {
		return Config{}, err
	}
	if mode := os.Getenv("STARBASE_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("STARBASE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STARBASE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STARBASE_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	for name, dst := range map[string]*time.Duration{
		"STARBASE_TICK_INTERVAL":   &cfg.Game.TickInterval,
		"STARBASE_PAYOUT_PERIOD":   &cfg.Game.PayoutPeriod,
		"STARBASE_CITIZEN_PERIOD":  &cfg.Game.CitizenPeriod,
		"STARBASE_RECONCILE_GRACE": &cfg.Game.ReconcileGrace,
	} {
		if err := envDuration(name, dst); err != nil {
			return Config{}, err
		}
	}
	if err := envInt("STARBASE_LEDGER_RETRY_ATTEMPTS", &cfg.Game.LedgerRetries); err != nil {
		return Config{}, err
	}
	if err := envInt("STARBASE_EVENT_BUFFER", &cfg.Game.EventBuffer); err != nil {
		return Config{}, err
	}

	if cfg.Transport.Mode != "http" && cfg.Transport.Mode != "stdio" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

// envDuration accepts Go durations ("90s") or plain milliseconds ("60000").
func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}
