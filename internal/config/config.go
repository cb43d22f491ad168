package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "FARMSWEEP_CONFIG"
	EnvAddr       = "FARMSWEEP_ADDR"
	EnvDSN        = "FARMSWEEP_DB_DSN"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Farm     FarmConfig     `toml:"farm" yaml:"farm"`
	Sweep    SweepConfig    `toml:"sweep" yaml:"sweep"`
}

type ServerConfig struct {
	Addr            string `toml:"addr" yaml:"addr"`
	ShutdownSeconds int    `toml:"shutdown_seconds" yaml:"shutdown_seconds"`
	CORSOrigin      string `toml:"cors_origin" yaml:"cors_origin"`
}

type DatabaseConfig struct {
	DSN                    string `toml:"dsn" yaml:"dsn"`
	MaxOpenConns           int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns           int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `toml:"conn_max_lifetime_seconds" yaml:"conn_max_lifetime_seconds"`
	AutoMigrate            bool   `toml:"auto_migrate" yaml:"auto_migrate"`
}

type FarmConfig struct {
	Size               int     `toml:"size" yaml:"size"`
	Seed               uint64  `toml:"seed" yaml:"seed"`
	CompanionRate      float64 `toml:"companion_rate" yaml:"companion_rate"`
	CompanionFaultRate float64 `toml:"companion_fault_rate" yaml:"companion_fault_rate"`
	InitialWater       float64 `toml:"initial_water" yaml:"initial_water"`
}

// SweepConfig holds the defaults for a run started at boot.
type SweepConfig struct {
	AutoStart         bool `toml:"auto_start" yaml:"auto_start"`
	CompanionInterval int  `toml:"companion_interval" yaml:"companion_interval"`
	Passes            *int `toml:"passes" yaml:"passes"`
	Debug             bool `toml:"debug" yaml:"debug"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", ShutdownSeconds: 10, CORSOrigin: "*"},
		Database: DatabaseConfig{
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeSeconds: 1800,
			AutoMigrate:            true,
		},
		Farm: FarmConfig{
			Size:          8,
			Seed:          1,
			CompanionRate: 0.5,
			InitialWater:  0.5,
		},
		Sweep: SweepConfig{CompanionInterval: 5},
	}
}

func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeSeconds) * time.Second
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownSeconds) * time.Second
}

// Load reads path (or FARMSWEEP_CONFIG when path is empty) over the defaults
// and then applies env overrides. No file at all is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigFile))
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode toml %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode yaml %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("FARMSWEEP_CORS_ORIGIN")); v != "" {
		cfg.Server.CORSOrigin = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDSN)); v != "" {
		cfg.Database.DSN = v
	}
	cfg.Server.ShutdownSeconds = intEnv("FARMSWEEP_SHUTDOWN_SECONDS", cfg.Server.ShutdownSeconds)
	cfg.Database.MaxOpenConns = intEnv("FARMSWEEP_DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = intEnv("FARMSWEEP_DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.AutoMigrate = boolEnv("FARMSWEEP_DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)
	cfg.Farm.Size = intEnv("FARMSWEEP_FARM_SIZE", cfg.Farm.Size)
	cfg.Farm.Seed = uint64(intEnv("FARMSWEEP_FARM_SEED", int(cfg.Farm.Seed)))
	cfg.Farm.CompanionRate = floatEnv("FARMSWEEP_COMPANION_RATE", cfg.Farm.CompanionRate)
	cfg.Farm.CompanionFaultRate = floatEnv("FARMSWEEP_COMPANION_FAULT_RATE", cfg.Farm.CompanionFaultRate)
	cfg.Sweep.AutoStart = boolEnv("FARMSWEEP_AUTO_START", cfg.Sweep.AutoStart)
	cfg.Sweep.CompanionInterval = intEnv("FARMSWEEP_COMPANION_INTERVAL", cfg.Sweep.CompanionInterval)
	cfg.Sweep.Debug = boolEnv("FARMSWEEP_DEBUG", cfg.Sweep.Debug)
	if v := strings.TrimSpace(os.Getenv("FARMSWEEP_PASSES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sweep.Passes = &n
		}
	}
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Farm.Size < 0 {
		errs = append(errs, fmt.Errorf("farm.size must not be negative, got %d", c.Farm.Size))
	}
	if c.Farm.CompanionRate < 0 || c.Farm.CompanionRate > 1 {
		errs = append(errs, fmt.Errorf("farm.companion_rate must be within [0,1], got %v", c.Farm.CompanionRate))
	}
	if c.Farm.CompanionFaultRate < 0 || c.Farm.CompanionFaultRate > 1 {
		errs = append(errs, fmt.Errorf("farm.companion_fault_rate must be within [0,1], got %v", c.Farm.CompanionFaultRate))
	}
	if c.Sweep.Passes != nil && *c.Sweep.Passes < 0 {
		errs = append(errs, fmt.Errorf("sweep.passes must not be negative, got %d", *c.Sweep.Passes))
	}
	return errors.Join(errs...)
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func boolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
