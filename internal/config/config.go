// Package config loads settings from defaults, a .env file, a YAML file,
// SIZER_ environment variables and command-line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/solver"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "SIZER"

// Config is the full application configuration.
type Config struct {
	HTTP       HTTPConfig    `mapstructure:"http"`
	Log        LogConfig     `mapstructure:"log"`
	Solver     SolverConfig  `mapstructure:"solver"`
	Pricing    PricingConfig `mapstructure:"pricing"`
	Catalog    CatalogConfig `mapstructure:"catalog"`
	Postgres   DSNConfig     `mapstructure:"postgres"`
	ClickHouse DSNConfig     `mapstructure:"clickhouse"`
	Kafka      KafkaConfig   `mapstructure:"kafka"`
	Output     OutputConfig  `mapstructure:"output"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SolverConfig holds request defaults and enumeration limits.
type SolverConfig struct {
	SparePercent  float64       `mapstructure:"spare_percent"`
	Base          string        `mapstructure:"base"`
	Expansions    []string      `mapstructure:"expansions"`
	IncludeAux    bool          `mapstructure:"include_aux"`
	Workers       int           `mapstructure:"workers"`
	MaxEnumerated int64         `mapstructure:"max_enumerated"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type PricingConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"`
}

type DSNConfig struct {
	DSN string `mapstructure:"dsn"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"http-addr":       "http.addr",
	"log-level":       "log.level",
	"log-dev":         "log.development",
	"spare":           "solver.spare_percent",
	"base":            "solver.base",
	"expansions":      "solver.expansions",
	"include-aux":     "solver.include_aux",
	"workers":         "solver.workers",
	"max-enumerated":  "solver.max_enumerated",
	"timeout":         "solver.timeout",
	"pricing-url":     "pricing.url",
	"pricing-timeout": "pricing.timeout",
	"pricing-retries": "pricing.max_retries",
	"catalog":         "catalog.file",
	"postgres-dsn":    "postgres.dsn",
	"clickhouse-dsn":  "clickhouse.dsn",
	"kafka-brokers":   "kafka.brokers",
	"kafka-topic":     "kafka.topic",
	"output-dir":      "output.dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("solver.spare_percent", 0.0)
	v.SetDefault("solver.base", catalog.S500)
	v.SetDefault("solver.expansions", []string{catalog.XM90, catalog.XM70, catalog.XM30, catalog.XM32})
	v.SetDefault("solver.include_aux", true)
	v.SetDefault("solver.workers", 4)
	v.SetDefault("solver.max_enumerated", solver.DefaultMaxEnumerated)
	v.SetDefault("solver.timeout", 60*time.Second)
	v.SetDefault("pricing.url", "")
	v.SetDefault("pricing.timeout", 10*time.Second)
	v.SetDefault("pricing.max_retries", 3)
	v.SetDefault("catalog.file", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("clickhouse.dsn", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "sizing.runs")
	v.SetDefault("output.dir", "output")
}

// FlagSet returns the flags understood by Load, named after name.
// Callers may add their own flags before passing it to LoadFlags.
func FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "YAML config file")
	fs.String("env-file", "", ".env file (default: .env if present)")
	fs.String("http-addr", ":8080", "HTTP listen address")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("log-dev", false, "human-readable development logging")
	fs.Float64("spare", 0, "spare capacity percent added to every point kind")
	fs.String("base", catalog.S500, "base controller")
	fs.StringSlice("expansions", []string{catalog.XM90, catalog.XM70, catalog.XM30, catalog.XM32}, "enabled expansion modules")
	fs.Bool("include-aux", true, "price auxiliary power modules")
	fs.Int("workers", 4, "parallel enumeration shards")
	fs.Int64("max-enumerated", solver.DefaultMaxEnumerated, "largest search space allowed")
	fs.Duration("timeout", 60*time.Second, "per-solve timeout")
	fs.String("pricing-url", "", "CSV price list URL")
	fs.Duration("pricing-timeout", 10*time.Second, "price list request timeout")
	fs.Int("pricing-retries", 3, "price list retry attempts")
	fs.String("catalog", "", "YAML catalog file")
	fs.String("postgres-dsn", "", "PostgreSQL DSN for runs")
	fs.String("clickhouse-dsn", "", "ClickHouse DSN for selections")
	fs.StringSlice("kafka-brokers", nil, "Kafka brokers for run events")
	fs.String("kafka-topic", "sizing.runs", "Kafka topic for run events")
	fs.String("output-dir", "output", "report output directory")
	return fs
}

// Load parses args with the default flag set and loads the configuration.
func Load(args []string) (*Config, error) {
	fs := FlagSet("controller-sizer")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return LoadFlags(fs)
}

// LoadFlags loads the configuration from an already parsed flag set.
func LoadFlags(fs *pflag.FlagSet) (*Config, error) {
	envFile, _ := fs.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Solver.Expansions = splitList(cfg.Solver.Expansions)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads path, or .env when path is empty and the file exists.
// Existing environment variables win.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// splitList flattens comma-joined entries and drops blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks values Load cannot express through types.
func (c *Config) Validate() error {
	var errs []error
	sp := c.Solver.SparePercent
	if sp < 0 || math.IsNaN(sp) || math.IsInf(sp, 0) {
		errs = append(errs, fmt.Errorf("solver.spare_percent must be a finite non-negative number, got %v", sp))
	}
	if c.Solver.Workers <= 0 {
		errs = append(errs, fmt.Errorf("solver.workers must be positive, got %d", c.Solver.Workers))
	}
	if c.Solver.MaxEnumerated <= 0 {
		errs = append(errs, fmt.Errorf("solver.max_enumerated must be positive, got %d", c.Solver.MaxEnumerated))
	}
	if c.Solver.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solver.timeout must not be negative"))
	}
	if c.Pricing.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("pricing.max_retries must not be negative"))
	}
	// Custom catalogs are checked when loaded.
	if c.Catalog.File == "" {
		if _, err := catalog.Default().Base(c.Solver.Base); err != nil {
			errs = append(errs, fmt.Errorf("solver.base %q: %w", c.Solver.Base, err))
		}
	} else if _, err := os.Stat(c.Catalog.File); err != nil {
		errs = append(errs, fmt.Errorf("catalog.file: %w", err))
	}
	return errors.Join(errs...)
}
