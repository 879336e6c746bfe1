package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"controller-sizer/internal/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, catalog.S500, cfg.Solver.Base)
	assert.Equal(t, []string{"XM90", "XM70", "XM30", "XM32"}, cfg.Solver.Expansions)
	assert.True(t, cfg.Solver.IncludeAux)
	assert.Equal(t, 4, cfg.Solver.Workers)
	assert.Equal(t, 60*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, "sizing.runs", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_Layering(t *testing.T) {
	file := writeFile(t, "sizer.yaml", `
http:
  addr: ":9000"
solver:
  base: UC600
  spare_percent: 10
  workers: 2
kafka:
  topic: from-file
`)
	t.Setenv("SIZER_SOLVER_WORKERS", "6")
	t.Setenv("SIZER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SIZER_SOLVER_EXPANSIONS", "XM90,XM32")

	cfg, err := Load([]string{"--config", file, "--spare", "20", "--timeout", "5s"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)            // file
	assert.Equal(t, catalog.UC600, cfg.Solver.Base)    // file
	assert.Equal(t, 6, cfg.Solver.Workers)             // env over file
	assert.Equal(t, 20.0, cfg.Solver.SparePercent)     // flag over file
	assert.Equal(t, 5*time.Second, cfg.Solver.Timeout) // flag
	assert.Equal(t, "from-file", cfg.Kafka.Topic)      // file
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"XM90", "XM32"}, cfg.Solver.Expansions)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, "test.env", "SIZER_OUTPUT_DIR=/tmp/reports\nSIZER_LOG_LEVEL=debug\n")
	t.Setenv("SIZER_LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("SIZER_OUTPUT_DIR") })

	cfg, err := Load([]string{"--env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", cfg.Output.Dir)
	// The process environment wins over the file.
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load([]string{"--env-file", filepath.Join(t.TempDir(), "nope.env")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(nil)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative spare", func(c *Config) { c.Solver.SparePercent = -1 }},
		{"zero workers", func(c *Config) { c.Solver.Workers = 0 }},
		{"zero max enumerated", func(c *Config) { c.Solver.MaxEnumerated = 0 }},
		{"unknown base", func(c *Config) { c.Solver.Base = "S900" }},
		{"expansion as base", func(c *Config) { c.Solver.Base = catalog.XM90 }},
		{"negative retries", func(c *Config) { c.Pricing.MaxRetries = -1 }},
		{"missing catalog file", func(c *Config) { c.Catalog.File = "/does/not/exist.yaml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, valid().Validate())
}

func TestLoad_RejectsInvalid(t *testing.T) {
	_, err := Load([]string{"--workers", "0"})
	assert.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}
