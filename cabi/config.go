//go:build cgo

package cabi

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/ffi-omnibus/errors"
	"github.com/wippyai/ffi-omnibus/ledger"
)

const (
	// EnvLogLevel selects a zap level ("debug", "info", ...) for the library logger.
	EnvLogLevel = "OMNIBUS_LOG_LEVEL"
	// EnvMetrics registers the allocation metrics on the default Prometheus registry.
	EnvMetrics = "OMNIBUS_METRICS"

	boundaryName = "c"
)

// Config configures the C surface. The library has no per-call options; this
// is applied once, typically at load time.
type Config struct {
	// Stdout receives emit_greeting output.
	Stdout io.Writer
	// Logger replaces the package logger when non-nil.
	Logger *zap.Logger
	// Registerer receives the allocation metrics when non-nil.
	Registerer prometheus.Registerer
}

// DefaultConfig returns the configuration in effect before Configure is called.
func DefaultConfig() Config {
	return Config{
		Stdout: os.Stdout,
	}
}

// ConfigFromEnv builds a Config from OMNIBUS_LOG_LEVEL and OMNIBUS_METRICS.
// Unset variables keep their defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := zapcore.ParseLevel(v)
		if err != nil {
			return cfg, errors.InvalidInput(fmt.Sprintf("%s=%q", EnvLogLevel, v), err)
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		l, err := zc.Build()
		if err != nil {
			return cfg, fmt.Errorf("cabi: build logger: %w", err)
		}
		cfg.Logger = l.Named("omnibus")
	}

	if v := os.Getenv(EnvMetrics); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.InvalidInput(fmt.Sprintf("%s=%q", EnvMetrics, v), err)
		}
		if on {
			cfg.Registerer = prometheus.DefaultRegisterer
		}
	}

	return cfg, nil
}

// Configure applies cfg. Outstanding allocations are unaffected.
func Configure(cfg Config) error {
	m, err := ledger.NewMetrics(cfg.Registerer, boundaryName)
	if err != nil {
		return fmt.Errorf("cabi: register metrics: %w", err)
	}

	if cfg.Stdout != nil {
		stdout = cfg.Stdout
	}
	if cfg.Logger != nil {
		SetLogger(cfg.Logger)
	}

	metrics = m
	texts.SetMetrics(m)
	stores.SetMetrics(m)
	return nil
}
