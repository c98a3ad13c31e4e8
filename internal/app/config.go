package app

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tank-arena/server/internal/observability"
	"tank-arena/server/internal/telemetry"
	"tank-arena/server/internal/world"
)

const (
	DefaultAddr           = ":8080"
	DefaultClientDir      = "static"
	DefaultMaxTickElapsed = time.Second
	DefaultBroadcastHz    = 30
	DefaultLogLevel       = "info"
	DefaultNATSBucket     = "tank-arena"
)

// Environment variables read by LoadEnv.
const (
	EnvAddr           = "TANK_ADDR"
	EnvClientDir      = "TANK_CLIENT_DIR"
	EnvSeed           = "TANK_SEED"
	EnvMaxTickSeconds = "TANK_MAX_TICK_SECONDS"
	EnvBroadcastHz    = "TANK_BROADCAST_HZ"
	EnvLogLevel       = "TANK_LOG_LEVEL"
	EnvLogJSONPath    = "TANK_LOG_JSON_PATH"
	EnvNATSURL        = "NATS_URL"
	EnvNATSBucket     = "NATS_BUCKET"
	EnvEnablePprof    = "TANK_ENABLE_PPROF"
)

type Config struct {
	Addr      string
	ClientDir string
	// Seed roots every random stream. When blank a seed is derived from the
	// clock at startup and reported in /diagnostics.
	Seed string

	// MaxTickElapsed caps one simulation step. Zero leaves ticks unclamped.
	MaxTickElapsed time.Duration
	BroadcastHz    int

	LogLevel    string
	LogJSONPath string

	// NATSURL enables the key-value snapshot mirror when set.
	NATSURL    string
	NATSBucket string

	Observability observability.Config

	Logger telemetry.Logger
}

func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		ClientDir:      DefaultClientDir,
		MaxTickElapsed: DefaultMaxTickElapsed,
		BroadcastHz:    DefaultBroadcastHz,
		LogLevel:       DefaultLogLevel,
		NATSBucket:     DefaultNATSBucket,
	}
}

// Normalized fills unset fields from DefaultConfig.
func (c Config) Normalized() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = defaults.Addr
	}
	if strings.TrimSpace(c.Seed) == "" {
		c.Seed = clockSeed(time.Now())
	}
	if c.MaxTickElapsed < 0 {
		c.MaxTickElapsed = 0
	}
	if c.BroadcastHz <= 0 {
		c.BroadcastHz = defaults.BroadcastHz
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaults.LogLevel
	}
	if strings.TrimSpace(c.NATSBucket) == "" {
		c.NATSBucket = defaults.NATSBucket
	}
	return c
}

// clockSeed derives a per-process seed so each restart plays differently.
func clockSeed(now time.Time) string {
	return world.DefaultSeed + "-" + strconv.FormatInt(now.UnixNano(), 36)
}

// LoadDotEnv loads variables from the given files without overriding the
// process environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// LoadEnv overlays environment values on cfg. Invalid values are logged and
// ignored.
func LoadEnv(cfg Config, lookup func(string) (string, bool), logger telemetry.Logger) Config {
	if lookup == nil {
		return cfg
	}
	logf := func(format string, args ...any) {
		if logger != nil {
			logger.Printf(format, args...)
		}
	}

	if raw, ok := lookup(EnvAddr); ok && raw != "" {
		cfg.Addr = raw
	}
	if raw, ok := lookup(EnvClientDir); ok {
		cfg.ClientDir = raw
	}
	if raw, ok := lookup(EnvSeed); ok && raw != "" {
		cfg.Seed = raw
	}
	if raw, ok := lookup(EnvMaxTickSeconds); ok && raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
			cfg.MaxTickElapsed = time.Duration(value * float64(time.Second))
		} else {
			logf("invalid %s=%q", EnvMaxTickSeconds, raw)
		}
	}
	if raw, ok := lookup(EnvBroadcastHz); ok && raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BroadcastHz = value
		} else {
			logf("invalid %s=%q", EnvBroadcastHz, raw)
		}
	}
	if raw, ok := lookup(EnvLogLevel); ok && raw != "" {
		cfg.LogLevel = raw
	}
	if raw, ok := lookup(EnvLogJSONPath); ok {
		cfg.LogJSONPath = raw
	}
	if raw, ok := lookup(EnvNATSURL); ok {
		cfg.NATSURL = raw
	}
	if raw, ok := lookup(EnvNATSBucket); ok && raw != "" {
		cfg.NATSBucket = raw
	}
	if raw, ok := lookup(EnvEnablePprof); ok && raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprof = value
		} else {
			logf("invalid %s=%q: %v", EnvEnablePprof, raw, err)
		}
	}
	return cfg
}
