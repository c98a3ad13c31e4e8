package world

import (
	"strings"

	"tank-arena/server/internal/geom"
)

const (
	DefaultSeed   = "arena"
	DefaultWidth  = 800.0
	DefaultHeight = 600.0

	DefaultPlayerX = 100.0
	DefaultPlayerY = 100.0

	// InitialRewards is the number of rewards placed when a game starts.
	InitialRewards = 2
)

type Config struct {
	Seed    string  `json:"seed"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	PlayerX float64 `json:"playerX"`
	PlayerY float64 `json:"playerY"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 2*geom.TankMargin {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 2*geom.TankMargin {
		normalized.Height = DefaultHeight
	}
	if normalized.PlayerX <= 0 {
		normalized.PlayerX = DefaultPlayerX
	}
	if normalized.PlayerY <= 0 {
		normalized.PlayerY = DefaultPlayerY
	}
	normalized.PlayerX = geom.Clamp(normalized.PlayerX, geom.TankMargin, normalized.Width-geom.TankMargin)
	normalized.PlayerY = geom.Clamp(normalized.PlayerY, geom.TankMargin, normalized.Height-geom.TankMargin)
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

// Bounds returns the playable rectangle.
func (cfg Config) Bounds() geom.Bounds {
	normalized := cfg.normalized()
	return geom.Bounds{Width: normalized.Width, Height: normalized.Height}
}

func DefaultConfig() Config {
	return Config{
		Seed:    DefaultSeed,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		PlayerX: DefaultPlayerX,
		PlayerY: DefaultPlayerY,
	}
}
