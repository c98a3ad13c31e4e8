package sim

import (
	"time"

	"tank-arena/server/internal/ai"
	"tank-arena/server/internal/level"
	"tank-arena/server/internal/powerups"
	"tank-arena/server/internal/world"
)

// Config tunes a single Engine.
type Config struct {
	World world.Config

	// MaxTickElapsed caps the simulated time per tick. Zero leaves ticks
	// unclamped, so a long idle gap is simulated in a single step.
	MaxTickElapsed time.Duration

	Levels  *level.Table
	Tuning  *ai.Tuning
	Catalog powerups.Catalog

	// NewRNG overrides the deterministic generator factory, mainly for tests.
	NewRNG world.RNGFactory
}

func (c Config) normalized() Config {
	c.World = c.World.Normalized()
	if c.MaxTickElapsed < 0 {
		c.MaxTickElapsed = 0
	}
	if c.Levels == nil {
		c.Levels = level.DefaultTable()
	}
	if c.Tuning == nil {
		c.Tuning = ai.DefaultTuning
	}
	if c.Catalog == nil {
		c.Catalog = powerups.DefaultCatalog()
	}
	if c.NewRNG == nil {
		c.NewRNG = world.NewDeterministicRNG
	}
	return c
}
