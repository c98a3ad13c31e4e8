package sim

import (
	"time"

	"tank-arena/server/internal/telemetry"
	"tank-arena/server/logging"
)

// LoopConfig tunes the broadcast ticker.
type LoopConfig struct {
	// Rate is the number of state pulls per second.
	Rate int
}

// LoopHooks lets the transport observe each pulled snapshot.
type LoopHooks struct {
	// Wanted reports whether anyone is listening. The loop leaves the engine
	// untouched while it returns false.
	Wanted func() bool
	// AfterStep receives every snapshot the loop pulls.
	AfterStep func(LoopStepResult)
}

// LoopStepResult describes one loop iteration.
type LoopStepResult struct {
	Now      time.Time
	Snapshot Snapshot
	Duration time.Duration
	Budget   time.Duration
}

// Loop pulls state from the engine on a fixed cadence, advancing time the
// same way a polling client does.
type Loop struct {
	engine *Engine
	config LoopConfig
	hooks  LoopHooks
	clock  logging.Clock
	logger telemetry.Logger
}

// NewLoop wraps the engine with a fixed-rate state puller.
func NewLoop(engine *Engine, cfg LoopConfig, hooks LoopHooks) *Loop {
	if engine == nil {
		return nil
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 30
	}
	return &Loop{
		engine: engine,
		config: cfg,
		hooks:  hooks,
		clock:  engine.deps.Clock,
		logger: engine.deps.Logger,
	}
}

// Step pulls one snapshot and hands it to AfterStep.
func (l *Loop) Step() LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	start := l.clock.Now()
	snapshot := l.engine.State()
	result := LoopStepResult{
		Now:      start,
		Snapshot: snapshot,
		Duration: l.clock.Now().Sub(start),
		Budget:   time.Second / time.Duration(l.config.Rate),
	}
	if result.Duration > result.Budget && l.logger != nil {
		l.logger.Printf("[loop] step took %s (budget %s)", result.Duration, result.Budget)
	}
	if l.hooks.AfterStep != nil {
		l.hooks.AfterStep(result)
	}
	return result
}

// Run drives the loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(l.config.Rate))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if l.hooks.Wanted != nil && !l.hooks.Wanted() {
				continue
			}
			l.Step()
		}
	}
}
