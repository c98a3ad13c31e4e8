package telemetry

import (
	"sync/atomic"
	"time"
)

// Counters tracks simulation and transport activity for the diagnostics endpoint.
type Counters struct {
	ticks              atomic.Uint64
	clampedTicks       atomic.Uint64
	tickDurationMicros atomic.Int64
	commandsApplied    atomic.Uint64
	commandsIgnored    atomic.Uint64
	bytesSent          atomic.Uint64
	lastBroadcastBytes atomic.Uint64
	broadcasts         atomic.Uint64
	subscribers        atomic.Int64
}

// Snapshot is the JSON view of Counters.
type Snapshot struct {
	Ticks              uint64 `json:"ticks"`
	ClampedTicks       uint64 `json:"clampedTicks"`
	TickDurationMicros int64  `json:"tickDurationMicros"`
	CommandsApplied    uint64 `json:"commandsApplied"`
	CommandsIgnored    uint64 `json:"commandsIgnored"`
	BytesSent          uint64 `json:"bytesSent"`
	LastBroadcastBytes uint64 `json:"lastBroadcastBytes"`
	Broadcasts         uint64 `json:"broadcasts"`
	Subscribers        int64  `json:"subscribers"`
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) RecordTick(duration time.Duration, clamped bool) {
	if c == nil {
		return
	}
	c.ticks.Add(1)
	if clamped {
		c.clampedTicks.Add(1)
	}
	micros := duration.Microseconds()
	if micros < 0 {
		micros = 0
	}
	c.tickDurationMicros.Store(micros)
}

func (c *Counters) RecordCommand(applied bool) {
	if c == nil {
		return
	}
	if applied {
		c.commandsApplied.Add(1)
		return
	}
	c.commandsIgnored.Add(1)
}

func (c *Counters) RecordBroadcast(bytes int) {
	if c == nil {
		return
	}
	if bytes < 0 {
		bytes = 0
	}
	c.broadcasts.Add(1)
	c.bytesSent.Add(uint64(bytes))
	c.lastBroadcastBytes.Store(uint64(bytes))
}

func (c *Counters) AddSubscribers(delta int64) {
	if c == nil {
		return
	}
	c.subscribers.Add(delta)
}

func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Ticks:              c.ticks.Load(),
		ClampedTicks:       c.clampedTicks.Load(),
		TickDurationMicros: c.tickDurationMicros.Load(),
		CommandsApplied:    c.commandsApplied.Load(),
		CommandsIgnored:    c.commandsIgnored.Load(),
		BytesSent:          c.bytesSent.Load(),
		LastBroadcastBytes: c.lastBroadcastBytes.Load(),
		Broadcasts:         c.broadcasts.Load(),
		Subscribers:        c.subscribers.Load(),
	}
}
