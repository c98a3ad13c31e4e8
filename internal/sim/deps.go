package sim

import (
	"tank-arena/server/internal/telemetry"
	"tank-arena/server/logging"
)

// Deps carries shared infrastructure dependencies required by the engine.
type Deps struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Counters  *telemetry.Counters
	Clock     logging.Clock
}

func (d Deps) normalized() Deps {
	if d.Clock == nil {
		d.Clock = logging.SystemClock{}
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	return d
}
