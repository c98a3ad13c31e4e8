package telemetry

import (
	"bytes"
	"log"
	"testing"
	"time"

	"tank-arena/server/logging"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})
}

func TestWrapMetrics(t *testing.T) {
	metrics := logging.NewMetrics()
	adapter := WrapMetrics(metrics)

	adapter.Add("test_counter", 2)
	adapter.Store("test_counter", 5)
	adapter.Add("test_counter", 3)

	snapshot := metrics.TelemetrySnapshot()
	if got := snapshot["test_counter"]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}

	var nilAdapter Metrics = WrapMetrics(nil)
	nilAdapter.Add("ignored", 1)
	nilAdapter.Store("ignored", 1)
}

func TestCountersSnapshot(t *testing.T) {
	counters := NewCounters()
	counters.RecordTick(1500*time.Microsecond, false)
	counters.RecordTick(2*time.Millisecond, true)
	counters.RecordCommand(true)
	counters.RecordCommand(false)
	counters.RecordBroadcast(128)
	counters.RecordBroadcast(-5)
	counters.AddSubscribers(2)
	counters.AddSubscribers(-1)

	snap := counters.Snapshot()
	if snap.Ticks != 2 || snap.ClampedTicks != 1 {
		t.Fatalf("unexpected tick counts: %+v", snap)
	}
	if snap.TickDurationMicros != 2000 {
		t.Fatalf("expected last tick duration 2000us, got %d", snap.TickDurationMicros)
	}
	if snap.CommandsApplied != 1 || snap.CommandsIgnored != 1 {
		t.Fatalf("unexpected command counts: %+v", snap)
	}
	if snap.Broadcasts != 2 || snap.BytesSent != 128 || snap.LastBroadcastBytes != 0 {
		t.Fatalf("unexpected broadcast counters: %+v", snap)
	}
	if snap.Subscribers != 1 {
		t.Fatalf("expected 1 subscriber, got %d", snap.Subscribers)
	}

	var nilCounters *Counters
	nilCounters.RecordTick(time.Second, true)
	if nilCounters.Snapshot() != (Snapshot{}) {
		t.Fatalf("expected zero snapshot from nil counters")
	}
}
