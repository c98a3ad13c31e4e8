package logging

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reports wall clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

const (
	defaultBufferSize = 512
	minLaneBuffer     = 32
	maxLaneBuffer     = 1024
	maxRetryShift     = 5
)

// Router accepts events from the simulation without blocking and delivers
// them to each enabled sink on that sink's own goroutine. A slow or failing
// sink only delays its own lane.
type Router struct {
	clock    Clock
	fallback *log.Logger
	minimum  Severity
	fields   map[string]any
	dropWarn time.Duration

	inbox   chan Event
	lanes   []*lane
	metrics *Metrics

	stop   chan struct{}
	done   sync.WaitGroup
	closed atomic.Bool

	accepted    atomic.Uint64
	dropped     atomic.Uint64
	nextDropLog atomic.Int64
}

type RouterStats struct {
	EventsTotal  uint64               `json:"eventsTotal"`
	DroppedTotal uint64               `json:"droppedTotal"`
	ByType       map[string]uint64    `json:"byType,omitempty"`
	Sinks        map[string]SinkStats `json:"sinks,omitempty"`
}

// NewRouter starts delivery for every sink enabled in cfg. Sinks not listed
// in cfg.EnabledSinks are ignored. A nil fallback logger discards router
// diagnostics.
func NewRouter(clock Clock, cfg Config, fallback *log.Logger, namedSinks []NamedSink) *Router {
	if clock == nil {
		clock = SystemClock{}
	}
	if fallback == nil {
		fallback = log.New(io.Discard, "", 0)
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	dropWarn := cfg.DropWarnInterval
	if dropWarn <= 0 {
		dropWarn = 5 * time.Second
	}

	r := &Router{
		clock:    clock,
		fallback: fallback,
		minimum:  cfg.MinimumSeverity,
		fields:   cfg.CloneFields(),
		dropWarn: dropWarn,
		inbox:    make(chan Event, size),
		metrics:  NewMetrics(),
		stop:     make(chan struct{}),
	}

	laneSize := min(max(size, minLaneBuffer), maxLaneBuffer)
	for _, named := range namedSinks {
		if named.Sink == nil || !cfg.HasSink(named.Name) {
			continue
		}
		r.lanes = append(r.lanes, &lane{
			name:    named.Name,
			sink:    named.Sink,
			events:  make(chan Event, laneSize),
			metrics: r.metrics,
			logger:  fallback,
			stop:    r.stop,
		})
	}

	for _, l := range r.lanes {
		r.done.Add(1)
		go func(l *lane) {
			defer r.done.Done()
			l.run()
		}(l)
	}
	r.done.Add(1)
	go r.dispatch()
	return r
}

func (r *Router) dispatch() {
	defer r.done.Done()
	defer func() {
		for _, l := range r.lanes {
			close(l.events)
		}
	}()
	for {
		select {
		case event := <-r.inbox:
			r.route(event)
		case <-r.stop:
			for {
				select {
				case event := <-r.inbox:
					r.route(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Router) route(event Event) {
	if event.Severity < r.minimum {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = mergeFields(event, r.fields)
	r.accepted.Add(1)
	r.metrics.countEvent(event.Type)
	for _, l := range r.lanes {
		l.offer(event)
	}
}

// Publish queues the event without blocking. Events are dropped when the
// queue is full or the router is closed.
func (r *Router) Publish(_ context.Context, event Event) {
	if r == nil || event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.inbox <- event:
	default:
		r.dropped.Add(1)
		r.warnDrop(event)
	}
}

func (r *Router) warnDrop(event Event) {
	now := r.clock.Now().UnixNano()
	next := r.nextDropLog.Load()
	if now < next {
		return
	}
	if r.nextDropLog.CompareAndSwap(next, now+r.dropWarn.Nanoseconds()) {
		r.fallback.Printf("router queue full, dropping type=%s tick=%d", event.Type, event.Tick)
	}
}

// Close stops intake, delivers what is already queued, and closes every
// sink. Lanes waiting out a retry backoff skip the wait.
func (r *Router) Close(ctx context.Context) error {
	if r == nil || !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(r.stop)

	finished := make(chan struct{})
	go func() {
		r.done.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, l := range r.lanes {
		if err := l.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	if r == nil {
		return RouterStats{}
	}
	return RouterStats{
		EventsTotal:  r.accepted.Load(),
		DroppedTotal: r.dropped.Load(),
		ByType:       r.metrics.EventCounts(),
		Sinks:        r.metrics.SinkCounts(),
	}
}

// Metrics exposes the counters shared with telemetry adapters.
func (r *Router) Metrics() *Metrics {
	if r == nil {
		return nil
	}
	return r.metrics
}

func (r *Router) Sink(name string) Sink {
	for _, l := range r.lanes {
		if l.name == name {
			return l.sink
		}
	}
	return nil
}

// lane feeds one sink. After a failed write the lane backs off
// exponentially (2s, 4s, ... 32s) before the next attempt.
type lane struct {
	name    string
	sink    Sink
	events  chan Event
	metrics *Metrics
	logger  *log.Logger
	stop    <-chan struct{}

	failures int
	resumeAt time.Time
}

func (l *lane) offer(event Event) {
	select {
	case l.events <- cloneEvent(event):
	default:
		l.metrics.countSink(l.name, sinkDropped)
		l.logger.Printf("sink %s backlog full, dropping type=%s", l.name, event.Type)
	}
}

func (l *lane) run() {
	for event := range l.events {
		l.backoff()
		if err := l.sink.Write(event); err != nil {
			l.metrics.countSink(l.name, sinkFailed)
			l.failures++
			delay := time.Second << min(l.failures, maxRetryShift)
			l.resumeAt = time.Now().Add(delay)
			l.logger.Printf("sink %s failed: %v (retry in %s)", l.name, err, delay)
			continue
		}
		l.metrics.countSink(l.name, sinkWritten)
		l.failures = 0
	}
}

func (l *lane) backoff() {
	if l.failures == 0 {
		return
	}
	wait := time.Until(l.resumeAt)
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-l.stop:
	}
}
