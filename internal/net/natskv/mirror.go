package natskv

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"tank-arena/server/internal/net/proto"
	"tank-arena/server/internal/sim"
	"tank-arena/server/internal/telemetry"
)

const (
	DefaultBucket = "tank-arena"
	DefaultKey    = "snapshot"

	putTimeout = 2 * time.Second
)

// Store is the subset of jetstream.KeyValue the mirror writes through.
type Store interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

type Config struct {
	URL    string
	Bucket string
	Key    string
	Format proto.Format
	Logger telemetry.Logger
}

func (c Config) normalized() Config {
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.Format == "" {
		c.Format = proto.FormatJSON
	}
	return c
}

// Mirror writes the latest snapshot into a JetStream key-value bucket so
// other processes can watch the arena without polling HTTP.
type Mirror struct {
	store    Store
	conn     *nats.Conn
	key      string
	format   proto.Format
	logger   telemetry.Logger
	puts     atomic.Uint64
	failures atomic.Uint64
}

// New wraps an existing store.
func New(store Store, cfg Config) *Mirror {
	cfg = cfg.normalized()
	return &Mirror{
		store:  store,
		key:    cfg.Key,
		format: cfg.Format,
		logger: cfg.Logger,
	}
}

// Dial connects to NATS and creates or updates the bucket.
func Dial(ctx context.Context, cfg Config) (*Mirror, error) {
	cfg = cfg.normalized()
	if cfg.URL == "" {
		return nil, errors.New("natskv: url is required")
	}
	nc, err := nats.Connect(cfg.URL, nats.Name("tank-arena"))
	if err != nil {
		return nil, fmt.Errorf("natskv: connect %s: %w", cfg.URL, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natskv: jetstream: %w", err)
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "latest tank arena snapshot",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natskv: bucket %s: %w", cfg.Bucket, err)
	}
	m := New(kv, cfg)
	m.conn = nc
	return m, nil
}

// Publish stores the snapshot under the mirror key.
func (m *Mirror) Publish(ctx context.Context, snapshot sim.Snapshot) error {
	data, err := proto.EncodeSnapshot(snapshot, m.format)
	if err != nil {
		return err
	}
	if _, err := m.store.Put(ctx, m.key, data); err != nil {
		return fmt.Errorf("natskv: put %s: %w", m.key, err)
	}
	m.puts.Add(1)
	return nil
}

// AfterStep is a sim.LoopHooks callback. Failures are logged and never
// reach the simulation.
func (m *Mirror) AfterStep(result sim.LoopStepResult) {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()
	if err := m.Publish(ctx, result.Snapshot); err != nil {
		failures := m.failures.Add(1)
		if failures == 1 || failures%100 == 0 {
			m.logf("[natskv] mirror failed (%d so far): %v", failures, err)
		}
	}
}

// Stats reports successful and failed writes.
func (m *Mirror) Stats() (puts, failures uint64) {
	if m == nil {
		return 0, 0
	}
	return m.puts.Load(), m.failures.Load()
}

func (m *Mirror) Close() {
	if m == nil || m.conn == nil {
		return
	}
	m.conn.Drain()
}

func (m *Mirror) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
