package ws

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"tank-arena/server/internal/net/proto"
	"tank-arena/server/internal/sim"
	"tank-arena/server/internal/telemetry"
)

// HubConfig wires the hub to shared telemetry.
type HubConfig struct {
	Logger   telemetry.Logger
	Counters *telemetry.Counters
}

// Hub fans snapshots out to websocket subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	logger      telemetry.Logger
	counters    *telemetry.Counters
}

func NewHub(cfg HubConfig) *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
		logger:      cfg.Logger,
		counters:    cfg.Counters,
	}
}

// Subscribe registers a connection and returns its subscriber ID.
func (h *Hub) Subscribe(conn Conn, format proto.Format) string {
	sub := &subscriber{id: uuid.NewString(), format: format, conn: conn}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	h.counters.AddSubscribers(1)
	return sub.id
}

// Unsubscribe drops the subscriber and closes its connection. Unknown IDs
// are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.counters.AddSubscribers(-1)
	sub.conn.Close()
}

func (h *Hub) lookup(id string) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[id]
	return sub, ok
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Wanted reports whether a broadcast would reach anyone.
func (h *Hub) Wanted() bool {
	return h.Count() > 0
}

// Send writes a snapshot to one subscriber.
func (h *Hub) Send(id string, snapshot sim.Snapshot) error {
	sub, ok := h.lookup(id)
	if !ok {
		return nil
	}
	data, err := proto.EncodeSnapshot(snapshot, sub.format)
	if err != nil {
		return err
	}
	if err := sub.write(data); err != nil {
		return err
	}
	h.counters.RecordBroadcast(len(data))
	return nil
}

// Broadcast encodes the snapshot once per format and writes it to every
// subscriber. Subscribers whose write fails are dropped. It returns the
// number of successful deliveries.
func (h *Hub) Broadcast(snapshot sim.Snapshot) int {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	if len(subs) == 0 {
		return 0
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	encoded := make(map[proto.Format][]byte, 2)
	delivered := 0
	for _, sub := range subs {
		data, ok := encoded[sub.format]
		if !ok {
			var err error
			data, err = proto.EncodeSnapshot(snapshot, sub.format)
			if err != nil {
				h.logf("[ws] failed to encode %s snapshot: %v", sub.format, err)
				continue
			}
			encoded[sub.format] = data
		}
		if err := sub.write(data); err != nil {
			h.logf("[ws] failed to send update to %s: %v", sub.id, err)
			h.Unsubscribe(sub.id)
			continue
		}
		delivered++
		h.counters.RecordBroadcast(len(data))
	}
	return delivered
}

// AfterStep is a sim.LoopHooks callback.
func (h *Hub) AfterStep(result sim.LoopStepResult) {
	h.Broadcast(result.Snapshot)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	for _, id := range ids {
		h.Unsubscribe(id)
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
