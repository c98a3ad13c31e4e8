package ws

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/websocket"

	"tank-arena/server/internal/net/proto"
	"tank-arena/server/internal/sim"
	"tank-arena/server/internal/telemetry"
)

// Engine is the part of sim.Engine the stream needs.
type Engine interface {
	Apply(cmd sim.Command) error
	Snapshot() sim.Snapshot
}

type HandlerConfig struct {
	Logger telemetry.Logger
}

// Handler upgrades /ws requests and feeds inbound frames to the engine.
type Handler struct {
	engine   Engine
	hub      *Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

func NewHandler(engine Engine, hub *Hub, cfg HandlerConfig) *Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		engine:   engine,
		hub:      hub,
		logger:   cfg.Logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	format, err := proto.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("[ws] upgrade failed: %v", err)
		return
	}

	id := h.hub.Subscribe(conn, format)
	defer h.hub.Unsubscribe(id)

	if err := h.hub.Send(id, h.engine.Snapshot()); err != nil {
		h.logf("[ws] failed to send initial state to %s: %v", id, err)
		return
	}

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		cmd, err := proto.DecodeUpdate(payload)
		if err == nil {
			err = h.engine.Apply(cmd)
		}
		if err == nil {
			continue
		}
		h.logf("[ws] rejected command from %s: %v", id, err)
		if !h.reply(id, proto.NewStatus(proto.StatusError, err)) {
			return
		}
	}
}

func (h *Handler) reply(id string, resp proto.StatusResponse) bool {
	data, err := json.Marshal(resp)
	if err != nil {
		h.logf("[ws] failed to marshal response for %s: %v", id, err)
		return true
	}
	sub, ok := h.hub.lookup(id)
	if !ok {
		return false
	}
	return sub.writeMessage(websocket.TextMessage, data) == nil
}

func (h *Handler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
