package net

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"time"

	"tank-arena/server/internal/net/proto"
	"tank-arena/server/internal/observability"
	"tank-arena/server/internal/sim"
	"tank-arena/server/internal/telemetry"
	"tank-arena/server/logging"
)

const maxUpdateBody = 1 << 16

// Engine is the part of sim.Engine the HTTP routes drive.
type Engine interface {
	State() sim.Snapshot
	Apply(cmd sim.Command) error
	Start() sim.Snapshot
	Stop() sim.Snapshot
	Summary() sim.Summary
	Seed() string
}

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    telemetry.Logger
	Counters  *telemetry.Counters
	// Router contributes event and telemetry counters to /diagnostics.
	Router *logging.Router
	// Stream serves /ws when set.
	Stream        nethttp.Handler
	Observability observability.Config
}

func NewHTTPHandler(engine Engine, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			Seed       string              `json:"seed"`
			Session    sim.Summary         `json:"session"`
			Counters   telemetry.Snapshot  `json:"counters"`
			Events     logging.RouterStats `json:"events"`
			Telemetry  map[string]uint64   `json:"telemetry,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Seed:       engine.Seed(),
			Session:    engine.Summary(),
			Counters:   cfg.Counters.Snapshot(),
			Events:     cfg.Router.Stats(),
			Telemetry:  cfg.Router.Metrics().TelemetrySnapshot(),
		}
		writeJSON(w, nethttp.StatusOK, payload)
	})

	mux.HandleFunc("/schema", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, proto.SnapshotSchema())
	})

	mux.HandleFunc("/api/game-state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, nethttp.StatusOK, engine.State())
	})

	mux.HandleFunc("/api/update", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBody))
		if err != nil {
			httpError(w, "failed to read body", nethttp.StatusBadRequest)
			return
		}
		cmd, err := proto.DecodeUpdate(payload)
		if err == nil {
			err = engine.Apply(cmd)
		}
		if err != nil {
			status := nethttp.StatusInternalServerError
			if errors.Is(err, sim.ErrInvalidCommand) {
				status = nethttp.StatusBadRequest
			}
			logger.Printf("[http] rejected update: %v", err)
			writeJSON(w, status, proto.NewStatus(proto.StatusError, err))
			return
		}
		writeJSON(w, nethttp.StatusOK, proto.NewStatus(proto.StatusSuccess, nil))
	})

	mux.HandleFunc("/api/start-game", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		engine.Start()
		writeJSON(w, nethttp.StatusOK, proto.NewStatus(proto.StatusGameStarted, nil))
	})

	mux.HandleFunc("/api/stop-game", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		engine.Stop()
		writeJSON(w, nethttp.StatusOK, proto.NewStatus(proto.StatusGameStopped, nil))
	})

	observability.Register(mux, cfg.Observability)

	if cfg.Stream != nil {
		mux.Handle("/ws", cfg.Stream)
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
