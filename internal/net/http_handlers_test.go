package net

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tank-arena/server/internal/net/proto"
	"tank-arena/server/internal/sim"
	"tank-arena/server/internal/telemetry"
	"tank-arena/server/logging"
)

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	return c.now
}

func newTestHandler(t *testing.T, cfg HTTPHandlerConfig) (*sim.Engine, http.Handler) {
	t.Helper()
	if cfg.Counters == nil {
		cfg.Counters = telemetry.NewCounters()
	}
	clock := &steppingClock{now: time.Unix(1_700_000_000, 0)}
	engine := sim.NewEngine(sim.Config{}, sim.Deps{Clock: clock, Counters: cfg.Counters})
	return engine, NewHTTPHandler(engine, cfg)
}

func serve(handler http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeStatus(t *testing.T, resp *httptest.ResponseRecorder) proto.StatusResponse {
	t.Helper()
	var status proto.StatusResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status payload %q: %v", resp.Body.String(), err)
	}
	return status
}

func TestStartGameReturnsStatusAndActivatesSession(t *testing.T) {
	_, handler := newTestHandler(t, HTTPHandlerConfig{})

	resp := serve(handler, http.MethodPost, "/api/start-game", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if status := decodeStatus(t, resp); status.Status != "Game started" {
		t.Fatalf("unexpected status %+v", status)
	}

	resp = serve(handler, http.MethodGet, "/api/game-state", nil)
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var snapshot sim.Snapshot
	if err := json.Unmarshal(resp.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if !snapshot.GameActive || snapshot.CurrentLevel != 1 || len(snapshot.Tanks) != 1 {
		t.Fatalf("unexpected snapshot after start: %+v", snapshot)
	}
}

func TestStopGameFreezesSession(t *testing.T) {
	engine, handler := newTestHandler(t, HTTPHandlerConfig{})
	engine.Start()

	resp := serve(handler, http.MethodPost, "/api/stop-game", nil)
	if status := decodeStatus(t, resp); status.Status != "Game stopped" {
		t.Fatalf("unexpected status %+v", status)
	}
	if engine.Snapshot().GameActive {
		t.Fatalf("expected session to be inactive")
	}
}

func TestUpdateAppliesCommand(t *testing.T) {
	engine, handler := newTestHandler(t, HTTPHandlerConfig{})
	engine.Start()

	resp := serve(handler, http.MethodPost, "/api/update", []byte(`{"id":1,"action":"move","value":"right"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if status := decodeStatus(t, resp); status.Status != "success" {
		t.Fatalf("unexpected status %+v", status)
	}
	if y := engine.Snapshot().Tanks[0].Y; y != 105 {
		t.Fatalf("expected tank to strafe right to y=105, got %v", y)
	}
}

func TestUpdateIgnoresUnknownTank(t *testing.T) {
	engine, handler := newTestHandler(t, HTTPHandlerConfig{})
	engine.Start()

	resp := serve(handler, http.MethodPost, "/api/update", []byte(`{"id":99,"action":"fire"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected unknown tank to be ignored with 200, got %d", resp.Code)
	}
	if len(engine.Snapshot().Projectiles) != 0 {
		t.Fatalf("expected no projectiles for unknown tank")
	}
}

func TestUpdateRejectsMalformedPayload(t *testing.T) {
	counters := telemetry.NewCounters()
	_, handler := newTestHandler(t, HTTPHandlerConfig{Counters: counters})

	for _, body := range []string{`{"id":1,`, `{"id":1,"action":"move","value":"up"}`, `{"id":1,"action":"jump"}`} {
		resp := serve(handler, http.MethodPost, "/api/update", []byte(body))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, resp.Code)
		}
		if status := decodeStatus(t, resp); status.Status != "error" || status.Error == "" {
			t.Fatalf("unexpected status for %s: %+v", body, status)
		}
	}
}

func TestRoutesRejectWrongMethods(t *testing.T) {
	_, handler := newTestHandler(t, HTTPHandlerConfig{})
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/game-state"},
		{http.MethodGet, "/api/update"},
		{http.MethodGet, "/api/start-game"},
		{http.MethodGet, "/api/stop-game"},
	}
	for _, tc := range cases {
		if resp := serve(handler, tc.method, tc.path, nil); resp.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestHealthAndDiagnostics(t *testing.T) {
	router := logging.NewRouter(nil, logging.DefaultConfig(), nil, nil)
	// Go 1.21 shim for t.Context(): canceled before cleanups run, as in Go 1.24.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() { cancel(); router.Close(ctx) })
	engine, handler := newTestHandler(t, HTTPHandlerConfig{Router: router})
	engine.Start()

	resp := serve(handler, http.MethodGet, "/health", nil)
	if resp.Body.String() != "ok" {
		t.Fatalf("expected ok, got %q", resp.Body.String())
	}

	serve(handler, http.MethodPost, "/api/update", []byte(`{"id":1,"action":"rotate","value":5}`))
	resp = serve(handler, http.MethodGet, "/diagnostics", nil)
	var payload struct {
		Status   string             `json:"status"`
		Seed     string             `json:"seed"`
		Session  sim.Summary        `json:"session"`
		Counters telemetry.Snapshot `json:"counters"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload.Status != "ok" || payload.Seed == "" {
		t.Fatalf("unexpected diagnostics header: %+v", payload)
	}
	if !payload.Session.Active || payload.Session.Tanks != 1 {
		t.Fatalf("unexpected session summary: %+v", payload.Session)
	}
	if payload.Counters.CommandsApplied != 1 {
		t.Fatalf("expected one applied command, got %+v", payload.Counters)
	}
}

func TestSchemaRoute(t *testing.T) {
	_, handler := newTestHandler(t, HTTPHandlerConfig{})
	resp := serve(handler, http.MethodGet, "/schema", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"mapWidth"`)) {
		t.Fatalf("expected schema to describe mapWidth, got %s", resp.Body.String())
	}
}

func TestStaticClientDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<canvas></canvas>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	_, handler := newTestHandler(t, HTTPHandlerConfig{ClientDir: dir})

	resp := serve(handler, http.MethodGet, "/", nil)
	if !bytes.Contains(resp.Body.Bytes(), []byte("<canvas>")) {
		t.Fatalf("expected index to be served, got %q", resp.Body.String())
	}
}

func TestStreamRouteMounted(t *testing.T) {
	called := false
	stream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	_, handler := newTestHandler(t, HTTPHandlerConfig{Stream: stream})
	serve(handler, http.MethodGet, "/ws?format=json", nil)
	if !called {
		t.Fatalf("expected /ws to reach the stream handler")
	}
}
