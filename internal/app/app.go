package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	servernet "tank-arena/server/internal/net"
	"tank-arena/server/internal/net/natskv"
	"tank-arena/server/internal/net/ws"
	"tank-arena/server/internal/sim"
	"tank-arena/server/internal/telemetry"
	"tank-arena/server/internal/world"
	"tank-arena/server/logging"
	loggingSinks "tank-arena/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

// NewLogger builds the operational console logger at the named level.
func NewLogger(level string) *charmlog.Logger {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "tank-arena",
	})
	if parsed, err := charmlog.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	} else {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger
}

// Run serves the arena until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	seedFromClock := strings.TrimSpace(cfg.Seed) == ""
	cfg = cfg.Normalized()

	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapCharm(NewLogger(cfg.LogLevel))
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	if seedFromClock {
		telemetryLogger.Printf("%s not set, seeding from clock: %s", EnvSeed, cfg.Seed)
	}

	router, err := newRouter(cfg, fallbackLogger, telemetryLogger)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	counters := telemetry.NewCounters()
	engine := sim.NewEngine(sim.Config{
		World:          world.Config{Seed: cfg.Seed},
		MaxTickElapsed: cfg.MaxTickElapsed,
	}, sim.Deps{
		Logger:    telemetryLogger,
		Publisher: router,
		Metrics:   telemetry.WrapMetrics(router.Metrics()),
		Counters:  counters,
		Clock:     logging.SystemClock{},
	})

	hub := ws.NewHub(ws.HubConfig{Logger: telemetryLogger, Counters: counters})
	defer hub.Close()

	var mirror *natskv.Mirror
	if cfg.NATSURL != "" {
		mirror, err = natskv.Dial(ctx, natskv.Config{
			URL:    cfg.NATSURL,
			Bucket: cfg.NATSBucket,
			Logger: telemetryLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to start snapshot mirror: %w", err)
		}
		defer mirror.Close()
		telemetryLogger.Printf("mirroring snapshots to %s bucket=%s", cfg.NATSURL, cfg.NATSBucket)
	}

	loop := sim.NewLoop(engine, sim.LoopConfig{Rate: cfg.BroadcastHz}, sim.LoopHooks{
		Wanted: func() bool {
			return hub.Wanted() || mirror != nil
		},
		AfterStep: func(result sim.LoopStepResult) {
			hub.AfterStep(result)
			mirror.AfterStep(result)
		},
	})
	stop := make(chan struct{})
	go loop.Run(stop)
	defer close(stop)

	clientDir := ""
	if cfg.ClientDir != "" {
		resolved, resolveErr := resolveClientDir(cfg.ClientDir)
		if resolveErr != nil {
			telemetryLogger.Printf("%v, static files disabled", resolveErr)
		}
		clientDir = resolved
	}

	stream := ws.NewHandler(engine, hub, ws.HandlerConfig{Logger: telemetryLogger})
	handler := servernet.NewHTTPHandler(engine, servernet.HTTPHandlerConfig{
		ClientDir: clientDir,
		Logger:    telemetryLogger,
		Counters:  counters,
		Router:    router,
		Stream:    http.HandlerFunc(stream.Handle),

		Observability: cfg.Observability,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	telemetryLogger.Printf("server listening on %s seed=%s", srv.Addr, engine.Seed())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		telemetryLogger.Printf("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}

func newRouter(cfg Config, fallback *log.Logger, logger telemetry.Logger) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	if severity, ok := logging.ParseSeverity(cfg.LogLevel); ok {
		logConfig.MinimumSeverity = severity
	} else {
		logger.Printf("unknown log level %q, events at info and above", cfg.LogLevel)
	}
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout, logConfig.Console)},
	}
	if cfg.LogJSONPath != "" {
		jsonSink, err := loggingSinks.OpenJSONFile(cfg.LogJSONPath, logConfig.JSON.FlushInterval)
		if err != nil {
			return nil, err
		}
		logConfig = logConfig.WithSink("json")
		logConfig.JSON.FilePath = cfg.LogJSONPath
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: jsonSink})
	}
	return logging.NewRouter(logging.SystemClock{}, logConfig, fallback, sinks), nil
}
