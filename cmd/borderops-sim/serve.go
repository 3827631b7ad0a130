package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"borderops-sim/internal/api"
	"borderops-sim/internal/config"
	"borderops-sim/internal/countermeasure"
	"borderops-sim/internal/logging"
	"borderops-sim/internal/metrics"
	"borderops-sim/internal/sim"
	"borderops-sim/internal/ws"
)

var (
	serveConfigPath string
	serveSchemaPath string
	serveListenAddr string
	serveOutput     string
	serveLogFile    string
	serveTick       time.Duration
	serveDrones     int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detection simulator and its HTTP API",
	Long:  "serve starts the border simulation engine, streams detections to the configured sinks and serves the REST, WebSocket and metrics endpoints.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfigPath, serveSchemaPath)
		if err != nil {
			return err
		}
		applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.New(cfg.LogFormat, cfg.LogLevel)
		if serveOutput == "tui" {
			// The dashboard owns the terminal; keep slog off the screen.
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		slog.SetDefault(logger)

		dw, aw, cleanup, err := newSinks(cfg, serveOutput, serveLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		border := cfg.Border.Border()
		suite := countermeasure.NewSuite(logger, nil, border.Center)
		simulator := sim.NewSimulator(cfg, dw, aw, suite)

		m := metrics.New()
		simulator.SetMetrics(m)

		hub := ws.NewHub(logger)
		hub.ClientCountChanged = func(n int) { m.WSClients.Set(float64(n)) }
		simulator.SetBroadcaster(hub)

		server := api.New(simulator, suite, hub, m, logger)
		httpSrv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		go func() {
			logger.Info("api listening", "addr", cfg.ListenAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server failed", "error", err)
				stop()
			}
		}()

		go simulator.Run(ctx)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		logger.Info("simulation stopped")
		return nil
	},
}

// applyOverrides layers CLI flags over the loaded config.
func applyOverrides(cfg *config.SimulationConfig) {
	if serveListenAddr != "" {
		cfg.ListenAddr = serveListenAddr
	}
	if serveTick > 0 {
		cfg.UpdateInterval = config.Duration(serveTick)
	}
	if serveDrones >= 0 {
		cfg.NumDrones = serveDrones
	}
	if env := os.Getenv("TICK_INTERVAL"); env != "" {
		if d, err := time.ParseDuration(env); err == nil {
			cfg.UpdateInterval = config.Duration(d)
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	serveCmd.Flags().StringVar(&serveSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveOutput, "output", "auto", "Detection sink: json, color, tui or auto")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export detection/alert logs (JSONL)")
	serveCmd.Flags().DurationVar(&serveTick, "tick", 0, "Simulation tick interval (e.g. 500ms, 2s)")
	serveCmd.Flags().IntVar(&serveDrones, "drones", -1, "Target drone count (overrides config)")
}
