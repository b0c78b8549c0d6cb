// Command ashsim replays an access-log trace through the configured cache
// chain and prints one report line per reporting interval.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ashsim "github.com/Borislavv/go-ash-sim"
	"github.com/Borislavv/go-ash-sim/config"
	pmet "github.com/Borislavv/go-ash-sim/internal/metrics/prom"
	"github.com/Borislavv/go-ash-sim/internal/report"
	"github.com/Borislavv/go-ash-sim/internal/trace"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		cfgPath     = flag.String("config", "ashsim.yaml", "path to the YAML config")
		tracePath   = flag.String("trace", "-", "trace file (.gz is gunzipped, - is stdin)")
		reportPath  = flag.String("report", "-", "report output file (- is stdout)")
		metricsAddr = flag.String("metrics", "", "serve Prometheus metrics at addr (e.g. :9090); empty = disabled")
		eventsRate  = flag.Int("rate", 0, "replay at most N events per second; 0 = unpaced")
		debug       = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	runID := uuid.New().String()
	logger := newLogger(runID, *debug)

	if err := run(*cfgPath, *tracePath, *reportPath, *metricsAddr, *eventsRate, runID, logger); err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(runID string, debug bool) *slog.Logger {
	level, zlevel := slog.LevelInfo, zerolog.InfoLevel
	if debug {
		level, zlevel = slog.LevelDebug, zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(zlevel)
	zlog.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("run_id", runID).Logger()

	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(
		slog.String("service", "ashSim"),
		slog.String("run_id", runID),
	)
}

func run(cfgPath, tracePath, reportPath, metricsAddr string, eventsRate int, runID string, logger *slog.Logger) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	out, closeOut, err := openReport(reportPath)
	if err != nil {
		return err
	}
	defer closeOut()

	sinks := []report.Sink{report.NewLine(out)}
	reg := prometheus.NewRegistry()
	if metricsAddr != "" {
		sinks = append(sinks, pmet.New(reg, "ashsim", "sim", prometheus.Labels{"run_id": runID}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, err := ashsim.New(ctx, cfg, logger, sinks...)
	if err != nil {
		return err
	}

	in, err := trace.Open(tracePath)
	if err != nil {
		_ = sim.Close()
		return err
	}
	defer in.Close()

	g, gctx := errgroup.WithContext(ctx)
	replayDone := make(chan struct{})

	g.Go(func() error {
		defer close(replayDone)
		started := time.Now()
		rs, err := sim.Replay(in, ashsim.WithRate(eventsRate))
		if errors.Is(err, context.Canceled) {
			logger.Warn("replay interrupted", "events", rs.Events)
			err = nil
		}

		st := sim.Stats()
		sim.Report(st.Timestamp)
		closeErr := sim.Close()

		logger.Info("replay finished",
			"events", rs.Events,
			"skipped", rs.Skipped,
			"hit_ratio", st.HitRatio,
			"byte_hit_ratio", st.ByteHitRatio,
			"elapsed", time.Since(started).String(),
		)
		return errors.Join(err, closeErr)
	})

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: time.Second}

		g.Go(func() error {
			logger.Info("metrics: serving", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-replayDone:
			}
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	return g.Wait()
}

func openReport(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
