package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "trustd",
		Usage:   "trust scoring pipeline daemon",
		Version: versioninfo.Short(),
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"TRUSTD_LOG_LEVEL"},
		},
	}
	app.Commands = []*cli.Command{
		runCmd,
		simulateCmd,
	}
	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the pipeline and admin API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the admin API",
			Value:   ":3550",
			EnvVars: []string{"TRUSTD_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for prometheus metrics",
			Value:   ":3551",
			EnvVars: []string{"TRUSTD_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "back scores and counters with redis instead of process memory",
			EnvVars: []string{"TRUSTD_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "snapshot-dir",
			Usage:   "directory for rollup snapshot day files",
			Value:   "data/trustd/rollups",
			EnvVars: []string{"TRUSTD_SNAPSHOT_DIR"},
		},
		&cli.DurationFlag{
			Name:    "rollup-interval",
			Usage:   "how often window buckets are flushed",
			Value:   time.Hour,
			EnvVars: []string{"TRUSTD_ROLLUP_INTERVAL"},
		},
		&cli.IntFlag{
			Name:    "history-limit",
			Usage:   "max events kept in the router's in-memory history",
			Value:   1000,
			EnvVars: []string{"TRUSTD_HISTORY_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "snapshot-keep-days",
			Usage:   "prune rollup day files older than this on startup (0 disables)",
			Value:   0,
			EnvVars: []string{"TRUSTD_SNAPSHOT_KEEP_DAYS"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := configLogger(cctx, os.Stdout)

		srv, err := NewServer(ServerConfig{
			Logger:         logger,
			RedisURL:       cctx.String("redis-url"),
			SnapshotDir:    cctx.String("snapshot-dir"),
			RollupInterval: cctx.Duration("rollup-interval"),
			HistoryLimit:   cctx.Int("history-limit"),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if keep := cctx.Int("snapshot-keep-days"); keep > 0 {
			if removed, err := srv.rollup.PruneSnapshots(keep); err != nil {
				logger.Warn("pruning rollup snapshots", "err", err)
			} else if removed > 0 {
				logger.Info("pruned rollup snapshots", "removed", removed)
			}
		}
		if err := srv.rollup.WarmStart(ctx); err != nil {
			logger.Warn("rollup warm start failed", "err", err)
		}

		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error { return srv.rollup.Run(ctx) })
		eg.Go(func() error { return srv.RunAPI(cctx.String("bind")) })
		eg.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			return http.ListenAndServe(cctx.String("metrics-listen"), mux)
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		logger.Info("trustd starting",
			"bind", cctx.String("bind"),
			"metrics", cctx.String("metrics-listen"),
			"rollupInterval", cctx.Duration("rollup-interval"))
		return eg.Wait()
	},
}

func configLogger(cctx *cli.Context, writer *os.File) *slog.Logger {
	var level slog.Level
	switch cctx.String("log-level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
