package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"calgrid/internal/capture"
	"calgrid/internal/config"
	appLog "calgrid/internal/log"
	"calgrid/internal/web"
)

type flagConfig struct {
	configPath   string
	listen       string
	once         bool
	snapshot     bool
	snapshotPath string
	dump         bool
}

func main() {
	// .env is optional; real config lives in the YAML file.
	_ = godotenv.Load()

	if lvl := os.Getenv("CALGRID_LOG_LEVEL"); lvl != "" {
		appLog.SetLevel(appLog.ParseLevel(lvl))
	}

	appLog.Info("calgrid starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// Precedence: CLI flag > env > config file.
	if env := os.Getenv("CALGRID_LISTEN"); env != "" {
		conf.Listen = env
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"mode", conf.Mode,
		"start", conf.Start,
		"end", conf.End,
		"week_start", conf.WeekStart,
		"out_date_policy", conf.OutDatePolicy,
		"refresh", conf.RefreshCron,
		"marks", len(conf.Marks),
		"ics_count", len(conf.ICS),
		"once", flags.once,
		"dump", flags.dump,
	)

	if flags.dump {
		if err := dumpGrid(os.Stdout, conf); err != nil {
			appLog.Error("grid dump failed", err)
			os.Exit(1)
		}
		return
	}

	srv, err := web.NewServer(conf, flags.configPath)
	if err != nil {
		// Most likely an invalid range; nothing was half-applied.
		appLog.Error("invalid configuration", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Initial feed refresh so the first render already has badges.
	srv.RefreshFeeds(ctx)

	if flags.once {
		if flags.snapshot {
			if err := runSnapshot(ctx, conf.Listen, flags.snapshotPath, srv); err != nil {
				appLog.Error("snapshot failed", err)
				os.Exit(1)
			}
		}
		appLog.Info("calgrid exiting (once)")
		return
	}

	// Periodic feed refresh on the configured cron schedule.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		srv.RefreshFeeds(ctx)
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	if flags.snapshot {
		go func() {
			// Give the listener a moment before pointing Chromium at it.
			time.Sleep(500 * time.Millisecond)
			if err := runSnapshot(ctx, conf.Listen, flags.snapshotPath, nil); err != nil {
				appLog.Error("snapshot failed", err)
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("calgrid exiting")
}

// runSnapshot captures /calendar to PNG. When srv is non-nil (once mode,
// no long-lived server), a temporary listener is spun up for the capture.
func runSnapshot(ctx context.Context, listen, outPath string, srv *web.Server) error {
	if srv != nil {
		httpServer := &http.Server{Addr: listen, Handler: srv.Handler()}
		go func() { _ = httpServer.ListenAndServe() }()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		time.Sleep(300 * time.Millisecond)
	}

	appLog.Info("capturing calendar snapshot", "out", outPath)
	return capture.SnapshotPNG(ctx, capture.Options{
		URL:        "http://" + listen + "/calendar",
		OutputPath: outPath,
	})
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calgrid/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Refresh feeds once (and snapshot if requested), then exit")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Capture /calendar to PNG via headless Chromium")
	flag.StringVar(&cfg.snapshotPath, "snapshot-out", "./calendar.png", "Snapshot output path")
	flag.BoolVar(&cfg.dump, "dump", false, "Dump every generated page as JSON to stdout and exit")

	flag.Parse()

	return cfg
}
