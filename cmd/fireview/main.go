package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fireview/internal/cache"
	"fireview/internal/config"
	"fireview/internal/core"
	"fireview/internal/firefly"
	apphttp "fireview/internal/http"
	applog "fireview/internal/log"
	"fireview/internal/report"
	"fireview/internal/scheduler"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	logger := applog.New(applog.LevelFromEnv(), "fireview")
	applog.SetDefault(logger)

	cfgPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	client := firefly.New(cfg.APIBaseURL, cfg.APIToken)
	orch := report.NewOrchestrator(client, cfg.TopN)
	store := cache.New[*core.Report](cfg.CacheTTL())
	svc := report.NewService(orch, store, cfg.Window)

	srv := apphttp.NewServer(cfg.ListenAddr, svc, cfg.CacheTTLMinutes)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 150 * time.Second // dashboard waits for upstream fetches
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	var sched *scheduler.Scheduler
	if cfg.RefreshCron != "" {
		sched = scheduler.New(svc)
		if err := sched.Register(cfg.RefreshCron); err != nil {
			logger.Error("Invalid refresh_cron expression", "error", err, "cron", cfg.RefreshCron)
			os.Exit(1)
		}
		sched.Start()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		if sched != nil {
			sched.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fireview server",
		"addr", cfg.ListenAddr,
		"cache_ttl_minutes", cfg.CacheTTLMinutes,
		"top_n", cfg.TopN)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "addr", cfg.ListenAddr)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
