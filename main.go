package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/medicine-library/config"
	"github.com/giygas/medicine-library/data"
	"github.com/giygas/medicine-library/enrichment"
	"github.com/giygas/medicine-library/handlers"
	"github.com/giygas/medicine-library/health"
	"github.com/giygas/medicine-library/labelsource"
	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/scheduler"
	"github.com/giygas/medicine-library/server"
	"github.com/giygas/medicine-library/session"
	"github.com/giygas/medicine-library/textgen"
	"github.com/giygas/medicine-library/validation"
	"github.com/joho/godotenv"
)

func main() {
	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Options{
		Dir:            cfg.LogDir,
		Level:          logging.ParseLevel(cfg.LogLevel),
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	logging.Info("Configuration loaded", "env", string(cfg.Env), "address", cfg.ListenAddr(), "model", cfg.ChatModel)
	if os.Getenv(textgen.APIKeyEnv) == "" {
		logging.Warn("Text generation key is not set, AI summaries will report a configuration error", "variable", textgen.APIKeyEnv)
	}

	store := data.NewContainer()
	store.SetServerStartTime(time.Now())
	validator := validation.NewValidator()

	source := labelsource.NewClient(cfg.LabelSourceURL, cfg.LabelSourceLimit)
	generator := textgen.NewClient(cfg.ChatAPIURL, cfg.ChatModel)

	sessions := session.NewStore(session.StoreOptions{
		TTL: cfg.SessionTTL,
		Enrichment: enrichment.Options{
			Generator:      generator,
			SearchDebounce: cfg.SearchDebounce,
			Timeout:        cfg.EnrichmentTimeout,
		},
	})

	sched := scheduler.NewScheduler(store, source, validator, cfg.RefreshTimes)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	checker := health.NewHealthChecker(store, sessions, cfg.RefreshTimes)
	handler := handlers.NewHTTPHandler(store, sessions, validator, checker)
	srv := server.NewServer(cfg, handler)

	// Profiling endpoint, local dev only
	if cfg.Env == config.EnvDevelopment {
		go func() {
			logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				logging.Error("Profiling server failed", "error", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown failed", "error", err)
	}
	sched.Stop()
	sessions.Flush()

	logging.Info("Shutdown complete")
}

// loadEnvFile reads .env from the working directory, then from the executable's directory.
// A missing file is fine: the environment may already be set.
func loadEnvFile() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	if err := godotenv.Load(filepath.Join(filepath.Dir(ex), ".env")); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using the environment")
	}
}
