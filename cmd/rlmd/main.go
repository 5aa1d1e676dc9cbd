package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/rlmproc/internal/api"
	"github.com/dgallion1/rlmproc/internal/config"
	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/dgallion1/rlmproc/internal/oracle"
	"github.com/dgallion1/rlmproc/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	convert.PDFFallback = cfg.PDFFallbackPdftotext

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the LLM client.
	oc := oracle.NewClient(cfg.AnthropicAPIKey, oracle.WithModels(cfg.Model, cfg.FastModel))

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, oc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, oc, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		oc.Close()
	}()

	log.Info("starting rlmd", "port", cfg.Port, "model", cfg.Model, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
