package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"wanotif/internal/app"
	"wanotif/internal/config"
	"wanotif/internal/httpapi"
	"wanotif/internal/intake"
	"wanotif/internal/logging"
	"wanotif/internal/observability"
)

func main() {
	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("api config invalid", "err", err)
		os.Exit(1)
	}
	log := logging.Init("api", cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.Register(prometheus.DefaultRegisterer)

	records, err := app.NewRecords(ctx, cfg.StoreConfig, cfg.AWSConfig)
	if err != nil {
		log.Error("api record store init failed", "err", err)
		os.Exit(1)
	}
	defer records.Close()

	seq, err := app.NewSequencer(ctx, cfg.WhatsAppConfig, cfg.AWSConfig, log)
	if err != nil {
		log.Error("api dispatch init failed", "err", err)
		os.Exit(1)
	}
	if perr := seq.Preflight(); perr != nil {
		// keep serving; every request will answer 503 until fixed
		log.Warn("whatsapp not configured", "err", perr.Message)
	}

	s := httpapi.New()
	api := &httpapi.API{
		Seq:    seq,
		Intake: &intake.Adapter{Lookup: records.Lookup},
	}
	api.Register(s.Mux)
	s.RegisterProbes(2*time.Second, records.Checks...)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("api shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("api listening", "port", cfg.Port, "record_store", cfg.RecordStore)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("api server failed", "err", err)
		os.Exit(1)
	}
}
