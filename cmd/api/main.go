package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"fieldops-insights-go/internal/dataset"
	"fieldops-insights-go/internal/logger"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "fieldops-insights-go").Info("starting service")

	cfg := loadConfig()
	dataset.MaxFetchElapsed = cfg.FetchTimeout

	// load intervention workbook into memory
	log.WithField("interventions_path", cfg.InterventionsPath).Info("loading interventions")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	snap, err := dataset.LoadAndSummarize(ctx, cfg.InterventionsPath)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to load interventions")
	}
	log.WithField("interventions", len(snap.Records)).Info("interventions loaded")

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newServer(cfg, snap).routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
