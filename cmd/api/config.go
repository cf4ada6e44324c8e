package main

import (
	"os"
	"strconv"
	"time"
)

type config struct {
	Port              string
	InterventionsPath string
	VariancePath      string
	CurrentSheet      string
	ReferenceSheet    string
	DailyPath         string
	DailySheet        string
	FetchTimeout      time.Duration
}

func loadConfig() config {
	timeoutSec, err := strconv.Atoi(envOr("FETCH_TIMEOUT_SEC", "30"))
	if err != nil || timeoutSec <= 0 {
		timeoutSec = 30
	}
	return config{
		Port:              envOr("PORT", "8080"),
		InterventionsPath: envOr("INTERVENTIONS_PATH", "Canal Mai.xlsx"),
		VariancePath:      envOr("VARIANCE_PATH", "Ecart.xlsx"),
		CurrentSheet:      envOr("CURRENT_SHEET", "SUIVI HEBDOMADAIRE MAI"),
		ReferenceSheet:    envOr("REFERENCE_SHEET", "SUIVI HEBDOMADAIRE Avril"),
		DailyPath:         envOr("DAILY_PATH", "Canal inter.xlsx"),
		DailySheet:        os.Getenv("DAILY_SHEET"),
		FetchTimeout:      time.Duration(timeoutSec) * time.Second,
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
