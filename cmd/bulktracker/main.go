package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	adapthttp "bulktracker/internal/adapter/http"
	"bulktracker/internal/adapter/file"
	"bulktracker/internal/adapter/githubfs"
	"bulktracker/internal/adapter/gsheets"
	"bulktracker/internal/adapter/memory"
	"bulktracker/internal/adapter/postgres"
	"bulktracker/internal/app"
	"bulktracker/internal/config"
	"bulktracker/internal/domain"
	"bulktracker/internal/metrics"
)

func main() {
	cfgPath := env("CONFIG_PATH", "bulktracker.toml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	policy, err := domain.ParseCoercePolicy(cfg.Store.CoercePolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	backend, closeBackend, err := buildBackend(cfg)
	if err != nil {
		log.Fatalf("store backend: %v", err)
	}
	defer closeBackend()

	mc := metrics.NewCollector("bulktracker")
	records := app.NewRecordService(backend, policy, mc)
	trend := app.NewTrendService(records)

	h := adapthttp.New(records, trend, mc).Handler()
	log.Printf("backend %s, listening on %s", cfg.Store.Backend, cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func buildBackend(cfg *config.Config) (domain.Backend, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case config.BackendFile:
		return file.New(cfg.File.Path), noop, nil
	case config.BackendGitHub:
		return githubfs.New(githubfs.Config{
			Token:    cfg.GitHub.Token,
			Repo:     cfg.GitHub.Repo,
			FilePath: cfg.GitHub.FilePath,
			Branch:   cfg.GitHub.Branch,
		}), noop, nil
	case config.BackendSheets:
		b, err := gsheets.New(context.Background(), cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	case config.BackendPostgres:
		b, err := postgres.Open(cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	case config.BackendMemory:
		return memory.New(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
