package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jroldanc/ads-analytics-go/internal/config"
	"github.com/jroldanc/ads-analytics-go/internal/httpx"
	"github.com/jroldanc/ads-analytics-go/internal/ingest"
	"github.com/jroldanc/ads-analytics-go/internal/query"
	"github.com/jroldanc/ads-analytics-go/internal/store"
	"github.com/jroldanc/ads-analytics-go/internal/utils"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// A pipeline run may hold the store briefly; retry the open instead of
	// failing the whole server start.
	var st *store.Store
	if err := utils.NewBackoff(200*time.Millisecond, 4).Do(func(i int) error {
		var openErr error
		st, openErr = store.Open(cfg.DBPath, logger)
		return openErr
	}); err != nil {
		logger.Error("open store", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	eng, err := query.NewEngine(st, cfg.QueryCacheSize)
	if err != nil {
		logger.Error("query engine", slog.String("err", err.Error()))
		os.Exit(1)
	}

	loader := ingest.NewLoader(cfg.RawDataDir, cfg.Platforms, logger)
	etl := ingest.NewETL(loader, cfg.DBPath, logger)

	r := httpx.NewRouter(logger, etl, eng)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port), slog.String("db", cfg.DBPath))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
