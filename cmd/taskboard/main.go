package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/models"
	"taskboard/internal/secrets"
	"taskboard/internal/server"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/util"
)

func main() {
	addrFlag := flag.String("addr", util.EnvOrDefault("TASKBOARD_ADDR", ":8080"), "HTTP listen address")
	secretsFlag := flag.String("secrets", util.EnvOrDefault("TASKBOARD_SECRETS_DB", "data/secrets.db"), "Path to sqlite secret store; empty keeps secrets in memory")
	seedFlag := flag.Bool("seed", util.EnvBool("TASKBOARD_SEED", true), "Start with the sample tasks")
	debugFlag := flag.Bool("debug", util.EnvBool("TASKBOARD_DEBUG", false), "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	var store secrets.Store = secrets.NewMemoryStore()
	if *secretsFlag != "" {
		sqliteStore, err := sqlite.Open(*secretsFlag, logger)
		if err != nil {
			logger.Error("unable to open secret store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	cfg, err := secrets.Load(context.Background(), store, os.LookupEnv, *debugFlag)
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.String("build", string(cfg.BuildConfiguration)),
		slog.Bool("ci", cfg.IsCI),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.Bool("api_key_set", cfg.APIKey != ""),
	)

	var seed models.Tasks
	if *seedFlag {
		seed = models.SampleTasks()
	}
	b := board.New(logger, seed...)
	b.OnChange(func(c board.Change) {
		s := c.Tasks.Stats()
		logger.Info("tasks changed",
			slog.String("op", string(c.Kind)),
			slog.Int("total", s.Total),
			slog.Int("completed", s.Completed),
			slog.Int("percent", s.DisplayPercent()),
		)
	})

	srv := server.New(b, logger)

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.Int("tasks", b.Len()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
