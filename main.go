package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lalcmellkmal/kanatcha/data"
	"github.com/lalcmellkmal/kanatcha/internal/artifact"
	"github.com/lalcmellkmal/kanatcha/internal/captcha"
	"github.com/lalcmellkmal/kanatcha/internal/config"
	"github.com/lalcmellkmal/kanatcha/internal/glyphbank"
	"github.com/lalcmellkmal/kanatcha/internal/render"
	"github.com/lalcmellkmal/kanatcha/internal/server"
	"github.com/lalcmellkmal/kanatcha/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	lvl := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	var dataFS fs.FS = data.Files
	if cfg.DataDir != "" {
		dataFS = os.DirFS(cfg.DataDir)
	}
	bank, err := glyphbank.Load(dataFS, logger)
	if err != nil {
		logger.Error("load glyph data", "err", err)
		os.Exit(1)
	}

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	renderer, err := render.NewGG(cfg.Render)
	if err != nil {
		logger.Error("renderer", "err", err)
		os.Exit(1)
	}
	artifacts, err := artifact.NewFS(cfg.ImageDir)
	if err != nil {
		logger.Error("artifact store", "err", err)
		os.Exit(1)
	}

	svc := captcha.New(bank, st, renderer, artifacts, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go svc.Janitor(ctx, cfg.RecordTTL())

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(svc, cfg, logger).Router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("kanatcha listening", "addr", cfg.Addr, "maxLevel", cfg.MaxLevel)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server", "err", err)
		os.Exit(1)
	}
}
