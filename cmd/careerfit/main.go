package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/p-shah256/careerfit/internal/api"
	"github.com/p-shah256/careerfit/internal/config"
	"github.com/p-shah256/careerfit/internal/fetch"
	"github.com/p-shah256/careerfit/internal/history"
	"github.com/p-shah256/careerfit/internal/llm"
	"github.com/p-shah256/careerfit/internal/profile"
	"github.com/p-shah256/careerfit/internal/scan"
	"github.com/p-shah256/careerfit/internal/scheduler"
	"github.com/p-shah256/careerfit/internal/skills"
	"github.com/p-shah256/careerfit/pkg/logger"
	"github.com/p-shah256/careerfit/pkg/types"
)

func main() {
	logger.Setup(slog.LevelInfo)
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	llmClient, err := llm.New(ctx, cfg.GeminiKey)
	if err != nil {
		slog.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}
	defer llmClient.Close()

	var mirror history.Mirror
	if cfg.RedisURL != "" {
		rdb, err := history.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		mirror = history.NewRedisMirror(rdb)
		slog.Info("remote history mirror enabled")
	}

	hist, err := history.Open(history.NewJSONFile(filepath.Join(cfg.DataDir, "history.json")), mirror, cfg.HistoryCap)
	if err != nil {
		slog.Error("failed to open history store", "error", err)
		os.Exit(1)
	}

	skillStore, err := skills.Open(skills.NewJSONFile(filepath.Join(cfg.DataDir, "skills.json")), cfg.SkillsCap)
	if err != nil {
		slog.Error("failed to open skills store", "error", err)
		os.Exit(1)
	}

	profiles, err := profile.NewStore(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open profile store", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.New()

	if cfg.RescanHours > 0 {
		sched := scheduler.New(fetcher, hist, profiles, cfg.RescanHours)
		if err := sched.Start(ctx); err != nil {
			slog.Error("failed to start discovery cron", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	scanCfg := scan.Config{
		MaxJobsPerScan: cfg.MaxJobsPerScan,
		DelayMin:       cfg.DelayMin,
		DelayMax:       cfg.DelayMax,
		Progress: func(p types.ProgressEvent) {
			slog.Info("scoring", "current", p.Current, "total", p.Total, "title", p.Title)
		},
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		slog.Error("invalid port", "port", cfg.Port)
		os.Exit(1)
	}

	server := api.NewServer(port, fetcher, llmClient, hist, skillStore, profiles, scanCfg)
	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
