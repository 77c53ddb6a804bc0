// Package config loads and validates environment variables at startup.
// Fail-fast: a missing required variable stops the process before any
// stores are opened.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the scanner.
type Config struct {
	Port           string
	GeminiKey      string
	DataDir        string
	RedisURL       string // optional; empty disables the remote mirror
	MaxJobsPerScan int
	DelayMin       time.Duration
	DelayMax       time.Duration
	HistoryCap     int
	SkillsCap      int
	RescanHours    int      // 0 disables the periodic discovery cron
	SavedSearches  []string // loaded separately from the data dir
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	geminiKey := os.Getenv("GEMINI_KEY")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_KEY is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	delayMin, err := durationEnv("SCAN_DELAY_MIN_MS", 4000*time.Millisecond)
	if err != nil {
		return nil, err
	}
	delayMax, err := durationEnv("SCAN_DELAY_MAX_MS", 12000*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if delayMax <= delayMin {
		return nil, fmt.Errorf("SCAN_DELAY_MAX_MS must be greater than SCAN_DELAY_MIN_MS")
	}

	maxJobs, err := intEnv("SCAN_MAX_JOBS", 20)
	if err != nil {
		return nil, err
	}
	historyCap, err := intEnv("HISTORY_CAP", 500)
	if err != nil {
		return nil, err
	}
	skillsCap, err := intEnv("SKILLS_CAP", 100)
	if err != nil {
		return nil, err
	}
	rescanHours, err := intEnv("RESCAN_INTERVAL_HOURS", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:           port,
		GeminiKey:      geminiKey,
		DataDir:        dataDir,
		RedisURL:       os.Getenv("REDIS_URL"),
		MaxJobsPerScan: maxJobs,
		DelayMin:       delayMin,
		DelayMax:       delayMax,
		HistoryCap:     historyCap,
		SkillsCap:      skillsCap,
		RescanHours:    rescanHours,
	}, nil
}

func intEnv(name string, fallback int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, s)
	}
	return v, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(s)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer (milliseconds), got %q", name, s)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
