// Package scheduler wires up the cron job that periodically refreshes the
// saved searches: fetch, extract, quick-filter, and record survivors as
// unscored history entries. Scoring never runs unattended; it stays behind
// the explicit confirmation step.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/p-shah256/careerfit/internal/extract"
	"github.com/p-shah256/careerfit/internal/fetch"
	"github.com/p-shah256/careerfit/internal/history"
	"github.com/p-shah256/careerfit/internal/profile"
	"github.com/p-shah256/careerfit/internal/quickfilter"
	"github.com/p-shah256/careerfit/internal/site"
	"github.com/p-shah256/careerfit/pkg/types"
)

type Scheduler struct {
	cron     *cron.Cron
	fetcher  *fetch.Fetcher
	hist     *history.Store
	profiles *profile.Store
	spec     string
}

// New creates a Scheduler that fires every intervalHours hours.
func New(fetcher *fetch.Fetcher, hist *history.Store, profiles *profile.Store, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		fetcher:  fetcher,
		hist:     hist,
		profiles: profiles,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the cron. One refresh runs immediately
// so the feed is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() { s.refresh(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	slog.Info("discovery cron started", "spec", s.spec)

	go s.refresh(ctx)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	slog.Info("discovery cron stopped")
}

// refresh runs one discovery pass over every saved search. Per-search
// errors are logged and skipped; one broken board never blocks the rest.
func (s *Scheduler) refresh(ctx context.Context) {
	searches, err := s.profiles.LoadSearches()
	if err != nil {
		slog.Error("load saved searches failed", "error", err)
		return
	}
	if len(searches) == 0 {
		slog.Debug("no saved searches, skipping discovery pass")
		return
	}

	prof, filters, err := s.profiles.LoadProfileAndFilters()
	if err != nil {
		slog.Error("load profile failed", "error", err)
		return
	}
	if prof == nil {
		slog.Info("no candidate profile yet, skipping discovery pass")
		return
	}

	slog.Info("discovery pass started", "searches", len(searches))
	var total int
	for _, rawURL := range searches {
		n, err := s.refreshOne(ctx, rawURL, prof, filters)
		if err != nil {
			slog.Warn("discovery search failed, continuing", "url", rawURL, "error", err)
			continue
		}
		total += n
	}
	slog.Info("discovery pass complete", "recorded", total)
}

func (s *Scheduler) refreshOne(ctx context.Context, rawURL string, prof *types.CandidateProfile, filters *types.HardFilters) (int, error) {
	cfg, ok := site.LookupURL(rawURL)
	if !ok {
		return 0, fmt.Errorf("unconfigured site: %s", rawURL)
	}

	doc, err := s.fetcher.Page(ctx, rawURL)
	if err != nil {
		return 0, err
	}

	candidates := extract.Listings(doc, cfg, rawURL)
	passed, _ := quickfilter.Partition(candidates, prof, filters)

	recorded := 0
	now := time.Now()
	for _, c := range passed {
		rec := types.JobRecord{
			ID:        types.Fingerprint(c.Title, c.Company, c.Link),
			Title:     c.Title,
			Company:   c.Company,
			Location:  c.Location,
			Link:      c.Link,
			Status:    types.StatusScanned,
			ScannedAt: now,
			Source:    c.Source,
		}
		if _, err := s.hist.Upsert(rec); err != nil {
			slog.Error("discovery upsert failed", "title", c.Title, "error", err)
			continue
		}
		recorded++
	}
	return recorded, nil
}
