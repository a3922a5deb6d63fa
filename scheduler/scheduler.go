// Package scheduler builds the catalog at startup and rebuilds it at fixed times of day.
// It also watches catalog freshness.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/giygas/medicine-library/catalog"
	"github.com/giygas/medicine-library/interfaces"
	"github.com/giygas/medicine-library/logging"
	"github.com/giygas/medicine-library/metrics"
	"github.com/go-co-op/gocron"
)

const (
	// buildTimeout bounds one fetch of the label source
	buildTimeout = 5 * time.Minute
	staleAfter   = 25 * time.Hour
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog rebuilds and freshness monitoring using dependency injection
type Scheduler struct {
	store        interfaces.CatalogStore
	source       interfaces.LabelSource
	validator    interfaces.InputValidator
	refreshTimes []string
	scheduler    *gocron.Scheduler

	// rng is only used by refresh, which BeginUpdate serializes
	rng *rand.Rand

	stopOnce sync.Once
	stop     chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// refreshTimes are daily "HH:MM" rebuild times in local time.
func NewScheduler(store interfaces.CatalogStore, source interfaces.LabelSource, validator interfaces.InputValidator, refreshTimes []string) *Scheduler {
	return &Scheduler{
		store:        store,
		source:       source,
		validator:    validator,
		refreshTimes: refreshTimes,
		scheduler:    gocron.NewScheduler(time.Local),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:         make(chan struct{}),
	}
}

// WithRand replaces the shuffle source
func (s *Scheduler) WithRand(rng *rand.Rand) *Scheduler {
	s.rng = rng
	return s
}

// Start builds the first catalog, schedules the rebuilds and starts freshness monitoring.
// A failed first build is not fatal: it is recorded and retried at the next scheduled time.
func (s *Scheduler) Start() error {
	if err := s.Refresh(context.Background()); err != nil {
		logging.Error("Initial catalog build failed, serving without a catalog until the next refresh", "error", err)
	}

	_, err := s.scheduler.Every(1).Days().At(strings.Join(s.refreshTimes, ";")).Do(func() {
		if err := s.Refresh(context.Background()); err != nil {
			logging.Error("Scheduled catalog build failed", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule catalog rebuilds", "error", err)
		return fmt.Errorf("failed to schedule catalog rebuilds: %w", err)
	}

	s.scheduler.StartAsync()
	s.startFreshnessMonitoring()

	logging.Info("Catalog rebuilds scheduled", "times", s.refreshTimes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Stop()
	})
}

// Refresh fetches labels and swaps in a newly merged catalog. On failure the previous
// catalog stays in place and the error is recorded in the store.
// It returns nil without doing anything while another refresh is running.
func (s *Scheduler) Refresh(ctx context.Context) error {
	if !s.store.BeginUpdate() {
		logging.Info("Catalog build already in progress, skipping...")
		return nil
	}
	defer s.store.EndUpdate()

	logging.Info("Starting catalog build")
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	cat, build, err := catalog.Build(ctx, s.source, catalog.Seed(), s.rng)
	if err != nil {
		s.store.RecordFailure(err)
		metrics.CatalogBuildTotal.WithLabelValues("failure").Inc()
		return err
	}

	report := s.validator.ReportCatalogQuality(cat.All(), build)
	s.store.UpdateCatalog(cat, report)

	metrics.CatalogBuildTotal.WithLabelValues("success").Inc()
	metrics.CatalogMedicines.WithLabelValues("normalized").Set(float64(report.NormalizedRecords))
	metrics.CatalogMedicines.WithLabelValues("seed").Set(float64(report.SeedRecords))

	logging.Info("Catalog build completed",
		"duration", time.Since(start).String(),
		"medicines", cat.Len(),
		"labels_fetched", build.Labels.Total,
		"labels_rejected", build.Labels.Rejected,
	)
	return nil
}

// startFreshnessMonitoring warns hourly while the catalog is older than staleAfter
func (s *Scheduler) startFreshnessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				lastUpdate := s.store.GetLastUpdated()
				if lastUpdate.IsZero() {
					logging.Warn("No catalog has been built yet")
				} else if time.Since(lastUpdate) > staleAfter {
					logging.Warn("Catalog hasn't been rebuilt in over 25 hours", "last_update", lastUpdate.Format(time.RFC3339))
				}
			}
		}
	}()
}
