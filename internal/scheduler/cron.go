package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/BlieNuckel/tunarr/internal/config"
	"github.com/BlieNuckel/tunarr/internal/controllers"
	"github.com/BlieNuckel/tunarr/internal/metrics"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron         *cron.Cron
	sweepSpec    string
	searchCtrl   *controllers.SearchController
	downloadCtrl *controllers.DownloadController
	logger       *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	cfg *config.Config,
	searchCtrl *controllers.SearchController,
	downloadCtrl *controllers.DownloadController,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		sweepSpec:    cfg.CacheSweepInterval,
		searchCtrl:   searchCtrl,
		downloadCtrl: downloadCtrl,
		logger:       logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Expired cache entries are otherwise only evicted when a search or download runs
	_, err := s.cron.AddFunc(s.sweepSpec, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add cache sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("sweep", s.sweepSpec).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runSweep evicts expired cache entries and refreshes the tracked job gauge
func (s *Scheduler) runSweep() {
	before := s.searchCtrl.Stats()
	s.searchCtrl.CleanExpired()
	after := s.searchCtrl.Stats()

	metrics.TrackedJobs.Set(float64(s.downloadCtrl.TrackedJobs()))

	s.logger.WithFields(logrus.Fields{
		"searches_evicted": before.CachedSearches - after.CachedSearches,
		"results_evicted":  before.CachedResults - after.CachedResults,
		"searches_cached":  after.CachedSearches,
		"results_cached":   after.CachedResults,
	}).Debug("Cache sweep completed")
}
