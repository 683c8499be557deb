// Package scheduler runs the service's periodic maintenance jobs against a
// single cron instance for the process lifetime.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/r3e-network/metasearch/internal/ingress"
	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
	"github.com/r3e-network/metasearch/internal/platform/stats"
)

// Scheduler owns the cron runner and the collaborators each job touches.
type Scheduler struct {
	cron *cron.Cron
	log  *logging.Logger
}

func New(log *logging.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), log: log}
}

// Start registers the magic-link purge, rate-limiter eviction and
// uptime/stat refresh jobs, then starts the cron runner.
func (s *Scheduler) Start(
	magicLinks *ingress.MagicLinkStore,
	rateLimiter *ingress.RateLimiter,
	statsCollector *stats.Collector,
	serviceUptime *metrics.Collector,
	idleBucketWindow time.Duration,
) error {
	if _, err := s.cron.AddFunc("@every 1m", func() {
		removed := magicLinks.Purge(time.Now())
		if removed > 0 {
			s.log.WithContext(context.Background()).Debugf("magic link purge removed %d expired token(s)", removed)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("@every 10m", func() {
		removed := rateLimiter.EvictIdle(idleBucketWindow, time.Now())
		if removed > 0 {
			s.log.WithContext(context.Background()).Debugf("rate limiter evicted %d idle bucket(s)", removed)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("@every 15s", func() {
		statsCollector.Refresh(2 * time.Second)
		serviceUptime.RefreshUptime()
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
