package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/honeycarbs/talentsync/internal/domain"
	"github.com/honeycarbs/talentsync/internal/repository"
	"github.com/honeycarbs/talentsync/pkg/logging"
)

// SweepConfig tunes a retry sweep
type SweepConfig struct {
	// OlderThan skips talents touched more recently; their own attempt may still be running
	OlderThan   time.Duration
	Batch       int
	Concurrency int
	Statuses    []domain.SyncStatus
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.OlderThan <= 0 {
		c.OlderThan = 10 * time.Minute
	}
	if c.Batch <= 0 {
		c.Batch = 100
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if len(c.Statuses) == 0 {
		c.Statuses = []domain.SyncStatus{domain.SyncError, domain.SyncPending}
	}
	return c
}

// SweepReport counts the outcomes of one sweep
type SweepReport struct {
	Selected int `json:"selected"`
	Synced   int `json:"synced"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// Sweeper retries talents left in PENDING or ERROR
type Sweeper struct {
	store  repository.TalentRepository
	runner Runner
	log    *logging.Logger
	cfg    SweepConfig
	now    func() time.Time
}

// NewSweeper creates a Sweeper
func NewSweeper(store repository.TalentRepository, runner Runner, log *logging.Logger, cfg SweepConfig) *Sweeper {
	if log == nil {
		log = logging.NewNop()
	}
	return &Sweeper{
		store:  store,
		runner: runner,
		log:    log.With("component", "sweeper"),
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

// Sweep runs one attempt for every selected talent, at most cfg.Concurrency at a time
func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	cutoff := s.now().Add(-s.cfg.OlderThan)
	talents, err := s.store.ListTalentsForRetry(ctx, s.cfg.Statuses, cutoff, s.cfg.Batch)
	if err != nil {
		return SweepReport{}, fmt.Errorf("select talents for retry: %w", err)
	}

	var synced, failed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, t := range talents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := s.runner.SyncTalent(gctx, t.ID, "")
			switch outcome {
			case OutcomeSynced:
				synced.Add(1)
			case OutcomeSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
				s.log.Debug("retry failed", "talent_id", t.ID, "error", err)
			}
			return nil
		})
	}
	err = g.Wait()

	report := SweepReport{
		Selected: len(talents),
		Synced:   int(synced.Load()),
		Failed:   int(failed.Load()),
		Skipped:  int(skipped.Load()),
	}
	s.log.Info("sweep finished", "selected", report.Selected, "synced", report.Synced, "failed", report.Failed, "skipped", report.Skipped)
	return report, err
}

// Run sweeps every interval until ctx is done
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("sweep failed", "error", err)
			}
		}
	}
}
