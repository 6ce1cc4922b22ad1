package delegation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"castellan-hq/castellan/pkg/config"
)

// Sweeper deletes terminal delegation records on a schedule. A record is
// terminal once it is revoked or expired; the sweeper removes it after the
// configured retention window has passed since that terminal moment. Query
// semantics are unaffected, the sweeper only reclaims storage.
type Sweeper struct {
	store  *FileStore
	cfg    *config.RetentionConfig
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper over the given store.
func NewSweeper(store *FileStore, cfg *config.RetentionConfig, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:  store,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger.With("component", "storage.sweeper"),
	}
}

// Start begins scheduled sweeping per the retention cron expression. An
// empty schedule disables the sweeper.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper already running")
	}

	if s.cfg.Schedule == "" {
		s.logger.Info("retention schedule not configured, sweeper disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.cfg.Schedule, err)
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		removed, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("delegation sweep failed", "error", err)
			return
		}
		if removed > 0 {
			s.logger.Info("delegation sweep completed", "removed", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("delegation sweeper started", "schedule", s.cfg.Schedule, "window", s.cfg.Window)
	return nil
}

// Stop halts scheduled sweeping and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("delegation sweeper stopped")
}

// Sweep runs one pruning pass and returns how many records were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	all, err := s.store.List()
	if err != nil {
		return 0, err
	}

	now := s.store.now()
	cutoff := now.Add(-s.cfg.Window)

	removed := 0
	for _, d := range all {
		select {
		case <-ctx.Done():
			return removed, ctx.Err()
		default:
		}

		terminal, ok := terminalMoment(d, now)
		if !ok || terminal.After(cutoff) {
			continue
		}

		if err := s.store.Delete(d.ID); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// terminalMoment returns when the delegation left the active state, and
// false while it is still active.
func terminalMoment(d *Delegation, now time.Time) (time.Time, bool) {
	switch d.EffectiveState(now) {
	case StateRevoked:
		if d.RevokedAt != nil {
			return *d.RevokedAt, true
		}
		// Old records revoked before RevokedAt existed.
		return d.CreatedAt, true
	case StateExpired:
		return *d.ExpiresAt, true
	default:
		return time.Time{}, false
	}
}
