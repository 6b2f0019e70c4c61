package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/checkit/checkit-server/internal/domain"
	"github.com/checkit/checkit-server/internal/store"
)

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	// Interval is the period between sweep ticks.
	Interval time.Duration

	// WorkerCount bounds how many tasks are evaluated concurrently per tick.
	WorkerCount int
}

// DefaultSweeperConfig returns a SweeperConfig with reasonable defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:    time.Minute,
		WorkerCount: 4,
	}
}

// Sweeper periodically evaluates every upcoming task against the clock,
// transitioning past-due tasks to unfinished and firing pending reminders.
//
// Ticks never overlap: if a tick is still running when the timer fires, the
// new tick is skipped. Within a tick each task is independent and evaluated
// concurrently; the tick completes only when all per-task work has settled.
type Sweeper struct {
	tasks    store.TaskStore
	notifier *Notifier
	config   SweeperConfig
	timeFunc func() time.Time // Injectable for testing
	logger   *slog.Logger

	busy atomic.Bool
	wg   sync.WaitGroup
}

// NewSweeper creates a new Sweeper.
func NewSweeper(
	tasks store.TaskStore,
	notifier *Notifier,
	config SweeperConfig,
	logger *slog.Logger,
) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultSweeperConfig().Interval
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultSweeperConfig().WorkerCount
	}

	return &Sweeper{
		tasks:    tasks,
		notifier: notifier,
		config:   config,
		timeFunc: time.Now,
		logger:   logger.With("component", "sweeper"),
	}
}

// Run executes ticks on the configured interval until ctx is done. Tick
// failures are logged and never stop the loop; the next tick proceeds
// normally.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started",
		"interval", s.config.Interval,
		"worker_count", s.config.WorkerCount)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("sweeper stopped")
			return

		case <-ticker.C:
			if !s.busy.CompareAndSwap(false, true) {
				s.logger.Warn("previous sweep still running, skipping tick")
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.busy.Store(false)

				if err := s.Tick(ctx); err != nil {
					s.logger.Error("sweep tick failed", "error", err)
				}
			}()
		}
	}
}

// Tick runs one sweep over all upcoming tasks. Per-task failures are logged
// and abandoned for this cycle; only a failure to load the candidates is
// returned as an error.
func (s *Sweeper) Tick(ctx context.Context) error {
	now := s.timeFunc()

	candidates, err := s.tasks.FindUpcoming(ctx)
	if err != nil {
		return fmt.Errorf("failed to load upcoming tasks: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(s.config.WorkerCount)
	for i := range candidates {
		task := candidates[i]
		g.Go(func() error {
			s.sweepTask(ctx, &task, now)
			return nil
		})
	}
	// Errors are handled per task; Wait only joins the workers.
	_ = g.Wait()

	s.logger.Debug("sweep tick completed", "candidates", len(candidates))
	return nil
}

// sweepTask evaluates a single candidate. The due branch wins over the
// reminder branch, and each transition is a conditional write: the
// notification is emitted only when this sweep actually performed the
// transition, so a concurrent sweep of the same task produces no duplicate.
func (s *Sweeper) sweepTask(ctx context.Context, task *domain.Task, now time.Time) {
	log := s.logger.With("task_id", task.ID.Hex(), "uid", task.UID)

	switch {
	case IsPastDue(task.Due, now):
		transitioned, err := s.tasks.MarkUnfinished(ctx, task.ID)
		if err != nil {
			log.Error("failed to mark task unfinished", "error", err)
			return
		}
		if !transitioned {
			return
		}
		if err := s.notifier.TaskMissed(ctx, task); err != nil {
			log.Error("failed to emit missed notification", "error", err)
			return
		}
		log.Info("task transitioned to unfinished", "due", task.Due)

	case IsPastReminder(task.Reminder, now) && !task.ReminderFired:
		fired, err := s.tasks.MarkReminderFired(ctx, task.ID)
		if err != nil {
			log.Error("failed to mark reminder fired", "error", err)
			return
		}
		if !fired {
			return
		}
		if err := s.notifier.TaskReminder(ctx, task); err != nil {
			log.Error("failed to emit reminder notification", "error", err)
			return
		}
		log.Info("reminder fired", "reminder", task.Reminder)
	}
}
