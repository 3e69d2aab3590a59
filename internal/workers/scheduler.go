package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultSchedulerInterval is how often the scheduler checks for a due run
	DefaultSchedulerInterval = 24 * time.Hour
	// DefaultSchedulerMinGap is the minimum time since the last completed run
	DefaultSchedulerMinGap = 23 * time.Hour
	// DefaultSchedulerStartupDelay defers the first check after start
	DefaultSchedulerStartupDelay = 10 * time.Second
)

// Analyzer runs one analysis
type Analyzer interface {
	RunAnalysis(ctx context.Context) (*models.AnalysisResult, error)
}

// RunHistory reports the last completed run
type RunHistory interface {
	LatestCompleted(ctx context.Context) (*models.AnalysisRun, error)
}

// SchedulerConfig holds the scheduler timings
type SchedulerConfig struct {
	Interval     time.Duration
	MinGap       time.Duration
	StartupDelay time.Duration
}

// DefaultSchedulerConfig returns the daily schedule
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     DefaultSchedulerInterval,
		MinGap:       DefaultSchedulerMinGap,
		StartupDelay: DefaultSchedulerStartupDelay,
	}
}

// Scheduler triggers pattern analysis on a fixed interval, skipping ticks
// that come too soon after the last completed run. Errors are logged and
// never stop the schedule.
type Scheduler struct {
	analyzer Analyzer
	history  RunHistory
	cfg      SchedulerConfig
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a scheduler. Zero durations in cfg take the defaults.
func NewScheduler(analyzer Analyzer, history RunHistory, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	def := DefaultSchedulerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MinGap <= 0 {
		cfg.MinGap = def.MinGap
	}
	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = def.StartupDelay
	}
	return &Scheduler{
		analyzer: analyzer,
		history:  history,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the schedule. Calling Start on a started scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.logger.Debug("scheduler_already_started")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx, s.done)

	s.logger.Info("scheduler_started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("min_gap", s.cfg.MinGap),
		zap.Duration("startup_delay", s.cfg.StartupDelay),
	)
}

// Stop cancels pending ticks and waits for the loop to exit. A run already in
// progress is allowed to finish. Stop on a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.started = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	<-done
	s.logger.Info("scheduler_stopped")
}

// Started reports whether the schedule is active
func (s *Scheduler) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.release(done)

	startup := time.NewTimer(s.cfg.StartupDelay)
	defer startup.Stop()
	select {
	case <-ctx.Done():
		return
	case <-startup.C:
	}
	s.tick(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// release clears the started state when the loop exits because the parent
// context ended. Stop has already cleared it when it was the caller.
func (s *Scheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.cancel()
	s.started = false
	s.cancel = nil
	s.done = nil
	s.logger.Info("scheduler_stopped_parent_context_done")
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.shouldRun(ctx) {
		s.logger.Debug("scheduler_tick_skipped")
		return
	}
	result, err := s.analyzer.RunAnalysis(ctx)
	if errors.Is(err, ErrAnalysisInProgress) {
		s.logger.Info("scheduler_tick_skipped_run_in_progress")
		return
	}
	if err != nil {
		s.logger.Error("scheduled_analysis_failed", zap.String("error", logpkg.SanitizeError(err)))
		return
	}
	s.logger.Info("scheduled_analysis_completed",
		zap.String("run_id", result.RunID),
		zap.Int("themes_found", result.ThemesFound),
	)
}

// shouldRun is true when no run has completed yet or the last one is at least
// MinGap old. A failed lookup skips the tick.
func (s *Scheduler) shouldRun(ctx context.Context) bool {
	last, err := s.history.LatestCompleted(ctx)
	if err != nil {
		s.logger.Error("scheduler_failed_to_check_last_run", zap.String("error", logpkg.SanitizeError(err)))
		return false
	}
	if last == nil || last.CompletedAt == nil {
		return true
	}
	return s.now().Sub(*last.CompletedAt) >= s.cfg.MinGap
}
