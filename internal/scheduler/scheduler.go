// Package scheduler runs the discovery pipeline periodically using robfig/cron.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/joseph-ayodele/amenity-parser/internal/entity"
)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// RunFunc performs one pipeline run.
type RunFunc func(ctx context.Context) (entity.RunReport, error)

// LastRun describes the most recently finished run.
type LastRun struct {
	Report     entity.RunReport `json:"report"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Runner serializes runs coming from the schedule, the watcher and the
// admin API. At most one run is active at a time.
type Runner struct {
	run     RunFunc
	timeout time.Duration
	logger  *slog.Logger

	busy sync.Mutex
	mu   sync.RWMutex
	last *LastRun
}

func NewRunner(run RunFunc, timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Runner{run: run, timeout: timeout, logger: logger}
}

// Run executes one run or returns ErrRunInProgress without waiting.
func (r *Runner) Run(ctx context.Context) (entity.RunReport, error) {
	if !r.busy.TryLock() {
		r.logger.Warn("scheduler.run.busy")
		return entity.RunReport{}, ErrRunInProgress
	}
	defer r.busy.Unlock()
	return r.execute(ctx)
}

// Go starts a run in the background. It returns ErrRunInProgress instead
// of queueing behind an active run.
func (r *Runner) Go(ctx context.Context) error {
	if !r.busy.TryLock() {
		r.logger.Warn("scheduler.run.busy")
		return ErrRunInProgress
	}
	go func() {
		defer r.busy.Unlock()
		_, _ = r.execute(ctx)
	}()
	return nil
}

func (r *Runner) execute(ctx context.Context) (entity.RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now().UTC()
	report, err := r.run(ctx)
	last := &LastRun{Report: report, StartedAt: started, FinishedAt: time.Now().UTC()}
	if err != nil {
		last.Error = err.Error()
		r.logger.Error("scheduler.run.failed", "run_id", report.RunID, "error", err)
	} else {
		r.logger.Info("scheduler.run.ok", "run_id", report.RunID, "extracted", report.Extracted)
	}

	r.mu.Lock()
	r.last = last
	r.mu.Unlock()
	return report, err
}

// Last returns the most recent finished run, if any.
func (r *Runner) Last() (LastRun, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return LastRun{}, false
	}
	return *r.last, true
}

// Scheduler triggers the runner on a cron spec.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	runner *Runner
	base   context.Context
	logger *slog.Logger
}

// NewScheduler creates a scheduler. Scheduled runs derive from base, so
// cancelling it aborts a run in flight.
func NewScheduler(base context.Context, spec string, runner *Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	return &Scheduler{cron: c, spec: spec, runner: runner, base: base, logger: logger}
}

// Start registers the run job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler.started", "spec", s.spec, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron loop; the returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scheduler.stopping")
	return s.cron.Stop()
}

// Next returns the next scheduled activation, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) tick() {
	if _, err := s.runner.Run(s.base); errors.Is(err, ErrRunInProgress) {
		s.logger.Info("scheduler.tick.skipped")
	}
}
