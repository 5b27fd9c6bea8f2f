package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Phase represents the current state of a managed process lifecycle.
type Phase string

const (
	PhaseInit       Phase = "init"
	PhaseConnecting Phase = "connecting"
	PhaseRunning    Phase = "running"
	PhaseDraining   Phase = "draining"
	PhaseStopped    Phase = "stopped"
)

// Hooks supply the process-specific work for each lifecycle phase.
// Any hook may be nil, in which case its phase is a no-op.
type Hooks struct {
	// Connect establishes external connections (broker sessions and the
	// like). Runs during the Connecting phase; an error aborts startup
	// without invoking Cleanup, so Connect must release anything it
	// half-built before returning the error.
	Connect func(ctx context.Context) error

	// Run starts the steady-state work (poll loops, subscriptions) and
	// returns once that work is launched. An error here drains and stops.
	Run func(ctx context.Context) error

	// Cleanup releases resources during the Draining phase, in reverse
	// order of acquisition. It runs whenever Connect succeeded.
	Cleanup func()
}

// Config holds configuration for a lifecycle runner.
type Config struct {
	// Name is a human-readable identifier for logging.
	Name string

	// Hooks provide the phase work.
	Hooks Hooks
}

// Logger defines the logging interface for the runner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Runner drives a process through its lifecycle phases:
//
//	Init → Connecting → Running → Draining → Stopped
//
// Run blocks in the Running phase until the context is cancelled (typically
// by SIGINT or SIGTERM via signal.NotifyContext), then drains and stops.
// A Runner is single-use; create a new one to run again.
type Runner struct {
	config Config
	logger Logger

	mu        sync.RWMutex
	phase     Phase
	lastError error
	startTime time.Time
}

// NewRunner creates a runner in the Init phase.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		config: cfg,
		logger: noopLogger{},
		phase:  PhaseInit,
	}
}

// SetLogger sets the logger for the runner.
func (r *Runner) SetLogger(logger Logger) {
	r.logger = logger
}

// Run executes the full lifecycle and blocks until shutdown completes.
//
// The error return maps directly to the process exit code: nil means a
// clean signal-driven shutdown (exit 0), non-nil means startup failed
// (exit 1). Failures after the Running phase is reached do not occur here;
// steady-state problems are the hooks' business and are logged, not fatal.
//
// Parameters:
//   - ctx: Cancellation signals shutdown
//
// Returns:
//   - error: nil on clean shutdown, the hook's error when startup fails
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != PhaseInit {
		r.mu.Unlock()
		return fmt.Errorf("runner %s has already run", r.config.Name)
	}
	r.startTime = time.Now()
	r.mu.Unlock()

	r.setPhase(PhaseConnecting)
	if r.config.Hooks.Connect != nil {
		if err := r.config.Hooks.Connect(ctx); err != nil {
			r.recordError(err)
			r.setPhase(PhaseStopped)
			r.logger.Error("startup failed while connecting",
				"name", r.config.Name,
				"error", err,
			)
			return err
		}
	}

	r.setPhase(PhaseRunning)
	if r.config.Hooks.Run != nil {
		if err := r.config.Hooks.Run(ctx); err != nil {
			r.recordError(err)
			r.logger.Error("startup failed while starting work",
				"name", r.config.Name,
				"error", err,
			)
			r.drain()
			return err
		}
	}

	r.logger.Info("running", "name", r.config.Name)

	<-ctx.Done()

	r.logger.Info("shutdown signal received", "name", r.config.Name)
	r.drain()

	return nil
}

// drain moves through Draining into Stopped, invoking Cleanup.
func (r *Runner) drain() {
	r.setPhase(PhaseDraining)
	if r.config.Hooks.Cleanup != nil {
		r.config.Hooks.Cleanup()
	}
	r.setPhase(PhaseStopped)

	r.logger.Info("stopped",
		"name", r.config.Name,
		"uptime", time.Since(r.startTimeSnapshot()).Round(time.Millisecond),
	)
}

// setPhase records a phase transition.
func (r *Runner) setPhase(phase Phase) {
	r.mu.Lock()
	r.phase = phase
	r.mu.Unlock()

	r.logger.Debug("phase transition",
		"name", r.config.Name,
		"phase", string(phase),
	)
}

// recordError stores the error that ended the lifecycle early.
func (r *Runner) recordError(err error) {
	r.mu.Lock()
	r.lastError = err
	r.mu.Unlock()
}

// startTimeSnapshot reads the start time under lock.
func (r *Runner) startTimeSnapshot() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startTime
}

// Phase returns the current lifecycle phase.
func (r *Runner) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// IsRunning returns true if the runner is in the Running phase.
func (r *Runner) IsRunning() bool {
	return r.Phase() == PhaseRunning
}

// LastError returns the error that aborted startup, if any.
func (r *Runner) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError
}

// Uptime returns how long the runner has been running.
// Returns 0 unless the runner is in the Running phase.
func (r *Runner) Uptime() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.phase != PhaseRunning {
		return 0
	}
	return time.Since(r.startTime)
}
