// Package lifecycle provides phase-based startup and shutdown for the
// adsb2mqtt processes.
//
// Both binaries follow the same arc: establish connections, start the
// steady-state work, hold until a shutdown signal, then drain. The Runner
// owns the arc and its observability; the process-specific work plugs in
// through Hooks.
//
// Phases:
//   - Init: constructed, not yet started
//   - Connecting: external connections being established
//   - Running: steady-state work in progress
//   - Draining: shutdown in progress, resources being released
//   - Stopped: lifecycle complete
//
// Example usage:
//
//	runner := lifecycle.NewRunner(lifecycle.Config{
//	    Name: "adsb2mqtt",
//	    Hooks: lifecycle.Hooks{
//	        Connect: func(ctx context.Context) error { ... },
//	        Run:     func(ctx context.Context) error { ... },
//	        Cleanup: func() { ... },
//	    },
//	})
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := runner.Run(ctx); err != nil {
//	    os.Exit(1)
//	}
package lifecycle
