package adsb

import (
	"context"
	"sync"
	"time"
)

// defaultPollInterval is used when no interval is configured.
const defaultPollInterval = 5 * time.Second

// Source provides aircraft snapshots. Implemented by Fetcher.
type Source interface {
	Fetch(ctx context.Context) (*Document, error)
}

// Publisher is the outbound side of the poll loop.
// This is typically implemented by an MQTT client.
type Publisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the interface for poll loop diagnostics.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Stats is a snapshot of poll loop counters.
type Stats struct {
	// Polls is the total number of poll attempts.
	Polls uint64

	// FetchFailures counts polls that failed before producing a document.
	FetchFailures uint64

	// PublishFailures counts documents that could not be handed to the broker.
	PublishFailures uint64

	// LastAircraft is the aircraft count of the most recent published snapshot.
	LastAircraft int

	// LastSuccess is when the most recent snapshot was published.
	LastSuccess time.Time
}

// Poller drives the fetch-and-publish cycle.
// It polls the receiver at a fixed interval and publishes each snapshot to
// a single MQTT topic at QoS 1, unretained.
type Poller struct {
	source    Source
	publisher Publisher
	topic     string
	interval  time.Duration

	// Counters (read via Stats)
	stats   Stats
	statsMu sync.RWMutex

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// PollerConfig holds configuration for the poller.
type PollerConfig struct {
	// Source provides snapshots (usually a Fetcher).
	Source Source

	// Publisher receives each snapshot (usually the MQTT client).
	Publisher Publisher

	// Topic is the MQTT topic snapshots are published to.
	Topic string

	// Interval is how often to poll.
	// Default: 5 seconds.
	Interval time.Duration
}

// NewPoller creates a poller.
//
// Parameters:
//   - cfg: Configuration for the poller
//
// Returns:
//   - *Poller: Ready to start (call Start to begin polling)
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultPollInterval
	}

	return &Poller{
		source:    cfg.Source,
		publisher: cfg.Publisher,
		topic:     cfg.Topic,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start begins polling. The first poll happens immediately rather than one
// interval in; subsequent polls follow the configured interval.
// Call Stop to shut down.
//
// Parameters:
//   - ctx: Context for cancellation (will stop polling when cancelled)
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.pollLoop(ctx)
}

// Stop gracefully stops polling and waits for an in-flight cycle to finish.
// Safe to call multiple times (uses sync.Once).
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

// SetLogger sets the logger for this poller.
func (p *Poller) SetLogger(logger Logger) {
	p.loggerMu.Lock()
	p.logger = logger
	p.loggerMu.Unlock()
}

// Stats returns a snapshot of the poll loop counters.
func (p *Poller) Stats() Stats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.stats
}

// pollLoop runs the periodic fetch-and-publish cycle.
func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First snapshot goes out immediately
	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce performs a single fetch-and-publish cycle.
// Failures are counted and logged; they never stop the loop.
func (p *Poller) pollOnce(ctx context.Context) {
	p.statsMu.Lock()
	p.stats.Polls++
	p.statsMu.Unlock()

	doc, err := p.source.Fetch(ctx)
	if err != nil {
		p.statsMu.Lock()
		p.stats.FetchFailures++
		p.statsMu.Unlock()
		p.logError("failed to fetch aircraft data", err)
		return
	}

	if err := p.publisher.Publish(p.topic, doc.Payload, 1, false); err != nil {
		p.statsMu.Lock()
		p.stats.PublishFailures++
		p.statsMu.Unlock()
		p.logWarn("failed to publish aircraft data", err)
		return
	}

	p.statsMu.Lock()
	p.stats.LastAircraft = doc.AircraftCount
	p.stats.LastSuccess = doc.FetchedAt
	p.statsMu.Unlock()

	if logger := p.getLogger(); logger != nil {
		logger.Info("published aircraft data",
			"topic", p.topic,
			"aircraft", doc.AircraftCount,
		)
	}
}

// getLogger returns the current logger (may be nil).
func (p *Poller) getLogger() Logger {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	return p.logger
}

// logError logs an error if logger is set.
func (p *Poller) logError(msg string, err error) {
	if logger := p.getLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}

// logWarn logs a warning if logger is set.
func (p *Poller) logWarn(msg string, err error) {
	if logger := p.getLogger(); logger != nil {
		logger.Warn(msg, "error", err)
	}
}
