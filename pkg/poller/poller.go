// Package poller keeps the displayed transaction status fresh by reading
// the backend's status endpoint on a fixed schedule.
//
// Each tick issues its own read, so reads may overlap and the last one to
// complete wins. Every read is tagged with the epoch current when its
// schedule was started; Stop advances the epoch, and a completion is only
// applied if its epoch is still current. Once Stop returns no tick fires
// and no outstanding read can touch the session.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/sirupsen/logrus"

	"dex-bridge/pkg/logging"
	"dex-bridge/pkg/metrics"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/types"
)

// DefaultInterval is the time between two status reads
const DefaultInterval = 5 * time.Second

// StatusSource reads the current transaction status
type StatusSource interface {
	GetTransactionStatus(ctx context.Context) (types.TransactionStatus, error)
}

// Config configures a Poller. Source and Apply are required.
type Config struct {
	Source StatusSource
	// Apply publishes a fresh status. It runs with the poller lock held and
	// must not call back into the Poller.
	Apply    func(types.TransactionStatus)
	Reporter report.Reporter
	Interval time.Duration
	Clock    clock.Clock
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
}

// Poller is a cancellable repeating status read
type Poller struct {
	source   StatusSource
	apply    func(types.TransactionStatus)
	reporter report.Reporter
	interval time.Duration
	clock    clock.Clock
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	epoch   uint64
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped poller
func New(cfg Config) *Poller {
	p := &Poller{
		source:   cfg.Source,
		apply:    cfg.Apply,
		reporter: cfg.Reporter,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}

	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.reporter == nil {
		p.reporter = report.NewLogReporter(p.logger)
	}

	return p
}

// Interval returns the time between two reads
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Running reports whether a schedule is active
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start schedules a status read every interval, the first one interval
// from now. Starting a running poller does nothing and returns false.
// Cancelling ctx aborts in-flight reads but does not stop the schedule;
// call Stop for that.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false
	}

	p.epoch++
	p.running = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	// The ticker is created here rather than in the loop so the schedule is
	// anchored at the moment Start is called.
	ticker := p.clock.Ticker(p.interval)
	go p.loop(ctx, ticker, p.epoch, p.done)

	p.logger.WithFields(logrus.Fields{
		"epoch":    p.epoch,
		"interval": p.interval.String(),
	}).Debug("status poller started")

	return true
}

// Stop cancels the schedule. When it returns no further tick will fire and
// any read still in flight will be discarded on completion. Stopping a
// stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}

	p.running = false
	p.epoch++
	p.cancel()
	done := p.done
	epoch := p.epoch
	p.mu.Unlock()

	<-done

	p.logger.WithField("epoch", epoch).Debug("status poller stopped")
}

func (p *Poller) loop(ctx context.Context, ticker *clock.Ticker, epoch uint64, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.live(epoch) {
				return
			}
			go p.poll(ctx, epoch)
		}
	}
}

func (p *Poller) live(epoch uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && p.epoch == epoch
}

func (p *Poller) poll(ctx context.Context, epoch uint64) {
	// The tick may have been taken just before Stop; don't start a read for it.
	if !p.live(epoch) {
		p.metrics.ObservePoll(metrics.ResultDiscarded)
		return
	}

	status, err := p.source.GetTransactionStatus(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || p.epoch != epoch {
		p.metrics.ObservePoll(metrics.ResultDiscarded)
		p.logger.WithField("epoch", epoch).Debug("discarding status from stopped poller")
		return
	}

	if err != nil {
		p.metrics.ObservePoll(metrics.ResultFailure)
		p.reporter.Report(report.OpPollStatus, err)
		return
	}

	p.metrics.ObservePoll(metrics.ResultSuccess)
	p.apply(status)
}
