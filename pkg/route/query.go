// Package route fetches the best-priced DEX once, when the view is created.
package route

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"dex-bridge/pkg/logging"
	"dex-bridge/pkg/metrics"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/types"
)

// Source reads the best DEX
type Source interface {
	GetBestDEX(ctx context.Context) (types.DEXName, error)
}

// Config configures a Query. Source is required.
type Config struct {
	Source   Source
	Reporter report.Reporter
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
	// OnResult is called once with the DEX name after a successful read
	OnResult func(types.DEXName)
}

// Query is a single best-DEX read and its display value
type Query struct {
	cfg   Config
	once  sync.Once
	mu    sync.RWMutex
	value types.DEXName
	err   error
	done  chan struct{}
}

// New prepares a query without issuing it
func New(cfg Config) *Query {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Reporter == nil {
		cfg.Reporter = report.NewLogReporter(cfg.Logger)
	}
	return &Query{cfg: cfg, done: make(chan struct{})}
}

// Start creates a query and issues it
func Start(ctx context.Context, cfg Config) *Query {
	q := New(cfg)
	q.Start(ctx)
	return q
}

// Start issues the read and returns immediately. Only the first call has
// any effect; the read is never retried.
func (q *Query) Start(ctx context.Context) {
	q.once.Do(func() {
		go q.run(ctx)
	})
}

func (q *Query) run(ctx context.Context) {
	defer close(q.done)
	cfg := q.cfg

	dex, err := cfg.Source.GetBestDEX(ctx)

	q.mu.Lock()
	if err != nil {
		q.err = err
	} else {
		q.value = dex
	}
	q.mu.Unlock()

	if err != nil {
		cfg.Metrics.ObserveRouteQuery(metrics.ResultFailure)
		// A read aborted by teardown is not a failure worth surfacing.
		if ctx.Err() != nil {
			cfg.Logger.WithError(err).Debug("best dex query cancelled")
			return
		}
		cfg.Reporter.Report(report.OpRouteQuery, err)
		return
	}

	cfg.Metrics.ObserveRouteQuery(metrics.ResultSuccess)
	cfg.Logger.WithField("dex", dex).Debug("best dex received")
	if cfg.OnResult != nil {
		cfg.OnResult(dex)
	}
}

// Value returns the best DEX, or "" until a read succeeded
func (q *Query) Value() types.DEXName {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.value
}

// Err returns the read's error once it failed
func (q *Query) Err() error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.err
}

// Done is closed when the read has completed
func (q *Query) Done() <-chan struct{} {
	return q.done
}
