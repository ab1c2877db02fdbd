// Package coordinator ties one bridge view together: it owns the session,
// fires the best-DEX query, keeps the status poller running for as long as
// the view is mounted, and submits bridge requests.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/sirupsen/logrus"

	"dex-bridge/pkg/bridge"
	"dex-bridge/pkg/logging"
	"dex-bridge/pkg/metrics"
	"dex-bridge/pkg/poller"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/route"
	"dex-bridge/pkg/session"
	"dex-bridge/pkg/types"
	"dex-bridge/pkg/wallet"
)

// ErrClosed is returned by Submit once the coordinator has been torn down
var ErrClosed = errors.New("coordinator closed")

// Backend is everything the coordinator needs from the DEX/bridge service
type Backend interface {
	poller.StatusSource
	route.Source
	bridge.Backend
}

// Config configures a Coordinator. Backend is required.
type Config struct {
	Backend  Backend
	Reporter report.Reporter
	Interval time.Duration
	Clock    clock.Clock
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
}

// View is everything displayed for one mount
type View struct {
	session.Snapshot
	WalletKind        wallet.Kind
	BestDEX           types.DEXName
	Reference         types.TransactionReference
	ReferenceReceived bool
}

// Coordinator is a mounted bridge view
type Coordinator struct {
	logger    logrus.FieldLogger
	state     *session.State
	submitter *bridge.Submitter
	poller    *poller.Poller
	query     *route.Query

	cancel      context.CancelFunc
	unsubscribe func()
	closed      atomic.Bool
	closeOnce   sync.Once
	done        chan struct{}

	publishMu sync.Mutex
	subsMu    sync.Mutex
	subs      map[int]func(View)
	nextID    int
}

// Mount creates the session, issues the best-DEX query and starts polling
// the transaction status. Cancelling ctx tears the coordinator down just
// like Close.
func Mount(ctx context.Context, cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Reporter == nil {
		cfg.Reporter = report.NewLogReporter(cfg.Logger)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Coordinator{
		logger: cfg.Logger,
		state:  session.New(),
		cancel: cancel,
		done:   make(chan struct{}),
		subs:   make(map[int]func(View)),
	}

	c.unsubscribe = c.state.Subscribe(func(snap session.Snapshot) {
		c.publish()
	})

	c.submitter = bridge.NewSubmitter(bridge.Config{
		Backend:     cfg.Backend,
		Reporter:    cfg.Reporter,
		Logger:      cfg.Logger,
		Metrics:     cfg.Metrics,
		OnReference: func(types.TransactionReference) { c.publish() },
	})

	c.poller = poller.New(poller.Config{
		Source:   cfg.Backend,
		Apply:    c.state.SetTransactionStatus,
		Reporter: cfg.Reporter,
		Interval: cfg.Interval,
		Clock:    cfg.Clock,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})

	c.query = route.New(route.Config{
		Source:   cfg.Backend,
		Reporter: cfg.Reporter,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
		OnResult: func(types.DEXName) { c.publish() },
	})

	c.query.Start(ctx)
	c.poller.Start(ctx)

	go func() {
		<-ctx.Done()
		c.Close()
	}()

	c.logger.WithField("interval", c.poller.Interval().String()).Info("bridge view mounted")
	return c
}

// SetTokenPair stores the token pair as typed
func (c *Coordinator) SetTokenPair(v types.TokenPair) {
	c.state.SetTokenPair(v)
}

// SetWalletAddress stores the wallet address as typed
func (c *Coordinator) SetWalletAddress(v types.WalletAddress) {
	c.state.SetWalletAddress(v)
}

// Submit sends a bridge request. Each call is a separate request.
func (c *Coordinator) Submit(ctx context.Context, req types.BridgeRequest) (types.TransactionReference, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	return c.submitter.Submit(ctx, req)
}

// BestDEXDone is closed once the best-DEX query has completed
func (c *Coordinator) BestDEXDone() <-chan struct{} {
	return c.query.Done()
}

// View returns the current aggregate view
func (c *Coordinator) View() View {
	snap := c.state.Snapshot()
	return View{
		Snapshot:          snap,
		WalletKind:        wallet.Classify(snap.WalletAddress),
		BestDEX:           c.query.Value(),
		Reference:         c.submitter.Reference(),
		ReferenceReceived: c.submitter.Received(),
	}
}

// Subscribe registers fn to receive the view after every change and
// returns a function that removes it. fn runs on the goroutine that caused
// the change and must not block.
func (c *Coordinator) Subscribe(fn func(View)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

// Close stops the status poller and cancels outstanding reads. It is safe
// to call more than once.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.poller.Stop()
		c.cancel()
		c.unsubscribe()
		c.logger.Info("bridge view closed")
		close(c.done)
	})
}

// Done is closed once the coordinator has been torn down
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) publish() {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	view := c.View()

	c.subsMu.Lock()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range subs {
		fn(view)
	}
}
