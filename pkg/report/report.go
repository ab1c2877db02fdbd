// Package report carries failures that components recover from locally
// (status polls, the best-DEX query, bridge submissions) to whoever wants
// to observe them.
package report

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Operations whose failures are reported
const (
	OpPollStatus   = "poll_status"
	OpRouteQuery   = "route_query"
	OpBridgeSubmit = "bridge_submit"
)

// Reporter receives recovered failures. Implementations must not block.
type Reporter interface {
	Report(op string, err error)
}

// Func adapts a plain function to a Reporter
type Func func(op string, err error)

func (f Func) Report(op string, err error) {
	f(op, err)
}

// Failure is a single reported failure
type Failure struct {
	Op  string
	Err error
}

// LogReporter writes reported failures to a logrus logger
type LogReporter struct {
	logger logrus.FieldLogger
}

// NewLogReporter creates a reporter that logs at warn level
func NewLogReporter(logger logrus.FieldLogger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(op string, err error) {
	r.logger.WithError(err).WithField("op", op).Warn("request failed")
}

// Recorder keeps every reported failure in memory
type Recorder struct {
	mu       sync.Mutex
	failures []Failure
}

func (r *Recorder) Report(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, Failure{Op: op, Err: err})
}

// Failures returns a copy of the recorded failures in report order
func (r *Recorder) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Count returns how many failures were recorded for op
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.failures {
		if f.Op == op {
			n++
		}
	}
	return n
}

// Latest forwards failures to a channel that only ever holds the most
// recent one, dropping older undelivered failures.
type Latest struct {
	mu sync.Mutex
	ch chan Failure
}

// NewLatest creates a Latest reporter
func NewLatest() *Latest {
	return &Latest{ch: make(chan Failure, 1)}
}

func (l *Latest) Report(op string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		select {
		case l.ch <- Failure{Op: op, Err: err}:
			return
		default:
			select {
			case <-l.ch:
			default:
			}
		}
	}
}

// C returns the channel failures are delivered on
func (l *Latest) C() <-chan Failure {
	return l.ch
}

// Multi fans reports out to every non-nil reporter in order
func Multi(reporters ...Reporter) Reporter {
	var rs []Reporter
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return Func(func(op string, err error) {
		for _, r := range rs {
			r.Report(op, err)
		}
	})
}
