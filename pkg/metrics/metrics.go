package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Result labels
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultDiscarded = "discarded" // completion arrived after the poller was stopped
)

// Metrics holds the client-side counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	polls            *prometheus.CounterVec
	routeQueries     *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	lastStatusUpdate prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer, logger logrus.FieldLogger) *Metrics {
	m := &Metrics{
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dex_bridge",
				Subsystem: "poller",
				Name:      "status_polls_total",
				Help:      "Total number of transaction status polls by outcome",
			},
			[]string{"result"}, // success, failure, discarded
		),
		routeQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dex_bridge",
				Subsystem: "route",
				Name:      "queries_total",
				Help:      "Total number of best-DEX queries by outcome",
			},
			[]string{"result"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dex_bridge",
				Subsystem: "bridge",
				Name:      "submissions_total",
				Help:      "Total number of bridge submissions by outcome",
			},
			[]string{"result"},
		),
		lastStatusUpdate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "dex_bridge",
				Subsystem: "poller",
				Name:      "last_status_update_timestamp",
				Help:      "Timestamp of the last applied transaction status",
			},
		),
	}

	registerIfNotExists(reg, m.polls, "status_polls_total", logger)
	registerIfNotExists(reg, m.routeQueries, "route_queries_total", logger)
	registerIfNotExists(reg, m.submissions, "bridge_submissions_total", logger)
	registerIfNotExists(reg, m.lastStatusUpdate, "last_status_update_timestamp", logger)

	return m
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(reg prometheus.Registerer, collector prometheus.Collector, name string, logger logrus.FieldLogger) {
	if err := reg.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

// ObservePoll counts one status poll completion
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.lastStatusUpdate.SetToCurrentTime()
	}
}

// ObserveRouteQuery counts one best-DEX query completion
func (m *Metrics) ObserveRouteQuery(result string) {
	if m == nil {
		return
	}
	m.routeQueries.WithLabelValues(result).Inc()
}

// ObserveSubmission counts one bridge submission completion
func (m *Metrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// Polls returns the poll counter for result
func (m *Metrics) Polls(result string) prometheus.Counter {
	return m.polls.WithLabelValues(result)
}

// RouteQueries returns the route query counter for result
func (m *Metrics) RouteQueries(result string) prometheus.Counter {
	return m.routeQueries.WithLabelValues(result)
}

// Submissions returns the submission counter for result
func (m *Metrics) Submissions(result string) prometheus.Counter {
	return m.submissions.WithLabelValues(result)
}
