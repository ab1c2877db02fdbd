// Package bridge submits cross-chain bridge requests and keeps the
// resulting transaction reference for display.
package bridge

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dex-bridge/pkg/logging"
	"dex-bridge/pkg/metrics"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/types"
)

// Backend accepts bridge requests
type Backend interface {
	SubmitBridge(ctx context.Context, req types.BridgeRequest) (types.TransactionReference, error)
}

// Form holds the bridge fields as the user is editing them
type Form struct {
	SourceChain      string
	DestinationChain string
	Token            string
}

// DefaultForm returns the form as first shown to the user
func DefaultForm() Form {
	return Form{
		SourceChain:      types.DefaultSourceChain,
		DestinationChain: types.DefaultDestinationChain,
	}
}

// Request snapshots the current field values
func (f Form) Request() types.BridgeRequest {
	return types.BridgeRequest{
		SourceChain:      f.SourceChain,
		DestinationChain: f.DestinationChain,
		Token:            f.Token,
	}
}

// Config configures a Submitter. Backend is required.
type Config struct {
	Backend  Backend
	Reporter report.Reporter
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
	// OnReference is called after a reference has been stored
	OnReference func(types.TransactionReference)
}

// Submitter sends bridge requests. Every Submit is an independent request:
// there is no de-duplication and no idempotency key.
type Submitter struct {
	backend     Backend
	reporter    report.Reporter
	logger      logrus.FieldLogger
	metrics     *metrics.Metrics
	onReference func(types.TransactionReference)

	mu        sync.RWMutex
	reference types.TransactionReference
	received  bool
}

// NewSubmitter creates a submitter in the "not yet submitted" state
func NewSubmitter(cfg Config) *Submitter {
	s := &Submitter{
		backend:     cfg.Backend,
		reporter:    cfg.Reporter,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		onReference: cfg.OnReference,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.reporter == nil {
		s.reporter = report.NewLogReporter(s.logger)
	}
	return s
}

// Submit sends req once. On success the returned reference replaces the
// displayed one; on failure the error is reported and the displayed
// reference is left as it was.
func (s *Submitter) Submit(ctx context.Context, req types.BridgeRequest) (types.TransactionReference, error) {
	log := s.logger.WithFields(logrus.Fields{
		"submission_id": uuid.NewString(),
		"source":        req.SourceChain,
		"destination":   req.DestinationChain,
		"token":         req.Token,
	})
	log.Info("submitting bridge request")

	ref, err := s.backend.SubmitBridge(ctx, req)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.ResultFailure)
		s.reporter.Report(report.OpBridgeSubmit, err)
		return "", err
	}

	s.metrics.ObserveSubmission(metrics.ResultSuccess)
	log.WithField("reference", ref).Info("bridge request accepted")

	s.mu.Lock()
	s.reference = ref
	s.received = true
	s.mu.Unlock()

	if s.onReference != nil {
		s.onReference(ref)
	}
	return ref, nil
}

// Reference returns the last received transaction reference
func (s *Submitter) Reference() types.TransactionReference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reference
}

// Received reports whether any submission has returned a reference
func (s *Submitter) Received() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.received
}
