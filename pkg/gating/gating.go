// Package gating decides whether a generation request may run and
// charges the caller's quota for successful generations only.
package gating

import (
	"context"
	"strings"
	"time"

	"github.com/jordanlanch/scribely/pkg/domain"
	"github.com/jordanlanch/scribely/pkg/generation"
	"github.com/jordanlanch/scribely/pkg/identity"
	"github.com/jordanlanch/scribely/pkg/logger"
	"github.com/jordanlanch/scribely/pkg/metrics"
	"github.com/jordanlanch/scribely/pkg/quota"
)

// Decision is the gate's verdict for one request
type Decision int

const (
	Allow Decision = iota
	RequireSignIn
	RequireUpgrade
	Reject // invalid request
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RequireSignIn:
		return "sign_in"
	case RequireUpgrade:
		return "upgrade"
	case Reject:
		return "validation"
	default:
		return "unknown"
	}
}

// EmptyTopicMessage is returned for a blank topic
const EmptyTopicMessage = "Please enter a topic"

// Decide applies the checks in order: validation, identity, quota.
// A blank topic is rejected whatever the identity or quota.
func Decide(req generation.Request, caller *identity.Identity, state quota.State, ceiling int) (Decision, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return Reject, domain.NewValidationError(EmptyTopicMessage)
	}
	if caller == nil {
		return RequireSignIn, domain.NewAuthRequiredError()
	}
	if !quota.Check(state, ceiling) {
		return RequireUpgrade, domain.NewQuotaExhaustedError(ceiling)
	}
	return Allow, nil
}

// Outcome is the result of an allowed generation
type Outcome struct {
	Result generation.Result
	Quota  quota.State // counter after the call
	Limit  int
}

// Coordinator runs the gate in front of a generator
type Coordinator struct {
	tracker   *quota.Tracker
	generator generation.Generator
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewCoordinator creates a new gating coordinator
func NewCoordinator(tracker *quota.Tracker, generator generation.Generator, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Default()
	}
	return &Coordinator{
		tracker:   tracker,
		generator: generator,
		logger:    log.With("service", "gating"),
	}
}

// SetMetrics sets the metrics sink
func (c *Coordinator) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// Generate gates req and, when allowed, calls the generator.
// A rejection is returned as an error and has no side effects.
// A failed generation is returned in Outcome.Result and does not consume quota.
func (c *Coordinator) Generate(ctx context.Context, req generation.Request, caller *identity.Identity, apiKey string) (*Outcome, error) {
	var state quota.State
	if caller != nil && strings.TrimSpace(req.Topic) != "" {
		s, err := c.tracker.State(ctx, caller.ID)
		if err != nil {
			c.logger.Error("Failed to load quota", "user_id", caller.ID, "error", err)
			return nil, domain.NewInternalError(err)
		}
		state = s
	}

	decision, err := Decide(req, caller, state, c.tracker.Ceiling())
	if decision != Allow {
		c.metrics.RecordGatingRejection(decision.String())
		if decision == RequireUpgrade {
			c.logger.Info("Generation refused, quota exhausted", "user_id", caller.ID, "count", state.Count)
		}
		return nil, err
	}

	start := time.Now()
	result := c.generator.Generate(ctx, req, apiKey)
	c.metrics.RecordGeneration(!result.Failed(), time.Since(start))

	outcome := &Outcome{Result: result, Quota: state, Limit: c.tracker.Ceiling()}
	if result.Failed() {
		c.logger.Warn("Generation failed", "user_id", caller.ID, "error", result.Err)
		return outcome, nil
	}

	next, err := c.tracker.Record(ctx, caller.ID)
	if err != nil {
		// the text was produced; keep it and report the stale counter
		c.logger.Error("Failed to record generation", "user_id", caller.ID, "error", err)
		return outcome, nil
	}
	outcome.Quota = next

	c.logger.Info("Generation completed", "user_id", caller.ID, "count", next.Count)
	return outcome, nil
}

// Usage returns quota usage for caller
func (c *Coordinator) Usage(ctx context.Context, caller *identity.Identity) (*quota.Usage, error) {
	if caller == nil {
		return nil, domain.NewAuthRequiredError()
	}
	u, err := c.tracker.Usage(ctx, caller.ID)
	if err != nil {
		c.logger.Error("Failed to load quota", "user_id", caller.ID, "error", err)
		return nil, domain.NewInternalError(err)
	}
	return u, nil
}
