// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package delegation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agrisync/agrisync/pkg/logging"
)

// PolicyLogger provides structured logging for delegation decisions
type PolicyLogger struct {
	logger zerolog.Logger
}

// NewPolicyLogger creates a new policy logger
func NewPolicyLogger() *PolicyLogger {
	return &PolicyLogger{
		logger: log.With().Str("component", "delegation").Logger(),
	}
}

// withTrace adds the request's trace identifiers when ctx carries them.
func (pl *PolicyLogger) withTrace(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if ctx == nil {
		return event
	}
	if traceID := logging.GetTraceID(ctx); traceID != "" {
		event = event.Str("trace_id", traceID)
	}
	if consumer := logging.GetConsumer(ctx); consumer != "" {
		event = event.Str("consumer", consumer)
	}
	return event
}

// LogDecision logs an access decision with the request that produced it
func (pl *PolicyLogger) LogDecision(ctx context.Context, req AccessRequest, decision *Decision, duration time.Duration, err error) {
	event := pl.logger.Debug()
	if err != nil {
		event = pl.logger.Error().Err(err)
	} else if decision != nil && !decision.Allowed {
		event = pl.logger.Info()
	}

	event = pl.withTrace(ctx, event).
		Str("subject", req.Subject).
		Str("entity_type", req.EntityType).
		Str("action", req.Action).
		Strs("attributes", req.Attributes).
		Dur("evaluation_duration", duration)

	if req.Identifier != "" {
		event = event.Str("identifier", req.Identifier)
	}
	if decision != nil {
		event = event.Bool("allowed", decision.Allowed).Strs("denied", decision.Denied)
	}

	event.Msg("delegation decision evaluated")
}

// LogEvidenceStored logs an evidence document written to a store
func (pl *PolicyLogger) LogEvidenceStored(ctx context.Context, store string, ev *Evidence, err error) {
	event := pl.logger.Info()
	if err != nil {
		event = pl.logger.Error().Err(err)
	}

	event = pl.withTrace(ctx, event).Str("store", store)
	if ev != nil {
		event = event.
			Str("policy_issuer", ev.DelegationEvidence.PolicyIssuer).
			Str("access_subject", ev.Subject()).
			Strs("entity_types", ev.EntityTypes())
	}
	event.Msg("delegation evidence stored")
}

// LogPolicyConfigChange logs when the evidence file is (re)loaded
func (pl *PolicyLogger) LogPolicyConfigChange(path string, count int, err error) {
	event := pl.logger.Info()
	if err != nil {
		event = pl.logger.Error().Err(err)
	}

	event.
		Str("path", path).
		Int("evidences", count).
		Msg("delegation evidence loaded")
}
