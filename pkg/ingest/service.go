// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

// Package ingest accepts entity payloads from clients, turns them into
// canonical NGSI-LD documents and hands them to a sink. It also fronts the
// delegation policies that govern access to those entities.
package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/agrisync/agrisync/pkg/delegation"
	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/agrisync/agrisync/pkg/logging"
	"github.com/agrisync/agrisync/pkg/ngsi"
	"github.com/agrisync/agrisync/pkg/sink"
)

// Config holds the service behaviour switches.
type Config struct {
	ConfirmPersistence bool
	StampDates         bool
	PolicyIssuer       string
	AccessSubject      string
}

// Service converts, validates and delivers entities.
type Service struct {
	Config Config

	sink     sink.Sink
	policies delegation.Store
	engine   *delegation.Engine
	now      func() time.Time
	logger   *logging.StructuredLogger
}

// NewService creates a service. policies and engine may be nil, in which
// case the authorization operations report NOT_IMPLEMENTED.
func NewService(config Config, s sink.Sink, policies delegation.Store, engine *delegation.Engine) *Service {
	return &Service{
		Config:   config,
		sink:     s,
		policies: policies,
		engine:   engine,
		now:      time.Now,
		logger:   logging.NewStructuredLogger("ingest"),
	}
}

// NewDelegation wires an engine to a store so that every stored or reloaded
// evidence set is loaded into the engine.
func NewDelegation(ctx context.Context, config DelegationConfig) (delegation.Store, *delegation.Engine, error) {
	engine, err := delegation.NewEngine()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewStructuredLogger("ingest")
	reload := func(evs []*delegation.Evidence) {
		if err := engine.Load(evs); err != nil {
			logger.WithError(err).Error("failed to load delegation evidence")
		}
	}

	if config.StorePath == "" {
		return delegation.NewMemoryStore(reload), engine, nil
	}

	store, err := delegation.NewFileStore(config.StorePath, reload)
	if err != nil {
		return nil, nil, err
	}
	if config.ReloadInterval.Duration > 0 {
		go store.Watch(ctx, config.ReloadInterval.Duration)
	}
	return store, engine, nil
}

// Ingest turns payload into a canonical document of the given kind and sends
// it to the sink. A payload carrying both "id" and "type" is taken as
// canonical and only validated; anything else is flat input.
func (s *Service) Ingest(ctx context.Context, kind string, payload map[string]any) (ngsi.Document, error) {
	start := time.Now()
	schema, ok := ngsi.Lookup(kind)
	if !ok {
		return nil, errors.NewUnknownEntityType(kind)
	}

	doc, err := s.document(schema, payload)
	if err != nil {
		s.logFromContext(ctx).WithError(err).LogEntityOperation("ingest", schema.Type, "", false, time.Since(start))
		return nil, err
	}

	if err := s.deliver(ctx, schema.Type, doc); err != nil {
		s.logFromContext(ctx).WithError(err).LogEntityOperation("ingest", schema.Type, doc.ID(), false, time.Since(start))
		return nil, err
	}

	s.logFromContext(ctx).LogEntityOperation("ingest", schema.Type, doc.ID(), true, time.Since(start))
	return doc, nil
}

// Validate reports whether payload would be accepted by Ingest. The message
// explains the first problem found.
func (s *Service) Validate(ctx context.Context, kind string, payload map[string]any) (bool, string, error) {
	schema, ok := ngsi.Lookup(kind)
	if !ok {
		return false, "", errors.NewUnknownEntityType(kind)
	}
	if _, err := s.document(schema, payload); err != nil {
		if ae, ok := errors.As(err); ok && ae.HTTPStatus < 500 {
			return false, ae.Message, nil
		}
		return false, "", err
	}
	return true, "", nil
}

// Convert builds the canonical document without delivering it.
func (s *Service) Convert(kind string, payload map[string]any) (ngsi.Document, error) {
	schema, ok := ngsi.Lookup(kind)
	if !ok {
		return nil, errors.NewUnknownEntityType(kind)
	}
	return s.document(schema, payload)
}

func (s *Service) document(schema *ngsi.Schema, payload map[string]any) (ngsi.Document, error) {
	if ngsi.IsCanonical(payload) {
		doc := ngsi.Document(payload).Clone()
		if doc.Type() != schema.Type {
			return nil, errors.NewValidationError(
				fmt.Sprintf("document type %q does not match %s", doc.Type(), schema.Type))
		}
		if valid, msg := schema.Validate(doc); !valid {
			return nil, errors.New(errors.ErrCodeMissingRequired, msg)
		}
		return doc, nil
	}

	var opts []ngsi.Option
	if s.Config.StampDates {
		opts = append(opts, ngsi.WithTimestamps(s.now))
	}
	record, err := schema.Build(ngsi.Input(payload), opts...)
	if err != nil {
		return nil, buildError(err)
	}
	return record.ToSmartDataModel(), nil
}

// buildError maps construction failures onto coded errors.
func buildError(err error) error {
	var ve *ngsi.ValidationError
	if stderrors.As(err, &ve) {
		if len(ve.Missing) > 0 {
			ae := errors.NewMissingRequired(ve.Missing)
			ae.Cause = err
			if len(ve.Invalid) > 0 {
				ae = ae.WithDetails("invalid", invalidFields(ve))
			}
			return ae
		}
		ae := errors.Wrap(err, errors.ErrCodeInvalidFormat, ve.Error()).
			WithDetails("invalid", invalidFields(ve))
		if ve.Geometry != nil {
			ae = ae.WithDetails("geometry", ve.Geometry.Error())
		}
		return ae
	}
	if stderrors.Is(err, ngsi.ErrMalformedGeometry) {
		return errors.Wrap(err, errors.ErrCodeMalformedGeometry, err.Error())
	}
	if stderrors.Is(err, ngsi.ErrUnsupportedLocationType) {
		return errors.Wrap(err, errors.ErrCodeUnsupportedLocation, err.Error())
	}
	return errors.NewInternalError(err, "failed to build entity")
}

func invalidFields(ve *ngsi.ValidationError) []string {
	out := make([]string, len(ve.Invalid))
	for i, fe := range ve.Invalid {
		out[i] = fe.Field
	}
	return out
}

func (s *Service) deliver(ctx context.Context, entityType string, doc ngsi.Document) error {
	start := time.Now()
	err := s.sink.Send(ctx, entityType, doc)
	s.logFromContext(ctx).LogSinkOperation(s.sink.Name(), entityType, doc.ID(), err, time.Since(start))
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, fmt.Sprintf("timed out sending %s to %s", entityType, s.sink.Name()))
	}
	if err != nil {
		return errors.NewSinkError(err, fmt.Sprintf("failed to send %s to %s", entityType, s.sink.Name()))
	}

	if !s.Config.ConfirmPersistence {
		return nil
	}
	fetcher, ok := s.sink.(sink.Fetcher)
	if !ok {
		return nil
	}
	if _, err := fetcher.Fetch(ctx, doc.ID()); err != nil {
		return errors.Wrap(err, errors.ErrCodeNotPersisted,
			fmt.Sprintf("%s %s was not persisted", entityType, doc.ID()))
	}
	return nil
}

// Entity returns a stored document by id.
func (s *Service) Entity(ctx context.Context, id string) (ngsi.Document, error) {
	fetcher, ok := s.sink.(sink.Fetcher)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotImplemented, fmt.Sprintf("sink %s cannot fetch entities", s.sink.Name()))
	}
	doc, err := fetcher.Fetch(ctx, id)
	if stderrors.Is(err, sink.ErrNotFound) {
		return nil, errors.Wrap(err, errors.ErrCodeEntityNotFound, fmt.Sprintf("entity %s not found", id))
	}
	if err != nil {
		return nil, errors.NewSinkError(err, "failed to fetch entity")
	}
	return doc, nil
}

// Entities lists stored documents of one kind.
func (s *Service) Entities(ctx context.Context, kind string) ([]ngsi.Document, error) {
	schema, ok := ngsi.Lookup(kind)
	if !ok {
		return nil, errors.NewUnknownEntityType(kind)
	}
	lister, ok := s.sink.(sink.Lister)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotImplemented, fmt.Sprintf("sink %s cannot list entities", s.sink.Name()))
	}
	docs, err := lister.List(ctx, schema.Type)
	if err != nil {
		return nil, errors.NewSinkError(err, "failed to list entities")
	}
	return docs, nil
}

// StorePolicy builds delegation evidence from req and stores it. Issuer and
// access subject fall back to the configured defaults.
func (s *Service) StorePolicy(ctx context.Context, req delegation.Request) (*delegation.Evidence, error) {
	start := time.Now()
	if s.policies == nil {
		return nil, errors.New(errors.ErrCodeNotImplemented, "no delegation store configured")
	}
	if req.Issuer == "" {
		req.Issuer = s.Config.PolicyIssuer
	}
	if req.AccessSubject == "" {
		req.AccessSubject = s.Config.AccessSubject
	}

	ev, err := delegation.NewEvidence(req, s.now())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePolicyValidation, err.Error())
	}
	if err := s.policies.Put(ctx, ev); err != nil {
		s.logFromContext(ctx).LogPolicyOperation("store", req.EntityType, false, time.Since(start))
		return nil, errors.Wrap(err, errors.ErrCodePolicyStore, "failed to store policy")
	}
	s.logFromContext(ctx).LogPolicyOperation("store", req.EntityType, true, time.Since(start))
	return ev, nil
}

// ListPolicies returns every stored evidence document.
func (s *Service) ListPolicies(ctx context.Context) ([]*delegation.Evidence, error) {
	if s.policies == nil {
		return nil, errors.New(errors.ErrCodeNotImplemented, "no delegation store configured")
	}
	evs, err := s.policies.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePolicyStore, "failed to list policies")
	}
	return evs, nil
}

// TestPolicy evaluates req against the stored policies. An empty subject is
// taken from the request's consumer, then from the configured default.
func (s *Service) TestPolicy(ctx context.Context, req delegation.AccessRequest) (*delegation.Decision, error) {
	start := time.Now()
	if s.engine == nil {
		return nil, errors.New(errors.ErrCodeNotImplemented, "no delegation engine configured")
	}
	if req.Subject == "" {
		req.Subject = logging.GetConsumer(ctx)
	}
	if req.Subject == "" {
		req.Subject = s.Config.AccessSubject
	}
	if req.EntityType == "" || req.Action == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "entity_type and action are required")
	}

	decision, err := s.engine.Evaluate(ctx, req)
	if err != nil {
		s.logFromContext(ctx).LogPolicyOperation("test", req.EntityType, false, time.Since(start))
		return nil, errors.NewPolicyError(err, "failed to evaluate policy")
	}
	s.logFromContext(ctx).LogPolicyOperation("test", req.EntityType, true, time.Since(start))
	return decision, nil
}

func (s *Service) logFromContext(ctx context.Context) *logging.StructuredLogger {
	if ctx == nil {
		return s.logger
	}
	return logging.NewStructuredLoggerFromContext(ctx, "ingest")
}
