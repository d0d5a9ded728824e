package ingest

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/pkg/delegation"
	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/agrisync/agrisync/pkg/logging"
	"github.com/agrisync/agrisync/pkg/ngsi"
	"github.com/agrisync/agrisync/pkg/sink"
)

// failingSink rejects every document.
type failingSink struct{}

func (failingSink) Name() string { return "failing" }
func (failingSink) Send(context.Context, string, ngsi.Document) error {
	return stderrors.New("broker unreachable")
}

// forgetfulSink accepts documents but never stores them.
type forgetfulSink struct{}

func (forgetfulSink) Name() string                                       { return "forgetful" }
func (forgetfulSink) Send(context.Context, string, ngsi.Document) error { return nil }
func (forgetfulSink) Fetch(_ context.Context, id string) (ngsi.Document, error) {
	return nil, sink.ErrNotFound
}

func newTestService(t *testing.T, config Config) (*Service, *sink.Memory) {
	t.Helper()
	mem, err := sink.NewMemory(16)
	require.NoError(t, err)
	store, engine, err := NewDelegation(context.Background(), DelegationConfig{})
	require.NoError(t, err)
	if config.PolicyIssuer == "" {
		config.PolicyIssuer = "EU.EORI.TEST"
	}
	svc := NewService(config, mem, store, engine)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestIngestFlat(t *testing.T) {
	svc, mem := newTestService(t, Config{StampDates: true})
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, "agri_soil", map[string]any{"name": "Clay"})
	require.NoError(t, err)

	assert.Equal(t, "AgriSoil", doc.Type())
	entityType, _, ok := ngsi.ParseURN(doc.ID())
	require.True(t, ok)
	assert.Equal(t, "AgriSoil", entityType)
	assert.Contains(t, doc, "dateCreated")

	stored, err := mem.Fetch(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestIngestCanonical(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	canonical := map[string]any{
		"id":   "urn:ngsi-ld:AgriSoil:1",
		"type": "AgriSoil",
		"name": map[string]any{"type": "Property", "value": "Clay"},
	}
	doc, err := svc.Ingest(ctx, "AgriSoil", canonical)
	require.NoError(t, err)
	assert.Equal(t, "urn:ngsi-ld:AgriSoil:1", doc.ID())

	delete(canonical, "name")
	_, err = svc.Ingest(ctx, "AgriSoil", canonical)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetErrorCode(err))
	assert.Contains(t, err.Error(), `Required "name" does not exist`)

	canonical["type"] = "AgriCrop"
	_, err = svc.Ingest(ctx, "AgriSoil", canonical)
	assert.Equal(t, errors.ErrCodeValidation, errors.GetErrorCode(err))
}

func TestIngestErrors(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	tests := []struct {
		name       string
		kind       string
		payload    map[string]any
		wantCode   errors.ErrorCode
		wantStatus int
		wantFields []string
	}{
		{
			name:       "unknown kind",
			kind:       "tractor",
			payload:    map[string]any{"name": "x"},
			wantCode:   errors.ErrCodeUnknownEntityType,
			wantStatus: 404,
		},
		{
			name:       "missing fields",
			kind:       "agri_farm",
			payload:    map[string]any{"name": "Finca"},
			wantCode:   errors.ErrCodeMissingRequired,
			wantStatus: 400,
			wantFields: []string{"location", "location_type", "address_locality", "address_country", "address_street", "contact_point_email", "contact_point_telephone", "has_agri_parcel"},
		},
		{
			name: "malformed geometry",
			kind: "agri_farm",
			payload: map[string]any{
				"name":                    "Finca",
				"location":                "1,2,3",
				"location_type":           "Point",
				"address_locality":        "Sevilla",
				"address_country":         "ES",
				"address_street":          "Calle Feria 1",
				"contact_point_email":     "a@b.es",
				"contact_point_telephone": "1",
				"has_agri_parcel":         "urn:ngsi-ld:AgriParcel:1",
			},
			wantCode:   errors.ErrCodeMalformedGeometry,
			wantStatus: 400,
		},
		{
			name:       "invalid value",
			kind:       "agri_soil",
			payload:    map[string]any{"name": "Clay", "agro_voc_concept": "not a url"},
			wantCode:   errors.ErrCodeInvalidFormat,
			wantStatus: 400,
		},
		{
			name:       "invalid value with bad geometry",
			kind:       "agri_app",
			payload:    map[string]any{"endpoint": "not a url", "location": "NaN,1", "location_type": "Point"},
			wantCode:   errors.ErrCodeInvalidFormat,
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(ctx, tt.kind, tt.payload)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))
			assert.Equal(t, tt.wantStatus, errors.GetHTTPStatus(err))
			if tt.wantFields != nil {
				ae, ok := errors.As(err)
				require.True(t, ok)
				assert.ElementsMatch(t, tt.wantFields, ae.Details["missing"])
			}
		})
	}
}

func TestIngestInvalidValuesKeepGeometryError(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	_, err := svc.Ingest(context.Background(), "agri_app", map[string]any{
		"endpoint":      "not a url",
		"location":      "NaN,1",
		"location_type": "Point",
	})
	ae, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"endpoint"}, ae.Details["invalid"])
	assert.Contains(t, ae.Details["geometry"], "malformed Point geometry")
}

func TestIngestSinkFailures(t *testing.T) {
	ctx := context.Background()

	svc := NewService(Config{}, failingSink{}, nil, nil)
	_, err := svc.Ingest(ctx, "agri_soil", map[string]any{"name": "Clay"})
	assert.Equal(t, errors.ErrCodeSink, errors.GetErrorCode(err))
	assert.Equal(t, 502, errors.GetHTTPStatus(err))

	unconfirmed := NewService(Config{ConfirmPersistence: true}, forgetfulSink{}, nil, nil)
	_, err = unconfirmed.Ingest(ctx, "agri_soil", map[string]any{"name": "Clay"})
	assert.Equal(t, errors.ErrCodeNotPersisted, errors.GetErrorCode(err))

	svc, mem := newTestService(t, Config{})
	expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
	defer cancel()
	_, err = svc.Ingest(expired, "agri_soil", map[string]any{"name": "Clay"})
	assert.Equal(t, errors.ErrCodeTimeout, errors.GetErrorCode(err))
	assert.Equal(t, 504, errors.GetHTTPStatus(err))
	assert.Equal(t, 0, mem.Len())

	unchecked := NewService(Config{}, forgetfulSink{}, nil, nil)
	_, err = unchecked.Ingest(ctx, "agri_soil", map[string]any{"name": "Clay"})
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	valid, msg, err := svc.Validate(ctx, "agri_soil", map[string]any{"name": "Clay"})
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, msg)

	valid, msg, err = svc.Validate(ctx, "agri_soil", map[string]any{"id": "urn:ngsi-ld:AgriSoil:1", "type": "AgriSoil"})
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, `Required "name" does not exist`, msg)

	_, _, err = svc.Validate(ctx, "tractor", nil)
	assert.Equal(t, errors.ErrCodeUnknownEntityType, errors.GetErrorCode(err))
}

func TestEntities(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	soil, err := svc.Ingest(ctx, "agri_soil", map[string]any{"name": "Clay"})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "agri_soil", map[string]any{"name": "Loam"})
	require.NoError(t, err)

	got, err := svc.Entity(ctx, soil.ID())
	require.NoError(t, err)
	assert.Equal(t, soil, got)

	_, err = svc.Entity(ctx, "urn:ngsi-ld:AgriSoil:missing")
	assert.Equal(t, errors.ErrCodeEntityNotFound, errors.GetErrorCode(err))

	list, err := svc.Entities(ctx, "AgriSoil")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	writerOnly := NewService(Config{}, sink.NewWriter(&discard{}), nil, nil)
	_, err = writerOnly.Entity(ctx, soil.ID())
	assert.Equal(t, errors.ErrCodeNotImplemented, errors.GetErrorCode(err))
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestPolicies(t *testing.T) {
	svc, _ := newTestService(t, Config{AccessSubject: "EU.EORI.DEFAULT"})
	ctx := context.Background()

	ev, err := svc.StorePolicy(ctx, delegation.Request{
		EntityType: "AgriFarm",
		Action:     "GET",
		Attributes: []string{"name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "EU.EORI.TEST", ev.DelegationEvidence.PolicyIssuer)
	assert.Equal(t, "EU.EORI.DEFAULT", ev.Subject())

	evs, err := svc.ListPolicies(ctx)
	require.NoError(t, err)
	assert.Len(t, evs, 1)

	decision, err := svc.TestPolicy(ctx, delegation.AccessRequest{
		EntityType: "AgriFarm",
		Action:     "GET",
		Attributes: []string{"name"},
		At:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	consumerCtx := logging.WithConsumer(ctx, "someone-else")
	decision, err = svc.TestPolicy(consumerCtx, delegation.AccessRequest{
		EntityType: "AgriFarm",
		Action:     "GET",
		Attributes: []string{"name"},
		At:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	_, err = svc.StorePolicy(ctx, delegation.Request{EntityType: "AgriFarm"})
	assert.Equal(t, errors.ErrCodePolicyValidation, errors.GetErrorCode(err))

	_, err = svc.TestPolicy(ctx, delegation.AccessRequest{Action: "GET"})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetErrorCode(err))
}

func TestPoliciesWithoutStore(t *testing.T) {
	svc := NewService(Config{}, failingSink{}, nil, nil)
	ctx := context.Background()

	_, err := svc.StorePolicy(ctx, delegation.Request{})
	assert.Equal(t, errors.ErrCodeNotImplemented, errors.GetErrorCode(err))
	_, err = svc.ListPolicies(ctx)
	assert.Equal(t, errors.ErrCodeNotImplemented, errors.GetErrorCode(err))
	_, err = svc.TestPolicy(ctx, delegation.AccessRequest{})
	assert.Equal(t, errors.ErrCodeNotImplemented, errors.GetErrorCode(err))
}

func storeRequest(subject string) delegation.Request {
	return delegation.Request{
		AccessSubject: subject,
		EntityType:    "AgriFarm",
		Action:        "GET",
		Attributes:    []string{"name"},
	}
}
