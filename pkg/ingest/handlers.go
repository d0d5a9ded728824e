package ingest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agrisync/agrisync/pkg/delegation"
	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/agrisync/agrisync/pkg/logging"
	"github.com/agrisync/agrisync/pkg/ngsi"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

// NewRouter builds the HTTP API for svc. auth, if non-nil, guards every route
// except the health check.
func NewRouter(svc *Service, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}

		r.Route("/api/{kind}", func(r chi.Router) {
			r.Post("/", svc.handleIngest)
			r.Post("/validate", svc.handleValidate)
		})

		r.Route("/context-broker/entity", func(r chi.Router) {
			r.Get("/types", svc.handleEntityTypes)
			r.Get("/id/{id}", svc.handleEntityByID)
			r.Get("/{kind}", svc.handleEntitiesByType)
		})

		r.Route("/authorization", func(r chi.Router) {
			r.Post("/store-policy", svc.handleStorePolicy)
			r.Get("/list-policies", svc.handleListPolicies)
			r.Post("/list-policies", svc.handleListPolicies)
			r.Post("/test-policy", svc.handleTestPolicy)
		})
	})

	return r
}

func (s *Service) handleIngest(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	doc, err := s.Ingest(r.Context(), chi.URLParam(r, "kind"), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	valid, msg, err := s.Validate(r.Context(), chi.URLParam(r, "kind"), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": valid, "message": msg})
}

func (s *Service) handleEntityTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"entity_types": ngsi.TypeNames()})
}

func (s *Service) handleEntityByID(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Entity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entity": doc})
}

func (s *Service) handleEntitiesByType(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Entities(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []ngsi.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entities": docs})
}

func (s *Service) handleStorePolicy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := delegation.Request{
		EntityType:    q.Get("entity_type"),
		Action:        q.Get("action"),
		Attributes:    delegation.ParseAttributes(q.Get("allowed_attributes")),
		AccessSubject: q.Get("access_subject"),
		Identifiers:   delegation.ParseAttributes(q.Get("identifiers")),
		Effect:        q.Get("effect"),
	}
	if req.EntityType == "" || req.Action == "" || len(req.Attributes) == 0 {
		writeError(w, errors.New(errors.ErrCodeMissingRequired, "entity_type, action and allowed_attributes are required"))
		return
	}
	if _, known := ngsi.Lookup(req.EntityType); !known {
		writeError(w, errors.NewUnknownEntityType(req.EntityType))
		return
	}

	ev, err := s.StorePolicy(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Service) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	evs, err := s.ListPolicies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if evs == nil {
		evs = []*delegation.Evidence{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"policies": evs})
}

func (s *Service) handleTestPolicy(w http.ResponseWriter, r *http.Request) {
	var req delegation.AccessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	decision, err := s.TestPolicy(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid request body"))
		return nil, false
	}
	if payload == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body must be a JSON object"))
		return nil, false
	}
	return payload, true
}

// writeError renders err. Missing-field errors list every key under
// "errors"; everything else is a single "error" message.
func writeError(w http.ResponseWriter, err error) {
	status := errors.GetHTTPStatus(err)
	ae, ok := errors.As(err)
	if !ok {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	body := map[string]interface{}{"error": ae.Message, "code": ae.Code}
	if missing, ok := ae.Details["missing"].([]string); ok {
		body["errors"] = missing
	}
	if invalid, ok := ae.Details["invalid"].([]string); ok {
		body["invalid"] = invalid
	}
	if geometry, ok := ae.Details["geometry"].(string); ok {
		body["geometry"] = geometry
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
