package ingest

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisync/agrisync/pkg/logging"
)

func do(t *testing.T, h http.Handler, method, target, body string, header http.Header) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestRouterIngest(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	router := NewRouter(svc, nil)

	rec, body := do(t, router, http.MethodPost, "/api/agri_soil", `{"name":"Clay","see_also":"https://a.example,https://b.example"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "AgriSoil", body["type"])
	assert.Equal(t, map[string]interface{}{"type": "Property", "value": "Clay"}, body["name"])
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	id := body["id"].(string)
	rec, body = do(t, router, http.MethodGet, "/context-broker/entity/id/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entity := body["entity"].(map[string]interface{})
	assert.Equal(t, id, entity["id"])

	rec, body = do(t, router, http.MethodGet, "/context-broker/entity/AgriSoil", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["entities"], 1)

	rec, _ = do(t, router, http.MethodGet, "/context-broker/entity/id/urn:ngsi-ld:AgriSoil:nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterIngestMissingFields(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	router := NewRouter(svc, nil)

	rec, body := do(t, router, http.MethodPost, "/api/agri_crop", `{"name":"Wheat"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []interface{}{"has_agri_soil", "planting_from"}, body["errors"])
	assert.Equal(t, "MISSING_REQUIRED", body["code"])
}

func TestRouterIngestBadRequests(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	router := NewRouter(svc, nil)

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{name: "unknown kind", target: "/api/tractor", body: `{"name":"x"}`, want: http.StatusNotFound},
		{name: "not json", target: "/api/agri_soil", body: `{`, want: http.StatusBadRequest},
		{name: "json array", target: "/api/agri_soil", body: `[]`, want: http.StatusBadRequest},
		{name: "null body", target: "/api/agri_soil", body: `null`, want: http.StatusBadRequest},
		{name: "canonical missing", target: "/api/agri_soil", body: `{"id":"urn:ngsi-ld:AgriSoil:1","type":"AgriSoil"}`, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, http.MethodPost, tt.target, tt.body, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRouterIngestRejectsNonFiniteCoordinates(t *testing.T) {
	svc, mem := newTestService(t, Config{})
	router := NewRouter(svc, nil)

	for _, location := range []string{"NaN,1", "0,Inf", "-Infinity,2"} {
		t.Run(location, func(t *testing.T) {
			payload := `{"name":"Bridge","location":"` + location + `","location_type":"Point"}`
			rec, body := do(t, router, http.MethodPost, "/api/agri_app", payload, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "MALFORMED_GEOMETRY", body["code"])
		})
	}
	assert.Equal(t, 0, mem.Len())
}

func TestRouterValidate(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	router := NewRouter(svc, nil)

	rec, body := do(t, router, http.MethodPost, "/api/AgriSoil/validate", `{"id":"urn:ngsi-ld:AgriSoil:1","type":"AgriSoil"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, `Required "name" does not exist`, body["message"])

	rec, body = do(t, router, http.MethodPost, "/api/AgriSoil/validate", `{"name":"Clay"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["valid"])
}

func TestRouterEntityTypes(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	rec, body := do(t, NewRouter(svc, nil), http.MethodGet, "/context-broker/entity/types", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	types := body["entity_types"].([]interface{})
	assert.Len(t, types, 13)
	assert.Contains(t, types, "AgriGreenHouse")
}

func TestRouterPolicies(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	router := NewRouter(svc, nil)

	rec, body := do(t, router, http.MethodPost, "/authorization/store-policy?entity_type=AgriFarm&action=GET&allowed_attributes=name,address&access_subject=alice", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	de := body["delegationEvidence"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"accessSubject": "alice"}, de["target"])

	rec, _ = do(t, router, http.MethodPost, "/authorization/store-policy?entity_type=AgriFarm", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/authorization/store-policy?entity_type=Tractor&action=GET&allowed_attributes=name", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = do(t, router, http.MethodGet, "/authorization/list-policies", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["policies"], 1)

	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rec, body = do(t, router, http.MethodPost, "/authorization/test-policy",
		`{"subject":"alice","entity_type":"AgriFarm","action":"GET","attributes":["name","email"],"at":"`+at+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, body["allowed"])
	assert.Equal(t, []interface{}{"email"}, body["denied"])

	rec, _ = do(t, router, http.MethodPost, "/authorization/test-policy", `nope`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterAuth(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	svc, _ := newTestService(t, Config{})
	router := NewRouter(svc, RequireBearer(AuthOptions{Required: true, Key: &key.PublicKey}))

	sign := func(k *rsa.PrivateKey) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(k)
		require.NoError(t, err)
		return token
	}

	rec, _ := do(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, router, http.MethodGet, "/context-broker/entity/types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token is missing.", body["error"])

	rec, _ = do(t, router, http.MethodGet, "/context-broker/entity/types", "", http.Header{"Authorization": {"Basic abc"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rec, _ = do(t, router, http.MethodGet, "/context-broker/entity/types", "", http.Header{"Authorization": {"Bearer " + sign(other)}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/context-broker/entity/types", "", http.Header{"Authorization": {"Bearer " + sign(key)}})
	assert.Equal(t, http.StatusOK, rec.Code)

	// the token subject becomes the policy test subject
	_, err = svc.StorePolicy(context.Background(), storeRequest("alice"))
	require.NoError(t, err)
	rec, body = do(t, router, http.MethodPost, "/authorization/test-policy",
		`{"entity_type":"AgriFarm","action":"GET","attributes":["name"],"at":"2030-01-01T00:00:00Z"}`,
		http.Header{"Authorization": {"Bearer " + sign(key)}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["allowed"])
}

func TestRequireBearerOptional(t *testing.T) {
	called := false
	h := RequireBearer(AuthOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)

	called = false
	req.Header.Set("Authorization", "Bearer opaque-token")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestRequireBearerWithoutKeyReadsSubject(t *testing.T) {
	var consumer string
	h := RequireBearer(AuthOptions{Required: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		consumer = logging.GetConsumer(r.Context())
	}))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "bob"}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "jwt subject", token: token, want: "bob"},
		{name: "opaque key", token: "opaque-token", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer = "unset"
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, consumer)
		})
	}
}
