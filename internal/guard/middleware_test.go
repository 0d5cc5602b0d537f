package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
	"github.com/gatehouse-authz/gatehouse/internal/observability"
)

func testStore(t *testing.T) *authz.Store {
	t.Helper()
	entities, err := authz.BuildEntityModel([]authz.PrincipalRecord{
		{ID: "Alice", Roles: []string{"admin"}},
		{ID: "Bob", Roles: []string{"viewer"}},
	})
	require.NoError(t, err)
	policies, err := authz.BuildPolicySet([]authz.Statement{
		{ID: "admin-all", Effect: authz.EffectPermit, Principal: authz.PrincipalScope{Role: "admin"}, Action: authz.ActionScope{Any: true}, Resource: authz.ResourceScope{Any: true}},
		{ID: "viewer-describe", Effect: authz.EffectPermit, Principal: authz.PrincipalScope{Role: "viewer"}, Action: authz.ActionScope{Action: "describe"}, Resource: authz.ResourceScope{Any: true}},
	})
	require.NoError(t, err)
	return authz.NewStore(entities, policies)
}

func performAs(t *testing.T, handler http.Handler, principal, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if principal != "" {
		req = req.WithContext(ContextWithPrincipal(req.Context(), principal))
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func guardedRouter(m Middleware) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(m.Require("describe", RouteResource("Pod", "name")))
		r.Get("/pods/{name}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	r.Group(func(r chi.Router) {
		r.Use(m.Require("delete", RouteResource("Pod", "name")))
		r.Delete("/pods/{name}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func TestMiddlewareAllows(t *testing.T) {
	handler := guardedRouter(Middleware{Store: testStore(t), Metrics: observability.NewMetrics()})

	res := performAs(t, handler, "Bob", "/pods/nginx-pod")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestMiddlewareDenies(t *testing.T) {
	handler := guardedRouter(Middleware{Store: testStore(t)})

	req := httptest.NewRequest(http.MethodDelete, "/pods/nginx-pod", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), "Bob"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "access denied")
}

func TestMiddlewareMissingPrincipal(t *testing.T) {
	handler := guardedRouter(Middleware{Store: testStore(t)})

	res := performAs(t, handler, "", "/pods/nginx-pod")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

// An unknown principal means the integration is broken; the response must
// be distinguishable from a deny.
func TestMiddlewareUnknownPrincipalIsNotForbidden(t *testing.T) {
	handler := guardedRouter(Middleware{Store: testStore(t)})

	res := performAs(t, handler, "Carol", "/pods/nginx-pod")
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Contains(t, res.Body.String(), "Misconfigured")
}

func TestMiddlewarePicksUpSwappedSnapshot(t *testing.T) {
	store := testStore(t)
	handler := guardedRouter(Middleware{Store: store})

	res := performAs(t, handler, "Bob", "/pods/nginx-pod")
	require.Equal(t, http.StatusOK, res.Code)

	entities := store.Current().Entities
	policies, err := authz.BuildPolicySet([]authz.Statement{
		{ID: "deny-describe", Effect: authz.EffectForbid, Principal: authz.PrincipalScope{Role: "viewer"}, Action: authz.ActionScope{Action: "describe"}, Resource: authz.ResourceScope{Any: true}},
	})
	require.NoError(t, err)
	store.Swap(entities, policies)

	res = performAs(t, handler, "Bob", "/pods/nginx-pod")
	assert.Equal(t, http.StatusForbidden, res.Code)
}
