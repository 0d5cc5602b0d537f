// Package guard enforces decisions at HTTP route boundaries for
// applications that embed the engine. Denials answer 403; engine errors
// answer 500 so operators never mistake a misconfiguration for a deny.
package guard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
	"github.com/gatehouse-authz/gatehouse/internal/observability"
	"github.com/gatehouse-authz/gatehouse/internal/platform/httpx"
)

// ResourceFunc derives the requested resource from the incoming request.
type ResourceFunc func(*http.Request) authz.Resource

// StaticResource targets one fixed resource.
func StaticResource(kind, name string) ResourceFunc {
	return func(*http.Request) authz.Resource {
		return authz.Resource{Kind: kind, Name: name}
	}
}

// RouteResource reads the resource name from a chi URL parameter.
func RouteResource(kind, param string) ResourceFunc {
	return func(r *http.Request) authz.Resource {
		return authz.Resource{Kind: kind, Name: chi.URLParam(r, param)}
	}
}

// Middleware wires authorization checks for HTTP handlers.
type Middleware struct {
	Store   *authz.Store
	Logger  *slog.Logger
	Cache   *DecisionCache
	Metrics *observability.Metrics
}

// Require authorizes the request principal for the given action on the
// resource derived by fn before passing control on.
func (m Middleware) Require(action string, fn ResourceFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no principal on request")
				return
			}
			req := authz.Request{
				Principal: principal,
				Action:    action,
				Resource:  fn(r),
			}

			snap := m.Store.Current()
			start := time.Now()
			dec, err := m.evaluate(r, snap, req)
			m.Metrics.ObserveEvaluation(time.Since(start))
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("guard evaluate",
						slog.String("principal", principal),
						slog.String("action", action),
						slog.Any("error", err))
				}
				m.Metrics.CountError()
				httpx.RespondError(w, err)
				return
			}
			m.Metrics.CountDecision(dec.Verdict)
			if !dec.Allowed() {
				if m.Logger != nil {
					m.Logger.Info("access denied",
						slog.String("principal", principal),
						slog.String("action", action),
						slog.String("resource", req.Resource.Kind+"/"+req.Resource.Name),
						slog.Any("determining", dec.Determining))
				}
				httpx.RespondDenied(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) evaluate(r *http.Request, snap *authz.Snapshot, req authz.Request) (authz.Decision, error) {
	if m.Cache != nil {
		return m.Cache.Evaluate(r.Context(), snap, req)
	}
	return snap.Evaluate(r.Context(), req)
}
