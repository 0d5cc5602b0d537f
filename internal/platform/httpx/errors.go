package httpx

import (
	"errors"
	"net/http"

	"github.com/gatehouse-authz/gatehouse/internal/authz"
)

// RespondError maps engine errors to HTTP responses. An unknown principal
// is a misconfiguration, not a denial, and must not look like a 403 to
// operators.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrUnknownPrincipal):
		Problem(w, http.StatusInternalServerError, "Authorization Misconfigured", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// RespondDenied reports a deny verdict. The body stays generic; the
// determining statements go to logs, not to the caller.
func RespondDenied(w http.ResponseWriter) {
	Problem(w, http.StatusForbidden, "Forbidden", "access denied")
}
