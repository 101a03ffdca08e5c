package http

import (
	"net/http"

	"github.com/coreforge/storefront/pkg/httputil"
)

// Client identity headers. The storefront front end owns session ids and
// customer identity; the server only echoes them into scoping decisions.
const (
	HeaderSessionID      = "X-Session-ID"
	HeaderUserEmail      = "X-User-Email"
	HeaderAdminID        = "X-Admin-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// requireSession extracts the session id header, rejecting requests without
// one. Cart state is keyed on it; a missing id has nothing to operate on.
func requireSession(next func(w http.ResponseWriter, r *http.Request, sessionID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(HeaderSessionID)
		if sessionID == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "MISSING_SESSION",
					Message: "the " + HeaderSessionID + " header is required",
				},
			})
			return
		}
		next(w, r, sessionID)
	}
}

// requireAdmin gates the admin surface on the admin identity header. The
// console supplies it from its own login flow; issuing and verifying that
// identity belongs to an upstream collaborator.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderAdminID) == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "MISSING_ADMIN",
					Message: "the " + HeaderAdminID + " header is required",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
