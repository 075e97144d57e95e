package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dspedroborges/store-api/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "

	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

var publicPaths = []string{
	"/v1/auth/signup",
	"/v1/auth/signin",
	"/v1/auth/refresh",
	"/v1/auth/recover",
	"/v1/info",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

// withAuth is the authorization gate. Every failure is a terminal decision
// with an explicit response; nothing is retried and no request is left
// unanswered.
//
// Order matters: a missing credential is rejected before any store lookup, a
// well-formed token for a deleted account is "not found" rather than
// "forbidden", and the grant check runs only for loaded users.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractToken(r)
		if err != nil {
			respondDenied(w, r, http.StatusUnauthorized, "missing credential")
			return
		}

		principal, err := a.sessions.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				// Malformed, tampered and expired tokens share one response
				// shape so the failure mode leaks nothing.
				respondDenied(w, r, http.StatusUnauthorized, "invalid credential")
			case errors.Is(err, auth.ErrNotFound):
				respondDenied(w, r, http.StatusNotFound, "subject missing")
			default:
				// Fail closed: an unreachable store never authorizes.
				respondDenied(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		if !auth.Allowed(principal.Role, r.Method, r.URL.Path) {
			respondDenied(w, r, http.StatusForbidden, "forbidden")
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)

		// Mutating requests leave an access trail. The write is queued and
		// best-effort: a logging outage never downgrades the decision.
		if isMutating(r.Method) && a.accessLog != nil {
			a.accessLog.Record(auth.AccessLogEntry{
				UserID:     principal.UserID,
				Path:       r.URL.Path,
				Method:     r.Method,
				ClientIP:   clientIP(r),
				OccurredAt: time.Now().UTC(),
			})
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func respondDenied(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="store-api"`)
	}
	writeError(w, r, code, msg)
}

// extractToken reads the session credential. The http-only cookie is the
// canonical carrier for browser clients; the Authorization header serves
// non-browser callers. Cookie wins when both are present.
func extractToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(accessCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), nil
	}
	return extractBearerToken(r.Header.Get(authHeader))
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
