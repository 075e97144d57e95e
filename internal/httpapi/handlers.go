package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dspedroborges/store-api/internal/accesslog"
	"github.com/dspedroborges/store-api/internal/audit"
	"github.com/dspedroborges/store-api/internal/auth"
	"github.com/dspedroborges/store-api/internal/obs"
)

const maxBodyBytes = 1 << 20

// ReadyProbe reports readiness (database reachability when configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options tune the HTTP layer.
type Options struct {
	CookieDomain string
	CookieSecure bool
	RateBurst    int
	RateWindow   time.Duration
}

// API is the HTTP layer: the authorization gate plus the session endpoints.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	sessions   *auth.Service
	accessLog  *accesslog.Writer
	opts       Options
}

// New wires routes. Catalog resources (products, reviews, …) are mounted by
// their own packages behind the same gate; this package owns only the session
// surface.
func New(rp ReadyProbe, version string, sessions *auth.Service, logWriter *accesslog.Writer, opts Options) *API {
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = 15 * time.Minute
	}
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		sessions:   sessions,
		accessLog:  logWriter,
		opts:       opts,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	// Credential-bearing operations sit behind the per-client rate ceiling.
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(h, a.opts.RateBurst, a.opts.RateWindow)
	}
	a.mux.HandleFunc("/v1/auth/signup", a.handleSignUp)
	a.mux.Handle("/v1/auth/signin", limited(a.handleSignIn))
	a.mux.Handle("/v1/auth/refresh", limited(a.handleRefresh))
	a.mux.Handle("/v1/auth/recover", limited(a.handleRecover))

	a.mux.HandleFunc("/v1/auth/session", a.handleSession)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/users/me", a.handleMe)
	a.mux.HandleFunc("/v1/admin/overview", a.handleAdminOverview)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, maxBodyBytes)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "store-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "store-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	body := map[string]any{"error": msg}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		body["request_id"] = rid
	}
	writeJSON(w, code, body)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
