package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dspedroborges/store-api/internal/audit"
	"github.com/dspedroborges/store-api/internal/auth"
	"github.com/dspedroborges/store-api/internal/obs"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Username string `json:"username"`
}

type sessionResponse struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	Role             auth.Role `json:"role"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func (a *API) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username or password is missing")
		return
	}

	user, pair, err := a.sessions.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeError(w, r, http.StatusUnauthorized, "username already taken")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "username or password is missing")
		default:
			writeError(w, r, http.StatusInternalServerError, "sign up failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.signup", map[string]any{"user_id": user.ID})
	a.setSessionCookies(w, pair)
	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID:           user.ID,
		Username:         user.Username,
		Role:             user.Role,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

func (a *API) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username or password is missing")
		return
	}

	user, pair, err := a.sessions.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "user not found")
		case errors.Is(err, auth.ErrBadCredentials):
			_ = audit.LogEvent(r.Context(), "auth.signin.failed", map[string]any{"username": req.Username})
			writeError(w, r, http.StatusBadRequest, "invalid credentials")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "username or password is missing")
		default:
			writeError(w, r, http.StatusInternalServerError, "sign in failed")
		}
		return
	}

	a.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:           user.ID,
		Username:         user.Username,
		Role:             user.Role,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token := refreshTokenFromRequest(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "refresh token must be provided")
		return
	}

	pair, err := a.sessions.Refresh(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenRevoked):
			// Replay: logged distinctly server-side, generic to the client.
			obs.RefreshReplayDetected()
			_ = audit.LogEvent(r.Context(), "auth.refresh.replay", map[string]any{
				"fingerprint": auth.Fingerprint(token),
				"client_ip":   clientIP(r),
			})
			writeError(w, r, http.StatusUnauthorized, "token revoked")
		case errors.Is(err, auth.ErrInvalidToken):
			writeError(w, r, http.StatusUnauthorized, "invalid token")
		default:
			writeError(w, r, http.StatusInternalServerError, "refresh failed")
		}
		return
	}

	a.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_expires_at":  pair.AccessExpiresAt,
		"refresh_expires_at": pair.RefreshExpiresAt,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token := refreshTokenFromRequest(r)
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "refresh token must be provided")
		return
	}
	if err := a.sessions.Logout(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			writeError(w, r, http.StatusUnauthorized, "invalid token")
		default:
			writeError(w, r, http.StatusInternalServerError, "logout failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	a.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRecover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req recoverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, r, http.StatusBadRequest, "username is missing")
		return
	}

	rec, err := a.sessions.RecoverPassword(r.Context(), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "user not found")
		case errors.Is(err, auth.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, "username is missing")
		default:
			writeError(w, r, http.StatusInternalServerError, "recovery failed")
		}
		return
	}

	// Delivery of the recovery message happens out of band.
	_ = audit.LogEvent(r.Context(), "auth.recovery.created", map[string]any{"user_id": rec.UserID})
	writeJSON(w, http.StatusCreated, map[string]any{"message": "recovery created"})
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing credential")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": principal.UserID,
		"role":    principal.Role,
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing credential")
		return
	}
	user, err := a.sessions.CurrentUser(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"admin_id": principal.UserID,
	})
}

func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(refreshCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	var req refreshRequest
	if err := decodeJSON(r, &req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}

func (a *API) setSessionCookies(w http.ResponseWriter, pair auth.TokenPair) {
	tokens := a.sessions.Tokens()
	a.setCookie(w, accessCookie, pair.AccessToken, tokens.TTL(auth.ClassAccess))
	a.setCookie(w, refreshCookie, pair.RefreshToken, tokens.TTL(auth.ClassRefresh))
}

func (a *API) clearSessionCookies(w http.ResponseWriter) {
	a.setCookie(w, accessCookie, "", -time.Second)
	a.setCookie(w, refreshCookie, "", -time.Second)
}

func (a *API) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if value == "" {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   a.opts.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.opts.CookieSecure,
	})
}
