package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspedroborges/store-api/internal/accesslog"
	"github.com/dspedroborges/store-api/internal/auth"
)

func newGateRequest(method, path string) (*http.Request, *httptest.ResponseRecorder) {
	return httptest.NewRequest(method, path, nil), httptest.NewRecorder()
}

func TestGateRejectsMissingCredential(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, `Bearer realm="store-api"`, resp.Header.Get("WWW-Authenticate"))
	assert.Equal(t, "missing credential", decodeBody(t, resp)["error"])
}

func TestGateRejectsInvalidCredential(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/v1/users/me", "", &http.Cookie{Name: "access_token", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credential", decodeBody(t, resp)["error"])
}

func TestGateDeletedSubjectIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	signup := env.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice","password":"p@ss1234"}`)
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	access, _ := sessionCookies(t, signup)
	userID, _ := decodeBody(t, signup)["user_id"].(string)

	env.store.DeleteUser(userID)

	resp := env.do(http.MethodGet, "/v1/users/me", "", access)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "subject missing", decodeBody(t, resp)["error"])
}

func TestGateDeniesCustomerOnAdminSurface(t *testing.T) {
	env := newTestEnv(t)
	signup := env.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice","password":"p@ss1234"}`)
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	access, _ := sessionCookies(t, signup)

	resp := env.do(http.MethodGet, "/v1/admin/overview", "", access)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", decodeBody(t, resp)["error"])
}

func TestGateAcceptsBearerHeader(t *testing.T) {
	env := newTestEnv(t)
	signup := env.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice","password":"p@ss1234"}`)
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	access, _ := sessionCookies(t, signup)

	req, rec := newGateRequest(http.MethodGet, "/v1/users/me")
	req.Header.Set("Authorization", "Bearer "+access.Value)
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateCookieWinsOverHeader(t *testing.T) {
	env := newTestEnv(t)
	signup := env.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice","password":"p@ss1234"}`)
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	access, _ := sessionCookies(t, signup)

	// A valid cookie carries the session even when the header is junk.
	req, rec := newGateRequest(http.MethodGet, "/v1/users/me")
	req.AddCookie(access)
	req.Header.Set("Authorization", "Bearer garbage")
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateRecordsMutatingRequestsOnly(t *testing.T) {
	store := auth.NewMemoryStore()
	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)
	sessions, err := auth.NewService(store, tokens)
	require.NoError(t, err)
	logWriter := accesslog.New(store.AccessLog(), 16)
	api := New(ReadyProbe{}, "test", sessions, logWriter, Options{RateBurst: 1000, RateWindow: time.Minute})
	env := &testEnv{api: api, store: store, handler: api.Handler()}

	signup := env.do(http.MethodPost, "/v1/auth/signup", `{"username":"alice","password":"p@ss1234"}`)
	require.Equal(t, http.StatusCreated, signup.StatusCode)
	access, _ := sessionCookies(t, signup)

	// Reads leave no trail.
	resp := env.do(http.MethodGet, "/v1/products", "", access)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode) // no catalog mounted here

	// Authorized mutations do, even when the route 404s downstream.
	resp = env.do(http.MethodPost, "/v1/reviews", `{}`, access)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	logWriter.Close()
	entries := store.AccessLogEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "POST", entries[0].Method)
	assert.Equal(t, "/v1/reviews", entries[0].Path)
	assert.NotEmpty(t, entries[0].UserID)
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Basic dXNlcg==", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, err := extractBearerToken(tc.header)
		if tc.ok {
			assert.NoError(t, err, tc.header)
			assert.Equal(t, tc.token, token, tc.header)
		} else {
			assert.Error(t, err, tc.header)
		}
	}
}

func TestIsMutating(t *testing.T) {
	for method, want := range map[string]bool{
		http.MethodGet:     false,
		http.MethodHead:    false,
		http.MethodOptions: false,
		http.MethodPost:    true,
		http.MethodPut:     true,
		http.MethodPatch:   true,
		http.MethodDelete:  true,
	} {
		assert.Equal(t, want, isMutating(method), method)
	}
}
