package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/nationalid/internal/auth"
	appcontext "github.com/cradoe/nationalid/internal/context"
	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/mocks"
	"github.com/cradoe/nationalid/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMiddleware(repo *mocks.MockOfficerRepo) (*Middleware, *auth.TokenIssuer, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	tokens := auth.NewTokenIssuer("test_secret", "http://localhost", 0)

	return New(errHandler.New("", "", nil, logger), logger, repo, tokens, metrics.New()), tokens, &logs
}

func bearer(t *testing.T, tokens *auth.TokenIssuer, id int64, role auth.Role) string {
	token, err := tokens.Issue(id, role)
	require.NoError(t, err)
	return "Bearer " + token.Value
}

func TestAuthenticateAndRequire(t *testing.T) {
	repo := &mocks.MockOfficerRepo{}
	repo.On("GetOne", int64(1)).Return(&models.Officer{ID: 1, Status: "approved", Constituency: "Westlands"}, true, nil)
	repo.On("GetOne", int64(2)).Return(&models.Officer{ID: 2, Status: "suspended"}, true, nil)
	repo.On("GetOne", int64(3)).Return(nil, false, nil)
	repo.On("GetOne", int64(4)).Return(nil, false, errors.New("db down"))

	mid, tokens, _ := newTestMiddleware(repo)

	var seen *auth.Principal
	protected := mid.Authenticate(mid.Require(auth.SubmitApplications, func(w http.ResponseWriter, r *http.Request) {
		seen = appcontext.ContextGetPrincipal(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"invalid token", "Bearer abc", http.StatusUnauthorized},
		{"approved officer", bearer(t, tokens, 1, auth.RoleOfficer), http.StatusNoContent},
		{"suspended officer", bearer(t, tokens, 2, auth.RoleOfficer), http.StatusForbidden},
		{"deleted officer", bearer(t, tokens, 3, auth.RoleOfficer), http.StatusUnauthorized},
		{"lookup failure", bearer(t, tokens, 4, auth.RoleOfficer), http.StatusInternalServerError},
		{"admin lacks officer capability", bearer(t, tokens, 9, auth.RoleAdmin), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/applications", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			protected.ServeHTTP(rr, r)

			assert.Equal(t, tt.status, rr.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, int64(1), seen.ID)
	assert.Equal(t, "Westlands", seen.Constituency)
}

func TestAnonymousRequestPassesAuthenticate(t *testing.T) {
	mid, _, _ := newTestMiddleware(&mocks.MockOfficerRepo{})

	called := false
	h := mid.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, appcontext.ContextGetPrincipal(r))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/constituencies", nil))
	assert.True(t, called)
}

func TestRejectedTokenOnPublicRoute(t *testing.T) {
	repo := &mocks.MockOfficerRepo{}
	repo.On("GetOne", int64(3)).Return(nil, false, nil)

	mid, tokens, _ := newTestMiddleware(repo)

	for _, header := range []string{"Bearer expired-or-garbage", "Token abc", bearer(t, tokens, 3, auth.RoleOfficer)} {
		called := false
		h := mid.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			assert.Nil(t, appcontext.ContextGetPrincipal(r))
			assert.True(t, appcontext.ContextHasInvalidToken(r))
		}))

		r := httptest.NewRequest(http.MethodPost, "/api/applications/lost-id", nil)
		r.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)

		assert.True(t, called, header)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRoute(t *testing.T) {
	mid, _, _ := newTestMiddleware(&mocks.MockOfficerRepo{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/applications/track/{number}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /api/applications/{id}/submit-for-approval", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	h := mid.Route(mux)

	t.Run("matched", func(t *testing.T) {
		r, route := appcontext.ContextSetRouteHolder(httptest.NewRequest(http.MethodGet, "/api/applications/track/APP2026000001", nil))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "GET /api/applications/track/{number}", *route)
	})

	t.Run("unknown path", func(t *testing.T) {
		r, route := appcontext.ContextSetRouteHolder(httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "The requested resource could not be found")
		assert.Empty(t, *route)
	})

	t.Run("wrong method", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/applications/7/submit-for-approval", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		assert.Equal(t, http.MethodPut, rr.Header().Get("Allow"))
		assert.Contains(t, rr.Body.String(), "The POST method is not supported for this resource")
	})
}

func TestRecoverPanic(t *testing.T) {
	mid, _, logs := newTestMiddleware(&mocks.MockOfficerRepo{})

	h := mid.RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logs.String(), "boom")
}

func TestRequestIDAndAccessLog(t *testing.T) {
	mid, _, logs := newTestMiddleware(&mocks.MockOfficerRepo{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/applications/track/{number}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	h := mid.RequestID(mid.LogAccess(mid.Route(mux)))

	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/applications/track/APP2026000001", nil)
	r.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(rr, r)

	assert.Equal(t, "req-1", rr.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), `"id":"req-1"`)
	assert.Contains(t, logs.String(), `"status":418`)
	assert.Equal(t, 1.0, testutil.ToFloat64(mid.metrics.RequestsTotal.WithLabelValues("GET", "GET /api/applications/track/{number}", "418")))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(mid.metrics.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
