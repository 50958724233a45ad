package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cradoe/nationalid/internal/auth"
	"github.com/cradoe/nationalid/internal/context"
	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/response"

	"github.com/google/uuid"
	"github.com/tomasen/realip"
)

const requestIDHeader = "X-Request-ID"

type Middleware struct {
	errHandler  *errHandler.ErrorRepository
	logger      *slog.Logger
	OfficerRepo repository.OfficerRepository
	tokens      *auth.TokenIssuer
	metrics     *metrics.Metrics
}

func New(errHandler *errHandler.ErrorRepository, logger *slog.Logger, officerRepo repository.OfficerRepository, tokens *auth.TokenIssuer, m *metrics.Metrics) *Middleware {
	return &Middleware{
		errHandler:  errHandler,
		logger:      logger,
		OfficerRepo: officerRepo,
		tokens:      tokens,
		metrics:     m,
	}
}

func (mid *Middleware) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				mid.errHandler.ServerError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequestID tags the request with the caller's X-Request-ID, or a new one.
func (mid *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, context.ContextSetRequestID(r, id))
	})
}

func (mid *Middleware) LogAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		r, route := context.ContextSetRouteHolder(r)

		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "id", context.ContextGetRequestID(r), "method", method, "url", url, "proto", proto)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount, "duration", time.Since(start).String())

		mid.logger.Info("access", userAttrs, requestAttrs, responseAttrs)

		if mid.metrics != nil {
			mid.metrics.ObserveRequest(method, *route, mw.StatusCode, start)
		}
	})
}

var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// Route serves mux. It records the matched pattern for LogAccess and answers
// unknown paths and methods with the JSON error envelope.
func (mid *Middleware) Route(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			if allowed := allowedMethods(mux, r); len(allowed) > 0 {
				w.Header().Set("Allow", strings.Join(allowed, ", "))
				mid.errHandler.MethodNotAllowed(w, r)
				return
			}
			mid.errHandler.NotFound(w, r)
			return
		}

		context.ContextSetRoute(r, pattern)
		mux.ServeHTTP(w, r)
	})
}

func allowedMethods(mux *http.ServeMux, r *http.Request) []string {
	var allowed []string

	for _, method := range routeMethods {
		if method == r.Method {
			continue
		}

		other := r.Clone(r.Context())
		other.Method = method
		if _, pattern := mux.Handler(other); pattern != "" {
			allowed = append(allowed, method)
		}
	}

	return allowed
}

// Authenticate resolves a bearer token into a principal. Requests without a
// usable token pass through anonymously; a rejected token is remembered so
// Require can report it.
func (mid *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")
		if authorizationHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		headerParts := strings.Split(authorizationHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			next.ServeHTTP(w, context.ContextSetInvalidToken(r))
			return
		}

		claims, err := mid.tokens.Verify(headerParts[1])
		if err != nil {
			next.ServeHTTP(w, context.ContextSetInvalidToken(r))
			return
		}

		principal := &auth.Principal{ID: claims.Subject, Role: claims.Role}

		if claims.Role == auth.RoleOfficer {
			officer, found, err := mid.OfficerRepo.GetOne(r.Context(), claims.Subject)
			if err != nil {
				mid.errHandler.ServerError(w, r, err)
				return
			}
			if !found {
				next.ServeHTTP(w, context.ContextSetInvalidToken(r))
				return
			}

			principal.Status = officer.Status
			principal.Constituency = officer.Constituency
			principal.Station = officer.Station
		}

		next.ServeHTTP(w, context.ContextSetPrincipal(r, principal))
	})
}

const officerNotApprovedMessage = "Officer account is not approved"

// Require lets the request through only if its principal holds capability.
func (mid *Middleware) Require(capability auth.Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := context.ContextGetPrincipal(r)

		if principal == nil {
			if context.ContextHasInvalidToken(r) {
				mid.errHandler.InvalidAuthenticationToken(w, r)
				return
			}
			mid.errHandler.AuthenticationRequired(w, r)
			return
		}

		if !principal.Can(capability) {
			if principal.Role == auth.RoleOfficer && principal.Role.Can(capability) {
				mid.errHandler.Forbidden(w, r, officerNotApprovedMessage)
				return
			}
			mid.errHandler.Forbidden(w, r, "")
			return
		}

		next(w, r)
	}
}
