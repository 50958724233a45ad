package context

import (
	"context"
	"net/http"

	"github.com/cradoe/nationalid/internal/auth"
)

type contextKey string

const (
	principalContextKey    = contextKey("principal")
	requestIDContextKey    = contextKey("requestID")
	routeContextKey        = contextKey("route")
	invalidTokenContextKey = contextKey("invalidToken")
)

func ContextSetPrincipal(r *http.Request, principal *auth.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalContextKey, principal)
	return r.WithContext(ctx)
}

func ContextGetPrincipal(r *http.Request) *auth.Principal {
	principal, ok := r.Context().Value(principalContextKey).(*auth.Principal)
	if !ok {
		return nil
	}

	return principal
}

func ContextSetRequestID(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDContextKey, id)
	return r.WithContext(ctx)
}

func ContextGetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}

// ContextSetRouteHolder gives the request an empty slot for the route pattern
// that ContextSetRoute fills in further down the chain.
func ContextSetRouteHolder(r *http.Request) (*http.Request, *string) {
	route := new(string)
	ctx := context.WithValue(r.Context(), routeContextKey, route)
	return r.WithContext(ctx), route
}

func ContextSetRoute(r *http.Request, pattern string) {
	if route, ok := r.Context().Value(routeContextKey).(*string); ok {
		*route = pattern
	}
}

// ContextSetInvalidToken marks a request whose bearer token was rejected.
func ContextSetInvalidToken(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), invalidTokenContextKey, true)
	return r.WithContext(ctx)
}

func ContextHasInvalidToken(r *http.Request) bool {
	invalid, _ := r.Context().Value(invalidTokenContextKey).(bool)
	return invalid
}
