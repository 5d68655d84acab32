package main

import (
	"context"
	"net/http"

	"github.com/pascaldekloe/jwt"
)

// contextKey is a custom type used for keys in the request context.
type contextKey string

const (
	claimsContextKey    = contextKey("claims")
	requestIDContextKey = contextKey("request_id")
)

// contextSetClaims returns a copy of r carrying the verified token claims.
func (app *application) contextSetClaims(r *http.Request, claims *jwt.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsContextKey, claims)
	return r.WithContext(ctx)
}

// contextGetClaims returns the verified token claims, or nil when the route
// ran without verification.
func (app *application) contextGetClaims(r *http.Request) *jwt.Claims {
	claims, _ := r.Context().Value(claimsContextKey).(*jwt.Claims)
	return claims
}

func (app *application) contextSetRequestID(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDContextKey, id)
	return r.WithContext(ctx)
}

func (app *application) contextGetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}
