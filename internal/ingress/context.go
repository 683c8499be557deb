// Package ingress implements the external-listener middleware chain: magic
// link, bearer/API-key auth, IP filtering, circuit breaker, rate limiting
// and CORS, composed in the fixed order the ingress contract requires.
package ingress

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ctxKeyPreAuthenticated contextKey = "ingress.preauth"
	ctxKeyPrincipal        contextKey = "ingress.principal"
	ctxKeyClientIP         contextKey = "ingress.client_ip"
)

func withPreAuthenticated(r *http.Request, purpose string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKeyPreAuthenticated, true)
	ctx = context.WithValue(ctx, ctxKeyPrincipal, purpose)
	return r.WithContext(ctx)
}

func withPrincipal(r *http.Request, principal string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyPrincipal, principal))
}

func withClientIP(r *http.Request, ip string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyClientIP, ip))
}

// IsPreAuthenticated reports whether an earlier stage (magic link) already
// authenticated this request.
func IsPreAuthenticated(r *http.Request) bool {
	v, _ := r.Context().Value(ctxKeyPreAuthenticated).(bool)
	return v
}

// Principal returns the authenticated subject, if any stage set one.
func Principal(r *http.Request) string {
	v, _ := r.Context().Value(ctxKeyPrincipal).(string)
	return v
}

// ClientIP returns the IP the IPFilter stage resolved for this request.
func ClientIP(r *http.Request) string {
	v, _ := r.Context().Value(ctxKeyClientIP).(string)
	return v
}
