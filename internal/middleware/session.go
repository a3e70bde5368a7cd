package middleware

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so
// no other package can read or shadow the values stored under it.
type contextKey string

const sessionTokenKey contextKey = "sessionToken"

// SessionCookieName must match the cookie the handlers set.
const SessionCookieName = "sessionId"

// Session lifts the session cookie's value into the request context.
//
// It never rejects a request: operations that may mint identity (create
// meal, register) accept cookie-less requests, and operations that
// require a session fail in the service layer with Unauthenticated. The
// middleware's only job is extraction, so handlers deal in plain token
// values instead of cookies.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			ctx := context.WithValue(r.Context(), sessionTokenKey, cookie.Value)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// SessionToken returns the token presented with the request, or "" when
// the request carried no session cookie.
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey).(string)
	return token
}
