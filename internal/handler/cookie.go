package handler

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "sessionId"

// sessionCookieMaxAge keeps anonymous diaries around for a week.
const sessionCookieMaxAge = 7 * 24 * time.Hour

// setSessionCookie hands the minted token to the client. The core only
// produces the token value; path, lifetime, and flags live here in the
// transport layer.
func setSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
