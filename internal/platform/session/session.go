// Package session assigns each browser an anonymous identifier so the cart
// and checkout flow can be keyed without any authentication.
package session

import (
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/shopfront/api/internal/platform/requestctx"
)

const (
	// CookieName carries the anonymous session identifier.
	CookieName = "storefront_session"

	cookieMaxAge = 60 * 60 * 24 * 30 // 30 days
	maxIDLength  = 64
)

// Middleware reads the session cookie, issuing a fresh ULID when absent or
// malformed, and stores the identifier on the request context.
func Middleware(next http.Handler) http.Handler {
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(CookieName); err == nil {
			sessionID = sanitizeID(cookie.Value)
		}
		if sessionID == "" {
			sessionID = ulid.Make().String()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   cookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := requestctx.WithSessionID(r.Context(), sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromRequest extracts the session identifier placed by Middleware.
func FromRequest(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	return requestctx.SessionID(r.Context())
}

func sanitizeID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxIDLength {
		return ""
	}
	for _, r := range value {
		isDigit := r >= '0' && r <= '9'
		isUpper := r >= 'A' && r <= 'Z'
		isLower := r >= 'a' && r <= 'z'
		if !isDigit && !isUpper && !isLower {
			return ""
		}
	}
	return value
}
