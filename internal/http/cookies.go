package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/aionixone/portal-api/internal/domain/portal"
)

// CookieConfig controls how the session cookie is written.
type CookieConfig struct {
	// Domain for the cookie; empty uses the request domain.
	Domain string
	// Secure forces the Secure attribute regardless of how the request
	// arrived. Set outside dev mode.
	Secure bool
}

func (c CookieConfig) isSecure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setSessionCookie writes the session cookie carrying the opaque bearer token.
// The value is never inspected locally.
func setSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     portal.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   cfg.isSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(portal.SessionTTL.Seconds()),
	})
}

// clearSessionCookie expires the session cookie immediately. It mirrors the
// attributes used when setting the cookie to maximize compatibility across
// browsers during deletion.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     portal.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   cfg.isSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// sessionToken extracts the opaque bearer token from the request cookie.
// Returns the empty string when no session cookie is present.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(portal.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
