package security

import (
	"net/http"
	"time"
)

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or behind a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" || r.URL.Scheme == "https"
}

func sessionCookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateSessionCookie carries a signed session token until it expires
func CreateSessionCookie(r *http.Request, name, token string, expires time.Time) *http.Cookie {
	c := sessionCookie(r, name, token)
	c.Expires = expires
	return c
}

// CreateDeleteCookie clears the named cookie
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	c := sessionCookie(r, name, "")
	c.MaxAge = -1
	return c
}
