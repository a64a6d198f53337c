package http

import (
	"net/http"
	"time"
)

const (
	authCookieName = "auth_token"
	roleCookieName = "role"
	gateCookieName = "invitation_validated"
)

// cookieWriter centralizes cookie attributes. All three cookies are httpOnly;
// the role cookie mirrors the persisted role and carries no authority on its
// own.
type cookieWriter struct {
	secure  bool
	authTTL time.Duration
	gateTTL time.Duration
}

func (c *cookieWriter) sameSite() http.SameSite {
	// SameSite=None requires Secure; fall back to Lax for plain-HTTP dev.
	if c.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c *cookieWriter) setAuth(w http.ResponseWriter, token, role string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.authTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite(),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     roleCookieName,
		Value:    role,
		Path:     "/",
		MaxAge:   int(c.authTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite(),
	})
}

func (c *cookieWriter) clearAuth(w http.ResponseWriter) {
	for _, name := range []string{authCookieName, roleCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: c.sameSite(),
		})
	}
}

func (c *cookieWriter) setGate(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     gateCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.gateTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite(),
	})
}

func (c *cookieWriter) clearGate(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     gateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite(),
	})
}
