package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

// Cookie lifetimes for the session bridge.
const (
	accessCookieFloor    = 60             // seconds; never let the cookie outlive the token by less
	accessCookieDefault  = 3600           // seconds, used when expires_at is absent or in the past
	refreshCookieMaxAge  = 7 * 24 * 3600  // 7 days
	csrfCookieMaxAge     = 24 * 3600      // 24 hours
)

// mintCSRFToken returns 32 random bytes, hex-encoded.
func mintCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// setCookie writes a session cookie with the bridge's fixed attributes.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.app.Config.Cookies.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

// expireCookie clears a cookie with an epoch expiry.
func (s *Server) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.app.Config.Cookies.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

// accessCookieMaxAge derives the access cookie lifetime from the token's
// expiry so the cookie never outlives the token, clamped to a floor.
func accessCookieMaxAge(expiresAt *int64, now time.Time) int {
	if expiresAt == nil {
		return accessCookieDefault
	}
	remaining := *expiresAt - now.Unix()
	if remaining <= 0 {
		return accessCookieDefault
	}
	if remaining < accessCookieFloor {
		return accessCookieFloor
	}
	return int(remaining)
}

// handleSetCookie handles POST /api/auth/set-cookie — store the identity
// provider's tokens as HttpOnly cookies and mint a CSRF token.
func (s *Server) handleSetCookie(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    *int64 `json:"expires_at"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	if req.AccessToken == "" {
		WriteError(w, http.StatusBadRequest, "Missing access token.")
		return
	}

	csrfToken, err := mintCSRFToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to mint CSRF token")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	cookies := s.app.Config.Cookies
	s.setCookie(w, cookies.AccessName, req.AccessToken, accessCookieMaxAge(req.ExpiresAt, time.Now()))
	if req.RefreshToken != "" {
		s.setCookie(w, cookies.RefreshName, req.RefreshToken, refreshCookieMaxAge)
	}
	s.setCookie(w, cookies.CSRFName, csrfToken, csrfCookieMaxAge)

	WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": csrfToken})
}

// handleCSRF handles POST /api/auth/csrf — mint a fresh CSRF token for an
// existing session. No session mutation.
func (s *Server) handleCSRF(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	cookies := s.app.Config.Cookies
	access, err := r.Cookie(cookies.AccessName)
	if err != nil || access.Value == "" {
		s.expireCookie(w, cookies.CSRFName)
		WriteError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	csrfToken, err := mintCSRFToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to mint CSRF token")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.setCookie(w, cookies.CSRFName, csrfToken, csrfCookieMaxAge)

	WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": csrfToken})
}

// handleLogout handles POST /api/auth/logout — expire all three session
// cookies. Always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	cookies := s.app.Config.Cookies
	s.expireCookie(w, cookies.AccessName)
	s.expireCookie(w, cookies.RefreshName)
	s.expireCookie(w, cookies.CSRFName)

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
