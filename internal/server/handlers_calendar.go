package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/echo-journal/echo/internal/models"
)

// --- OAuth state parameter encoding ---

type oauthStatePayload struct {
	UserID   string `json:"user_id"`
	Callback string `json:"callback"`
	Nonce    string `json:"nonce"`
	TS       int64  `json:"ts"`
}

// encodeOAuthState encodes the user and callback URL into a signed state parameter.
func encodeOAuthState(userID, callback string, secret []byte) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	payload := oauthStatePayload{
		UserID:   userID,
		Callback: callback,
		Nonce:    base64.RawURLEncoding.EncodeToString(nonce),
		TS:       time.Now().Unix(),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadJSON)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payloadB64))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return payloadB64 + "." + sig, nil
}

// decodeOAuthState validates and decodes a state parameter.
func decodeOAuthState(state string, secret []byte) (*oauthStatePayload, error) {
	parts := strings.SplitN(state, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid state format")
	}
	payloadB64, sigB64 := parts[0], parts[1]

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payloadB64))
	expectedSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sigB64), []byte(expectedSig)) {
		return nil, fmt.Errorf("invalid state signature")
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, fmt.Errorf("invalid state encoding: %w", err)
	}
	var payload oauthStatePayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("invalid state payload: %w", err)
	}

	// Check expiry (10 minutes)
	if time.Since(time.Unix(payload.TS, 0)) > 10*time.Minute {
		return nil, fmt.Errorf("state expired")
	}

	return &payload, nil
}

// validateCallbackURL checks that a redirect target is safe. It rejects
// non-http(s) schemes (javascript:, data:), protocol-relative URLs, and
// URLs with no host. In production, only https is allowed.
func validateCallbackURL(callback string, isProduction bool) error {
	if callback == "" {
		return fmt.Errorf("empty callback URL")
	}
	if strings.HasPrefix(callback, "//") {
		return fmt.Errorf("protocol-relative URLs not allowed")
	}

	u, err := url.Parse(callback)
	if err != nil {
		return fmt.Errorf("invalid callback URL: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		if isProduction {
			return fmt.Errorf("http callbacks not allowed in production")
		}
	default:
		return fmt.Errorf("callback scheme %q not allowed", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("callback URL must have a host")
	}
	return nil
}

// --- Handlers ---

// handleCalendarOAuthStart handles GET /api/calendar/oauth/start?origin= —
// build the Google authorize URL with a signed state parameter.
func (s *Server) handleCalendarOAuthStart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cfg := s.app.Config.Calendar
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		WriteError(w, http.StatusInternalServerError, "Calendar OAuth not configured")
		return
	}

	origin := r.URL.Query().Get("origin")
	if origin != "" {
		if err := validateCallbackURL(origin, s.app.Config.IsProduction()); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid origin URL")
			return
		}
	}

	state, err := encodeOAuthState(userID, origin, []byte(s.app.Config.Auth.JWTSecret))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode OAuth state")
		WriteError(w, http.StatusInternalServerError, "failed to start OAuth flow")
		return
	}

	authorizeURL := "https://accounts.google.com/o/oauth2/v2/auth?" + url.Values{
		"client_id":     {cfg.ClientID},
		"redirect_uri":  {cfg.RedirectURL},
		"response_type": {"code"},
		"scope":         {"https://www.googleapis.com/auth/calendar.readonly"},
		"access_type":   {"offline"},
		"state":         {state},
	}.Encode()

	WriteJSON(w, http.StatusOK, map[string]string{"authorize_url": authorizeURL})
}

// handleCalendarOAuthCallback handles GET /api/calendar/oauth/callback —
// exchange the code and store the calendar link against the user from state.
func (s *Server) handleCalendarOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		WriteError(w, http.StatusBadRequest, "code and state are required")
		return
	}

	payload, err := decodeOAuthState(state, []byte(s.app.Config.Auth.JWTSecret))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid state: "+err.Error())
		return
	}
	// A valid signature does not make the embedded URL a safe redirect.
	if payload.Callback != "" {
		if err := validateCallbackURL(payload.Callback, s.app.Config.IsProduction()); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid callback URL")
			return
		}
	}

	cfg := s.app.Config.Calendar
	tokenResp, err := http.PostForm("https://oauth2.googleapis.com/token", url.Values{
		"code":          {code},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"redirect_uri":  {cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Calendar token exchange failed")
		WriteError(w, http.StatusBadGateway, "failed to exchange code with Google")
		return
	}
	defer tokenResp.Body.Close()

	var tokenData struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Error        string `json:"error"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&tokenData); err != nil || tokenData.AccessToken == "" {
		errMsg := "failed to get access token from Google"
		if tokenData.Error != "" {
			errMsg = "Google error: " + tokenData.Error
		}
		WriteError(w, http.StatusBadGateway, errMsg)
		return
	}

	link := models.CalendarLink{
		UserID:       payload.UserID,
		Provider:     "google",
		AccessToken:  tokenData.AccessToken,
		RefreshToken: tokenData.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}
	linkJSON, err := json.Marshal(link)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to store calendar link")
		return
	}
	if err := s.app.Storage.InternalStore().SetUserKV(r.Context(), payload.UserID, models.KVCalendarLink, string(linkJSON)); err != nil {
		s.logger.Error().Err(err).Str("user", payload.UserID).Msg("Failed to store calendar link")
		WriteError(w, http.StatusInternalServerError, "failed to store calendar link")
		return
	}

	if payload.Callback != "" {
		http.Redirect(w, r, payload.Callback, http.StatusFound)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

// handleCalendarStatus handles GET /api/calendar/status.
func (s *Server) handleCalendarStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	connected := false
	if kv, err := s.app.Storage.InternalStore().GetUserKV(r.Context(), userID, models.KVCalendarLink); err == nil && kv.Value != "" {
		connected = true
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

// handleCalendarDisconnect handles DELETE /api/calendar/disconnect.
func (s *Server) handleCalendarDisconnect(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.app.Storage.InternalStore().DeleteUserKV(r.Context(), userID, models.KVCalendarLink); err != nil {
		s.logger.Error().Err(err).Str("user", userID).Msg("Failed to delete calendar link")
		WriteError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"connected": false})
}
