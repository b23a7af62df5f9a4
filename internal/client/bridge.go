package client

import (
	"context"

	"github.com/echo-journal/echo/internal/common"
)

// Session event types emitted by the identity provider's client.
const (
	EventSignedIn       = "SIGNED_IN"
	EventTokenRefreshed = "TOKEN_REFRESHED"
	EventSignedOut      = "SIGNED_OUT"
)

// Session is the identity provider's credential snapshot. The bridge treats
// it as transient input: it is relayed to the cookie endpoint and never
// stored locally.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *int64
}

// SessionEvent is one auth-state change from the identity provider.
type SessionEvent struct {
	Type    string
	Session *Session
}

// SessionBridge keeps the server-side cookies and the in-memory CSRF token
// consistent with the identity provider's session. Bridge failures never
// propagate to callers; they degrade to a Refresh attempt.
type SessionBridge struct {
	web    *WebClient
	logger *common.Logger
}

// NewSessionBridge creates a bridge over the given web client.
func NewSessionBridge(web *WebClient, logger *common.Logger) *SessionBridge {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &SessionBridge{web: web, logger: logger}
}

// Hydrate aligns cookie state with the current session on startup. With a
// live session it persists it; without one it still calls Refresh, expecting
// the server to reject and clear the local CSRF state.
func (b *SessionBridge) Hydrate(ctx context.Context, session *Session) {
	if session != nil && session.AccessToken != "" {
		b.Persist(ctx, session)
		return
	}
	b.Refresh(ctx)
}

// Persist forwards the session's tokens to the cookie-set endpoint and
// stores the returned CSRF token. Any failure, network or non-2xx, falls
// back to Refresh instead of surfacing an error.
func (b *SessionBridge) Persist(ctx context.Context, session *Session) {
	body := map[string]interface{}{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_at":    session.ExpiresAt,
	}
	status, token, err := b.web.postBridge(ctx, "/api/auth/set-cookie", body)
	if err != nil || status >= 300 || token == "" {
		b.logger.Warn().
			Int("status", status).
			Err(err).
			Msg("Cookie persist failed, falling back to CSRF refresh")
		b.Refresh(ctx)
		return
	}
	b.web.cell.Set(token)
}

// Refresh requests a fresh CSRF token for the existing session cookie. On
// 401 the server clears the csrf cookie and the cell is invalidated; either
// way the cell ends up matching what the server returned.
func (b *SessionBridge) Refresh(ctx context.Context) {
	status, token, err := b.web.postBridge(ctx, "/api/auth/csrf", nil)
	if err != nil || status >= 300 {
		b.web.cell.Set("")
		return
	}
	b.web.cell.Set(token)
}

// Clear logs out server-side, expiring all session cookies, and invalidates
// the in-memory token.
func (b *SessionBridge) Clear(ctx context.Context) {
	if _, _, err := b.web.postBridge(ctx, "/api/auth/logout", nil); err != nil {
		b.logger.Warn().Err(err).Msg("Logout call failed")
	}
	b.web.cell.Set("")
}

// Handle processes one auth-state change event.
func (b *SessionBridge) Handle(ctx context.Context, event SessionEvent) {
	switch event.Type {
	case EventSignedIn, EventTokenRefreshed:
		if event.Session != nil && event.Session.AccessToken != "" {
			b.Persist(ctx, event.Session)
		}
	case EventSignedOut:
		b.Clear(ctx)
	}
}

// Run consumes auth-state change events strictly in arrival order until the
// context ends or the channel closes. A single consumer serializes all
// bridge mutations.
func (b *SessionBridge) Run(ctx context.Context, events <-chan SessionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.Handle(ctx, event)
		}
	}
}
