package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/echo-journal/echo/internal/app"
	"github.com/echo-journal/echo/internal/clients/mailer"
	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/models"
	"github.com/echo-journal/echo/internal/services/analytics"
	"github.com/echo-journal/echo/internal/services/coping"
	"github.com/echo-journal/echo/internal/services/digest"
	"github.com/echo-journal/echo/internal/services/insights"
	"github.com/echo-journal/echo/internal/services/journal"
	"github.com/echo-journal/echo/internal/services/triggers"
	"github.com/echo-journal/echo/internal/storage"
)

// newTestServer creates a fully wired server backed by temp-dir storage.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Entries.Path = t.TempDir()
	cfg.Storage.Internal.Path = t.TempDir()

	mgr, err := storage.NewManager(logger, cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	insightsSvc := insights.NewService(mgr, nil, logger)
	copingSvc := coping.NewService(mgr, logger)

	a := &app.App{
		Config:           cfg,
		Logger:           logger,
		Storage:          mgr,
		JournalService:   journal.NewService(mgr, nil, logger),
		InsightsService:  insightsSvc,
		AnalyticsService: analytics.NewService(mgr, logger),
		CopingService:    copingSvc,
		TriggersService:  triggers.NewService(mgr, logger),
		DigestService:    digest.NewService(mgr, insightsSvc, copingSvc, mailer.NewLogMailer(logger), logger),
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

func decodeBody(t *testing.T, body *bytes.Buffer, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", body.String(), err)
	}
}

// signTestToken creates and stores a user, returning a bearer token for them.
func signTestToken(t *testing.T, srv *Server, userID, email string) string {
	t.Helper()
	user := &models.InternalUser{
		UserID:    userID,
		Email:     email,
		Role:      models.RoleUser,
		Provider:  "local",
		CreatedAt: time.Now(),
	}
	if err := srv.app.Storage.InternalStore().SaveUser(t.Context(), user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	token, err := signJWT(user, "local", &srv.app.Config.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}
	return token
}

// findCookie returns the named cookie from a recorded response, or nil.
func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
