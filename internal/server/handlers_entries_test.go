package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/echo-journal/echo/internal/models"
)

func createEntryViaAPI(t *testing.T, srv *Server, token, text string, tags ...string) *models.Entry {
	t.Helper()
	body := jsonBody(t, map[string]interface{}{"text": text, "tags": tags, "source": "web"})
	req := httptest.NewRequest(http.MethodPost, "/api/entries", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create entry: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Entry    *models.Entry `json:"entry"`
		OneLiner string        `json:"one_liner"`
	}
	decodeBody(t, rec.Body, &out)
	if out.Entry == nil || out.Entry.ID == "" {
		t.Fatal("created entry should carry an ID")
	}
	if out.OneLiner == "" {
		t.Error("create should return a one-liner reply")
	}
	return out.Entry
}

func TestEntryCreateDerivesMetrics(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	entry := createEntryViaAPI(t, srv, token, "I feel anxious about the deadline and worried it slips", "work")
	if entry.TopEmotion == nil || entry.TopEmotion.Label == "" {
		t.Error("entry should carry a top emotion")
	}
	if entry.TimeOfDay == "" || entry.EntryLength == 0 {
		t.Errorf("derived metrics missing: %+v", entry)
	}
	if entry.Suggestion == "" {
		t.Error("entry should carry a coping suggestion")
	}
}

func TestEntryCreateValidation(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"empty text", map[string]interface{}{"text": "   "}},
		{"text too long", map[string]interface{}{"text": strings.Repeat("x", 4001)}},
		{"bad source", map[string]interface{}{"text": "ok", "source": "desktop"}},
		{"too many tags", map[string]interface{}{"text": "ok", "tags": []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/entries", jsonBody(t, tc.body))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestEntryListAndGet(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	first := createEntryViaAPI(t, srv, token, "grateful for a calm morning")
	createEntryViaAPI(t, srv, token, "stressful afternoon meeting")

	req := httptest.NewRequest(http.MethodGet, "/api/entries?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Entries []*models.Entry `json:"entries"`
		Count   int             `json:"count"`
	}
	decodeBody(t, rec.Body, &list)
	if list.Count != 2 || len(list.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", list.Count)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/entries/"+first.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got models.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected entry %s, got %s", first.ID, got.ID)
	}
}

func TestEntryGetScopedToOwner(t *testing.T) {
	srv := newTestServer(t)
	aliceToken := signTestToken(t, srv, "alice", "alice@example.com")
	bobToken := signTestToken(t, srv, "bob", "bob@example.com")

	entry := createEntryViaAPI(t, srv, aliceToken, "private thought")

	req := httptest.NewRequest(http.MethodGet, "/api/entries/"+entry.ID, nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("another user's entry should be 404, got %d", rec.Code)
	}
}

func TestAnalyzeDoesNotStore(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	body := jsonBody(t, map[string]interface{}{"text": "so happy and excited today"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Emotions   []models.EmotionScore `json:"emotions"`
		TopEmotion *models.EmotionScore  `json:"top_emotion"`
	}
	decodeBody(t, rec.Body, &out)
	if len(out.Emotions) == 0 || out.TopEmotion == nil {
		t.Errorf("analysis should return scores: %+v", out)
	}

	count, err := srv.app.Storage.EntryStore().CountEntries(t.Context(), "alice")
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	if count != 0 {
		t.Errorf("analyze must not persist entries, found %d", count)
	}
}
