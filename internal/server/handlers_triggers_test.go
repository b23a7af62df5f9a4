package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/echo-journal/echo/internal/models"
)

func saveTriggerViaAPI(t *testing.T, srv *Server, token, name string, words []string) *models.Trigger {
	t.Helper()
	body := jsonBody(t, map[string]interface{}{"name": name, "words": words})
	req := httptest.NewRequest(http.MethodPost, "/api/triggers", body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save trigger: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var trigger models.Trigger
	decodeBody(t, rec.Body, &trigger)
	return &trigger
}

func listTriggersViaAPI(t *testing.T, srv *Server, token string) []models.TriggerWithStats {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/triggers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list triggers: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list []models.TriggerWithStats
	decodeBody(t, rec.Body, &list)
	return list
}

func TestTriggerUpsertAndList(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	createEntryViaAPI(t, srv, token, "the deadline is crushing me and I feel anxious")
	createEntryViaAPI(t, srv, token, "a calm evening walk by the river")

	trigger := saveTriggerViaAPI(t, srv, token, "Work stress", []string{" Deadline "})
	if trigger.ID == "" || trigger.Words[0] != "deadline" {
		t.Errorf("unexpected saved trigger: %+v", trigger)
	}

	list := listTriggersViaAPI(t, srv, token)
	if len(list) != 1 {
		t.Fatalf("expected one trigger, got %d", len(list))
	}
	if list[0].Name != "Work stress" || list[0].Stats.Count != 1 {
		t.Errorf("unexpected listing: %+v", list[0])
	}
}

func TestTriggerValidation(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	cases := []struct {
		label string
		body  map[string]interface{}
	}{
		{"short name", map[string]interface{}{"name": "x", "words": []string{"deadline"}}},
		{"long name", map[string]interface{}{"name": strings.Repeat("n", 61), "words": []string{"deadline"}}},
		{"no words", map[string]interface{}{"name": "Work stress", "words": []string{}}},
		{"too many words", map[string]interface{}{"name": "Work stress", "words": make([]string, 11)}},
		{"long word", map[string]interface{}{"name": "Work stress", "words": []string{strings.Repeat("w", 31)}}},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/triggers", jsonBody(t, tc.body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.label, rec.Code, rec.Body.String())
		}
	}
}

func TestTriggerUpsertReplaces(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	createEntryViaAPI(t, srv, token, "a meeting ran long and I feel drained")

	first := saveTriggerViaAPI(t, srv, token, "Work stress", []string{"deadline"})
	second := saveTriggerViaAPI(t, srv, token, "Work stress", []string{"meeting"})
	if second.ID != first.ID {
		t.Error("replacing a trigger should keep its ID")
	}

	list := listTriggersViaAPI(t, srv, token)
	if len(list) != 1 || list[0].Words[0] != "meeting" {
		t.Errorf("expected one replaced trigger, got %+v", list)
	}
}

func TestTriggerDelete(t *testing.T) {
	srv := newTestServer(t)
	token := signTestToken(t, srv, "alice", "alice@example.com")

	saveTriggerViaAPI(t, srv, token, "Spirals", []string{"doom"})

	req := httptest.NewRequest(http.MethodDelete, "/api/triggers/Spirals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/triggers/Spirals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestTriggersRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/triggers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}
}
