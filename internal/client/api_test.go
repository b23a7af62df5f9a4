package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/models"
)

// settingsServer fakes the per-user settings endpoints with in-memory state.
type settingsServer struct {
	fullName      string
	digestEnabled bool
	actions       []string
	triggers      []models.Trigger
	dailyQuery    string
}

func (s *settingsServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req struct {
				FullName string `json:"full_name"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			s.fullName = req.FullName
		}
		json.NewEncoder(w).Encode(map[string]string{"full_name": s.fullName})
	})

	mux.HandleFunc("/api/digest/pref", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req struct {
				Enabled bool `json:"enabled"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			s.digestEnabled = req.Enabled
		}
		json.NewEncoder(w).Encode(map[string]bool{"enabled": s.digestEnabled})
	})

	mux.HandleFunc("/api/coping/kit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req struct {
				Actions []string `json:"actions"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			s.actions = req.Actions
		}
		json.NewEncoder(w).Encode(map[string][]string{"actions": s.actions})
	})

	mux.HandleFunc("/api/triggers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req struct {
				Name  string   `json:"name"`
				Words []string `json:"words"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			trigger := models.Trigger{ID: "t1", Name: req.Name, Words: req.Words}
			s.triggers = append(s.triggers, trigger)
			json.NewEncoder(w).Encode(trigger)
			return
		}
		list := make([]models.TriggerWithStats, 0, len(s.triggers))
		for _, trigger := range s.triggers {
			list = append(list, models.TriggerWithStats{Trigger: trigger, Stats: models.TriggerStats{Count: 2}})
		}
		json.NewEncoder(w).Encode(list)
	})

	mux.HandleFunc("/api/triggers/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		s.triggers = nil
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})

	mux.HandleFunc("/api/entries/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Entry{ID: "e1", Text: "hello"})
	})

	mux.HandleFunc("/api/analytics/daily", func(w http.ResponseWriter, r *http.Request) {
		s.dailyQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]interface{}{
			"daily": []models.DailyMetric{{UserID: "alice", Date: "2026-08-01", MessageCount: 3}},
		})
	})

	mux.HandleFunc("/api/calendar/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"connected": true})
	})

	return mux
}

func newSettingsClient(t *testing.T) (*Client, *settingsServer) {
	t.Helper()
	srv := &settingsServer{}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	api, err := NewClient(ts.URL, "token", common.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return api, srv
}

func TestProfileRoundtrip(t *testing.T) {
	api, _ := newSettingsClient(t)

	saved, err := api.SaveProfile(t.Context(), "Alice Doe")
	if err != nil || saved != "Alice Doe" {
		t.Fatalf("SaveProfile: %q, %v", saved, err)
	}
	got, err := api.Profile(t.Context())
	if err != nil || got != "Alice Doe" {
		t.Errorf("Profile: %q, %v", got, err)
	}
}

func TestDigestPrefRoundtrip(t *testing.T) {
	api, _ := newSettingsClient(t)

	enabled, err := api.SetDigestPref(t.Context(), true)
	if err != nil || !enabled {
		t.Fatalf("SetDigestPref: %v, %v", enabled, err)
	}
	enabled, err = api.DigestPref(t.Context())
	if err != nil || !enabled {
		t.Errorf("DigestPref: %v, %v", enabled, err)
	}
}

func TestCopingKitRoundtrip(t *testing.T) {
	api, _ := newSettingsClient(t)

	saved, err := api.SaveCopingKit(t.Context(), []string{"Walk outside"})
	if err != nil || len(saved) != 1 {
		t.Fatalf("SaveCopingKit: %v, %v", saved, err)
	}
	got, err := api.CopingKit(t.Context())
	if err != nil || len(got) != 1 || got[0] != "Walk outside" {
		t.Errorf("CopingKit: %v, %v", got, err)
	}
}

func TestTriggerLifecycle(t *testing.T) {
	api, srv := newSettingsClient(t)

	trigger, err := api.SaveTrigger(t.Context(), "Work stress", []string{"deadline"})
	if err != nil || trigger.Name != "Work stress" {
		t.Fatalf("SaveTrigger: %+v, %v", trigger, err)
	}

	list, err := api.Triggers(t.Context())
	if err != nil || len(list) != 1 || list[0].Stats.Count != 2 {
		t.Fatalf("Triggers: %+v, %v", list, err)
	}

	if err := api.DeleteTrigger(t.Context(), "Work stress"); err != nil {
		t.Fatalf("DeleteTrigger: %v", err)
	}
	if len(srv.triggers) != 0 {
		t.Error("delete should reach the server")
	}
}

func TestGetEntry(t *testing.T) {
	api, _ := newSettingsClient(t)

	entry, err := api.GetEntry(t.Context(), "e1")
	if err != nil || entry.ID != "e1" {
		t.Errorf("GetEntry: %+v, %v", entry, err)
	}
}

func TestDailyAnalyticsQuery(t *testing.T) {
	api, srv := newSettingsClient(t)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	metrics, err := api.DailyAnalytics(t.Context(), start, end)
	if err != nil || len(metrics) != 1 || metrics[0].MessageCount != 3 {
		t.Fatalf("DailyAnalytics: %+v, %v", metrics, err)
	}
	if srv.dailyQuery != "end=2026-08-28&start=2026-08-01" {
		t.Errorf("unexpected query: %q", srv.dailyQuery)
	}
}

func TestCalendarStatus(t *testing.T) {
	api, _ := newSettingsClient(t)

	connected, err := api.CalendarStatus(t.Context())
	if err != nil || !connected {
		t.Errorf("CalendarStatus: %v, %v", connected, err)
	}
}
