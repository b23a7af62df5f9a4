package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/echo-journal/echo/internal/common"
)

// entryServer records entry submissions and optionally fails some of them.
type entryServer struct {
	mu       sync.Mutex
	received []string
	failText map[string]bool
}

func (s *entryServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/entries" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		fail := s.failText[req.Text]
		if !fail {
			s.received = append(s.received, req.Text)
		}
		s.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"entry":     map[string]string{"id": "e", "text": req.Text},
			"one_liner": "Noted.",
		})
	})
}

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	return NewQueue(filepath.Join(t.TempDir(), "offline.json"), common.NewSilentLogger())
}

func newTestAPI(t *testing.T, url string) *Client {
	t.Helper()
	api, err := NewClient(url, "token", common.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return api
}

func enqueueTexts(t *testing.T, q *Queue, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if err := q.Enqueue(OfflineEntry{Text: text, CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("Enqueue(%q): %v", text, err)
		}
	}
}

func TestQueueOrderPreserved(t *testing.T) {
	q := newTestQueue(t)
	enqueueTexts(t, q, "first", "second", "third")

	pending, err := q.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 3 || pending[0].Text != "first" || pending[2].Text != "third" {
		t.Errorf("insertion order lost: %+v", pending)
	}
}

func TestSyncSubmitsInOrderAndClears(t *testing.T) {
	srv := &entryServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	q := newTestQueue(t)
	enqueueTexts(t, q, "a", "b", "c")

	attempted, failed, err := q.Sync(t.Context(), newTestAPI(t, ts.URL))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if attempted != 3 || failed != 0 {
		t.Errorf("expected 3 attempted / 0 failed, got %d/%d", attempted, failed)
	}
	if len(srv.received) != 3 || srv.received[0] != "a" || srv.received[1] != "b" || srv.received[2] != "c" {
		t.Errorf("submissions out of order: %v", srv.received)
	}

	pending, _ := q.ListPending()
	if len(pending) != 0 {
		t.Errorf("queue should be empty after sync, got %d", len(pending))
	}
}

func TestSyncDropsFailedItems(t *testing.T) {
	srv := &entryServer{failText: map[string]bool{"b": true}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	q := newTestQueue(t)
	enqueueTexts(t, q, "a", "b", "c")

	attempted, failed, err := q.Sync(t.Context(), newTestAPI(t, ts.URL))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if attempted != 3 || failed != 1 {
		t.Errorf("expected 3 attempted / 1 failed, got %d/%d", attempted, failed)
	}

	// The failed item is dropped, not retained for retry.
	pending, _ := q.ListPending()
	if len(pending) != 0 {
		t.Errorf("queue should be empty even after failures, got %d", len(pending))
	}
	if len(srv.received) != 2 || srv.received[0] != "a" || srv.received[1] != "c" {
		t.Errorf("remaining items should still be submitted: %v", srv.received)
	}
}

func TestSyncEmptyQueue(t *testing.T) {
	srv := &entryServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	q := newTestQueue(t)
	attempted, failed, err := q.Sync(t.Context(), newTestAPI(t, ts.URL))
	if err != nil || attempted != 0 || failed != 0 {
		t.Errorf("empty sync should be a no-op: %d/%d/%v", attempted, failed, err)
	}
}

func TestClearIdempotent(t *testing.T) {
	q := newTestQueue(t)
	if err := q.Clear(); err != nil {
		t.Fatalf("Clear on empty queue should be a no-op: %v", err)
	}

	enqueueTexts(t, q, "a")
	if err := q.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := q.Clear(); err != nil {
		t.Fatalf("second Clear should be a no-op: %v", err)
	}

	pending, err := q.ListPending()
	if err != nil || len(pending) != 0 {
		t.Errorf("queue should be empty: %v %v", pending, err)
	}
}

func TestQueueStorageErrorPropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	q := NewQueue(path, common.NewSilentLogger())

	if _, err := q.ListPending(); err == nil {
		t.Error("corrupt queue file should surface an error")
	}
	if _, _, err := q.Sync(t.Context(), newTestAPI(t, "http://127.0.0.1:0")); err == nil {
		t.Error("Sync should abort on storage errors")
	}
}
