package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/echo-journal/echo/internal/common"
)

// OfflineEntry is a journal submission captured without a session, buffered
// for later delivery.
type OfflineEntry struct {
	Text      string    `json:"text"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue buffers offline entries in a single JSON file, append-only in
// insertion order. Mutations are append (Enqueue) and full clear (Clear);
// there is no per-item removal.
type Queue struct {
	path   string
	logger *common.Logger
}

// NewQueue creates a queue persisted at the given file path.
func NewQueue(path string, logger *common.Logger) *Queue {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Queue{path: path, logger: logger}
}

func (q *Queue) load() ([]OfflineEntry, error) {
	data, err := os.ReadFile(q.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read offline queue: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []OfflineEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse offline queue: %w", err)
	}
	return entries, nil
}

func (q *Queue) save(entries []OfflineEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode offline queue: %w", err)
	}
	if dir := filepath.Dir(q.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create queue directory: %w", err)
		}
	}
	if err := os.WriteFile(q.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write offline queue: %w", err)
	}
	return nil
}

// Enqueue appends one entry to the persisted list. Storage errors propagate
// to the caller; no validation happens at this layer.
func (q *Queue) Enqueue(entry OfflineEntry) error {
	entries, err := q.load()
	if err != nil {
		return err
	}
	return q.save(append(entries, entry))
}

// ListPending returns all buffered entries in insertion order.
func (q *Queue) ListPending() ([]OfflineEntry, error) {
	return q.load()
}

// Clear removes all buffered entries unconditionally. Clearing an empty
// queue is a no-op.
func (q *Queue) Clear() error {
	if _, err := os.Stat(q.path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(q.path); err != nil {
		return fmt.Errorf("failed to clear offline queue: %w", err)
	}
	return nil
}

// Sync replays every pending entry against the API sequentially, in
// insertion order, then clears the queue unconditionally. Each per-item
// failure is logged and dropped; it neither aborts the remaining items nor
// re-enqueues the failed one, so an item that fails is lost. Lossy on
// partial failure is the documented contract.
//
// Returns (attempted, failed). The error is non-nil only for queue storage
// failures, which abort the pass before any submission.
func (q *Queue) Sync(ctx context.Context, api *Client) (int, int, error) {
	pending, err := q.ListPending()
	if err != nil {
		return 0, 0, err
	}

	failed := 0
	for _, entry := range pending {
		if _, _, err := api.CreateEntry(ctx, entry.Text, entry.Tags); err != nil {
			failed++
			q.logger.Warn().
				Err(err).
				Time("created_at", entry.CreatedAt).
				Msg("Failed to sync offline entry, dropping")
		}
	}

	if err := q.Clear(); err != nil {
		return len(pending), failed, err
	}

	if len(pending) > 0 {
		q.logger.Info().
			Int("attempted", len(pending)).
			Int("failed", failed).
			Msg("Offline queue synced")
	}
	return len(pending), failed, nil
}
