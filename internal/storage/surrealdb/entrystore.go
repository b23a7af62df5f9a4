package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// EntryStore persists journal entries in the "entry" table, keyed by entry ID.
type EntryStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewEntryStore(db *surrealdb.DB, logger *common.Logger) *EntryStore {
	return &EntryStore{
		db:     db,
		logger: logger,
	}
}

func (s *EntryStore) CreateEntry(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		return errors.New("entry ID is required")
	}
	if entry.UserID == "" {
		return errors.New("user ID is required")
	}

	sql := "UPSERT type::record('entry', $id) CONTENT $entry"
	vars := map[string]any{"id": entry.ID, "entry": entry}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Entry](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save entry after retries: %w", err)
		}
	}
	return nil
}

func (s *EntryStore) GetEntry(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	entry, err := surrealdb.Select[models.Entry](ctx, s.db, surrealmodels.NewRecordID("entry", entryID))
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	// Entries are scoped to their owner.
	if entry == nil || entry.ID == "" || entry.UserID != userID {
		return nil, errors.New("entry not found")
	}
	return entry, nil
}

func (s *EntryStore) ListEntries(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error) {
	sql := "SELECT * FROM entry WHERE user_id = $user_id ORDER BY created_at DESC LIMIT $limit START $offset"
	vars := map[string]any{"user_id": userID, "limit": limit, "offset": offset}

	results, err := surrealdb.Query[[]models.Entry](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Entry
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *EntryStore) ListEntriesSince(ctx context.Context, userID string, since time.Time) ([]*models.Entry, error) {
	sql := "SELECT * FROM entry WHERE user_id = $user_id AND created_at >= $since ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID, "since": since.UTC()}

	results, err := surrealdb.Query[[]models.Entry](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries since: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Entry
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *EntryStore) CountEntries(ctx context.Context, userID string) (int, error) {
	type countRow struct {
		Count int `json:"count"`
	}

	sql := "SELECT count() AS count FROM entry WHERE user_id = $user_id GROUP ALL"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]countRow](ctx, s.db, sql, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Count, nil
	}
	return 0, nil
}

func (s *EntryStore) Close() error {
	return nil
}
