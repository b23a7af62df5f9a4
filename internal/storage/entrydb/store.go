// Package entrydb implements EntryStore using BadgerHold.
package entrydb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/models"
)

// Store implements interfaces.EntryStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new EntryStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create entry db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("EntryDB opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) CreateEntry(_ context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("entry ID is required")
	}
	if entry.UserID == "" {
		return fmt.Errorf("entry user ID is required")
	}
	if err := s.db.Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to insert entry '%s': %w", entry.ID, err)
	}
	s.logger.Debug().Str("entry_id", entry.ID).Str("user_id", entry.UserID).Msg("Entry saved")
	return nil
}

func (s *Store) GetEntry(_ context.Context, userID, entryID string) (*models.Entry, error) {
	var entry models.Entry
	if err := s.db.Get(entryID, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("entry '%s' not found", entryID)
		}
		return nil, fmt.Errorf("failed to get entry '%s': %w", entryID, err)
	}
	// Entries are only visible to their owner.
	if entry.UserID != userID {
		return nil, fmt.Errorf("entry '%s' not found", entryID)
	}
	return &entry, nil
}

func (s *Store) ListEntries(_ context.Context, userID string, limit, offset int) ([]*models.Entry, error) {
	var entries []models.Entry
	if err := s.db.Find(&entries, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list entries for user '%s': %w", userID, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	result := make([]*models.Entry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}

func (s *Store) ListEntriesSince(_ context.Context, userID string, since time.Time) ([]*models.Entry, error) {
	var entries []models.Entry
	if err := s.db.Find(&entries, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list entries for user '%s': %w", userID, err)
	}

	var result []*models.Entry
	for i := range entries {
		if !entries[i].CreatedAt.Before(since) {
			result = append(result, &entries[i])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) CountEntries(_ context.Context, userID string) (int, error) {
	count, err := s.db.Count(&models.Entry{}, badgerhold.Where("UserID").Eq(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to count entries for user '%s': %w", userID, err)
	}
	return int(count), nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
