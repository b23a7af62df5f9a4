// Package triggers manages named trigger word lists and computes how each
// trigger correlates with the emotions of recent entries.
package triggers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
)

// Compile-time interface check
var _ interfaces.TriggersService = (*Service)(nil)

// Trigger limits.
const (
	MinNameLength = 2
	MaxNameLength = 60
	MaxWords      = 10
	MaxWordLength = 30
)

// statsWindow is how far back entries are scanned when computing stats.
const statsWindow = 180 * 24 * time.Hour

// Service implements TriggersService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new triggers service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// load reads the stored trigger list, empty when none saved.
func (s *Service) load(ctx context.Context, userID string) ([]models.Trigger, error) {
	kv, err := s.storage.InternalStore().GetUserKV(ctx, userID, models.KVTriggers)
	if err != nil {
		return nil, nil
	}
	var list []models.Trigger
	if err := json.Unmarshal([]byte(kv.Value), &list); err != nil {
		return nil, fmt.Errorf("failed to decode triggers: %w", err)
	}
	return list, nil
}

func (s *Service) save(ctx context.Context, userID string, list []models.Trigger) error {
	encoded, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode triggers: %w", err)
	}
	if err := s.storage.InternalStore().SetUserKV(ctx, userID, models.KVTriggers, string(encoded)); err != nil {
		return fmt.Errorf("failed to save triggers: %w", err)
	}
	return nil
}

// List returns the user's triggers with stats computed over the last 180
// days of entries. An empty journal yields an empty list.
func (s *Service) List(ctx context.Context, userID string) ([]models.TriggerWithStats, error) {
	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []models.TriggerWithStats{}, nil
	}

	since := time.Now().UTC().Add(-statsWindow)
	entries, err := s.storage.EntryStore().ListEntriesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	return computeStats(entries, list), nil
}

// Upsert validates and stores a trigger. A trigger with the same name is
// replaced in place, keeping its ID and creation time.
func (s *Service) Upsert(ctx context.Context, userID, name string, words []string) (*models.Trigger, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < MinNameLength || n > MaxNameLength {
		return nil, fmt.Errorf("name must be %d to %d characters", MinNameLength, MaxNameLength)
	}
	if len(words) == 0 || len(words) > MaxWords {
		return nil, fmt.Errorf("between 1 and %d words required", MaxWords)
	}

	normalized := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			return nil, fmt.Errorf("trigger word cannot be empty")
		}
		if len([]rune(word)) > MaxWordLength {
			return nil, fmt.Errorf("trigger word must be under %d characters", MaxWordLength+1)
		}
		normalized = append(normalized, word)
	}

	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	trigger := models.Trigger{
		ID:        uuid.NewString(),
		Name:      name,
		Words:     normalized,
		CreatedAt: time.Now().UTC(),
	}
	replaced := false
	for i := range list {
		if list[i].Name == name {
			trigger.ID = list[i].ID
			trigger.CreatedAt = list[i].CreatedAt
			list[i] = trigger
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, trigger)
	}

	if err := s.save(ctx, userID, list); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user", userID).Str("trigger", name).Int("words", len(normalized)).Msg("Trigger saved")
	return &trigger, nil
}

// Delete removes the named trigger, reporting whether it existed.
func (s *Service) Delete(ctx context.Context, userID, name string) (bool, error) {
	list, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}

	kept := make([]models.Trigger, 0, len(list))
	for _, trigger := range list {
		if trigger.Name != name {
			kept = append(kept, trigger)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}

	if err := s.save(ctx, userID, kept); err != nil {
		return false, err
	}
	s.logger.Info().Str("user", userID).Str("trigger", name).Msg("Trigger deleted")
	return true, nil
}
