// Package coping manages each user's pinned coping actions.
package coping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/models"
)

// Compile-time interface check
var _ interfaces.CopingService = (*Service)(nil)

// Kit limits.
const (
	MaxActions      = 3
	MaxActionLength = 80
)

// Service implements CopingService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new coping service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// GetKit returns the user's pinned coping actions, empty when none saved.
func (s *Service) GetKit(ctx context.Context, userID string) ([]string, error) {
	kv, err := s.storage.InternalStore().GetUserKV(ctx, userID, models.KVCopingKit)
	if err != nil {
		return []string{}, nil
	}
	var actions []string
	if err := json.Unmarshal([]byte(kv.Value), &actions); err != nil {
		return nil, fmt.Errorf("failed to decode coping kit: %w", err)
	}
	return actions, nil
}

// SaveKit validates and stores the user's coping actions, returning the
// normalized list.
func (s *Service) SaveKit(ctx context.Context, userID string, actions []string) ([]string, error) {
	normalized := make([]string, 0, len(actions))
	for _, action := range actions {
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}
		if len([]rune(action)) > MaxActionLength {
			return nil, fmt.Errorf("action exceeds %d characters", MaxActionLength)
		}
		normalized = append(normalized, action)
	}
	if len(normalized) > MaxActions {
		return nil, fmt.Errorf("at most %d actions allowed", MaxActions)
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coping kit: %w", err)
	}
	if err := s.storage.InternalStore().SetUserKV(ctx, userID, models.KVCopingKit, string(encoded)); err != nil {
		return nil, fmt.Errorf("failed to save coping kit: %w", err)
	}

	s.logger.Info().Str("user", userID).Int("actions", len(normalized)).Msg("Coping kit saved")
	return normalized, nil
}
