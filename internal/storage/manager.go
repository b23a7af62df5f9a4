// Package storage provides the top-level StorageManager coordinating the
// entry and internal stores.
package storage

import (
	"context"
	"fmt"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/storage/entrydb"
	"github.com/echo-journal/echo/internal/storage/internaldb"
)

// Manager implements interfaces.StorageManager over embedded BadgerHold stores.
type Manager struct {
	entries  *entrydb.Store
	internal *internaldb.Store
	logger   *common.Logger
}

// NewManager creates the embedded storage manager.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	entryStore, err := entrydb.NewStore(logger, config.Storage.Entries.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry store: %w", err)
	}

	internalStore, err := internaldb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		entryStore.Close()
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	logger.Info().
		Str("entries", config.Storage.Entries.Path).
		Str("internal", config.Storage.Internal.Path).
		Msg("Storage manager initialized")

	return &Manager{
		entries:  entryStore,
		internal: internalStore,
		logger:   logger,
	}, nil
}

func (m *Manager) EntryStore() interfaces.EntryStore {
	return m.entries
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

// Ping verifies the embedded stores respond.
func (m *Manager) Ping(ctx context.Context) error {
	_, err := m.internal.GetSystemKV(ctx, "ping")
	return err
}

func (m *Manager) Close() error {
	var firstErr error
	if err := m.entries.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.internal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
