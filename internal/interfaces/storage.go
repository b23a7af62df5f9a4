// Package interfaces defines service contracts for Echo
package interfaces

import (
	"context"
	"time"

	"github.com/echo-journal/echo/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	EntryStore() EntryStore
	InternalStore() InternalStore

	// Ping verifies the backend is reachable (readiness probes).
	Ping(ctx context.Context) error

	Close() error
}

// EntryStore persists journal entries.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *models.Entry) error
	GetEntry(ctx context.Context, userID, entryID string) (*models.Entry, error)

	// ListEntries returns a user's entries ordered by created_at descending.
	ListEntries(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error)

	// ListEntriesSince returns a user's entries created at or after the
	// given time, ordered by created_at ascending.
	ListEntriesSince(ctx context.Context, userID string, since time.Time) ([]*models.Entry, error)

	CountEntries(ctx context.Context, userID string) (int, error)

	Close() error
}

// InternalStore manages user accounts, per-user config, and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}
