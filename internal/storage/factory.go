package storage

import (
	"fmt"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/storage/surrealdb"
)

// Storage driver constants.
const (
	DriverBadger    = "badger"
	DriverSurrealDB = "surrealdb"
)

// NewStorageManager creates a storage manager for the configured driver.
// Supported drivers: "badger" (embedded, default) and "surrealdb".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	driver := config.Storage.Driver
	if driver == "" {
		driver = DriverBadger
	}

	switch driver {
	case DriverBadger:
		return NewManager(logger, config)

	case DriverSurrealDB:
		return surrealdb.NewManager(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: badger, surrealdb)", driver)
	}
}
