package store

import (
	"fmt"

	"trade-bridge/src/interfaces"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------

// NewSettingsStore picks the backend from configuration.
func NewSettingsStore(cfg *models.MConfig, log *logger.Logger) (interfaces.ISettingsStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewSQLiteSettingsStore(cfg, log), nil
	case "postgres":
		return NewPostgresSettingsStore(cfg, log), nil
	}
	return nil, fmt.Errorf("unknown database type: %q", cfg.Storage.DBType)
}
