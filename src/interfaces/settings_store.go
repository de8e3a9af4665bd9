package interfaces

import "trade-bridge/src/models"

// -----------------------------------------------------------------------------
// ISettingsStore persists the mutable trading parameters across restarts.
// Trade history is intentionally NOT stored here.
// -----------------------------------------------------------------------------

type ISettingsStore interface {

	// Initialize sets up the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Load returns the stored parameter set for an account, or ok=false when
	// none has been saved yet.
	Load(account string) (models.MTradingParameters, bool, error)

	// -----------------------------------------------------------------------------

	// Save upserts the full parameter set for an account.
	Save(account string, params models.MTradingParameters) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
