package store

import (
	"database/sql"
	"fmt"

	"trade-bridge/src/logger"
	"trade-bridge/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// SQLiteSettingsStore persists the per-account trading parameters so a
// restart comes back with the last configuration instead of the defaults.
// -----------------------------------------------------------------------------

type SQLiteSettingsStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteSettingsStore(cfg *models.MConfig, log *logger.Logger) *SQLiteSettingsStore {
	return &SQLiteSettingsStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteSettingsStore) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS bot_settings (
			account TEXT PRIMARY KEY,
			risk_percent REAL,
			max_daily_trades INTEGER,
			stop_loss_pips REAL,
			take_profit_pips REAL,
			max_spread_pips REAL,
			trading_start TEXT,
			trading_end TEXT,
			lot_size REAL,
			strategy_enabled INTEGER,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create bot_settings: %w", err)
	}

	d.Logger.Info("SQLite settings store ready at %s", d.Config.Storage.DBPath)
	return nil
}

// -----------------------------------------------------------------------------

// Load returns the stored parameter set for the account. The second return
// is false when no row exists yet.
func (d *SQLiteSettingsStore) Load(account string) (models.MTradingParameters, bool, error) {
	var p models.MTradingParameters
	var enabled int

	row := d.DB.QueryRow(`
		SELECT risk_percent, max_daily_trades, stop_loss_pips, take_profit_pips,
		       max_spread_pips, trading_start, trading_end, lot_size, strategy_enabled
		FROM bot_settings WHERE account = ?`, account)

	err := row.Scan(&p.RiskPercent, &p.MaxDailyTrades, &p.StopLossPips, &p.TakeProfitPips,
		&p.MaxSpreadPips, &p.TradingStart, &p.TradingEnd, &p.LotSize, &enabled)
	if err == sql.ErrNoRows {
		return models.MTradingParameters{}, false, nil
	}
	if err != nil {
		return models.MTradingParameters{}, false, fmt.Errorf("failed to load settings: %w", err)
	}

	p.StrategyEnabled = enabled != 0
	return p, true, nil
}

// -----------------------------------------------------------------------------

// Save upserts the full parameter set for the account.
func (d *SQLiteSettingsStore) Save(account string, p models.MTradingParameters) error {
	enabled := 0
	if p.StrategyEnabled {
		enabled = 1
	}

	query := `
		INSERT INTO bot_settings (
			account, risk_percent, max_daily_trades, stop_loss_pips, take_profit_pips,
			max_spread_pips, trading_start, trading_end, lot_size, strategy_enabled, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account) DO UPDATE SET
			risk_percent = excluded.risk_percent,
			max_daily_trades = excluded.max_daily_trades,
			stop_loss_pips = excluded.stop_loss_pips,
			take_profit_pips = excluded.take_profit_pips,
			max_spread_pips = excluded.max_spread_pips,
			trading_start = excluded.trading_start,
			trading_end = excluded.trading_end,
			lot_size = excluded.lot_size,
			strategy_enabled = excluded.strategy_enabled,
			updated_at = CURRENT_TIMESTAMP;
	`
	_, err := d.DB.Exec(query, account, p.RiskPercent, p.MaxDailyTrades, p.StopLossPips,
		p.TakeProfitPips, p.MaxSpreadPips, p.TradingStart, p.TradingEnd, p.LotSize, enabled)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteSettingsStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
