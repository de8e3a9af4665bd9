package store

import (
	"database/sql"
	"fmt"

	"trade-bridge/src/logger"
	"trade-bridge/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// PostgresSettingsStore is the shared-database variant of the settings store,
// for deployments where several bridge instances report into one Postgres.
// -----------------------------------------------------------------------------

type PostgresSettingsStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresSettingsStore(cfg *models.MConfig, log *logger.Logger) *PostgresSettingsStore {
	return &PostgresSettingsStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresSettingsStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS bot_settings (
			account TEXT PRIMARY KEY,
			risk_percent DOUBLE PRECISION,
			max_daily_trades INTEGER,
			stop_loss_pips DOUBLE PRECISION,
			take_profit_pips DOUBLE PRECISION,
			max_spread_pips DOUBLE PRECISION,
			trading_start TEXT,
			trading_end TEXT,
			lot_size DOUBLE PRECISION,
			strategy_enabled BOOLEAN,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create bot_settings: %w", err)
	}

	d.Logger.Info("Postgres settings store ready")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSettingsStore) Load(account string) (models.MTradingParameters, bool, error) {
	var p models.MTradingParameters

	row := d.DB.QueryRow(`
		SELECT risk_percent, max_daily_trades, stop_loss_pips, take_profit_pips,
		       max_spread_pips, trading_start, trading_end, lot_size, strategy_enabled
		FROM bot_settings WHERE account = $1`, account)

	err := row.Scan(&p.RiskPercent, &p.MaxDailyTrades, &p.StopLossPips, &p.TakeProfitPips,
		&p.MaxSpreadPips, &p.TradingStart, &p.TradingEnd, &p.LotSize, &p.StrategyEnabled)
	if err == sql.ErrNoRows {
		return models.MTradingParameters{}, false, nil
	}
	if err != nil {
		return models.MTradingParameters{}, false, fmt.Errorf("failed to load settings: %w", err)
	}
	return p, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSettingsStore) Save(account string, p models.MTradingParameters) error {
	query := `
		INSERT INTO bot_settings (
			account, risk_percent, max_daily_trades, stop_loss_pips, take_profit_pips,
			max_spread_pips, trading_start, trading_end, lot_size, strategy_enabled, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (account) DO UPDATE SET
			risk_percent = EXCLUDED.risk_percent,
			max_daily_trades = EXCLUDED.max_daily_trades,
			stop_loss_pips = EXCLUDED.stop_loss_pips,
			take_profit_pips = EXCLUDED.take_profit_pips,
			max_spread_pips = EXCLUDED.max_spread_pips,
			trading_start = EXCLUDED.trading_start,
			trading_end = EXCLUDED.trading_end,
			lot_size = EXCLUDED.lot_size,
			strategy_enabled = EXCLUDED.strategy_enabled,
			updated_at = NOW();
	`
	_, err := d.DB.Exec(query, account, p.RiskPercent, p.MaxDailyTrades, p.StopLossPips,
		p.TakeProfitPips, p.MaxSpreadPips, p.TradingStart, p.TradingEnd, p.LotSize, p.StrategyEnabled)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSettingsStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
