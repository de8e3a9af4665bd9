package scheduler

import (
	"trade-bridge/src/gate"
	"trade-bridge/src/logger"

	"github.com/robfig/cron/v3"
)

// -----------------------------------------------------------------------------
// MaintenanceScheduler owns the periodic housekeeping jobs: the daily summary
// logged just before midnight and the counter rollover at the day boundary.
// The gate also rolls its counter lazily, so the explicit job is about
// logging the boundary and keeping the reset observable at a fixed time.
// -----------------------------------------------------------------------------

type MaintenanceScheduler struct {
	Logger *logger.Logger

	cron *cron.Cron
	gate *gate.Gate
}

// -----------------------------------------------------------------------------

func NewMaintenanceScheduler(g *gate.Gate, log *logger.Logger) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		Logger: log,
		cron:   cron.New(),
		gate:   g,
	}
}

// -----------------------------------------------------------------------------

func (m *MaintenanceScheduler) Start() error {
	// Daily trading summary just before the day closes.
	if _, err := m.cron.AddFunc("59 23 * * *", m.dailySummary); err != nil {
		return err
	}
	// Counter rollover at the day boundary.
	if _, err := m.cron.AddFunc("0 0 * * *", m.dailyRollover); err != nil {
		return err
	}

	m.cron.Start()
	m.Logger.Info("Maintenance scheduler started")
	return nil
}

// -----------------------------------------------------------------------------

// Stop halts the scheduler, waiting for a running job to finish.
func (m *MaintenanceScheduler) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.Logger.Info("Maintenance scheduler stopped")
}

// -----------------------------------------------------------------------------

func (m *MaintenanceScheduler) dailySummary() {
	params := m.gate.Params().Get()
	m.Logger.Info("Daily summary: %d/%d trades used, strategy enabled=%v",
		m.gate.TradesToday(), params.MaxDailyTrades, params.StrategyEnabled)
}

// -----------------------------------------------------------------------------

func (m *MaintenanceScheduler) dailyRollover() {
	m.gate.ResetDailyCounter()
	m.Logger.Info("Daily trade counter reset")
}
