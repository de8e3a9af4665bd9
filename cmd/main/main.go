package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"trade-bridge/src/broker/filebridge"
	"trade-bridge/src/broker/live"
	"trade-bridge/src/broker/mock"
	"trade-bridge/src/config"
	"trade-bridge/src/decider"
	"trade-bridge/src/engine"
	"trade-bridge/src/freshness"
	"trade-bridge/src/gate"
	"trade-bridge/src/interfaces"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
	"trade-bridge/src/scheduler"
	"trade-bridge/src/server"
	"trade-bridge/src/store"
	"trade-bridge/src/stream"
	"trade-bridge/src/utils"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Secrets come from the environment; a local .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env: %v\n", err)
	}

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 1. Settings store
	settings, err := store.NewSettingsStore(config.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init settings store: %v", err)
	}
	if err := settings.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate settings store: %v", err)
	}
	defer settings.Close()

	// 2. Broker source
	requestTimeout := time.Duration(config.Broker.RequestTimeoutSeconds) * time.Second
	maxAge := time.Duration(config.Broker.MaxAgeSeconds) * time.Second

	var source interfaces.IBrokerSource
	switch config.Broker.Source {
	case "live":
		if maxAge <= 0 {
			maxAge = 10 * time.Second
		}
		source = live.NewLiveSource(config.Broker.LiveURL, config.Broker.LiveSecret, requestTimeout,
			logger.NewLogger(config.LogLevel, "LiveSource"))
	case "file":
		if maxAge <= 0 {
			maxAge = 30 * time.Second
		}
		source = filebridge.NewFileSource(config.Broker.FilePath, config.Broker.CommandPath, maxAge,
			logger.NewLogger(config.LogLevel, "FileSource"))
	default:
		if maxAge <= 0 {
			maxAge = 10 * time.Second
		}
		source = mock.NewMockSource(config.Broker.Symbol, 0,
			logger.NewLogger(config.LogLevel, "MockSource"))
	}
	defer source.Close()

	// 3. Connectivity monitor
	monitor := freshness.NewMonitor(maxAge, logger.NewLogger(config.LogLevel, "FreshnessMonitor"))

	// 4. Trading parameters: stored set wins over the YAML defaults
	account := config.Broker.Symbol // one instrument per bridge instance
	initialParams := config.Trading
	if initialParams == (models.MTradingParameters{}) {
		initialParams = models.DefaultTradingParameters()
	}
	if stored, found, err := settings.Load(account); err != nil {
		appLogger.Warning("Failed to load stored parameters: %v", err)
	} else if found {
		initialParams = stored
		appLogger.Info("Restored trading parameters from settings store")
	}
	params := gate.NewParamStore(initialParams)

	// 5. Admission gate
	calendar := utils.SessionCalendarFor(config.Broker.Symbol)
	admission := gate.NewGate(source, monitor, params, calendar, logger.NewLogger(config.LogLevel, "AdmissionGate"))

	// 6. Stream hub
	hub := stream.NewHub(source, monitor, config.Stream, config.Broker.Symbol, config.Broker.Timeframe,
		requestTimeout, logger.NewLogger(config.LogLevel, "StreamHub"))

	// 7. Strategy engine. The stock decider stays flat; a real signal
	// function is dropped in here.
	strategyEngine := engine.NewEngine(admission,
		decider.NewFlatDecider(), config.Broker.Symbol,
		logger.NewLogger(config.LogLevel, "StrategyEngine"))
	hub.SetCandleCloseHandler(strategyEngine.OnCandleClose)

	// 8. Sessions and command routing
	registry := server.NewSessionRegistry(logger.NewLogger(config.LogLevel, "SessionRegistry"))
	router := server.NewCommandRouter(admission, settings, account, config.Broker.Symbol,
		logger.NewLogger(config.LogLevel, "CommandRouter"))
	srv := server.NewServer(config.MConfig, hub, registry, router, admission, appLogger)

	// 9. Maintenance jobs
	maintenance := scheduler.NewMaintenanceScheduler(admission, logger.NewLogger(config.LogLevel, "Maintenance"))
	if err := maintenance.Start(); err != nil {
		appLogger.Critical("Failed to start maintenance scheduler: %v", err)
	}
	defer maintenance.Stop()

	// 10. Run everything
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(3)
	go hub.Run(ctx, wg)
	go strategyEngine.Run(ctx, wg)
	go registry.Run(ctx, wg)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	appLogger.Info("trade-bridge running: %s source on %s %s",
		source.Name(), config.Broker.Symbol, config.Broker.Timeframe)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	wg.Wait()
}
