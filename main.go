package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"copyTradeBot/config"
	"copyTradeBot/internal/adapters/binanceclient"
	"copyTradeBot/internal/adapters/dryrun"
	"copyTradeBot/internal/adapters/jsonfeed"
	"copyTradeBot/internal/adapters/logger"
	"copyTradeBot/internal/adapters/sqlite"
	"copyTradeBot/internal/adapters/statsfile"
	"copyTradeBot/internal/app"
	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
	"copyTradeBot/internal/router"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Initialize Venue Adapters
	// The mode decides which concrete adapters exist; the router and pipeline
	// never branch on it.
	var adapters []ports.VenueAdapter
	switch cfg.ExecutionMode {
	case config.ModeLive:
		binanceAdapter, err := binanceclient.New(binanceclient.Config{
			APIKey:     cfg.BinanceAPIKey,
			SecretKey:  cfg.BinanceSecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance adapter")
			log.Fatalf("FATAL: Failed to initialize Binance adapter: %v", err)
		}
		adapters = append(adapters, binanceAdapter)
		appLogger.Info(context.Background(), "Live Binance adapter initialized")
	default:
		for _, venue := range []domain.Venue{domain.VenueGMX, domain.VenueOstium, domain.VenueBinance} {
			dry, err := dryrun.New(venue, appLogger)
			if err != nil {
				appLogger.Error(context.Background(), err, "FATAL: Failed to initialize dry-run adapter")
				log.Fatalf("FATAL: Failed to initialize dry-run adapter: %v", err)
			}
			adapters = append(adapters, dry)
		}
		appLogger.Info(context.Background(), "Dry-run adapters initialized", map[string]interface{}{"venues": len(adapters)})
	}

	// 5. Initialize Event Source and Trader Stats Provider
	source, err := jsonfeed.New(cfg.EventFeedPath, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize event feed")
		log.Fatalf("FATAL: Failed to initialize event feed: %v", err)
	}
	statsProvider, err := statsfile.New(cfg.TraderStatsPath, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trader stats provider")
		log.Fatalf("FATAL: Failed to initialize trader stats provider: %v", err)
	}

	// 6. Initialize Execution Router
	rtr, err := router.New(router.Config{
		Adapters: adapters,
		Mappings: repo,
		Logger:   appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize execution router")
		log.Fatalf("FATAL: Failed to initialize execution router: %v", err)
	}

	// 7. Initialize Application Service
	copyService, err := app.NewCopyService(
		cfg,
		appLogger,
		source,
		statsProvider,
		repo, // Pass the concrete implementation, service expects the interface
		repo, // Pass the concrete implementation, service expects the interface
		rtr,
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize copy service")
		log.Fatalf("FATAL: Failed to initialize copy service: %v", err)
	}
	appLogger.Info(context.Background(), "Copy service initialized", map[string]interface{}{"mode": cfg.ExecutionMode})

	// 8. Start the Service
	// Use context.Background() as the base context for the application run
	if err := copyService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Copy service exited with error")
		log.Fatalf("FATAL: Copy service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
