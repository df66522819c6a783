package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/slabmarket/matching-engine/config"
	"github.com/slabmarket/matching-engine/internal/api/feed"
	"github.com/slabmarket/matching-engine/internal/api/handlers"
	"github.com/slabmarket/matching-engine/internal/api/routes"
	"github.com/slabmarket/matching-engine/internal/logger"
	"github.com/slabmarket/matching-engine/internal/matching"
	"github.com/slabmarket/matching-engine/internal/storage"
	"github.com/slabmarket/matching-engine/internal/storage/file"
	"github.com/slabmarket/matching-engine/internal/storage/memory"
	"github.com/slabmarket/matching-engine/internal/storage/postgres"
	"github.com/slabmarket/matching-engine/internal/storage/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with config
	logger.SetMinLevel(logger.ParseLevel(cfg.Logger.Level))

	logger.Info("Starting matching engine API server", map[string]interface{}{
		"version":         "1.0.0",
		"spec_id":         cfg.Listing.SpecID,
		"grade":           cfg.Listing.Grade,
		"grading_company": cfg.Listing.GradingCompany,
	})

	// Build storage layers based on configuration
	orderStore, tradeStore := buildStorageLayers(cfg)

	// Create matching engine with storage
	engine := matching.NewEngineWithStores(orderStore, tradeStore)
	engine.SetTradeHistorySize(cfg.Engine.TradeHistorySize)
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("Failed to close engine", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Open the accepted-order event log and rebuild state from it before
	// attaching it, so replayed submissions are not appended twice
	eventLog, err := file.NewFileEventLog(cfg.Engine.EventLogPath)
	if err != nil {
		logger.Error("Failed to open event log", map[string]interface{}{
			"path":  cfg.Engine.EventLogPath,
			"error": err.Error(),
		})
		os.Exit(1)
	}

	if cfg.Engine.ReplayOnStart {
		events, err := eventLog.ReadAll()
		if err != nil {
			logger.Error("Failed to read event log", map[string]interface{}{
				"path":  cfg.Engine.EventLogPath,
				"error": err.Error(),
			})
			os.Exit(1)
		}
		if len(events) > 0 {
			if err := matching.Replay(engine, events); err != nil {
				logger.Error("Event log replay failed", map[string]interface{}{
					"error": err.Error(),
				})
				os.Exit(1)
			}
			logger.Info("Book state rebuilt from event log", map[string]interface{}{
				"events": len(events),
			})
		}
	}
	engine.SetEventLog(eventLog)

	// Wire the live trade feed
	var hub *feed.Hub
	if cfg.Feed.Enabled {
		hub = feed.NewHub(cfg.Feed.ClientBufferSize)
		engine.SetPublisher(hub)
		logger.Info("Trade feed enabled", map[string]interface{}{
			"client_buffer": cfg.Feed.ClientBufferSize,
		})
	}

	// Create engine holder for dependency injection
	engineHolder := handlers.NewEngineHolder(engine)
	engineHolder.DefaultTradeLimit = cfg.API.DefaultTradeLimit
	engineHolder.MaxTradeLimit = cfg.API.MaxTradeLimit
	engineHolder.DefaultBookDepth = cfg.API.DefaultBookDepth
	engineHolder.MaxBookDepth = cfg.API.MaxBookDepth

	// Setup routes with middleware
	handler := routes.SetupRoutes(engineHolder, hub)

	// Create HTTP server with config
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":    cfg.Server.Port,
			"address": fmt.Sprintf("http://localhost:%s", cfg.Server.Port),
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...", nil)

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	logger.Info("Server exited successfully", nil)
}

// buildStorageLayers constructs the storage layers based on configuration.
// Returns composite stores that layer memory, Redis, and Postgres storage.
func buildStorageLayers(cfg *config.Config) (storage.OrderStore, storage.TradeStore) {
	// L1: In-memory, always on. The engine reads orders back from here.
	orderStores := []storage.OrderStore{memory.NewInMemoryOrderStore()}
	tradeStores := []storage.TradeStore{memory.NewInMemoryTradeStore(cfg.Engine.TradeHistorySize)}

	// L2: Redis (distributed cache) - if enabled
	if cfg.Redis.Enabled {
		redisCfg := redis.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			TLSEnabled:   cfg.Redis.TLSEnabled,
			OrderTTL:     cfg.Redis.OrderTTL,
			MaxTrades:    cfg.Redis.MaxTrades,
		}

		redisOrderStore, err := redis.NewRedisOrderStore(redisCfg)
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without distributed cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("Redis cache connected successfully", map[string]interface{}{
				"host": cfg.Redis.Host,
				"port": cfg.Redis.Port,
			})
			orderStores = append(orderStores, redisOrderStore)

			if redisTradeStore, err := redis.NewRedisTradeStore(redisCfg); err == nil {
				tradeStores = append(tradeStores, redisTradeStore)
			}
		}
	}

	// L3: PostgreSQL (persistent storage) - if enabled
	if cfg.Database.Enabled {
		pgCfg := postgres.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SSLMode:         cfg.Database.SSLMode,
		}

		pgOrderStore, err := postgres.NewPostgresOrderStore(pgCfg)
		if err != nil {
			logger.Warn("Failed to connect to PostgreSQL, continuing without persistent storage", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("PostgreSQL connected successfully", map[string]interface{}{
				"host":     cfg.Database.Host,
				"database": cfg.Database.Name,
			})
			orderStores = append(orderStores, pgOrderStore)

			if pgTradeStore, err := postgres.NewPostgresTradeStore(pgCfg); err == nil {
				tradeStores = append(tradeStores, pgTradeStore)
			}
		}
	}

	// L4: File storage (trade audit log) - always enabled
	if fileTradeStore, err := file.NewFileTradeStore(cfg.Engine.TradeLogPath); err == nil {
		tradeStores = append(tradeStores, fileTradeStore)
		logger.Info("Trade file log enabled", map[string]interface{}{
			"path": cfg.Engine.TradeLogPath,
		})
	}

	// Build composite stores
	var orderStore storage.OrderStore
	var tradeStore storage.TradeStore

	if len(orderStores) == 1 {
		orderStore = orderStores[0]
	} else {
		orderStore = storage.NewCompositeOrderStore(orderStores...)
	}

	if len(tradeStores) == 1 {
		tradeStore = tradeStores[0]
	} else {
		tradeStore = storage.NewCompositeTradeStore(tradeStores...)
	}

	logger.Info("Storage layers initialized", map[string]interface{}{
		"order_layers": len(orderStores),
		"trade_layers": len(tradeStores),
	})

	return orderStore, tradeStore
}
