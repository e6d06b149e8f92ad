package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"negotiator-lite/apps/server/internal/attempt"
	"negotiator-lite/apps/server/internal/auth"
	"negotiator-lite/apps/server/internal/config"
	"negotiator-lite/apps/server/internal/events"
	"negotiator-lite/apps/server/internal/game"
	"negotiator-lite/apps/server/internal/gateway"
	"negotiator-lite/apps/server/internal/ledger"
	"negotiator-lite/apps/server/internal/progress"
	"negotiator-lite/apps/server/internal/storage"
	"negotiator-lite/negotiation/suspect"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Invalid configuration: %v", err)
	}

	reg, err := config.LoadRegistry(cfg.ScenarioCatalog)
	if err != nil {
		log.Fatalf("[Server] Failed to load scenarios: %v", err)
	}
	if cfg.ScenarioCatalog != "" {
		if err := config.WatchCatalog(ctx, cfg.ScenarioCatalog, reg); err != nil {
			log.Printf("[Server] Catalog hot reload disabled: %v", err)
		}
	}

	db, ledgerDB := openDatabases(cfg)
	if db != nil {
		defer db.Close()
	}
	if ledgerDB != nil && ledgerDB != db {
		defer ledgerDB.Close()
	}

	authService, authMode, err := auth.NewService(db, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("[Server] Failed to init auth: %v", err)
	}
	defer authService.Close()

	ledgerService := ledger.NewMemoryService()
	progressService := progress.NewMemoryService()
	if db != nil {
		if ledgerService, err = ledger.NewSQLService(ledgerDB); err != nil {
			log.Fatalf("[Server] Failed to init ledger: %v", err)
		}
		if progressService, err = progress.NewSQLService(db); err != nil {
			log.Fatalf("[Server] Failed to init progress: %v", err)
		}
	}
	defer ledgerService.Close()
	defer progressService.Close()

	attempts, err := openAttempts(ctx, cfg, db)
	if err != nil {
		log.Fatalf("[Server] Failed to init attempt store: %v", err)
	}
	defer attempts.Close()

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("[Server] Failed to connect events: %v", err)
		}
		publisher = nats
	}
	defer publisher.Close()

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	generator := suspect.NewGenerator(cfg.LLM, time.Now().UnixNano())
	gameService, err := game.NewService(game.Config{DailyLimit: cfg.DailyLimit}, game.Deps{
		Registry: reg,
		Director: suspect.NewDirector(generator, cfg.LLMTimeout),
		Attempts: attempts,
		Ledger:   ledgerService,
		Progress: progressService,
		Events:   publisher,
		Metrics:  game.NewMetrics(metricsRegistry),
	})
	if err != nil {
		log.Fatalf("[Server] Failed to init game service: %v", err)
	}

	gw := gateway.New(gameService, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	auth.NewHTTPHandler(authService).RegisterRoutes(mux)
	ledger.NewHTTPHandler(ledgerService).RegisterRoutes(mux)
	game.NewHTTPHandler(authService, gameService).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[Server] Storage mode: %s", cfg.StorageMode)
	log.Printf("[Server] Auth mode: %s", authMode)
	log.Printf("[Server] Attempt store: %s", cfg.AttemptStore)
	log.Printf("[Server] Suspect generator: %s", generator.Name())
	log.Printf("[Server] Scenarios loaded: %d", reg.Count())
	log.Printf("[Server] Starting server on %s", cfg.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[Server] Shutdown error: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
	log.Printf("[Server] Stopped")
}

// openDatabases returns the shared store database and the ledger database.
// Postgres deployments reach the ledger through pgx and everything else
// through lib/pq; sqlite shares one file.
func openDatabases(cfg config.Config) (db, ledgerDB *storage.DB) {
	var err error
	switch cfg.StorageMode {
	case config.StorageSQLite:
		if db, err = storage.OpenSQLite(cfg.LocalDatabasePath); err != nil {
			log.Fatalf("[Server] Failed to open sqlite %s: %v", cfg.LocalDatabasePath, err)
		}
		log.Printf("[Server] Local database: %s", cfg.LocalDatabasePath)
		return db, db
	case config.StoragePostgres:
		if db, err = storage.OpenPostgres(storage.DriverPQ, cfg.DatabaseURL); err != nil {
			log.Fatalf("[Server] Failed to open postgres: %v", err)
		}
		if ledgerDB, err = storage.OpenPostgres(storage.DriverPGX, cfg.LedgerDatabaseDSN); err != nil {
			log.Fatalf("[Server] Failed to open ledger postgres: %v", err)
		}
		return db, ledgerDB
	default:
		return nil, nil
	}
}

func openAttempts(ctx context.Context, cfg config.Config, db *storage.DB) (attempt.Store, error) {
	switch cfg.AttemptStore {
	case config.AttemptRedis:
		return attempt.NewRedisStore(ctx, cfg.RedisAddr, cfg.AttemptTTL)
	case config.AttemptSQLite:
		return attempt.NewSQLStore(db)
	default:
		return attempt.NewMemoryStore(), nil
	}
}
