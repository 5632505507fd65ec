// Package main runs the trader ranking API server: leaderboard, profiles,
// payout calculation, progress, and rewards over HTTP, with a periodic MT5
// trade sync in the background.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"traderank/internal/engineconfig"
	"traderank/internal/httpapi"
	"traderank/internal/mt5"
	"traderank/internal/observability"
	"traderank/internal/ranking"
	"traderank/internal/storage"
	chstore "traderank/internal/storage/clickhouse"
	"traderank/internal/storage/memory"
	"traderank/internal/storage/migrations"
	pgstore "traderank/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, enables snapshot reads)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	engineConfigPath := flag.String("engine-config", os.Getenv("ENGINE_CONFIG"), "YAML file overriding engine parameters")
	mt5BaseURL := flag.String("mt5-base-url", os.Getenv("MT5_BASE_URL"), "MT5 bridge REST endpoint (empty = mock mode)")
	mt5StreamURL := flag.String("mt5-stream-url", os.Getenv("MT5_STREAM_URL"), "MT5 bridge WebSocket endpoint")
	mt5APIKey := flag.String("mt5-api-key", os.Getenv("MT5_API_KEY"), "MT5 bridge API key")
	syncInterval := flag.Duration("sync-interval", 15*time.Minute, "Interval between MT5 trade syncs (0 disables)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Engine parameters are fatal at load time, never per-request.
	engineCfg, err := engineconfig.Load(*engineConfigPath)
	if err != nil {
		logger.Fatalf("Invalid engine config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	service := ranking.NewService(engineCfg, stores, log.New(os.Stdout, "[ranking] ", log.LstdFlags|log.Lshortfile))

	bridgeCfg := mt5.Config{BaseURL: *mt5BaseURL, StreamURL: *mt5StreamURL, APIKey: *mt5APIKey}
	if bridgeCfg.MockMode() {
		logger.Println("MT5 bridge credentials absent, running in mock mode")
	}
	bridge := mt5.NewClient(bridgeCfg)
	syncer := ranking.NewSyncService(bridge, stores.Accounts, stores.Trades, log.New(os.Stdout, "[sync] ", log.LstdFlags|log.Lshortfile))

	// Live trade stream: consume closed-trade events for every linked
	// account. The periodic sync still runs and backfills anything missed.
	if bridgeCfg.StreamURL != "" {
		stream, err := mt5.NewStreamClient(ctx, bridgeCfg.StreamURL, nil, log.New(os.Stdout, "[mt5] ", log.LstdFlags|log.Lshortfile))
		if err != nil {
			logger.Fatalf("Failed to connect MT5 stream: %v", err)
		}
		defer stream.Close()
		go func() {
			if err := syncer.ConsumeStreams(ctx, stream, stores.Traders); err != nil {
				logger.Printf("Stream consumption stopped: %v", err)
			}
		}()
	}

	// HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	httpapi.NewHandler(service, log.New(os.Stdout, "[httpapi] ", log.LstdFlags|log.Lshortfile)).Register(mux)

	server := &http.Server{
		Addr:    *httpAddr,
		Handler: mux,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	// Periodic MT5 sync in the background
	if *syncInterval > 0 {
		go runSyncScheduler(ctx, syncer, stores, *syncInterval, logger)
	}

	logger.Printf("Starting HTTP server on %s", *httpAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, running migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (ranking.Stores, func(), error) {
	if useMemory {
		stores := ranking.Stores{
			Traders:      memory.NewTraderStore(),
			Metrics:      memory.NewMetricsStore(),
			Legacy:       memory.NewLegacyScoreStore(),
			Payouts:      memory.NewPayoutStore(),
			Accounts:     memory.NewTradingAccountStore(),
			Trades:       memory.NewClosedTradeStore(),
			Entitlements: memory.NewEntitlementStore(),
			Snapshots:    memory.NewSnapshotStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return ranking.Stores{}, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return ranking.Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := ranking.Stores{
		Traders:      pgstore.NewTraderStore(pool),
		Metrics:      pgstore.NewMetricsStore(pool),
		Legacy:       pgstore.NewLegacyScoreStore(pool),
		Payouts:      pgstore.NewPayoutStore(pool),
		Accounts:     pgstore.NewTradingAccountStore(pool),
		Trades:       pgstore.NewClosedTradeStore(pool),
		Entitlements: pgstore.NewEntitlementStore(pool),
	}

	cleanup := func() { pool.Close() }

	// ClickHouse is optional: without it, reads skip the snapshot source.
	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return ranking.Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.Snapshots = chstore.NewSnapshotStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// runSyncScheduler periodically syncs closed trades for every known trader.
func runSyncScheduler(ctx context.Context, syncer *ranking.SyncService, stores ranking.Stores, interval time.Duration, logger *log.Logger) {
	logger.Printf("Starting MT5 sync scheduler (interval: %v)...", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			syncAll(ctx, syncer, stores, logger)
		}
	}
}

// syncAll pages through every trader and syncs each one. Per-trader failures
// are logged so one broken account does not stall the rest.
func syncAll(ctx context.Context, syncer *ranking.SyncService, stores ranking.Stores, logger *log.Logger) {
	start := time.Now()

	const pageSize = 200
	offset := 0
	total := 0
	for {
		traders, _, err := stores.Traders.List(ctx, storage.TraderQuery{Limit: pageSize, Offset: offset})
		if err != nil {
			logger.Printf("Sync aborted, trader listing failed: %v", err)
			return
		}
		if len(traders) == 0 {
			break
		}
		for _, trader := range traders {
			n, err := syncer.SyncTrader(ctx, trader.ID)
			if err != nil {
				logger.Printf("Sync for trader %s failed: %v", trader.ID, err)
				continue
			}
			total += n
		}
		offset += len(traders)
	}

	observability.DefaultMetrics.LastSuccessfulSync.SetToCurrentTime()
	logger.Printf("Sync completed in %v: %d new trades", time.Since(start), total)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
