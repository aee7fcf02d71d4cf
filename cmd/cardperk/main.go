// CardPerk - Credit card reward evaluation that deploys in 60 seconds.
// Copyright (c) 2026 openrewards
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openrewards/cardperk/internal/api"
	"github.com/openrewards/cardperk/internal/bus"
	"github.com/openrewards/cardperk/internal/cache"
	"github.com/openrewards/cardperk/internal/catalog"
	"github.com/openrewards/cardperk/internal/domain"
	"github.com/openrewards/cardperk/internal/promo"
	"github.com/openrewards/cardperk/internal/repository"
	"github.com/openrewards/cardperk/internal/rewards"
	"github.com/openrewards/cardperk/internal/spending"
	"github.com/openrewards/cardperk/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("CARDPERK_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting cardperk",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("CARDPERK_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Product Registry
	registry, err := catalog.New()
	if err != nil {
		slog.Error("failed to initialize product registry", "error", err)
		os.Exit(1)
	}
	slog.Info("product registry initialized", "products", registry.Count())

	// Initialize Spending Service
	spendingSvc := spending.NewService(repo, cacheImpl)
	slog.Info("spending service initialized")

	// Initialize Reward Processor
	processor := rewards.NewProcessor(rewards.NewEvaluator(registry))
	slog.Info("reward processor initialized", "engine_version", rewards.EngineVersion)

	// Initialize Promo Engine with period-spend getter
	promoEngine, err := promo.NewEngine(spendingSvc.GetSpendGetter(), 100)
	if err != nil {
		slog.Error("failed to initialize promo engine", "error", err)
		os.Exit(1)
	}

	// Load promo rules from database (no hardcoded defaults - configure via API)
	if err := loadPromosFromDatabase(ctx, repo, promoEngine); err != nil {
		slog.Error("failed to load promo rules", "error", err)
		os.Exit(1)
	}
	slog.Info("promo engine initialized", "rules_count", promoEngine.RulesCount())

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("CARDPERK_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, repo, processor, promoEngine)

		// Get tenant IDs to process (from environment or default)
		tenantIDs := []string{}
		if envTenants := os.Getenv("CARDPERK_TENANTS"); envTenants != "" {
			tenantIDs = strings.Split(envTenants, ",")
		}

		workerCfg := worker.Config{
			TenantIDs:   tenantIDs,
			WorkerCount: 5,
		}

		if err := asyncWorker.Start(workerCfg); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "tenant_count", len(tenantIDs))
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, cacheImpl, busImpl, registry, processor, promoEngine, spendingSvc, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("cardperk is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("cardperk shutdown complete")
}

// GlobalTenantID is used for promo rules that apply to all tenants.
const GlobalTenantID = "*"

// loadPromosFromDatabase loads promo rules from the database into the engine.
// All promos must be configured via POST /promos API - no hardcoded defaults.
func loadPromosFromDatabase(ctx context.Context, repo domain.Repository, engine *promo.Engine) error {
	dbRules, err := repo.ListPromoRules(ctx, GlobalTenantID)
	if err != nil {
		slog.Warn("failed to list promo rules from database", "error", err)
		return nil // Start with empty rules - they can be added via API
	}

	if len(dbRules) > 0 {
		slog.Info("loading promo rules from database", "count", len(dbRules))
		return engine.LoadRules(dbRules)
	}

	slog.Info("no promo rules in database - configure via POST /promos API")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║              💳 CARDPERK                  ║")
	fmt.Println("  ║      Reward Rule Evaluation Engine        ║")
	fmt.Println("  ║      Every rupee earns its reward.        ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /evaluate                 - Evaluate a spend")
	fmt.Println("    POST /evaluate/cards           - Evaluate a spend across cards")
	fmt.Println("    GET  /evaluations/{id}         - Get evaluation by ID")
	fmt.Println("    GET  /spends/{id}              - Get spend by ID")
	fmt.Println("    GET  /products                 - List card products")
	fmt.Println("    GET  /products/{id}            - Get a card product")
	fmt.Println("    POST /products/{id}/questions  - Contextual questions for a spend")
	fmt.Println("    GET  /promos                   - List promo rules")
	fmt.Println("    POST /promos                   - Create a promo rule")
	fmt.Println("    DELETE /promos/{id}            - Delete a promo rule")
	fmt.Println("    POST /promos/reload            - Hot-reload promos from database")
	fmt.Println("    GET  /health                   - Health check")
	fmt.Println()
}
