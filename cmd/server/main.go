package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/controller"
	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/router"
	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/memory"
	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/postgres"
	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/repo_interfaces"
	"github.com/Iamfittz/TheFitzBank/internal/config"
	"github.com/Iamfittz/TheFitzBank/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var ledgerStore repo_interfaces.LedgerStore
	var transactionStore repo_interfaces.TransactionStore

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
			log.Fatalf("run migrations: %v", err)
		}

		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()

		ledgerStore = postgres.NewLedgerStore(db)
		transactionStore = postgres.NewTransactionStore(db)
	case config.StoreBackendMemory:
		ledgerStore = memory.NewLedgerStore()
		transactionStore = memory.NewTransactionStore()
	}

	allocator := services.NewAccountNumberAllocator(ledgerStore)
	ledgerService := services.NewLedgerService(ledgerStore, transactionStore, allocator)

	mux := router.New(
		controller.NewAccountController(ledgerService),
		controller.NewTransactionController(ledgerService),
	)

	log.Printf("listening on %s (store backend: %s)", cfg.ListenAddr, cfg.StoreBackend)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
