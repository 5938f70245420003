package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gsoc-backend/application/queries"
	"gsoc-backend/infrastructure/cache"
	"gsoc-backend/infrastructure/config"
	dynamorepo "gsoc-backend/infrastructure/persistence/dynamodb"
	"gsoc-backend/infrastructure/snapshots"
	"gsoc-backend/interfaces/http/rest"
	"gsoc-backend/interfaces/http/rest/handlers"
	"gsoc-backend/interfaces/http/rest/middleware"
	"gsoc-backend/pkg/clock"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}
	client := dynamodb.NewFromConfig(awsCfg)

	clk := clock.System()

	orgRepo := dynamorepo.NewOrganizationRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
	projectRepo := dynamorepo.NewProjectRepository(client, cfg.DynamoDBTable, cfg.IndexName, cfg.GSI2IndexName, logger)

	provider := cache.NewMemoryCache()
	catalogQueries := queries.NewCatalogQueries(orgRepo, projectRepo, provider, clk, logger)
	snapshotStore := snapshots.NewStore(cfg.TrendingDir)

	pages := middleware.NewPageCache(1 * time.Hour)

	router := rest.NewRouter(
		handlers.NewCatalogHandler(catalogQueries, clk, logger),
		handlers.NewTrendingHandler(snapshotStore, logger),
		handlers.NewAdminHandler(provider, pages, clk, logger),
		pages,
		cfg.AdminKey,
		cfg.EnableCORS,
		logger,
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
