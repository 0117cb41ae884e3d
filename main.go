package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/migrations"
	"github.com/SongDrop/gitgptapi/pkg/azure"
	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/database"
	"github.com/SongDrop/gitgptapi/pkg/handlers"
	"github.com/SongDrop/gitgptapi/pkg/logging"
	"github.com/SongDrop/gitgptapi/pkg/middleware"
	"github.com/SongDrop/gitgptapi/pkg/naming"
	"github.com/SongDrop/gitgptapi/pkg/repositories"
	"github.com/SongDrop/gitgptapi/pkg/retry"
	"github.com/SongDrop/gitgptapi/pkg/search"
	"github.com/SongDrop/gitgptapi/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("location", cfg.Azure.Location),
		zap.Bool("deployment_target_set", cfg.Azure.HasDeploymentTarget()),
		zap.String("resource_group", cfg.Azure.ResourceGroup),
		zap.String("name_suffix_strategy", cfg.Azure.NameSuffixStrategy),
		zap.String("search_index", cfg.Azure.SearchIndexName),
		zap.String("search_admin_key", logging.RedactSecret(cfg.Azure.SearchAdminKey)),
		zap.String("catalog_driver", cfg.Catalog.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog database (read by list_db)
	catalogDB, dialect, err := database.Open(&cfg.Catalog)
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer catalogDB.Close()
	logger.Info("Catalog database configured",
		zap.String("dsn", logging.SanitizeConnectionString(dialect.DSN(&cfg.Catalog))))

	if cfg.Catalog.AutoMigrate {
		migrateCatalog(cfg, logger)
	}

	// Connectivity is checked in the background so the Functions host sees the
	// handler start immediately; list_db reports failures per request.
	go func() {
		if err := database.Ping(ctx, catalogDB, retry.DefaultConfig(), logger); err != nil {
			logger.Warn("Catalog database not reachable; list_db will fail until it is",
				zap.String("error", logging.SanitizeError(err)))
			return
		}
		logger.Info("Connected to catalog database", zap.String("driver", dialect.Name))
	}()

	suffixer, err := naming.NewSuffixer(cfg.Azure.NameSuffixStrategy)
	if err != nil {
		logger.Fatal("Invalid name suffix strategy", zap.Error(err))
	}

	azureClients := azure.NewClientFactory(azure.DefaultCredential, cfg.Azure.CallTimeout, logger)
	indexClient := search.NewIndexClient(search.ClientConfig{
		APIVersion: cfg.Azure.SearchAPIVersion,
		Timeout:    cfg.Azure.SearchHTTPTimeout,
		RetryMax:   cfg.Azure.SearchHTTPRetryMax,
	}, logger)

	// Services
	provisionService := services.NewProvisionService(&cfg.Azure, azureClients, indexClient, suffixer, logger)
	catalogService := services.NewCatalogService(
		repositories.NewCatalogRepository(catalogDB, dialect), cfg.Catalog.Timeout, logger)
	blobService := services.NewBlobService(&cfg.Azure, azureClients, services.NewBlobUploader(logger), logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, catalogDB, logger).RegisterRoutes(mux)
	handlers.NewProvisionHandler(provisionService, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(catalogService, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(blobService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestID(middleware.RequestLogger(logger)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting gitgptapi",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}

// migrateCatalog applies the bundled MySQL schema. The migrate driver closes its
// connection when done, so it gets a pool of its own.
func migrateCatalog(cfg *config.Config, logger *zap.Logger) {
	if cfg.Catalog.Driver != database.DriverMySQL {
		logger.Warn("Catalog auto-migration only supports mysql; skipping",
			zap.String("driver", cfg.Catalog.Driver))
		return
	}

	db, _, err := database.Open(&cfg.Catalog)
	if err != nil {
		logger.Fatal("Failed to open catalog database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(db, migrations.MySQL, migrations.MySQLDir, logger); err != nil {
		logger.Fatal("Failed to migrate catalog database",
			zap.String("error", logging.SanitizeError(err)))
	}
}
