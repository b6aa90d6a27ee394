// Package admin holds server-side commands for the jobdexd binary.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaiapi "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/talentsift/jobdex/internal/api/handlers"
	"github.com/talentsift/jobdex/internal/config"
	"github.com/talentsift/jobdex/internal/domain"
	"github.com/talentsift/jobdex/internal/jobs"
	"github.com/talentsift/jobdex/internal/openai"
	"github.com/talentsift/jobdex/internal/repository"
	"github.com/talentsift/jobdex/internal/server"
	"github.com/talentsift/jobdex/internal/service"
	"github.com/talentsift/jobdex/internal/telemetry"
	"github.com/talentsift/jobdex/internal/vectorstore"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the jobdex API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	deps, err := buildDependencies(ctx, cfg, pool)
	if err != nil {
		return err
	}

	syncWorkerProcessor := jobs.NewSyncWorker(deps.SyncJobRepo, deps.SyncSvc)
	syncWorker := jobs.NewWorker(syncWorkerProcessor, cfg.SyncPollInterval)
	go syncWorker.Start(ctx)
	log.Println("sync worker started")

	routerCfg := server.RouterConfig{
		SyncHandler:           handlers.NewSyncHandler(deps.SyncSvc),
		QueryHandler:          handlers.NewQueryHandler(deps.QuerySvc),
		JobDescriptionHandler: handlers.NewJobDescriptionHandler(deps.DocSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	syncWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// Dependencies is the wired service graph shared by serve and import.
type Dependencies struct {
	DocRepo     *repository.JobDescriptionRepository
	SyncJobRepo *repository.SyncJobRepository
	Settings    *repository.SettingsRepository
	Store       *vectorstore.Store
	Embedder    *service.EmbeddingService
	SyncSvc     *service.SyncService
	QuerySvc    *service.QueryService
	DocSvc      *service.JobDescriptionService
}

func buildDependencies(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*Dependencies, error) {
	docRepo := repository.NewJobDescriptionRepository(pool)
	syncJobRepo := repository.NewSyncJobRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	store, err := vectorstore.New(pool, cfg.VectorCollection, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure vector collection: %w", err)
	}

	embedder := service.NewEmbeddingService(embeddingClientFactory(cfg))

	syncSvc := service.NewSyncService(docRepo, store, embedder, cfg.ChunkMaxChars)
	querySvc := service.NewQueryService(
		embedder,
		store,
		settingsRepo,
		chatClientFactory(cfg),
		cfg.OpenAIAPIKey,
		cfg.ChatModel,
		openai.DefaultChatModel,
	)
	docSvc := service.NewJobDescriptionService(docRepo, syncJobRepo, store)

	return &Dependencies{
		DocRepo:     docRepo,
		SyncJobRepo: syncJobRepo,
		Settings:    settingsRepo,
		Store:       store,
		Embedder:    embedder,
		SyncSvc:     syncSvc,
		QuerySvc:    querySvc,
		DocSvc:      docSvc,
	}, nil
}

// embeddingClientFactory defers client construction until the first
// embedding is actually needed.
func embeddingClientFactory(cfg *config.Config) service.EmbeddingClientFactory {
	return func(ctx context.Context) (service.EmbeddingClient, error) {
		if !cfg.HasOpenAI() {
			return nil, domain.NewDomainError(domain.ErrCodeConfiguration,
				"embedding provider not configured, set JOBDEX_OPENAI_API_KEY")
		}
		return openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.OpenAIBaseURL,
			EmbeddingModel:      embeddingModel(cfg),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		}), nil
	}
}

func chatClientFactory(cfg *config.Config) service.ChatClientFactory {
	return func(apiKey, model string) service.ChatClient {
		return openai.NewClientWithConfig(openai.Config{
			APIKey:              apiKey,
			BaseURL:             cfg.OpenAIBaseURL,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			ChatModel:           model,
		})
	}
}

func embeddingModel(cfg *config.Config) openaiapi.EmbeddingModel {
	if cfg.EmbeddingModel != "" {
		return openaiapi.EmbeddingModel(cfg.EmbeddingModel)
	}
	return openai.DefaultEmbeddingModel
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql connection
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
