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
	_ "github.com/jackc/pgx/v5/stdlib"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"github.com/veritext/veritext/internal/api/handlers"
	"github.com/veritext/veritext/internal/config"
	"github.com/veritext/veritext/internal/database"
	"github.com/veritext/veritext/internal/domain"
	"github.com/veritext/veritext/internal/embcache"
	"github.com/veritext/veritext/internal/jobs"
	"github.com/veritext/veritext/internal/openai"
	"github.com/veritext/veritext/internal/repository"
	"github.com/veritext/veritext/internal/server"
	"github.com/veritext/veritext/internal/service"
	"github.com/veritext/veritext/internal/telemetry"
)

// embeddingCacheTTL bounds how long a cached embedding stays valid.
const embeddingCacheTTL = 24 * time.Hour

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the veritext API server on the specified port",
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

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
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

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	contentRepo := repository.NewContentRepository(pool)

	embedder, cacheClose, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	if cacheClose != nil {
		defer cacheClose()
	}

	contentSvc := service.NewContentService(contentRepo, embedder, cfg.EmbeddingModel)
	searchSvc := service.NewSearchService(contentRepo, embedder)

	var reembedWorker *jobs.Worker
	if cfg.HasOpenAI() && cfg.ReembedInterval > 0 {
		reembedSvc := service.NewReembedService(contentRepo, embedder, cfg.EmbeddingModel)
		reembedWorker = jobs.NewWorker(jobs.NewReembedWorker(reembedSvc), cfg.ReembedInterval)
		go reembedWorker.Start(ctx)
		log.Println("re-embed worker started")
	}

	routerCfg := server.RouterConfig{
		APIToken:       cfg.APIToken,
		AllowedOrigins: cfg.AllowedOrigins,
		ContentHandler: handlers.NewContentHandler(contentSvc),
		SearchHandler:  handlers.NewSearchHandler(searchSvc),
		TopicsHandler:  handlers.NewTopicsHandler(contentSvc),
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

	if reembedWorker != nil {
		reembedWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildEmbedder assembles the embedding client: the OpenAI client when a key
// is configured, wrapped in the Redis cache when one is available. The
// returned close function releases the cache connection and may be nil.
func buildEmbedder(cfg *config.Config) (service.EmbeddingClient, func(), error) {
	if !cfg.HasOpenAI() {
		log.Println("no OpenAI API key configured; embedding-backed operations will fail")
		return &unconfiguredEmbedder{}, nil, nil
	}

	var embedder service.EmbeddingClient = openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})

	if !cfg.HasRedis() {
		return embedder, nil, nil
	}

	store, err := embcache.NewRueidisStore(cfg.RedisURL, embeddingCacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("embedding cache enabled")

	return embcache.New(embedder, store), store.Close, nil
}

// unconfiguredEmbedder stands in when no embedding provider is set up so the
// server can still serve reads.
type unconfiguredEmbedder struct{}

func (unconfiguredEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, domain.NewEmbeddingError(fmt.Errorf("embedding provider not configured: OPENAI_API_KEY required"))
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
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
