package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/skill-matcher/internal/cache"
	rediscache "github.com/jonathan/skill-matcher/internal/cache/redis"
	"github.com/jonathan/skill-matcher/internal/config"
	"github.com/jonathan/skill-matcher/internal/db"
	"github.com/jonathan/skill-matcher/internal/events"
	"github.com/jonathan/skill-matcher/internal/logging"
	"github.com/jonathan/skill-matcher/internal/matching"
	"github.com/jonathan/skill-matcher/internal/server"
	"github.com/jonathan/skill-matcher/internal/server/ratelimit"
	"github.com/jonathan/skill-matcher/internal/skills"
	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing skill extraction, matching, job ranking,
applications and candidate search. Settings come from the environment, an
optional JSON config file, and built-in defaults, in that order.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(serveConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	taxonomy, err := loadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return err
	}
	store := skills.NewStore(taxonomy)
	logger.Info("taxonomy loaded", "version", taxonomy.Version(), "skills", len(taxonomy.Skills()))

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT configuration: %w", err)
	}
	if jwtCfg == nil {
		logger.Warn("JWT_SECRET not set; authenticated endpoints will reject every request")
	}

	rateCfg, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit configuration: %w", err)
	}

	matcher, cleanup, err := buildMatcher(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Port:         cfg.Port,
		TaxonomyPath: cfg.TaxonomyPath,
	}, server.Deps{
		Matcher:        matcher,
		Taxonomies:     store,
		TokenValidator: server.NewJWTValidator(jwtCfg).AsTokenValidator(),
		RateLimiter:    ratelimit.NewLimiter(rateCfg),
		Logger:         logger,
	})

	return srv.Start(ctx)
}

// buildMatcher wires the database, skill cache and event publisher into the
// matching service. Without DATABASE_URL only the stateless endpoints work and
// the returned matcher is nil.
func buildMatcher(ctx context.Context, cfg *config.Config, store *skills.Store, logger *logging.Logger) (server.Matcher, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; job, application and candidate endpoints are disabled")
		return nil, func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	skillCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	publisher, err := events.NewPublisher(cfg.NATSURL, logger)
	if err != nil {
		_ = skillCache.Close()
		database.Close()
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	svc := matching.NewService(database, store, matching.Options{
		Cache:     skillCache,
		CacheTTL:  cfg.CacheTTL(),
		Publisher: publisher,
		Logger:    logger,
		Workers:   cfg.ScoringWorkers,
	})

	cleanup := func() {
		publisher.Close()
		_ = skillCache.Close()
		database.Close()
	}
	return svc, cleanup, nil
}

// buildCache returns a Redis cache when REDIS_URL is set and reachable, and an
// in-process cache otherwise.
func buildCache(ctx context.Context, cfg *config.Config, logger *logging.Logger) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set; using in-memory skill cache")
		return cache.NewMemory(), nil
	}

	rc, err := rediscache.New(rediscache.Options{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("redis unreachable; using in-memory skill cache", "error", err)
		_ = rc.Close()
		return cache.NewMemory(), nil
	}
	return rc, nil
}
