package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"erdiagram/internal/config"
	"erdiagram/internal/database"
	"erdiagram/internal/handlers"
	"erdiagram/internal/middlewares"
	"erdiagram/internal/repositories"
	"erdiagram/internal/responses"
	"erdiagram/internal/routes"
	"erdiagram/internal/services"
)

// Server is the diagram API with the connections it owns.
type Server struct {
	*http.Server
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := database.EnsureDatabaseExists(ctx, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to ensure database: %w", err)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection and fail fast with a clear message
	{
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("connected to Redis", "addr", cfg.RedisAddr)
	}

	// Dependency injection
	projectRepo := repositories.NewProjectRepository(pool)
	diagramRepo := repositories.NewDiagramRepository(pool)
	entityRepo := repositories.NewEntityRepository(pool)
	attributeRepo := repositories.NewAttributeRepository(pool)
	relationshipRepo := repositories.NewRelationshipRepository(pool)
	graphRepo := repositories.NewGraphRepository(pool)
	schemaCache := repositories.NewSchemaCacheRepository(rdb, cfg.SchemaCacheTTL)

	generator := services.NewGeneratorService(cfg.SchemaGeneratorURL, cfg.GeneratorTimeout)

	h := routes.Handlers{
		Project:      handlers.NewProjectHandler(services.NewProjectService(projectRepo, diagramRepo)),
		Diagram:      handlers.NewDiagramHandler(services.NewDiagramService(projectRepo, diagramRepo, graphRepo)),
		Schema:       handlers.NewSchemaHandler(services.NewSchemaService(projectRepo, diagramRepo, graphRepo, schemaCache, generator)),
		Entity:       handlers.NewEntityHandler(services.NewEntityService(entityRepo, attributeRepo, diagramRepo)),
		Attribute:    handlers.NewAttributeHandler(services.NewAttributeService(attributeRepo, entityRepo, diagramRepo)),
		Relationship: handlers.NewRelationshipHandler(services.NewRelationshipService(relationshipRepo, entityRepo, diagramRepo)),
	}

	// Create and configure the HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(cfg, logger, h),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{Server: srv, pool: pool, rdb: rdb}, nil
}

// NewRouter builds the gin engine with logging, metrics, recovery and CORS
// in front of the API routes.
func NewRouter(cfg *config.Config, logger *slog.Logger, h routes.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		middlewares.RequestLogger(logger),
		middlewares.Metrics(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			responses.Abort(c, http.StatusInternalServerError, fmt.Errorf("panic: %v", recovered), "Internal server error")
		}),
	)

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(cfg.CORSOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	routes.RegisterRoutes(router, h, cfg.APIToken, []byte(cfg.JWTSecret))
	return router
}

// Close releases the database pool and the Redis client.
func (s *Server) Close() {
	s.pool.Close()
	if err := s.rdb.Close(); err != nil {
		slog.Warn("failed to close Redis client", "error", err)
	}
}
