package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"multkits-catalog/internal/config"
	custommiddleware "multkits-catalog/internal/middleware"
	"multkits-catalog/internal/repository"
	"multkits-catalog/internal/service"
	"multkits-catalog/internal/storage"
	"multkits-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, blobs storage.BlobStore) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.CORSAllowedOrigins, cfg.Server.Env != "production"))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(categoryRepo, productRepo, blobs, logger)
	adminService := service.NewAdminService(cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.SessionExpiry)
	quoteBuilder := service.NewQuoteBuilder(cfg.WhatsApp.Phone)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, quoteBuilder, cfg.Storage.MaxUploadSize, logger)
	adminHandler := transport.NewAdminHandler(adminService, logger)

	// Session middleware for admin routes
	authMiddleware := custommiddleware.AuthMiddleware(cfg.Admin.JWTSecret, logger)
	adminOnly := custommiddleware.RequireAdmin(logger)

	// The shared password is the only login credential, so the login route
	// is rate limited per client IP.
	loginRateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "login_rate_limit",
	}, logger)

	// Register routes
	catalogHandler.RegisterRoutes(router, authMiddleware, adminOnly)
	adminHandler.RegisterRoutes(router, loginRateLimiter)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
