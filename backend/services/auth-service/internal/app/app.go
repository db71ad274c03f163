package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "docportal/backend/libs/redis"
	appconfig "docportal/backend/services/auth-service/internal/config"
	"docportal/backend/services/auth-service/internal/db"
	httpserver "docportal/backend/services/auth-service/internal/http"
	"docportal/backend/services/auth-service/internal/http/handlers"
	"docportal/backend/services/auth-service/internal/http/middleware"
	"docportal/backend/services/auth-service/internal/metrics"
	"docportal/backend/services/auth-service/internal/password"
	redisstore "docportal/backend/services/auth-service/internal/redis"
	"docportal/backend/services/auth-service/internal/repository"
	"docportal/backend/services/auth-service/internal/service"
)

// App wires dependencies for the auth service.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN, cfg.Database.ConnectTimeout, logger)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(sqlDB)
	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := userRepo.EnsureSchema(schemaCtx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(libredis.Options{
		Addr:           cfg.Redis.Addr,
		Password:       cfg.Redis.Password,
		DB:             cfg.Redis.DB,
		ConnectTimeout: cfg.Redis.ConnectTimeout,
	}, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	hasher, err := password.NewBcryptHasher(cfg.Password.BcryptCost)
	if err != nil {
		sqlDB.Close()
		redisClient.Close()
		return nil, err
	}

	registry := metrics.NewRegistry()
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	revocations := redisstore.NewRevocationStore(redisClient)
	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, revocations, registry, logger)

	cookies := handlers.CookieConfig{Secure: cfg.Cookie.Secure, MaxAge: tokenSvc.Lifetime()}
	routes := httpserver.Routes{
		Signup: handlers.NewSignupHandler(authSvc),
		Login:  handlers.NewLoginHandler(authSvc, cookies),
		Logout: handlers.NewLogoutHandler(authSvc, cookies, logger),
		Me:     handlers.NewMeHandler(authSvc),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
		Metrics: registry.Handler(),
	}

	router := httpserver.NewRouter(routes, middleware.AuthMiddleware(authSvc, logger))
	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.MetricsMiddleware(registry, routes.Paths()),
		middleware.LoggingMiddleware(logger),
	)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
