package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/MinjunBark/ForRev/internal/auth"
	"github.com/MinjunBark/ForRev/internal/auth/auth_api"
	"github.com/MinjunBark/ForRev/internal/config"
	"github.com/MinjunBark/ForRev/internal/database/migrations"
	"github.com/MinjunBark/ForRev/internal/events"
	events_db "github.com/MinjunBark/ForRev/internal/events/db"
	"github.com/MinjunBark/ForRev/internal/events/event_api"
	"github.com/MinjunBark/ForRev/internal/logger"
	"github.com/MinjunBark/ForRev/internal/users"
	users_db "github.com/MinjunBark/ForRev/internal/users/db"
	"github.com/MinjunBark/ForRev/internal/users/user_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.PingContext(ctx)
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}
	logger.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

// originHosts reduces full origin URLs to the host:port form the CSRF
// middleware matches Origin headers against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}

func requestLogger(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.LogRequest(r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting ForRev API initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, cfg.Database.MigrationsDir)
		if err := runner.Up(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		if version, err := runner.Version(); err == nil {
			logger.Info("DATABASE", fmt.Sprintf("Schema at version %d", version))
		}
	}

	userDB := &users_db.DB{Bun: bunDB}
	eventDB := &events_db.DB{Bun: bunDB}

	sessions := auth.NewSessionStore(redisClient, cfg.Session.TTL)
	authService := auth.NewAuthService(userDB)
	eventService := events.NewEventService(eventDB)
	userService := users.NewUserService(userDB)

	authHandler := &auth_api.Handler{
		AuthService:  authService,
		Sessions:     sessions,
		Logger:       logger,
		CookieName:   cfg.Session.CookieName,
		CookieTTL:    cfg.Session.TTL,
		CookieSecure: cfg.Session.Secure,
	}
	eventHandler := &event_api.Handler{
		EventService: eventService,
		Logger:       logger,
	}
	userHandler := &user_api.Handler{
		UserService: userService,
		Logger:      logger,
	}

	sessionMiddleware := &auth.SessionMiddleware{
		Sessions:   sessions,
		Users:      userDB,
		CookieName: cfg.Session.CookieName,
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-CSRF-Token"},
		AllowCredentials: true,
	}))
	r.Use(auth.CSRFProtection([]byte(cfg.CSRF.AuthKey), cfg.CSRF.Secure, originHosts(cfg.CORS.AllowedOrigins)))
	r.Use(sessionMiddleware.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Get("/csrf", authHandler.CSRFToken)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/user", authHandler.CurrentUser)
	})
	logger.Info("ROUTER", "Auth routes registered under /auth")

	eventHandler.RegisterRoutes(r)
	logger.Info("ROUTER", "Event routes registered under /events and /user-events")

	userHandler.RegisterRoutes(r)
	logger.Info("ROUTER", "Identity administration routes registered under /users and /groups")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("ForRev API running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		logger.Info("HTTP", "ForRev API shutdown complete")
	}
}
