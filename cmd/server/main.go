package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/persona-fest/server-go/internal/config"
	"github.com/persona-fest/server-go/internal/database"
	"github.com/persona-fest/server-go/internal/handler"
	"github.com/persona-fest/server-go/internal/middleware"
	"github.com/persona-fest/server-go/internal/redis"
	"github.com/persona-fest/server-go/internal/repository"
	"github.com/persona-fest/server-go/internal/service"
	"github.com/persona-fest/server-go/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	connectCtx, connectCancel := context.WithTimeout(context.Background(), config.MongoConnectTimeout)
	db, err := database.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), config.MongoConnectTimeout)
		defer closeCancel()
		db.Close(closeCtx)
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), config.MongoPingTimeout)
	if err := db.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	pingCancel()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), config.MongoConnectTimeout)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	indexCancel()
	log.Info().Str("database", cfg.MongoDatabase).Msg("mongodb connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	accountRepo := repository.NewAccountRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)

	tokenManager := token.NewManager(cfg.JWTSecret)
	authService := service.NewAuthService(accountRepo, tokenManager, cfg.SuperAdminEmail)
	registrationService := service.NewRegistrationService(registrationRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	loginLimiter := middleware.NewLoginRateLimiter(redisClient)

	authHandler := handler.NewAuthHandler(authService)
	registrationHandler := handler.NewRegistrationHandler(registrationService, authService)
	staticHandler := handler.NewStaticHandler(cfg.StaticDir)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(middleware.BodyLimit(0))
	r.Use(middleware.SecurityHeaders(isProduction))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Post("/register-event", registrationHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Get("/profile", authHandler.Profile)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Use(authMiddleware.RequireAdmin)
			r.Get("/registrations", registrationHandler.List)
			r.Get("/users", authHandler.ListUsers)
			r.Get("/stats", registrationHandler.Stats)
		})
	})

	r.NotFound(staticHandler.ServeHTTP)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
