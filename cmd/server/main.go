package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerguide-api/internal/config"
	"github.com/yourusername/careerguide-api/internal/handler"
	"github.com/yourusername/careerguide-api/internal/middleware"
	"github.com/yourusername/careerguide-api/internal/repository"
	"github.com/yourusername/careerguide-api/internal/service"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting CareerGuide API")
	if cfg.GatewayAPIKey == "" {
		log.Warn().Msg("AI_GATEWAY_API_KEY is not set; generation requests will fail")
	}

	// ── Database ─────────────────────────────────────────
	ctx := context.Background()
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid DATABASE_URL")
	}
	if cfg.DatabasePassword != "" {
		poolCfg.ConnConfig.Password = cfg.DatabasePassword
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connected")

	// ── Repositories ─────────────────────────────────────
	profileRepo := repository.NewProfileRepo(pool)
	recRepo := repository.NewRecommendationRepo(pool)

	// ── Services ─────────────────────────────────────────
	gateway := service.NewGatewayClient(cfg.GatewayAPIKey, cfg.GatewayURL, cfg.GatewayModel)
	recService := service.NewRecommendationService(gateway, service.BracketExtractor{}, recRepo)

	// ── Handlers ─────────────────────────────────────────
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register validators")
	}
	profileHandler := handler.NewProfileHandler(profileRepo)
	recHandler := handler.NewRecommendationHandler(recService, profileRepo)

	// ── Middleware ────────────────────────────────────────
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.FirebaseProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(middleware.CORS())

	// Health check (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "careerguide-api",
			"time":    time.Now().UTC(),
		})
	})

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/", authMiddleware.Authenticate())
	{
		// Profile
		api.GET("/profile", profileHandler.GetProfile)
		api.POST("/profile", profileHandler.CreateProfile)
		api.PUT("/profile", profileHandler.UpdateProfile)
		api.DELETE("/profile", profileHandler.DeleteProfile)

		// Recommendations; the web client posts the profile it already holds
		api.POST("/generate-career-recommendations", rateLimiter.Limit(), recHandler.Generate)
		api.GET("/recommendations", recHandler.List)
		api.POST("/recommendations/regenerate", rateLimiter.Limit(), recHandler.Regenerate)
	}

	// ── Server ───────────────────────────────────────────
	// Generation waits on the gateway with no deadline of its own, so the
	// write timeout is the effective upper bound.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("CareerGuide API server running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
