package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kestrelhq/kestrel/internal/command"
	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/database"
	"github.com/kestrelhq/kestrel/internal/events"
	"github.com/kestrelhq/kestrel/internal/handler"
	"github.com/kestrelhq/kestrel/internal/metrics"
	"github.com/kestrelhq/kestrel/internal/middleware"
	"github.com/kestrelhq/kestrel/internal/query"
	redisclient "github.com/kestrelhq/kestrel/internal/redis"
	"github.com/kestrelhq/kestrel/internal/repository"
	"github.com/kestrelhq/kestrel/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	publisher := events.NewPublisher(rdb.Client)
	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTokenTTL)

	userWrite := repository.NewUserWriteRepository(db)
	userRead := repository.NewUserReadRepository(db, rdb.Client)
	orgWrite := repository.NewOrganizationWriteRepository(db)
	orgRead := repository.NewOrganizationReadRepository(db, rdb.Client)
	typeWrite := repository.NewUserTypeWriteRepository(db)
	typeRead := repository.NewUserTypeReadRepository(db, rdb.Client)
	sessions := repository.NewSessionRepository(db, rdb.Client, cfg.SessionCacheTTL)

	orgCommands := command.NewOrganizationCommandService(orgWrite, orgRead, typeWrite, sessions, publisher)
	userCommands := command.NewUserCommandService(userWrite, userRead, typeWrite, orgWrite, sessions, publisher)
	typeCommands := command.NewUserTypeCommandService(typeWrite, typeRead, userWrite)
	authCommands := command.NewAuthCommandService(
		userWrite, userRead, orgWrite, orgCommands, typeWrite,
		sessions, tokens, publisher, cfg.RefreshTokenTTL, cfg.ResetTokenTTL,
	)

	userQueries := query.NewUserQueryService(userRead)
	orgQueries := query.NewOrganizationQueryService(orgRead)
	typeQueries := query.NewUserTypeQueryService(typeRead)
	authQueries := query.NewAuthQueryService(userRead, sessions)

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authCommands, authQueries),
		Users:         handler.NewUserHandler(userCommands, userQueries),
		Organizations: handler.NewOrganizationHandler(orgCommands, orgQueries),
		UserTypes:     handler.NewUserTypeHandler(typeCommands, typeQueries),
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	authLimiter.StartCleanup(10*time.Minute, time.Hour)

	handler.RegisterRoutes(router, handlers, middleware.Auth(tokens, sessions), authLimiter.Handler())

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "up"
		if err := db.Ping(); err != nil {
			dbStatus = "down"
		}
		redisStatus := "up"
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "down"
		}

		status := http.StatusOK
		overall := "ok"
		if dbStatus != "up" || redisStatus != "up" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		c.JSON(status, gin.H{
			"status":   overall,
			"database": dbStatus,
			"redis":    redisStatus,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	purge := cron.New()
	if _, err := purge.AddFunc(cfg.SessionPurgeSchedule, func() {
		count, err := sessions.DeleteExpired(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("session purge failed")
			return
		}
		metrics.RecordSessionsPurged(count)
		if count > 0 {
			log.Info().Int64("count", count).Msg("purged expired sessions")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SessionPurgeSchedule).Msg("invalid session purge schedule")
	}
	purge.Start()
	defer purge.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("api server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
