package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fittogether/server/internal/cache"
	"github.com/fittogether/server/internal/config"
	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/internal/handler"
	"github.com/fittogether/server/internal/kakao"
	"github.com/fittogether/server/internal/repository"
	"github.com/fittogether/server/internal/service"
	"github.com/fittogether/server/pkg/database"
	"github.com/fittogether/server/pkg/jwt"
	pkglog "github.com/fittogether/server/pkg/log"
	"github.com/fittogether/server/pkg/middleware"
	"github.com/fittogether/server/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	// Connect to database using GORM
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	// Auto-migrate
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	var userRepo repository.UserRepository = repository.NewGormUserRepository(db)
	chatRoomRepo := repository.NewGormChatRoomRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	// Optional Redis cache for nickname lookups
	if cfg.Cache.Enabled {
		userCache, err := cache.NewRedisUserCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer userCache.Close()
		userRepo = repository.NewCachedUserRepository(userRepo, userCache, cfg.Cache.TTL)
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis user cache connected")
	}

	// DM event publisher
	publisher, err := pubsub.NewPublisher(cfg.Events)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()
	logger.Info().Str("driver", cfg.Events.Driver).Msg("event publisher ready")

	// Token service
	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager (set JWT_SECRET)")
	}

	// Initialize services
	kakaoClient := kakao.NewClient(kakao.Config{
		ClientID:     cfg.Kakao.ClientID,
		ClientSecret: cfg.Kakao.ClientSecret,
		RedirectURI:  cfg.Kakao.RedirectURI,
		AuthBaseURL:  cfg.Kakao.AuthBaseURL,
		APIBaseURL:   cfg.Kakao.APIBaseURL,
		Timeout:      cfg.Kakao.Timeout,
	})
	userService := service.NewUserService(userRepo, tokens)
	kakaoService := service.NewKakaoService(kakaoClient, userRepo, tokens)
	dmService := service.NewDMService(userRepo, chatRoomRepo, messageRepo, tokens, publisher, service.DMOptions{
		RequireSenderToken: cfg.DM.RequireSenderToken,
	})
	if !cfg.DM.RequireSenderToken {
		logger.Warn().Msg("dm.require_sender_token is off: messages are accepted without a token")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sign-in rate limiting
	var signInLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		go limiter.Run(ctx, time.Minute)
		signInLimit = limiter.Handler()
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(userService, kakaoService, dmService, middleware.NewAuthMiddleware(tokens), signInLimit)

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := handler.NewEngine(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure router")
	}
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Register routes
	httpHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("fittogether server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
