package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-idgen/internal/config"
	idgrpc "github.com/weiawesome/wes-idgen/internal/grpc"
	"github.com/weiawesome/wes-idgen/internal/handler"
	"github.com/weiawesome/wes-idgen/internal/repository"
	"github.com/weiawesome/wes-idgen/internal/service"
	"github.com/weiawesome/wes-idgen/pkg/database"
	"github.com/weiawesome/wes-idgen/pkg/idgen"
	"github.com/weiawesome/wes-idgen/pkg/jwt"
	pkglog "github.com/weiawesome/wes-idgen/pkg/log"
	"github.com/weiawesome/wes-idgen/pkg/middleware"
	"github.com/weiawesome/wes-idgen/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: pkglog.DefaultServiceName,
	})
	logger := pkglog.L()

	logger.Info().Msg("starting idgen-service")

	defaultKind, err := idgen.ParseKind(cfg.IDGen.Kind)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid default kind")
	}

	// Optional issuance ledger
	var ledger repository.IssuanceRepository
	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database.Config)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := database.AutoMigrate(db, &repository.IssuanceModel{}); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate")
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")
		ledger = repository.NewGormIssuanceRepository(db)
	}

	// Optional issuance event bus
	var events pubsub.Publisher
	if cfg.Events.Driver != "" {
		events, err = pubsub.NewPublisher(cfg.Events)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.Events.Driver).Msg("failed to connect event bus")
		}
		defer events.Close()
		logger.Info().Str("driver", cfg.Events.Driver).Msg("event bus connected")
	}

	// Initialize service; the default kind becomes the active dispatcher
	idService, err := service.NewIDService(idgen.Default(), service.Options{
		DefaultKind: defaultKind,
		Configs:     cfg.KindConfigs(),
		MaxBatch:    cfg.IDGen.MaxBatch,
		Ledger:      ledger,
		Events:      events,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create id service")
	}
	logger.Info().Str("dispatcher", idgen.Default().String()).Msg("id generators initialized")

	if db != nil {
		// Ledger rows draw their keys from the service's own snowflake generator.
		snowflake, err := idService.Generator(idgen.KindSnowflake.String())
		if err != nil {
			logger.Fatal().Err(err).Msg("snowflake generator unavailable")
		}
		if err := database.UseIDGenerator(db, snowflake); err != nil {
			logger.Fatal().Err(err).Msg("failed to register id callback")
		}
		defer database.Close(db)
	}

	// Start gRPC server
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	grpcServer, healthServer, err := idgrpc.StartGRPCServer(grpcAddr, idService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start grpc server")
	}

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Ledger routes require an admin token when a secret is configured
	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.JWTSecret != "" {
		tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create jwt manager")
		}
		authMiddleware = middleware.NewAuthMiddleware(tokens)
	}

	handler.NewHandler(idService, authMiddleware).RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logger.Info().Str("addr", addr).Str("default_kind", defaultKind.String()).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down idgen-service")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	grpcServer.GracefulStop()

	logger.Info().Msg("idgen-service stopped")
}
