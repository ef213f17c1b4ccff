package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "casedesk/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"casedesk/internal/audit"
	"casedesk/internal/auth"
	"casedesk/internal/cache"
	"casedesk/internal/config"
	"casedesk/internal/db"
	"casedesk/internal/fieldcipher"
	"casedesk/internal/handler"
	"casedesk/internal/logger"
	"casedesk/internal/repository"
	"casedesk/internal/router"
	"casedesk/internal/service"
)

const serviceName = "casedesk"

// @title Case Desk API
// @version 1.0
// @description Role-based support case ticketing: agents file cases, technicians resolve them, admins audit and export.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The x-auth-token header is accepted as well.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logr.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, logr); err != nil {
		logr.Fatal("database migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logr)
	defer cacheClient.Close()

	cardCipher, err := fieldcipher.New(cfg.CardSecret)
	if err != nil {
		logr.Fatal("card cipher init", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	caseRepo := repository.NewCaseRepository(gormDB)
	caseLogRepo := repository.NewCaseLogRepository(gormDB)

	// The recorder outlives ctx so entries from requests still draining in
	// e.Shutdown are written.
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorder := audit.NewRecorder(caseLogRepo, logr)
	recorderDone := make(chan struct{})
	go func() {
		recorder.Run(recorderCtx)
		close(recorderDone)
	}()

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, logr)
	caseService := service.NewCaseService(caseRepo, caseLogRepo, cardCipher, recorder, logr)
	exportService := service.NewExportService(caseRepo, cardCipher)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"mysql": db.Pinger{DB: gormDB},
		"redis": cacheClient,
	})
	authHandler := handler.NewAuthHandler(authService, logr)
	caseHandler := handler.NewCaseHandler(caseService, logr)
	adminHandler := handler.NewAdminHandler(caseService, logr)
	userHandler := handler.NewUserHandler(userService, logr)
	exportHandler := handler.NewExportHandler(exportService, logr)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(
		e,
		cfg,
		logr,
		jwtService,
		tokenStore,
		healthHandler,
		authHandler,
		caseHandler,
		adminHandler,
		userHandler,
		exportHandler,
	)

	logr.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
	stopRecorder()
	<-recorderDone
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
