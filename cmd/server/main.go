// Package main runs the check-in HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unifecaf/checkin-api/config"
	"github.com/unifecaf/checkin-api/internal/attendance"
	"github.com/unifecaf/checkin-api/internal/auth"
	"github.com/unifecaf/checkin-api/internal/checkin"
	"github.com/unifecaf/checkin-api/internal/middleware"
	"github.com/unifecaf/checkin-api/internal/sink"
)

const healthServiceName = "checkin-api"

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx := context.Background()
	checkinSink, closeSink, err := sink.Open(ctx, cfg.Sink.Kind, cfg, logger)
	if err != nil {
		logger.Fatal("sink", zap.String("kind", cfg.Sink.Kind), zap.Error(err))
	}
	defer closeSink()

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireMinutes)
	account, err := auth.NewServiceAccount(cfg.ServiceAccount.Username, cfg.ServiceAccount.Password)
	if err != nil {
		logger.Fatal("service account", zap.Error(err))
	}
	if !account.Enabled() {
		logger.Warn("SERVICE_PASS not set, /token rejects every request")
	}
	authHandler := auth.NewHandler(account, jwtService, logger)

	// Check-in
	var forwarder checkin.Forwarder
	switch {
	case !cfg.Forward.Enabled:
		logger.Info("forwarding disabled, inserting directly")
	case cfg.ServiceAccount.Password == "":
		logger.Warn("forwarding enabled without SERVICE_PASS, inserting directly")
	default:
		baseURL := cfg.Forward.BaseURL
		if baseURL == "" {
			baseURL = "http://127.0.0.1:" + cfg.Server.Port
		}
		forwarder = checkin.NewHTTPForwarder(checkin.ForwarderConfig{
			BaseURL:  baseURL,
			Username: cfg.ServiceAccount.Username,
			Password: cfg.ServiceAccount.Password,
			Timeout:  time.Duration(cfg.Forward.TimeoutSec) * time.Second,
			Client:   &http.Client{},
		}, logger)
		logger.Info("forwarding enabled", zap.String("base_url", baseURL))
	}
	checkinHandler := checkin.NewHandler(checkinSink, forwarder, logger)

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatal("trusted proxies", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": cfg.Service.Name, "version": cfg.Service.Version, "status": "online"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"service":   healthServiceName,
		})
	})

	router.POST("/token", authHandler.Token)

	// Same path: bearer requests are peer insertions, the rest is the public form.
	router.POST("/zoom/checkin", middleware.Bearer(jwtService, auth.RoleService,
		checkinHandler.Insert, checkinHandler.Checkin, checkin.LooksPublic))
	router.POST("/checkin", checkinHandler.Checkin)

	if lister, ok := checkinSink.(attendance.Lister); ok {
		attendanceHandler := attendance.NewHandler(lister, logger)
		api := router.Group("/zoom/meetings")
		api.Use(middleware.JWT(jwtService), middleware.RequireRole(auth.RoleService))
		api.GET("/:id/checkins", attendanceHandler.ListCheckins)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("sink", cfg.Sink.Kind))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
