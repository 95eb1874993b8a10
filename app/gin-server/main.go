package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yoockh/mentorloop/config"
	"github.com/yoockh/mentorloop/internal/api/handlers"
	"github.com/yoockh/mentorloop/internal/api/middleware"
	"github.com/yoockh/mentorloop/internal/api/routes"
	"github.com/yoockh/mentorloop/internal/bootstrap"
	"github.com/yoockh/mentorloop/internal/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := config.LoadApp()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Connect(ctx, log); err != nil {
		log.WithError(err).Fatal("store init failed")
	}
	defer bootstrap.Close(context.Background())

	c := bootstrap.Wire(cfg, log)

	if err := c.Sweeper.Start(ctx); err != nil {
		log.WithError(err).Fatal("expiry sweeper failed to start")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(r, routes.Deps{
		Auth: middleware.AuthConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		Availability: handlers.NewAvailabilityHandler(c.AvailabilityService, cfg.Location),
		Session:      handlers.NewSessionHandler(c.SessionService, c.BookingService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}

	select {
	case <-c.Sweeper.Done():
	case <-shutdownCtx.Done():
		log.Warn("expiry sweeper did not stop in time")
	}
}
