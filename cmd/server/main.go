/*
Package main is the entry point of the user settings service.

It loads configuration, initializes logging, connects to PostgreSQL (applying
migrations) and S3-compatible storage, starts the settings change hub and the
HTTP server, and shuts everything down gracefully on SIGINT or SIGTERM.
*/
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

	"golang.org/x/time/rate"

	"usersettings/internal/app/db"
	"usersettings/internal/app/notify"
	"usersettings/internal/app/storage"
	"usersettings/internal/configs"
	"usersettings/internal/handler"
	"usersettings/internal/pkg/limiter"
	"usersettings/internal/pkg/logx"
)

const (
	authRate  = 1
	authBurst = 5
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Float64("avatar_upload_rate", cfg.AvatarUploadRate).
		Int("avatar_upload_burst", cfg.AvatarUploadBurst).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	storageService, err := storage.NewStorageService(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize storage service")
	}

	avatarLimiter := limiter.New(rate.Limit(cfg.AvatarUploadRate), cfg.AvatarUploadBurst, nil)
	defer avatarLimiter.Stop()

	authLimiter := limiter.New(rate.Limit(authRate), authBurst, nil)
	defer authLimiter.Stop()

	hub := notify.NewHub()

	deps := &handler.AppDeps{
		Config:         cfg,
		DB:             db.NewStore(pool),
		StorageService: storageService,
		Hub:            hub,
		AvatarLimiter:  avatarLimiter,
		AuthLimiter:    authLimiter,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler.Router(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("User settings service starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	// hijacked stream connections are not tracked by Shutdown
	hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	deps.Wait()

	logx.Info("Server gracefully stopped.")
}
