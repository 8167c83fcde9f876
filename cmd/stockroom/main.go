// cmd/stockroom/main.go
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/auth"
	"stockroom/internal/config"
	"stockroom/internal/storage"
	"stockroom/internal/telemetry"
)

func main() {
	logger := log.New(os.Stdout, "[stockroom] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Printf("Failed to flush traces: %v", err)
		}
	}()

	db, err := storage.Open(ctx, cfg.Dialect, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := storage.EnsureSchema(ctx, db); err != nil {
		logger.Fatalf("Failed to create schema: %v", err)
	}

	created, err := auth.SeedAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Fatalf("Failed to seed admin account: %v", err)
	}
	if created {
		logger.Printf("Created admin account %q", cfg.AdminUsername)
	}

	secret := cfg.TokenSecret
	if secret == "" {
		secret = randomSecret()
		logger.Printf("TOKEN_SECRET not set; sessions will not survive a restart")
	}

	r := newRouter(db, cfg, secret, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Starting stockroom on port %s (%s)", cfg.Port, cfg.Dialect)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate token secret: %v", err)
	}
	return hex.EncodeToString(b)
}
