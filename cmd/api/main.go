package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/damilare-ade/vendor-ledger/internal/config"
	"github.com/damilare-ade/vendor-ledger/internal/handler"
	"github.com/damilare-ade/vendor-ledger/internal/logging"
	"github.com/damilare-ade/vendor-ledger/internal/middleware"
	"github.com/damilare-ade/vendor-ledger/internal/repository"
	"github.com/damilare-ade/vendor-ledger/internal/service"
	"github.com/damilare-ade/vendor-ledger/internal/service/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("vendor-ledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	vendorRepo := repository.NewVendorRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	ledgerSvc := ledger.NewService(vendorRepo, transactionRepo, db)
	mediaClient := service.NewMediaClient(cfg.MediaServiceURL)

	vendorHandler := handler.NewVendorHandler(ledgerSvc, mediaClient)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc)
	adminHandler := handler.NewAdminHandler(ledgerSvc)
	authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryH)*time.Hour)
	healthHandler := handler.NewHealthHandler(db)

	authed := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(idempotencyRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/vendors", authed(http.HandlerFunc(vendorHandler.Create)))
	mux.Handle("GET /api/v1/vendors", authed(http.HandlerFunc(vendorHandler.List)))
	mux.Handle("GET /api/v1/vendors/{id}", authed(http.HandlerFunc(vendorHandler.Get)))
	mux.Handle("PUT /api/v1/vendors/{id}", authed(http.HandlerFunc(vendorHandler.Update)))
	mux.Handle("DELETE /api/v1/vendors/{id}", authed(http.HandlerFunc(vendorHandler.Delete)))

	mux.Handle("POST /api/v1/vendors/{vendorId}/transactions",
		authed(idempotent(http.HandlerFunc(transactionHandler.Add))))
	mux.Handle("PUT /api/v1/transactions/{transactionId}",
		authed(http.HandlerFunc(transactionHandler.Update)))
	mux.Handle("DELETE /api/v1/vendors/{vendorId}/transactions/{transactionId}",
		authed(http.HandlerFunc(transactionHandler.Delete)))

	mux.Handle("GET /api/v1/admin/ledger-audit", authed(http.HandlerFunc(adminHandler.LedgerAudit)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	if cfg.AuditIntervalS > 0 {
		go ledgerSvc.RunAuditor(ctx, time.Duration(cfg.AuditIntervalS)*time.Second)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var lastErr error
	for i := range 30 {
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}
