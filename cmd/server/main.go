// Package main is the entry point for the osiedle API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"osiedle/internal/domain/auth"
	"osiedle/internal/domain/fees"
	"osiedle/internal/domain/members"
	"osiedle/internal/domain/reports"
	"osiedle/internal/domain/residents"
	v1 "osiedle/internal/infrastructure/http/v1"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting osiedle server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	if err := postgres.EnsureSchema(ctx, txManager,
		getEnv("ADMIN_LOGIN", "admin"),
		mustEnv("ADMIN_PASSWORD"),
	); err != nil {
		log.Fatalw("failed to bootstrap schema", "error", err)
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))

	userRepo := postgres.NewUserRepo(txManager)
	authService := auth.NewService(userRepo, jwtService)

	tableRepo := postgres.NewTableRepo(txManager)
	auditService, err := postgres.NewMemberAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	feeService := fees.NewService(txManager)
	reportService := reports.NewService(tableRepo, txManager)
	residentService := residents.NewService(tableRepo, txManager)
	memberService := members.NewService(tableRepo, auditService, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		FeeService:      feeService,
		ReportService:   reportService,
		ResidentService: residentService,
		MemberService:   memberService,
		TableRepo:       tableRepo,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8000")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// Periodic pool stats for capacity monitoring.
	statsCtx, stopStats := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool.Pool)
			}
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopStats()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
