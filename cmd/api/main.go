package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/librarylab/library-backend/internal/api"
	"github.com/librarylab/library-backend/internal/auth"
	"github.com/librarylab/library-backend/internal/config"
	"github.com/librarylab/library-backend/internal/db"
	"github.com/librarylab/library-backend/internal/logger"
	"github.com/librarylab/library-backend/internal/metrics"
	"github.com/librarylab/library-backend/internal/repository/postgres"
	"github.com/librarylab/library-backend/internal/services"
	"github.com/librarylab/library-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpire)

	userSvc := services.NewUserService(repos.Users, tm)
	bookSvc := services.NewBookService(repos.Books, repos.AuditLogs, wp)
	borrowerSvc := services.NewBorrowerService(repos.Borrowers, repos.AuditLogs, wp)
	loanSvc := services.NewLoanService(repos.Loans, repos.AuditLogs, wp, cfg.LoanPeriod, time.Now)

	if err := userSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("admin bootstrap", "err", err)
		os.Exit(1)
	}

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:         cfg,
		TM:          tm,
		UserSvc:     userSvc,
		BookSvc:     bookSvc,
		BorrowerSvc: borrowerSvc,
		LoanSvc:     loanSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
