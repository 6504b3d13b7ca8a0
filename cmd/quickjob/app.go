package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/db"
	"github.com/quickjob/quickjob/internal/handlers"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/repository/postgres"
	"github.com/quickjob/quickjob/internal/service/auth"
	"github.com/quickjob/quickjob/internal/service/escrow"
	"github.com/quickjob/quickjob/internal/service/job"
	"github.com/quickjob/quickjob/internal/service/proposal"
	"github.com/quickjob/quickjob/internal/service/wallet"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context) (*ServerApp, error) {
	// Gather config: defaults, then .env, then environment, then flags
	c := NewConfig()
	if err := c.LoadDotEnv(os.Getwd); err != nil {
		return nil, fmt.Errorf("error while reading '.env' file. Err: %w", err)
	}
	c.LoadEnv(os.Getenv)
	if err := c.ParseFlags(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("error while parsing flags. Err: %w", err)
	}

	return newServerApp(ctx, c)
}

func newServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	platformWalletID, err := uuid.Parse(c.PlatformWalletID)
	if err != nil {
		return nil, fmt.Errorf("platform wallet id must be a valid uuid. Err: %w", err)
	}

	feeRate, err := decimal.NewFromString(c.FeeRate)
	if err != nil {
		return nil, fmt.Errorf("fee rate must be a valid decimal. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	authService, err := auth.NewService(auth.Config{SecretKey: c.SecretKey}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	walletService := wallet.NewService(storage)
	jobService := job.NewService(storage)
	proposalService := proposal.NewService(storage)
	escrowService, err := escrow.NewService(
		escrow.Config{PlatformWalletID: platformWalletID, FeeRate: feeRate},
		storage,
		walletService,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating escrow service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		authService,
		walletService,
		jobService,
		proposalService,
		escrowService,
		log,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
