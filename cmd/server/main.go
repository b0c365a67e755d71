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
	"go.uber.org/zap"

	"github.com/carteiralab/carteira-backend/internal/adapter/httpapi"
	"github.com/carteiralab/carteira-backend/internal/adapter/repository/postgres"
	"github.com/carteiralab/carteira-backend/internal/usecase/ledger"
	"github.com/carteiralab/carteira-backend/internal/usecase/portfolio"
)

const (
	defaultAPIToken = "dev-token"
	defaultHTTPAddr = ":3000"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 1. Setup Database
	db, err := postgres.NewDB(buildConnString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	positionRepo := postgres.NewPositionRepository(db)
	tradeRepo := postgres.NewTradeRepository(db)

	// 3. Initialize Services (Use Cases)
	ledgerService := ledger.NewLedgerService(positionRepo, tradeRepo, logger)
	portfolioService := portfolio.NewPortfolioService(positionRepo)

	// 4. Start HTTP Server
	apiToken := os.Getenv("API_TOKEN")
	if apiToken == "" {
		apiToken = defaultAPIToken
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = defaultHTTPAddr
	}

	apiServer := httpapi.NewServer(ledgerService, portfolioService, apiToken, logger)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, logger)
}

// buildConnString assembles the Postgres connection string from DB_CONN_STR,
// or from the individual DB_* variables when the explicit string is missing
// (Docker friendly).
func buildConnString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "carteira"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully drains the server
func waitForShutdown(server *http.Server, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("http server stopped")
}
