package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/mvaleed/bibliotheca/internal/config"
	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/event"
	"github.com/mvaleed/bibliotheca/internal/seed"
	"github.com/mvaleed/bibliotheca/internal/service"
	"github.com/mvaleed/bibliotheca/internal/storage/memory"
	grpcTransport "github.com/mvaleed/bibliotheca/internal/transport/grpc"
	httpTransport "github.com/mvaleed/bibliotheca/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Run the application
	if err := run(cfg, logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize event publisher
	publisher := event.NewLoggingPublisher(logger)
	defer publisher.Close()

	catalog := memory.NewCatalog()

	catalogService, err := service.NewCatalogService(catalog, publisher)
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}
	loanService, err := service.NewLoanService(catalog, publisher)
	if err != nil {
		return fmt.Errorf("loan service: %w", err)
	}

	books, err := loadSeed(cfg)
	if err != nil {
		return err
	}
	n, err := catalogService.Import(ctx, books)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog seeded", "books", n, "source", seedSource(cfg))

	errChan := make(chan error, 2)

	httpServer := httpTransport.NewServer(cfg, catalogService, loanService, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logger.Info("starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	// Start gRPC server
	grpcServer := grpcTransport.NewServer(cfg, catalogService, loanService, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.GRPCPort)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen: %w", err)
			return
		}
		logger.Info("starting gRPC server", "addr", addr)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	// Overdue sweep routine
	go func() {
		ticker := time.NewTicker(cfg.OverdueScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepOverdue(ctx, loanService, logger)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	grpcServer.GracefulStop()

	cancel()

	logger.Info("shutdown complete")
	return nil
}

func loadSeed(cfg *config.Config) ([]*domain.Book, error) {
	if cfg.SeedFile == "" {
		return seed.Default(), nil
	}
	books, err := seed.LoadFile(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed %s: %w", cfg.SeedFile, err)
	}
	return books, nil
}

func seedSource(cfg *config.Config) string {
	if cfg.SeedFile == "" {
		return "builtin"
	}
	return cfg.SeedFile
}

// sweepOverdue logs every loan that is past its due date.
func sweepOverdue(ctx context.Context, loans *service.LoanService, logger *slog.Logger) {
	today := loans.Today()
	overdue := loans.OverdueLoans(today)
	for _, b := range overdue {
		loan, _ := b.Loan()
		logger.WarnContext(ctx, "loan overdue",
			"book_id", b.Identifier(),
			"title", b.Title(),
			"borrower", loan.Borrower,
			"due_date", loan.DueDate.Format(domain.DateLayout),
			"days_late", int(today.Sub(loan.DueDate).Hours()/24),
		)
	}
	logger.InfoContext(ctx, "overdue sweep finished", "overdue", len(overdue))
}
