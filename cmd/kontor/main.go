package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kontor/internal/config"
	filesgoogle "kontor/internal/files/google"
	filesmem "kontor/internal/files/memory"
	apphttp "kontor/internal/http"
	"kontor/internal/ledger"
	ledgergoogle "kontor/internal/ledger/google"
	ledgermem "kontor/internal/ledger/memory"
	"kontor/internal/pdf"
	"kontor/internal/services"

	"github.com/joho/godotenv"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		ledgerStore ledger.Store
		docStore    apphttp.DocumentStore
	)

	switch cfg.DataBackend {
	case "sheets":
		creds, err := cfg.Credentials()
		if err != nil {
			logger.Error("Failed to load Google credentials", "error", err)
			os.Exit(1)
		}
		sheetClient, err := ledgergoogle.New(ctx, creds, cfg.SpreadsheetID, ledgergoogle.Ranges{
			Clients:         cfg.ClientsRange,
			Invoices:        cfg.InvoicesRange,
			InvoiceNumbers:  cfg.InvoiceNumbersRange,
			Expenses:        cfg.ExpensesRange,
			Contacts:        cfg.ContactsRange,
			TrackedInvoices: cfg.TrackedRange,
		})
		if err != nil {
			logger.Error("Failed to initialize Sheets ledger", "error", err)
			os.Exit(1)
		}
		driveClient, err := filesgoogle.New(ctx, creds)
		if err != nil {
			logger.Error("Failed to initialize Drive client", "error", err)
			os.Exit(1)
		}
		ledgerStore, docStore = sheetClient, driveClient
		logger.Info("Initialized Google backend", "spreadsheet_id", cfg.SpreadsheetID)
	default:
		ledgerStore, docStore = ledgermem.New(), filesmem.New()
		logger.Info("Initialized memory backend")
	}

	renderer := &pdf.Renderer{
		Sender: pdf.Sender{
			Name:    cfg.SenderName,
			Street:  cfg.SenderStreet,
			City:    cfg.SenderCity,
			UstID:   cfg.SenderUstID,
			Bank:    cfg.SenderBank,
			IBAN:    cfg.SenderIBAN,
			Email:   cfg.SenderEmail,
			Website: cfg.SenderWebsite,
			Phone:   cfg.SenderPhone,
		},
		Tax: pdf.TaxConfig{Rate: cfg.TaxRate, Kleinunternehmer: cfg.Kleinunternehmer},
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:             ":" + cfg.Port,
		Composer:         services.NewInvoiceComposer(ledgerStore, renderer, docStore, cfg.InvoiceFolderID, cfg.UpstreamTimeout),
		Allocator:        services.NewNumberAllocator(ledgerStore, ledgerStore),
		Registry:         services.NewRegistry(ledgerStore, ledgerStore, services.TaxRate{Rate: cfg.TaxRate, Kleinunternehmer: cfg.Kleinunternehmer}),
		Summary:          services.NewSummaryService(ledgerStore, ledgerStore),
		Clients:          ledgerStore,
		Invoices:         ledgerStore,
		Expenses:         ledgerStore,
		Documents:        docStore,
		DocumentFolderID: cfg.DocumentFolderID,
		AuthSecret:       []byte(cfg.AuthSecret),
		Password:         cfg.DashboardPassword,
		UpstreamTimeout:  cfg.UpstreamTimeout,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// Graceful shutdown handling
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting kontor server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-runCtx.Done()
	logger.Info("Server stopped gracefully")
}
