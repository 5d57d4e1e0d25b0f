package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/ledgercert/internal/auth"
	"github.com/MrJamesThe3rd/ledgercert/internal/certificate"
	certStore "github.com/MrJamesThe3rd/ledgercert/internal/certificate/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/config"
	"github.com/MrJamesThe3rd/ledgercert/internal/counterparty"
	counterpartyStore "github.com/MrJamesThe3rd/ledgercert/internal/counterparty/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/database"
	appHttp "github.com/MrJamesThe3rd/ledgercert/internal/http"
	authMiddleware "github.com/MrJamesThe3rd/ledgercert/internal/http/auth"
	certHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/certificate"
	counterpartyHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/counterparty"
	identityHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/identity"
	importHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/importcsv"
	riskHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/risk"
	txHandler "github.com/MrJamesThe3rd/ledgercert/internal/http/transaction"
	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	identityStore "github.com/MrJamesThe3rd/ledgercert/internal/identity/store"
	"github.com/MrJamesThe3rd/ledgercert/internal/importer"
	"github.com/MrJamesThe3rd/ledgercert/internal/metrics"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/signer"
	"github.com/MrJamesThe3rd/ledgercert/internal/transaction"
	txStore "github.com/MrJamesThe3rd/ledgercert/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	aggregator := risk.NewAggregator(loc)

	var (
		transactionService  = transaction.NewService(txStore.New(db))
		counterpartyService = counterparty.NewService(counterpartyStore.New(db))
		identityService     = identity.NewService(identityStore.New(db))
		importService       = importer.NewService(loc, counterpartyService)
		riskService         = risk.NewService(aggregator, transactionService)
		certifier           = certificate.NewCertifier(
			signer.NewECDSA(signer.NewFileKeyStore(cfg.Signer.KeyPath)),
			certificate.WithDeviceModel(cfg.Device.Model),
			certificate.WithStore(certStore.New(db)),
			certificate.WithRecorder(m),
		)
	)

	// The monitor keeps aggregation metrics and the log current as the
	// history changes; request handlers compute on demand.
	monitor := risk.NewMonitor(aggregator, transactionService, m)
	changes, unsubscribe := transactionService.Subscribe()

	defer unsubscribe()

	go monitor.Run(ctx, changes)

	opts := appHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}

	authService := auth.NewService(cfg.Auth.Secret, cfg.App.Name)
	if authService.Enabled() {
		opts.Authenticate = authMiddleware.Middleware(authService)
	} else {
		slog.Warn("AUTH_JWT_SECRET is not set, API is unauthenticated")
	}

	router := appHttp.New(appHttp.Handlers{
		Transactions:   txHandler.NewHandler(transactionService),
		Import:         importHandler.NewHandler(importService, transactionService),
		Counterparties: counterpartyHandler.NewHandler(counterpartyService),
		Identity:       identityHandler.NewHandler(identityService),
		Risk:           riskHandler.NewHandler(riskService),
		Certificate:    certHandler.NewHandler(certifier, riskService, identityService),
	}, opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "time_zone", loc.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
