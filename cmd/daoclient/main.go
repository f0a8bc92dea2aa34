// Package main runs the DAO client: it connects the wallet session, wires
// the contract gateway and services, and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmdao/daoclient/internal/app"
	"github.com/filmdao/daoclient/internal/app/httpapi"
	proposalsvc "github.com/filmdao/daoclient/internal/app/services/proposals"
	"github.com/filmdao/daoclient/internal/chain"
	"github.com/filmdao/daoclient/internal/config"
	"github.com/filmdao/daoclient/internal/gateway"
	"github.com/filmdao/daoclient/internal/wallet"
	"github.com/filmdao/daoclient/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default config/daoclient.yaml)")
	flag.Parse()

	log := logger.NewDefault("daoclient")

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.LoadFromPath(*configPath)
		if err != nil {
			log.WithError(err).Error("Failed to load config")
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
		if err := cfg.Validate(); err != nil {
			log.WithError(err).Error("Invalid config")
			os.Exit(1)
		}
	}

	node, err := chain.NewClient(chain.Config{
		RPCURL:  cfg.Node.RPCURL,
		Timeout: cfg.Node.Timeout.Std(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to create ledger client")
		os.Exit(1)
	}

	walletRPC, err := chain.NewClient(chain.Config{
		RPCURL:  cfg.Node.WalletRPCURL,
		Timeout: cfg.Node.Timeout.Std(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to create wallet client")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := wallet.NewSession(wallet.NewRPCProvider(walletRPC), log)
	account, err := session.Connect(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to connect wallet")
		os.Exit(1)
	}
	log.WithField("account", account).Info("Wallet connected")

	signer, err := session.Signer()
	if err != nil {
		log.WithError(err).Error("Failed to obtain signer")
		os.Exit(1)
	}

	gw, err := gateway.NewClient(node, signer, gateway.Config{
		GovernanceAddress: cfg.Contracts.Governance,
		TokenAddress:      cfg.Contracts.Token,
		WaitTimeout:       cfg.Node.WaitTimeout.Std(),
		PollInterval:      cfg.Node.PollInterval.Std(),
	}, log)
	if err != nil {
		log.WithError(err).Error("Failed to create contract gateway")
		os.Exit(1)
	}

	var refreshInterval time.Duration
	if cfg.RefreshSchedule != "" {
		refreshInterval, err = proposalsvc.ParseSchedule(cfg.RefreshSchedule)
		if err != nil {
			log.WithError(err).Error("Invalid refresh schedule")
			os.Exit(1)
		}
	}

	application, err := app.New(session, gw, gw, app.Options{
		ContentGateway:  cfg.Metadata.ContentGateway,
		PublishEndpoint: cfg.Metadata.PublishEndpoint,
		RefreshInterval: refreshInterval,
	}, log)
	if err != nil {
		log.WithError(err).Error("Failed to build application")
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("Failed to start application")
		os.Exit(1)
	}
	log.Info("Application started")

	server := &http.Server{
		Addr:         cfg.HTTP.Listen,
		Handler:      httpapi.NewHandler(application, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTP.Listen).Info("HTTP API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("Application stop failed")
	}
	log.Info("Shutdown complete")
}
