// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/config"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/database"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/router"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	setupLogging(cfg)

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Item mirror
	mirror, closeMirror := openMirror(cfg.Database)
	defer closeMirror()

	// Wallet
	networks := wallet.Networks(cfg.Blockchain.NetworkRPC)
	market, ok := networks[wallet.NetworkKey(cfg.Blockchain.Network)]
	if !ok {
		logrus.WithField("network", cfg.Blockchain.Network).Fatal("Unsupported marketplace network")
	}
	connector := newConnector(cfg.Blockchain, networks, market)
	if err := connector.Start(ctx); err != nil {
		logrus.WithError(err).Warn("Wallet reconnect failed")
	}
	defer connector.Close()

	// Marketplace contract
	var gatewayOpts []contract.GatewayOption
	if len(market.RPCURLs) > 0 {
		reader, err := ethclient.DialContext(ctx, market.RPCURLs[0])
		if err != nil {
			logrus.WithError(err).Warn("Read-only RPC unavailable; contract reads need a connected wallet")
		} else {
			defer reader.Close()
			gatewayOpts = append(gatewayOpts, contract.WithReader(reader))
		}
	}
	gateway, err := contract.NewGateway(cfg.Blockchain.ContractAddress, market, connector, gatewayOpts...)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to bind marketplace contract")
	}

	// Marketplace backend
	api := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.RequestTimeout)*time.Second)

	// Identity and profiles
	var verifier services.TokenVerifier
	var profileStore services.ProfileStore = services.NewMemoryProfileStore()
	fb, err := database.NewFirebase(ctx, cfg.Firebase)
	switch {
	case err == nil:
		defer fb.Close()
		verifier = fb.Auth
		profileStore = services.NewFirestoreProfileStore(fb.Firestore)
	case errors.Is(err, database.ErrFirebaseDisabled):
		logrus.Warn("Firebase not configured; sign-in is disabled and profiles are kept in memory")
	default:
		logrus.WithError(err).Fatal("Failed to initialize firebase")
	}

	storage, err := services.NewStorageService(cfg.AWS)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}

	// Services
	flows := services.NewFlowRegistry()
	items := services.NewItemService(api, mirror, gateway)
	profiles := services.NewProfileService(profileStore, api, storage)
	svc := router.Services{
		Auth:      services.NewAuthService(verifier, profiles, cfg.JWT),
		Profiles:  profiles,
		Wallet:    services.NewWalletService(connector, market),
		Items:     items,
		Purchases: services.NewPurchaseService(connector, market, gateway, api, items, flows),
		Receipts:  services.NewReceiptService(connector, market, gateway, api, items, flows),
		Listings:  services.NewListingService(connector, market, gateway, api, items, flows),
		Likes:     services.NewLikeService(api),
		Messages: services.NewMessageService(api,
			time.Duration(cfg.Polling.MessagesInterval)*time.Second,
			time.Duration(cfg.Polling.UnreadInterval)*time.Second),
		Flows: flows,
	}

	limiters := router.NewLimiters(cfg.RateLimit)
	go limiters.General.Run(ctx)
	go limiters.Tx.Run(ctx)

	// Initialize router
	r := router.Initialize(cfg, svc, limiters)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	// Start server in a goroutine
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":     cfg.Server.Port,
			"network":  market.Name,
			"contract": gateway.Address().Hex(),
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
}

// openMirror connects the postgres mirror, falling back to memory when the
// database is disabled or unreachable.
func openMirror(cfg config.DatabaseConfig) (database.ItemMirror, func()) {
	if !cfg.Enabled {
		logrus.Info("Database disabled; mirroring items in memory")
		return database.NewMemoryItemMirror(), func() {}
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Database unavailable; mirroring items in memory")
		return database.NewMemoryItemMirror(), func() {}
	}
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}
	return database.NewGormItemMirror(db), func() { database.Close(db) }
}

func newConnector(cfg config.BlockchainConfig, networks map[wallet.NetworkKey]wallet.Network, market wallet.Network) *wallet.Connector {
	flags := wallet.NewFileFlagStore(cfg.ReconnectFlag)
	log := logrus.WithField("network", market.Name)

	if cfg.PrivateKey == "" {
		return wallet.NewConnector(nil, flags, networks, log)
	}

	known := make([]wallet.Network, 0, len(networks))
	for _, n := range networks {
		if n.Key != market.Key {
			known = append(known, n)
		}
	}

	opts := []wallet.LocalOption{wallet.WithApprover(wallet.RejectAll)}
	if cfg.AutoApprove {
		opts[0] = wallet.WithApprover(wallet.AutoApprove)
	}
	if flags.Connected() {
		opts = append(opts, wallet.WithAuthorized())
	}

	provider, err := wallet.NewLocalProvider(cfg.PrivateKey, market, known, opts...)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load wallet key")
	}
	return wallet.NewConnector(provider, flags, networks, log)
}
