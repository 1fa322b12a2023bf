package main

import (
	"context"
	"net/http"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"giftcards/config"
	"giftcards/giftprogram"
	"giftcards/solwallet"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(os.Getenv("GIFTCARDS_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("failed to open activity database")
	}
	if err := solwallet.MigrateActivityDB(db); err != nil {
		log.WithError(err).Fatal("failed to migrate activity database")
	}

	ctx := context.Background()

	wallet, err := solwallet.NewSolWallet(ctx, solwallet.Config{
		RPCURL:  cfg.RPCURL,
		WSURL:   cfg.WSURL,
		Network: cfg.Network,
	}, db)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize wallet utilities")
	}
	if err := wallet.HealthCheck(ctx); err != nil {
		log.WithError(err).Fatal("solana health check failed")
	}

	client, err := giftprogram.NewClientWithProgramID(cfg.RPCURL, cfg.Network, cfg.ProgramID)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize gift card client")
	}
	if err := client.ConnectWS(ctx, cfg.WSURL); err != nil {
		// Confirmation falls back to status polling without a websocket.
		log.WithError(err).Warn("websocket unavailable")
	}

	// Every transaction the client submits lands in the activity history.
	client.SetActivityRecorder(wallet)

	// Gift card routes
	http.HandleFunc("/api/v1/giftcard/create", client.HandleCreateGiftCard)
	http.HandleFunc("/api/v1/giftcard/redeem", client.HandleRedeem)
	http.HandleFunc("/api/v1/giftcard/refund", client.HandleRefund)
	http.HandleFunc("/api/v1/giftcard/rules", client.HandleSetRules)
	http.HandleFunc("/api/v1/giftcard/delete", client.HandleDelete)
	http.HandleFunc("/api/v1/giftcard/send", client.HandleSendTransaction)
	http.HandleFunc("/api/v1/giftcard/list", client.HandleListGiftCards)
	http.HandleFunc("/api/v1/giftcard/get", client.HandleGetGiftCard)
	http.HandleFunc("/api/v1/giftcard/status", client.HandleGetTransactionStatus)
	http.HandleFunc("/api/v1/tokens", client.HandleListTokens)

	// Wallet routes
	http.HandleFunc("/api/v1/wallet/faucet", wallet.HandleFaucet)
	http.HandleFunc("/api/v1/wallet/balance", wallet.HandleGetBalance)
	http.HandleFunc("/api/v1/wallet/history", wallet.HandleGetActivityHistory)

	// Health endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	log.WithFields(logrus.Fields{
		"network":    cfg.Network,
		"rpc_url":    cfg.RPCURL,
		"program_id": cfg.ProgramID,
		"port":       cfg.Port,
	}).Info("gift card service starting")

	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
