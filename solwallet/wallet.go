// Package solwallet provides the wallet-facing chain utilities around the
// gift card flows: health checks, SOL balances, the devnet faucet, periodic
// balance polling and a persisted activity history.
package solwallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Config - Connection settings for one cluster
type Config struct {
	RPCURL  string
	WSURL   string
	Network string // mainnet, devnet, testnet, localhost
}

// SolWallet - Chain utilities bound to one cluster and one activity database
type SolWallet struct {
	http    *rpc.Client
	ws      *ws.Client
	db      *gorm.DB
	network string
	log     *logrus.Logger
}

// NewSolWallet - Initialize the wallet utilities. The websocket connection is
// optional (nil WSURL skips it); db may be nil when history is not wanted.
func NewSolWallet(ctx context.Context, config Config, db *gorm.DB) (*SolWallet, error) {
	if config.Network == "" {
		config.Network = "mainnet"
	}

	w := &SolWallet{
		http:    rpc.New(config.RPCURL),
		db:      db,
		network: config.Network,
		log:     logrus.StandardLogger(),
	}

	if config.WSURL != "" {
		wss, err := ws.Connect(ctx, config.WSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect websocket: %w", err)
		}
		w.ws = wss
	}
	return w, nil
}

// HealthCheck - Verify the RPC endpoint responds
func (w *SolWallet) HealthCheck(ctx context.Context) error {
	_, err := w.http.GetHealth(ctx)
	return err
}

// GetExplorerURL - Generate explorer URL
func (w *SolWallet) GetExplorerURL(signature string) string {
	baseURL := "https://explorer.solana.com/tx/"
	switch w.network {
	case "devnet":
		return baseURL + signature + "?cluster=devnet"
	case "testnet":
		return baseURL + signature + "?cluster=testnet"
	default:
		return baseURL + signature
	}
}

// GetSolBalance - Wallet balance in lamports
func (w *SolWallet) GetSolBalance(ctx context.Context, address string) (uint64, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %w", err)
	}

	result, err := w.http.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// RequestAirdrop - Devnet/testnet faucet. Refused on mainnet.
func (w *SolWallet) RequestAirdrop(ctx context.Context, address string, lamports uint64) (string, error) {
	if w.network == "mainnet" || w.network == "mainnet-beta" {
		return "", fmt.Errorf("airdrop is not available on mainnet")
	}

	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return "", fmt.Errorf("invalid address: %w", err)
	}

	sig, err := w.http.RequestAirdrop(ctx, account, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("airdrop failed: %w", err)
	}

	w.log.WithFields(logrus.Fields{
		"address":   address,
		"lamports":  lamports,
		"signature": sig.String(),
	}).Info("airdrop requested")

	return sig.String(), nil
}
