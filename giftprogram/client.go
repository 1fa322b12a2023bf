package giftprogram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"
)

// Client - Client for the on-chain gift card program
type Client struct {
	rpcClient *rpc.Client
	wsClient  *ws.Client
	programID solana.PublicKey
	network   string // "devnet", "testnet", "mainnet", "localhost"
	recorder  ActivityRecorder
	log       *logrus.Logger
}

// NewClient - Create new gift card program client. The websocket connection
// is optional; without it transactions are confirmed by polling.
func NewClient(rpcURL string, network string) (*Client, error) {
	return NewClientWithProgramID(rpcURL, network, GiftCardProgramID)
}

// NewClientWithProgramID - Create a client against a non-default deployment
func NewClientWithProgramID(rpcURL, network, programID string) (*Client, error) {
	programPubkey, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}

	return &Client{
		rpcClient: rpc.New(rpcURL),
		programID: programPubkey,
		network:   network,
		log:       logrus.StandardLogger(),
	}, nil
}

// ConnectWS - Attach a websocket connection for send-and-confirm
func (c *Client) ConnectWS(ctx context.Context, wsURL string) error {
	wsClient, err := ws.Connect(ctx, wsURL)
	if err != nil {
		return fmt.Errorf("failed to connect websocket: %w", err)
	}
	c.wsClient = wsClient
	return nil
}

// GetRPC - Get RPC client
func (c *Client) GetRPC() *rpc.Client {
	return c.rpcClient
}

// GetProgramID - Get program ID
func (c *Client) GetProgramID() solana.PublicKey {
	return c.programID
}

// DeriveGiftCardPDA - Derive the gift card PDA under this client's program
func (c *Client) DeriveGiftCardPDA(owner solana.PublicKey, cardID uint64) (solana.PublicKey, uint8, error) {
	return DeriveGiftCardPDA(c.programID, owner, cardID)
}

// GetMintDecimals - Fetch the mint's decimal precision. When the mint
// account cannot be read, a known registry entry wins over
// DefaultTokenDecimals; either fallback is logged, never silent.
func (c *Client) GetMintDecimals(ctx context.Context, mint solana.PublicKey) uint8 {
	var mintAccount token.Mint
	if err := c.rpcClient.GetAccountDataInto(ctx, mint, &mintAccount); err != nil {
		if known, ok := GetTokenByMint(mint.String()); ok {
			c.log.WithError(err).WithField("mint", mint.String()).
				Warnf("could not fetch mint decimals, using registry value %d", known.Decimals)
			return known.Decimals
		}
		c.log.WithError(err).WithField("mint", mint.String()).
			Warnf("could not fetch mint decimals, using default %d", DefaultTokenDecimals)
		return DefaultTokenDecimals
	}
	return mintAccount.Decimals
}

// GetTokenBalance - Base-unit balance of a token account. A missing account
// is reported as a zero balance, not an error.
func (c *Client) GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error) {
	result, err := c.rpcClient.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentConfirmed)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}
	if result == nil || result.Value == nil {
		return 0, nil
	}

	balance, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token balance %q: %w", result.Value.Amount, err)
	}
	return balance, nil
}

// AccountExists - Check whether an account exists on chain
func (c *Client) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	accountInfo, err := c.rpcClient.GetAccountInfo(ctx, account)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check account %s: %w", account.String(), err)
	}
	return accountInfo != nil && accountInfo.Value != nil, nil
}

// GetTransactionStatus - Check transaction status
func (c *Client) GetTransactionStatus(ctx context.Context, signature string) (*TransactionResult, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	status, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}

	result := &TransactionResult{
		Signature:   signature,
		Status:      StatusPending,
		ExplorerURL: c.GetExplorerURL(signature),
	}
	if status == nil || len(status.Value) == 0 || status.Value[0] == nil {
		return result, nil
	}

	txStatus := status.Value[0]
	switch {
	case txStatus.Err != nil:
		errMsg := fmt.Sprintf("%v", txStatus.Err)
		result.Status = StatusFailed
		result.Error = &errMsg
	case txStatus.ConfirmationStatus == rpc.ConfirmationStatusFinalized:
		result.Status = StatusFinalized
	case txStatus.ConfirmationStatus == rpc.ConfirmationStatusConfirmed:
		result.Status = StatusConfirmed
	}
	return result, nil
}

// WaitForConfirmation - Poll signature status until confirmed or the timeout
// elapses. Poll interval is 2 seconds, matching blockhash validity margins.
func (c *Client) WaitForConfirmation(ctx context.Context, signature string, timeout time.Duration) error {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err == nil && status != nil && len(status.Value) > 0 && status.Value[0] != nil {
			txStatus := status.Value[0]
			if txStatus.Err != nil {
				return fmt.Errorf("transaction failed: %v", txStatus.Err)
			}
			if txStatus.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				txStatus.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return fmt.Errorf("timeout waiting for confirmation after %s", timeout)
}

// GetExplorerURL - Generate explorer URL for a signature
func (c *Client) GetExplorerURL(signature string) string {
	switch c.network {
	case "mainnet", "mainnet-beta":
		return fmt.Sprintf(ExplorerURLMainnet, signature)
	case "testnet":
		return fmt.Sprintf(ExplorerURLTestnet, signature)
	default:
		return fmt.Sprintf(ExplorerURLDevnet, signature)
	}
}

// isNotFound - Genuine account-not-found, as opposed to a transport failure
func isNotFound(err error) bool {
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "could not find account")
}
