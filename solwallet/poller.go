package solwallet

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// WatchSolBalance - Periodically read a wallet's lamport balance and deliver
// it to onUpdate. Cancelling ctx tears the poller down; a read already in
// flight at that point is simply discarded (last-write-wins, the chain is
// the source of truth). Reads that fail are logged and skipped, not retried
// out of band.
func (w *SolWallet) WatchSolBalance(
	ctx context.Context,
	account solana.PublicKey,
	interval time.Duration,
	onUpdate func(lamports uint64),
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := w.http.GetBalance(ctx, account, rpc.CommitmentConfirmed)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					w.log.WithError(err).WithField("account", account.String()).
						Debug("balance poll failed")
					continue
				}
				onUpdate(result.Value)
			}
		}
	}()
}

// WatchTokenBalance - Same as WatchSolBalance for an SPL token account. A
// missing account is reported as zero.
func (w *SolWallet) WatchTokenBalance(
	ctx context.Context,
	tokenAccount solana.PublicKey,
	interval time.Duration,
	onUpdate func(amount string),
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := w.http.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentConfirmed)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					onUpdate("0")
					continue
				}
				if result == nil || result.Value == nil {
					onUpdate("0")
					continue
				}
				onUpdate(result.Value.Amount)
			}
		}
	}()
}
