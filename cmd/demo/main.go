// Devnet walkthrough of the full gift card lifecycle with local keypairs:
// create -> rule_set -> redeem -> refund -> delete. Requires a funded owner
// key; run ONE step group at a time to avoid state conflicts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"

	"giftcards/giftprogram"
	"giftcards/solwallet"
)

func main() {
	// =====================================================
	// DEMO CONFIGURATION - Edit these flags to enable/disable steps
	// =====================================================
	const (
		runFaucet    = false // Airdrop 1 SOL to the owner (devnet)
		runCreate    = true  // Create a gift card
		runSetRules  = true  // Restrict redemption to the demo merchant
		runListCards = true  // List the owner's cards
		runRedeem    = false // Redeem to the merchant (after the unlock date)
		runRefund    = false // Refund the remainder (after the refund date)
		runDelete    = false // Delete the emptied card
	)

	ownerKeyBase58 := os.Getenv("GIFTCARDS_DEMO_OWNER_KEY")
	if ownerKeyBase58 == "" {
		log.Fatal("GIFTCARDS_DEMO_OWNER_KEY (base58 private key) is required")
	}
	ownerKey, err := solana.PrivateKeyFromBase58(ownerKeyBase58)
	if err != nil {
		log.Fatalf("invalid owner key: %v", err)
	}
	owner := ownerKey.PublicKey()

	merchant := solana.MustPublicKeyFromBase58("9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx")

	ctx := context.Background()

	client, err := giftprogram.NewClient(giftprogram.RPCURLDevnet, "devnet")
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}
	if err := client.ConnectWS(ctx, giftprogram.WSURLDevnet); err != nil {
		log.Printf("websocket unavailable, confirming by polling: %v", err)
	}

	fmt.Println("=== Gift Card Program Demo (Devnet) ===")
	fmt.Printf("Program ID: %s\n", client.GetProgramID())
	fmt.Printf("Owner:      %s\n", owner)
	fmt.Printf("Merchant:   %s\n\n", merchant)

	var cardID uint64

	if runFaucet {
		fmt.Println("--- Faucet: airdrop 1 SOL ---")
		wallet, err := solwallet.NewSolWallet(ctx, solwallet.Config{
			RPCURL:  giftprogram.RPCURLDevnet,
			Network: "devnet",
		}, nil)
		if err != nil {
			log.Fatalf("failed to create wallet utilities: %v", err)
		}
		sig, err := wallet.RequestAirdrop(ctx, owner.String(), 1_000_000_000)
		if err != nil {
			log.Fatalf("airdrop failed: %v", err)
		}
		fmt.Printf("✅ Airdrop requested: %s\n", sig)

		// Poll the balance until the airdrop lands instead of sleeping blind.
		credited := make(chan uint64, 1)
		watchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		wallet.WatchSolBalance(watchCtx, owner, 2*time.Second, func(lamports uint64) {
			if lamports > 0 {
				select {
				case credited <- lamports:
				default:
				}
			}
		})
		select {
		case lamports := <-credited:
			fmt.Printf("   Balance: %d lamports\n\n", lamports)
		case <-watchCtx.Done():
			fmt.Println("   Airdrop not credited yet, continuing anyway")
		}
		cancel()
	}

	if runCreate {
		fmt.Println("--- Create gift card: 1.5 WSOL, unlock +1m, refund +5m ---")
		resp, err := client.CreateGiftCard(ctx, ownerKey, giftprogram.CreateGiftCardParams{
			TokenMint:  solana.MustPublicKeyFromBase58(giftprogram.WSOLMint),
			Amount:     "1.5",
			UnlockDate: time.Now().Add(1 * time.Minute),
			RefundDate: time.Now().Add(5 * time.Minute),
		})
		if err != nil {
			log.Fatalf("create failed: %s", giftprogram.ParseProgramError(err))
		}
		cardID = resp.CardID
		fmt.Printf("✅ Card %d created\n", resp.CardID)
		fmt.Printf("   PDA:    %s\n", resp.GiftCardPDA)
		fmt.Printf("   Escrow: %s\n", resp.EscrowTokenAccount)
		fmt.Printf("   Tx:     %s\n\n", client.GetExplorerURL(resp.Signature))
	}

	if runSetRules {
		fmt.Println("--- Restrict redemption to the demo merchant ---")
		resp, err := client.SetRules(ctx, ownerKey, giftprogram.SetRulesParams{
			CardID:    cardID,
			Merchants: []string{merchant.String()},
		})
		if err != nil {
			log.Fatalf("rule_set failed: %s", giftprogram.ParseProgramError(err))
		}
		fmt.Printf("✅ Rules updated: %s\n\n", resp.Signature)
	}

	if runListCards {
		fmt.Println("--- List the owner's cards ---")
		cards, err := client.GetAllGiftCards(ctx, owner)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		for _, card := range cards {
			fmt.Printf("  card %d: balance %s, unlock %s, refund %s, merchants %d\n",
				card.CardID,
				giftprogram.FromBaseUnits(card.Balance, card.Decimals),
				time.Unix(card.UnlockDate, 0).Format(time.RFC3339),
				time.Unix(card.RefundDate, 0).Format(time.RFC3339),
				len(card.AllowedMerchants),
			)
		}
		fmt.Println()
	}

	if runRedeem {
		fmt.Println("--- Redeem 0.5 to the merchant ---")
		resp, err := client.Redeem(ctx, ownerKey, giftprogram.RedeemParams{
			CardID:   cardID,
			Merchant: merchant,
			Amount:   "0.5",
		})
		if err != nil {
			log.Fatalf("redeem failed: %s", giftprogram.ParseProgramError(err))
		}
		fmt.Printf("✅ Redeemed %d base units: %s\n\n", resp.RedeemedAmount, resp.Signature)
	}

	if runRefund {
		fmt.Println("--- Refund the remainder ---")
		resp, err := client.Refund(ctx, ownerKey, cardID)
		if err != nil {
			log.Fatalf("refund failed: %s", giftprogram.ParseProgramError(err))
		}
		fmt.Printf("✅ Refunded: %s\n\n", resp.Signature)
	}

	if runDelete {
		fmt.Println("--- Delete the emptied card ---")
		resp, err := client.DeleteGiftCard(ctx, ownerKey, cardID)
		if err != nil {
			log.Fatalf("delete failed: %s", giftprogram.ParseProgramError(err))
		}
		fmt.Printf("✅ Deleted: %s\n", resp.Signature)
	}
}
