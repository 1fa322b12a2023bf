package giftprogram

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	confirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
)

const confirmationTimeout = 60 * time.Second

// ValidateDates - Client-side date rules for create. The program enforces
// the same rules at execution time; failing here avoids burning a fee.
func ValidateDates(unlockDate, refundDate time.Time, now time.Time) error {
	if !unlockDate.After(now) {
		return fmt.Errorf("unlock date must be in the future")
	}
	if !refundDate.After(unlockDate) {
		return fmt.Errorf("refund date must be after the unlock date")
	}
	return nil
}

// prepareCreate - Shared validation and instruction assembly for the signed
// and unsigned create paths. Returns the instructions, generated card id,
// converted base amount and the decimals used.
func (c *Client) prepareCreate(
	ctx context.Context,
	giftGiver solana.PublicKey,
	params CreateGiftCardParams,
) ([]solana.Instruction, uint64, uint64, uint8, error) {
	if err := ValidateDates(params.UnlockDate, params.RefundDate, time.Now()); err != nil {
		return nil, 0, 0, 0, err
	}

	decimals := c.GetMintDecimals(ctx, params.TokenMint)
	baseAmount, err := ToBaseUnits(params.Amount, decimals)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	giverTokenAccount, err := DeriveAssociatedTokenAccount(giftGiver, params.TokenMint)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	// A missing source account is just the zero-balance case: an ATA could be
	// created in the same transaction, but it would hold nothing to escrow,
	// so both fail the same way.
	balance, err := c.GetTokenBalance(ctx, giverTokenAccount)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if balance == 0 {
		return nil, 0, 0, 0, fmt.Errorf("wallet holds no tokens of mint %s yet - fund the token account before creating a gift card", params.TokenMint.String())
	}
	if balance < baseAmount {
		return nil, 0, 0, 0, fmt.Errorf("insufficient token balance: have %s, need %s",
			FromBaseUnits(balance, decimals), FromBaseUnits(baseAmount, decimals))
	}

	cardID, err := NewCardID()
	if err != nil {
		return nil, 0, 0, 0, err
	}

	createInstruction, err := c.BuildCreateGiftCardInstruction(
		giftGiver,
		giverTokenAccount,
		params.TokenMint,
		cardID,
		baseAmount,
		params.UnlockDate.Unix(),
		params.RefundDate.Unix(),
	)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("failed to build instruction: %w", err)
	}

	return []solana.Instruction{createInstruction}, cardID, baseAmount, decimals, nil
}

// CreateGiftCard - Create a gift card, signing with the giver's key.
// Exactly one transaction is submitted and awaited; errors are not retried.
func (c *Client) CreateGiftCard(
	ctx context.Context,
	giftGiverKey solana.PrivateKey,
	params CreateGiftCardParams,
) (*CreateGiftCardResponse, error) {
	giftGiver := giftGiverKey.PublicKey()

	instructions, cardID, baseAmount, decimals, err := c.prepareCreate(ctx, giftGiver, params)
	if err != nil {
		return nil, err
	}

	sig, err := c.signAndSend(ctx, instructions, giftGiverKey, Activity{
		CardID:    cardID,
		Operation: "create",
		Amount:    baseAmount,
	})
	if err != nil {
		return nil, err
	}

	giftCardPDA, _, _ := c.DeriveGiftCardPDA(giftGiver, cardID)
	escrowTokenAccount, _ := DeriveEscrowTokenAccount(giftCardPDA, params.TokenMint)

	return &CreateGiftCardResponse{
		CardID:             cardID,
		GiftCardPDA:        giftCardPDA,
		EscrowTokenAccount: escrowTokenAccount,
		BaseAmount:         baseAmount,
		Decimals:           decimals,
		Signature:          sig,
		Message:            "Gift card created successfully",
	}, nil
}

// CreateUnsignedGiftCard - Same as CreateGiftCard but returns a serialized
// unsigned transaction for wallet-side signing
func (c *Client) CreateUnsignedGiftCard(
	ctx context.Context,
	giftGiver solana.PublicKey,
	params CreateGiftCardParams,
) (*CreateGiftCardResponse, error) {
	instructions, cardID, baseAmount, decimals, err := c.prepareCreate(ctx, giftGiver, params)
	if err != nil {
		return nil, err
	}

	unsignedTx, err := c.BuildUnsignedTransaction(ctx, instructions, giftGiver)
	if err != nil {
		return nil, err
	}

	giftCardPDA, _, _ := c.DeriveGiftCardPDA(giftGiver, cardID)
	escrowTokenAccount, _ := DeriveEscrowTokenAccount(giftCardPDA, params.TokenMint)

	return &CreateGiftCardResponse{
		CardID:              cardID,
		GiftCardPDA:         giftCardPDA,
		EscrowTokenAccount:  escrowTokenAccount,
		BaseAmount:          baseAmount,
		Decimals:            decimals,
		UnsignedTransaction: unsignedTx,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// prepareRedeem - Shared assembly for the redeem paths. The amount is
// converted with the card's cached decimals, recorded at creation time; no
// fresh mint lookup.
func (c *Client) prepareRedeem(ctx context.Context, params RedeemParams) ([]solana.Instruction, uint64, error) {
	card, err := c.GetGiftCard(ctx, params.Owner, params.CardID)
	if err != nil {
		return nil, 0, err
	}
	if card == nil {
		return nil, 0, fmt.Errorf("gift card %d not found for owner %s", params.CardID, params.Owner.String())
	}

	baseAmount, err := ToBaseUnits(params.Amount, card.Decimals)
	if err != nil {
		return nil, 0, err
	}

	merchantTokenAccount, err := DeriveAssociatedTokenAccount(params.Merchant, card.TokenMint)
	if err != nil {
		return nil, 0, err
	}

	instructions := []solana.Instruction{}

	// The merchant may never have held this token; create their ATA on the
	// owner's dime so the transfer has a destination.
	exists, err := c.AccountExists(ctx, merchantTokenAccount)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		instructions = append(instructions, BuildCreateATAInstruction(params.Owner, params.Merchant, card.TokenMint))
	}

	redeemInstruction, err := c.BuildRedeemInstruction(
		params.Owner,
		params.CardID,
		card.TokenMint,
		card.EscrowTokenAccount,
		params.Merchant,
		merchantTokenAccount,
		baseAmount,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build instruction: %w", err)
	}
	instructions = append(instructions, redeemInstruction)

	return instructions, baseAmount, nil
}

// Redeem - Pay a merchant from the card's escrow. Unlock timing, balance and
// allow-list rules are enforced by the program and surfaced on failure.
func (c *Client) Redeem(
	ctx context.Context,
	ownerKey solana.PrivateKey,
	params RedeemParams,
) (*RedeemResponse, error) {
	if params.Owner.IsZero() {
		params.Owner = ownerKey.PublicKey()
	}

	instructions, baseAmount, err := c.prepareRedeem(ctx, params)
	if err != nil {
		return nil, err
	}

	sig, err := c.signAndSend(ctx, instructions, ownerKey, Activity{
		CardID:    params.CardID,
		Operation: "redeem",
		Merchant:  params.Merchant.String(),
		Amount:    baseAmount,
	})
	if err != nil {
		return nil, err
	}

	return &RedeemResponse{
		CardID:         params.CardID,
		RedeemedAmount: baseAmount,
		Signature:      sig,
		Message:        "Redeem successful",
	}, nil
}

// RedeemUnsigned - Unsigned-transaction variant of Redeem
func (c *Client) RedeemUnsigned(ctx context.Context, params RedeemParams) (*RedeemResponse, error) {
	instructions, baseAmount, err := c.prepareRedeem(ctx, params)
	if err != nil {
		return nil, err
	}

	unsignedTx, err := c.BuildUnsignedTransaction(ctx, instructions, params.Owner)
	if err != nil {
		return nil, err
	}

	return &RedeemResponse{
		CardID:              params.CardID,
		RedeemedAmount:      baseAmount,
		UnsignedTransaction: unsignedTx,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// prepareRefund - Build the refund instruction. No client-side date check;
// the program rejects a refund before the refund date.
func (c *Client) prepareRefund(ctx context.Context, params RefundParams) ([]solana.Instruction, error) {
	card, err := c.GetGiftCard(ctx, params.Owner, params.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, fmt.Errorf("gift card %d not found for owner %s", params.CardID, params.Owner.String())
	}

	ownerTokenAccount, err := DeriveAssociatedTokenAccount(params.Owner, card.TokenMint)
	if err != nil {
		return nil, err
	}

	refundInstruction, err := c.BuildRefundInstruction(
		params.Owner,
		params.CardID,
		card.TokenMint,
		card.EscrowTokenAccount,
		ownerTokenAccount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	return []solana.Instruction{refundInstruction}, nil
}

// Refund - Reclaim the remaining balance after the refund date
func (c *Client) Refund(
	ctx context.Context,
	ownerKey solana.PrivateKey,
	cardID uint64,
) (*RefundResponse, error) {
	params := RefundParams{Owner: ownerKey.PublicKey(), CardID: cardID}

	instructions, err := c.prepareRefund(ctx, params)
	if err != nil {
		return nil, err
	}

	sig, err := c.signAndSend(ctx, instructions, ownerKey, Activity{
		CardID:    cardID,
		Operation: "refund",
	})
	if err != nil {
		return nil, err
	}

	return &RefundResponse{
		CardID:    cardID,
		Signature: sig,
		Message:   "Refund successful",
	}, nil
}

// RefundUnsigned - Unsigned-transaction variant of Refund
func (c *Client) RefundUnsigned(ctx context.Context, params RefundParams) (*RefundResponse, error) {
	instructions, err := c.prepareRefund(ctx, params)
	if err != nil {
		return nil, err
	}

	unsignedTx, err := c.BuildUnsignedTransaction(ctx, instructions, params.Owner)
	if err != nil {
		return nil, err
	}

	return &RefundResponse{
		CardID:              params.CardID,
		UnsignedTransaction: unsignedTx,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// ParseMerchants - Validate a merchant list before it touches the network.
// Malformed addresses and oversized lists fail locally with a descriptive
// error; an empty list means "any merchant allowed".
func ParseMerchants(merchants []string) ([]solana.PublicKey, error) {
	if len(merchants) > MaxAllowedMerchants {
		return nil, fmt.Errorf("too many merchants: %d (max %d)", len(merchants), MaxAllowedMerchants)
	}
	parsed := make([]solana.PublicKey, 0, len(merchants))
	for _, merchant := range merchants {
		pubkey, err := solana.PublicKeyFromBase58(merchant)
		if err != nil {
			return nil, fmt.Errorf("invalid merchant address %q: %w", merchant, err)
		}
		parsed = append(parsed, pubkey)
	}
	return parsed, nil
}

// SetRules - Replace the card's merchant allow-list
func (c *Client) SetRules(
	ctx context.Context,
	ownerKey solana.PrivateKey,
	params SetRulesParams,
) (*SetRulesResponse, error) {
	if params.Owner.IsZero() {
		params.Owner = ownerKey.PublicKey()
	}

	merchants, err := ParseMerchants(params.Merchants)
	if err != nil {
		return nil, err
	}

	instruction, err := c.BuildRuleSetInstruction(params.Owner, params.CardID, merchants)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.signAndSend(ctx, []solana.Instruction{instruction}, ownerKey, Activity{
		CardID:    params.CardID,
		Operation: "rule_set",
	})
	if err != nil {
		return nil, err
	}

	return &SetRulesResponse{
		CardID:    params.CardID,
		Merchants: params.Merchants,
		Signature: sig,
		Message:   "Merchant rules updated",
	}, nil
}

// SetRulesUnsigned - Unsigned-transaction variant of SetRules
func (c *Client) SetRulesUnsigned(ctx context.Context, params SetRulesParams) (*SetRulesResponse, error) {
	merchants, err := ParseMerchants(params.Merchants)
	if err != nil {
		return nil, err
	}

	instruction, err := c.BuildRuleSetInstruction(params.Owner, params.CardID, merchants)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	unsignedTx, err := c.BuildUnsignedTransaction(ctx, []solana.Instruction{instruction}, params.Owner)
	if err != nil {
		return nil, err
	}

	return &SetRulesResponse{
		CardID:              params.CardID,
		Merchants:           params.Merchants,
		UnsignedTransaction: unsignedTx,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// DeleteGiftCard - Close an empty card account and reclaim its rent
func (c *Client) DeleteGiftCard(
	ctx context.Context,
	ownerKey solana.PrivateKey,
	cardID uint64,
) (*DeleteResponse, error) {
	owner := ownerKey.PublicKey()

	instruction, err := c.BuildDeleteGiftCardInstruction(owner, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	sig, err := c.signAndSend(ctx, []solana.Instruction{instruction}, ownerKey, Activity{
		CardID:    cardID,
		Operation: "delete",
	})
	if err != nil {
		return nil, err
	}

	return &DeleteResponse{
		CardID:    cardID,
		Signature: sig,
		Message:   "Gift card deleted",
	}, nil
}

// DeleteGiftCardUnsigned - Unsigned-transaction variant of DeleteGiftCard
func (c *Client) DeleteGiftCardUnsigned(ctx context.Context, owner solana.PublicKey, cardID uint64) (*DeleteResponse, error) {
	instruction, err := c.BuildDeleteGiftCardInstruction(owner, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	unsignedTx, err := c.BuildUnsignedTransaction(ctx, []solana.Instruction{instruction}, owner)
	if err != nil {
		return nil, err
	}

	return &DeleteResponse{
		CardID:              cardID,
		UnsignedTransaction: unsignedTx,
		Message:             "Unsigned transaction created - sign on client side",
	}, nil
}

// BuildUnsignedTransaction - Serialize an unsigned transaction to base64 for
// wallet-side signing
func (c *Client) BuildUnsignedTransaction(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
) (string, error) {
	latestBlockhash, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(txBytes), nil
}

// SendSignedTransaction - Submit a wallet-signed transaction and await
// confirmation. The activity metadata describes the operation the wallet
// signed; a blank operation is recorded as "send", and the owner is always
// the transaction's fee payer.
func (c *Client) SendSignedTransaction(ctx context.Context, signedTxBase64 string, activity Activity) (string, error) {
	txBytes, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return "", fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	if len(tx.Signatures) == 0 {
		return "", fmt.Errorf("transaction is not signed")
	}

	if activity.Operation == "" {
		activity.Operation = "send"
	}
	if len(tx.Message.AccountKeys) > 0 {
		activity.Owner = tx.Message.AccountKeys[0].String()
	}

	sig, err := c.rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	c.notifySubmitted(activity, sig.String())

	if err := c.WaitForConfirmation(ctx, sig.String(), confirmationTimeout); err != nil {
		c.notifyResolved(sig.String(), StatusFailed, err.Error())
		return sig.String(), err
	}
	c.notifyResolved(sig.String(), StatusConfirmed, "")
	return sig.String(), nil
}

// signAndSend - Build, sign, submit and await one transaction, reporting it
// to the activity recorder under the given metadata. Uses the websocket
// confirmation path when connected, status polling otherwise.
func (c *Client) signAndSend(
	ctx context.Context,
	instructions []solana.Instruction,
	signer solana.PrivateKey,
	activity Activity,
) (string, error) {
	latestBlockhash, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if signer.PublicKey().Equals(key) {
			return &signer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	activity.Owner = signer.PublicKey().String()

	if c.wsClient != nil {
		sig, err := confirm.SendAndConfirmTransaction(ctx, c.rpcClient, c.wsClient, tx)
		if err != nil {
			return "", fmt.Errorf("failed to send transaction: %w", err)
		}
		c.notifySubmitted(activity, sig.String())
		c.notifyResolved(sig.String(), StatusConfirmed, "")
		return sig.String(), nil
	}

	sig, err := c.rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	c.notifySubmitted(activity, sig.String())

	if err := c.WaitForConfirmation(ctx, sig.String(), confirmationTimeout); err != nil {
		c.notifyResolved(sig.String(), StatusFailed, err.Error())
		return sig.String(), err
	}
	c.notifyResolved(sig.String(), StatusConfirmed, "")
	return sig.String(), nil
}
