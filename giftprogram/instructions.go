package giftprogram

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
)

// getAnchorDiscriminator - Generate Anchor instruction discriminator
// Anchor uses: sha256("global:<method_name>")[:8]
func getAnchorDiscriminator(methodName string) []byte {
	hash := sha256.Sum256([]byte("global:" + methodName))
	return hash[:8]
}

// Anchor instruction discriminators
var (
	DiscriminatorCreateGiftCard = getAnchorDiscriminator("create_gift_card")
	DiscriminatorRuleSet        = getAnchorDiscriminator("rule_set")
	DiscriminatorRedeem         = getAnchorDiscriminator("redeem")
	DiscriminatorRefund         = getAnchorDiscriminator("refund")
	DiscriminatorDeleteGiftCard = getAnchorDiscriminator("delete_gift_card")
)

// BuildCreateGiftCardInstruction - Build create_gift_card instruction
func (c *Client) BuildCreateGiftCardInstruction(
	giftGiver solana.PublicKey,
	giftGiverTokenAccount solana.PublicKey,
	tokenMint solana.PublicKey,
	cardID uint64,
	amount uint64,
	unlockDate int64,
	refundDate int64,
) (solana.Instruction, error) {
	giftCardPDA, _, err := c.DeriveGiftCardPDA(giftGiver, cardID)
	if err != nil {
		return nil, err
	}

	escrowTokenAccount, err := DeriveEscrowTokenAccount(giftCardPDA, tokenMint)
	if err != nil {
		return nil, err
	}

	// Instruction data: discriminator + card_id + amount + unlock_date + refund_date
	data := make([]byte, 0, 8+8+8+8+8)
	data = append(data, DiscriminatorCreateGiftCard...)
	data = append(data, uint64ToBytes(cardID)...)
	data = append(data, uint64ToBytes(amount)...)
	data = append(data, uint64ToBytes(uint64(unlockDate))...)
	data = append(data, uint64ToBytes(uint64(refundDate))...)

	// Account order MUST match the program's CreateGiftCard struct:
	// 1. gift_card, 2. escrow_token_account, 3. token_mint,
	// 4. gift_giver_token_account, 5. gift_giver, 6. token_program,
	// 7. system_program, 8. associated_token_program
	accounts := solana.AccountMetaSlice{
		solana.Meta(giftCardPDA).WRITE(),
		solana.Meta(escrowTokenAccount).WRITE(),
		solana.Meta(tokenMint),
		solana.Meta(giftGiverTokenAccount).WRITE(),
		solana.Meta(giftGiver).SIGNER().WRITE(),
		solana.Meta(TokenProgramID),
		solana.Meta(SystemProgramID),
		solana.Meta(AssociatedTokenProgID),
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildRuleSetInstruction - Build rule_set instruction replacing the full
// merchant allow-list. Merchants must already be parsed public keys.
func (c *Client) BuildRuleSetInstruction(
	owner solana.PublicKey,
	cardID uint64,
	merchants []solana.PublicKey,
) (solana.Instruction, error) {
	if len(merchants) > MaxAllowedMerchants {
		return nil, fmt.Errorf("too many merchants: %d (max %d)", len(merchants), MaxAllowedMerchants)
	}

	giftCardPDA, _, err := c.DeriveGiftCardPDA(owner, cardID)
	if err != nil {
		return nil, err
	}

	// Instruction data: discriminator + card_id + Vec<Pubkey> (u32 length prefix)
	data := make([]byte, 0, 8+8+4+32*len(merchants))
	data = append(data, DiscriminatorRuleSet...)
	data = append(data, uint64ToBytes(cardID)...)

	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(merchants)))
	data = append(data, lenBytes...)
	for _, merchant := range merchants {
		data = append(data, merchant.Bytes()...)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(giftCardPDA).WRITE(),
		solana.Meta(owner).SIGNER(),
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildRedeemInstruction - Build redeem instruction paying a merchant
func (c *Client) BuildRedeemInstruction(
	owner solana.PublicKey,
	cardID uint64,
	tokenMint solana.PublicKey,
	escrowTokenAccount solana.PublicKey,
	merchant solana.PublicKey,
	merchantTokenAccount solana.PublicKey,
	amount uint64,
) (solana.Instruction, error) {
	giftCardPDA, _, err := c.DeriveGiftCardPDA(owner, cardID)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 8+8+8)
	data = append(data, DiscriminatorRedeem...)
	data = append(data, uint64ToBytes(cardID)...)
	data = append(data, uint64ToBytes(amount)...)

	// Account order MUST match the program's Redeem struct:
	// 1. gift_card, 2. escrow_token_account, 3. token_mint,
	// 4. merchant_token_account, 5. merchant, 6. owner, 7. token_program
	accounts := solana.AccountMetaSlice{
		solana.Meta(giftCardPDA).WRITE(),
		solana.Meta(escrowTokenAccount).WRITE(),
		solana.Meta(tokenMint),
		solana.Meta(merchantTokenAccount).WRITE(),
		solana.Meta(merchant),
		solana.Meta(owner).SIGNER(),
		solana.Meta(TokenProgramID),
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildRefundInstruction - Build refund instruction returning the remaining
// balance to the owner. Date checks are the program's job.
func (c *Client) BuildRefundInstruction(
	owner solana.PublicKey,
	cardID uint64,
	tokenMint solana.PublicKey,
	escrowTokenAccount solana.PublicKey,
	ownerTokenAccount solana.PublicKey,
) (solana.Instruction, error) {
	giftCardPDA, _, err := c.DeriveGiftCardPDA(owner, cardID)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 8+8)
	data = append(data, DiscriminatorRefund...)
	data = append(data, uint64ToBytes(cardID)...)

	// Account order MUST match the program's Refund struct:
	// 1. gift_card, 2. escrow_token_account, 3. token_mint,
	// 4. gift_giver_token_account, 5. owner, 6. token_program
	accounts := solana.AccountMetaSlice{
		solana.Meta(giftCardPDA).WRITE(),
		solana.Meta(escrowTokenAccount).WRITE(),
		solana.Meta(tokenMint),
		solana.Meta(ownerTokenAccount).WRITE(),
		solana.Meta(owner).SIGNER(),
		solana.Meta(TokenProgramID),
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildDeleteGiftCardInstruction - Build delete_gift_card instruction closing
// an empty card account and reclaiming rent
func (c *Client) BuildDeleteGiftCardInstruction(
	owner solana.PublicKey,
	cardID uint64,
) (solana.Instruction, error) {
	giftCardPDA, _, err := c.DeriveGiftCardPDA(owner, cardID)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 8+8)
	data = append(data, DiscriminatorDeleteGiftCard...)
	data = append(data, uint64ToBytes(cardID)...)

	accounts := solana.AccountMetaSlice{
		solana.Meta(giftCardPDA).WRITE(),
		solana.Meta(owner).SIGNER().WRITE(),
	}

	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildCreateATAInstruction - Create the canonical token account for
// (wallet, mint), paid for by payer
func BuildCreateATAInstruction(payer, wallet, mint solana.PublicKey) solana.Instruction {
	return associatedtokenaccount.NewCreateInstruction(payer, wallet, mint).Build()
}
