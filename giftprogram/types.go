package giftprogram

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// GiftCard - On-chain gift card account. Field order must match the
// program's account declaration; it is also the borsh wire order.
type GiftCard struct {
	CardID             uint64
	Owner              solana.PublicKey
	Balance            uint64
	UnlockDate         int64
	RefundDate         int64
	TokenMint          solana.PublicKey
	EscrowTokenAccount solana.PublicKey
	Bump               uint8
	Decimals           uint8
	AllowedMerchants   []solana.PublicKey
}

// GiftCardWithAddress - Decoded card plus the PDA it lives at
type GiftCardWithAddress struct {
	Address solana.PublicKey `json:"address"`
	GiftCard
}

// IsUnlocked reports whether the card can be redeemed at t.
func (g *GiftCard) IsUnlocked(t time.Time) bool {
	return t.Unix() >= g.UnlockDate
}

// IsRefundable reports whether the remaining balance can be reclaimed at t.
func (g *GiftCard) IsRefundable(t time.Time) bool {
	return t.Unix() >= g.RefundDate
}

// MerchantAllowed - Empty allow-list means any merchant is allowed
func (g *GiftCard) MerchantAllowed(merchant solana.PublicKey) bool {
	if len(g.AllowedMerchants) == 0 {
		return true
	}
	for _, allowed := range g.AllowedMerchants {
		if allowed.Equals(merchant) {
			return true
		}
	}
	return false
}

// CreateGiftCardParams - Parameters for creating a gift card
type CreateGiftCardParams struct {
	TokenMint  solana.PublicKey
	Amount     string // human units, e.g. "1.5"
	UnlockDate time.Time
	RefundDate time.Time
}

// CreateGiftCardResponse - Response after create
type CreateGiftCardResponse struct {
	CardID              uint64           `json:"card_id"`
	GiftCardPDA         solana.PublicKey `json:"gift_card_pda"`
	EscrowTokenAccount  solana.PublicKey `json:"escrow_token_account"`
	BaseAmount          uint64           `json:"base_amount"`
	Decimals            uint8            `json:"decimals"`
	Signature           string           `json:"signature,omitempty"`
	UnsignedTransaction string           `json:"unsigned_transaction,omitempty"`
	Message             string           `json:"message"`
}

// RedeemParams - Parameters for redeeming to a merchant
type RedeemParams struct {
	Owner    solana.PublicKey
	CardID   uint64
	Merchant solana.PublicKey
	Amount   string // human units, converted with the card's cached decimals
}

// RedeemResponse - Response after redeem
type RedeemResponse struct {
	CardID              uint64 `json:"card_id"`
	RedeemedAmount      uint64 `json:"redeemed_amount"`
	Signature           string `json:"signature,omitempty"`
	UnsignedTransaction string `json:"unsigned_transaction,omitempty"`
	Message             string `json:"message"`
}

// RefundParams - Parameters for reclaiming the remaining balance
type RefundParams struct {
	Owner  solana.PublicKey
	CardID uint64
}

// RefundResponse - Response after refund
type RefundResponse struct {
	CardID              uint64 `json:"card_id"`
	Signature           string `json:"signature,omitempty"`
	UnsignedTransaction string `json:"unsigned_transaction,omitempty"`
	Message             string `json:"message"`
}

// SetRulesParams - Parameters for replacing the merchant allow-list
type SetRulesParams struct {
	Owner     solana.PublicKey
	CardID    uint64
	Merchants []string // base58 addresses, validated before submission
}

// SetRulesResponse - Response after rule_set
type SetRulesResponse struct {
	CardID              uint64   `json:"card_id"`
	Merchants           []string `json:"merchants"`
	Signature           string   `json:"signature,omitempty"`
	UnsignedTransaction string   `json:"unsigned_transaction,omitempty"`
	Message             string   `json:"message"`
}

// DeleteResponse - Response after deleting an empty card
type DeleteResponse struct {
	CardID              uint64 `json:"card_id"`
	Signature           string `json:"signature,omitempty"`
	UnsignedTransaction string `json:"unsigned_transaction,omitempty"`
	Message             string `json:"message"`
}

// TransactionStatus - Transaction lifecycle status
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFinalized TransactionStatus = "finalized"
	StatusFailed    TransactionStatus = "failed"
)

// TransactionResult - Signature status as reported by the cluster
type TransactionResult struct {
	Signature   string            `json:"signature"`
	Status      TransactionStatus `json:"status"`
	Error       *string           `json:"error,omitempty"`
	ExplorerURL string            `json:"explorer_url"`
}
