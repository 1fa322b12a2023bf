package giftprogram

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestGiftCard_IsUnlocked(t *testing.T) {
	card := &GiftCard{UnlockDate: 1700000000}

	assert.False(t, card.IsUnlocked(time.Unix(1699999999, 0)))
	assert.True(t, card.IsUnlocked(time.Unix(1700000000, 0)))
	assert.True(t, card.IsUnlocked(time.Unix(1700000001, 0)))
}

func TestGiftCard_IsRefundable(t *testing.T) {
	card := &GiftCard{RefundDate: 1700600000}

	assert.False(t, card.IsRefundable(time.Unix(1700599999, 0)))
	assert.True(t, card.IsRefundable(time.Unix(1700600000, 0)))
}

func TestGiftCard_MerchantAllowed(t *testing.T) {
	merchant := solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	other := solana.MustPublicKeyFromBase58("9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx")

	open := &GiftCard{}
	assert.True(t, open.MerchantAllowed(merchant), "empty allow-list admits everyone")

	restricted := &GiftCard{AllowedMerchants: []solana.PublicKey{merchant}}
	assert.True(t, restricted.MerchantAllowed(merchant))
	assert.False(t, restricted.MerchantAllowed(other))
}
