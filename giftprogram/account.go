package giftprogram

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// getAccountDiscriminator - Anchor account discriminator:
// sha256("account:<AccountName>")[:8]
func getAccountDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	return hash[:8]
}

// GiftCardDiscriminator identifies GiftCard accounts among the program's accounts.
var GiftCardDiscriminator = getAccountDiscriminator("GiftCard")

// Byte offsets into the serialized GiftCard account, derived from the
// declared field layout. Used for getProgramAccounts memcmp filters; a layout
// change shows up here, next to the struct, instead of as a magic number.
const (
	accountDiscriminatorSize = 8
	cardIDFieldSize          = 8

	// GiftCardOwnerOffset - Offset of the owner field: discriminator + card id
	GiftCardOwnerOffset = accountDiscriminatorSize + cardIDFieldSize
)

// DecodeGiftCard - Decode a GiftCard account from raw account data. The
// discriminator is checked first so foreign accounts fail loudly instead of
// decoding into garbage.
func DecodeGiftCard(data []byte) (*GiftCard, error) {
	if len(data) < accountDiscriminatorSize {
		return nil, fmt.Errorf("account data too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:accountDiscriminatorSize], GiftCardDiscriminator) {
		return nil, fmt.Errorf("not a gift card account")
	}

	var card GiftCard
	decoder := bin.NewBorshDecoder(data[accountDiscriminatorSize:])
	if err := decoder.Decode(&card); err != nil {
		return nil, fmt.Errorf("failed to decode gift card account: %w", err)
	}
	return &card, nil
}
