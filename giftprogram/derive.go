package giftprogram

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// NewCardID - Random 64-bit card id. The program never assigns ids, so the
// client picks one with negligible per-owner collision probability.
func NewCardID() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate card id: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// DeriveGiftCardPDA - Derive gift card PDA from (seed prefix, owner, card id).
// Seed concatenation must match the program byte-for-byte or every
// instruction lands on an address the program does not recognize.
func DeriveGiftCardPDA(programID, owner solana.PublicKey, cardID uint64) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedGiftCard,
			owner.Bytes(),
			uint64ToBytes(cardID),
		},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive gift card PDA: %w", err)
	}
	return pda, bump, nil
}

// DeriveEscrowTokenAccount - The escrow is the gift card PDA's associated
// token account: (giftCardPDA, token program, mint) under the ATA program.
func DeriveEscrowTokenAccount(giftCardPDA, mint solana.PublicKey) (solana.PublicKey, error) {
	escrow, _, err := solana.FindProgramAddress(
		[][]byte{
			giftCardPDA.Bytes(),
			TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		AssociatedTokenProgID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive escrow token account: %w", err)
	}
	return escrow, nil
}

// DeriveAssociatedTokenAccount - Canonical token account for (wallet, mint)
func DeriveAssociatedTokenAccount(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindProgramAddress(
		[][]byte{
			wallet.Bytes(),
			TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		AssociatedTokenProgID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive ATA: %w", err)
	}
	return ata, nil
}

// Helper function to convert uint64 to little-endian bytes
func uint64ToBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
