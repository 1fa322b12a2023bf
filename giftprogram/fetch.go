package giftprogram

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// GetGiftCard - Fetch and decode one gift card. A missing account yields
// (nil, nil): the card simply does not exist. Transport failures are errors.
func (c *Client) GetGiftCard(ctx context.Context, owner solana.PublicKey, cardID uint64) (*GiftCardWithAddress, error) {
	giftCardPDA, _, err := c.DeriveGiftCardPDA(owner, cardID)
	if err != nil {
		return nil, err
	}

	accountInfo, err := c.rpcClient.GetAccountInfo(ctx, giftCardPDA)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch gift card: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, nil
	}

	card, err := DecodeGiftCard(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}

	return &GiftCardWithAddress{Address: giftCardPDA, GiftCard: *card}, nil
}

// GetAllGiftCards - Every gift card owned by owner, filtered server-side by
// account discriminator and by the owner field at its layout offset. No
// matches is an empty slice, never an error.
func (c *Client) GetAllGiftCards(ctx context.Context, owner solana.PublicKey) ([]GiftCardWithAddress, error) {
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  solana.Base58(GiftCardDiscriminator),
				},
			},
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: GiftCardOwnerOffset,
					Bytes:  solana.Base58(owner.Bytes()),
				},
			},
		},
	}

	accounts, err := c.rpcClient.GetProgramAccountsWithOpts(ctx, c.programID, opts)
	if err != nil {
		if isNotFound(err) {
			return []GiftCardWithAddress{}, nil
		}
		return nil, fmt.Errorf("failed to list gift cards: %w", err)
	}

	cards := make([]GiftCardWithAddress, 0, len(accounts))
	for _, keyed := range accounts {
		if keyed == nil || keyed.Account == nil {
			continue
		}
		card, err := DecodeGiftCard(keyed.Account.Data.GetBinary())
		if err != nil {
			c.log.WithError(err).WithField("account", keyed.Pubkey.String()).
				Warn("skipping undecodable gift card account")
			continue
		}
		cards = append(cards, GiftCardWithAddress{Address: keyed.Pubkey, GiftCard: *card})
	}
	return cards, nil
}
