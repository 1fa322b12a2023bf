package giftstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcards/giftprogram"
)

const (
	testOwner    = "9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx"
	testMerchant = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
)

func TestNew_Defaults(t *testing.T) {
	s := New()

	assert.Empty(t, s.Wallet())
	assert.NotNil(t, s.Cards())
	assert.Empty(t, s.Cards())
	assert.False(t, s.Loading())

	form := s.CreateForm()
	assert.Equal(t, giftprogram.WSOLMint, form.TokenMint)
	assert.Empty(t, form.AllowedMerchants)

	_, selected := s.SelectedCard()
	assert.False(t, selected)
}

func TestSetWallet_ChangeInvalidatesCards(t *testing.T) {
	s := New()
	s.SetWallet(testOwner)
	s.SetCards([]giftprogram.GiftCardWithAddress{{GiftCard: giftprogram.GiftCard{CardID: 1}}})
	s.SelectCard(1)
	s.SetError("boom")

	// Same wallet: nothing changes.
	s.SetWallet(testOwner)
	assert.Len(t, s.Cards(), 1)
	assert.Equal(t, "boom", s.LastError())

	// New wallet: cards, selection and error reset.
	s.SetWallet(testMerchant)
	assert.Empty(t, s.Cards())
	assert.Empty(t, s.LastError())
	_, selected := s.SelectedCard()
	assert.False(t, selected)
}

func TestCards_ReturnsCopy(t *testing.T) {
	s := New()
	s.SetCards([]giftprogram.GiftCardWithAddress{{GiftCard: giftprogram.GiftCard{CardID: 1}}})

	cards := s.Cards()
	cards[0].CardID = 999

	assert.Equal(t, uint64(1), s.Cards()[0].CardID)
}

func TestAddMerchant(t *testing.T) {
	s := New()

	assert.True(t, s.AddMerchant(testMerchant))
	assert.False(t, s.AddMerchant(testMerchant), "duplicate is a no-op")
	assert.True(t, s.AddMerchant("  "+testOwner+"  "), "input is trimmed")
	assert.False(t, s.AddMerchant(""), "blank is a no-op")
	assert.False(t, s.AddMerchant("   "), "whitespace is a no-op")

	form := s.CreateForm()
	require.Len(t, form.AllowedMerchants, 2)
	assert.Equal(t, testOwner, form.AllowedMerchants[1])
}

func TestAddMerchant_Cap(t *testing.T) {
	s := New()
	for i := 0; i < giftprogram.MaxAllowedMerchants; i++ {
		key, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		assert.True(t, s.AddMerchant(key.PublicKey().String()))
	}

	assert.False(t, s.AddMerchant(testMerchant), "cap of %d reached", giftprogram.MaxAllowedMerchants)
	assert.Len(t, s.CreateForm().AllowedMerchants, giftprogram.MaxAllowedMerchants)
}

func TestRemoveMerchant(t *testing.T) {
	s := New()
	s.AddMerchant(testMerchant)
	s.AddMerchant(testOwner)

	s.RemoveMerchant(0)
	form := s.CreateForm()
	require.Len(t, form.AllowedMerchants, 1)
	assert.Equal(t, testOwner, form.AllowedMerchants[0])

	// Out of range is a no-op.
	s.RemoveMerchant(5)
	s.RemoveMerchant(-1)
	assert.Len(t, s.CreateForm().AllowedMerchants, 1)
}

func TestCreateForm_SnapshotIsIsolated(t *testing.T) {
	s := New()
	s.AddMerchant(testMerchant)

	form := s.CreateForm()
	form.AllowedMerchants[0] = "mutated"

	assert.Equal(t, testMerchant, s.CreateForm().AllowedMerchants[0])
}

func TestUpdateCreateForm_KeepsTokenOnBlank(t *testing.T) {
	s := New()
	s.UpdateCreateForm("", "1.5", 100, 200)

	form := s.CreateForm()
	assert.Equal(t, giftprogram.WSOLMint, form.TokenMint)
	assert.Equal(t, "1.5", form.Amount)

	s.UpdateCreateForm("SomeOtherMint", "2", 100, 200)
	assert.Equal(t, "SomeOtherMint", s.CreateForm().TokenMint)
}

func TestResetCreateForm_KeepsToken(t *testing.T) {
	s := New()
	s.UpdateCreateForm("", "1.5", 100, 200)
	s.AddMerchant(testMerchant)

	s.ResetCreateForm()

	form := s.CreateForm()
	assert.Equal(t, giftprogram.WSOLMint, form.TokenMint)
	assert.Empty(t, form.Amount)
	assert.Zero(t, form.UnlockDate)
	assert.Empty(t, form.AllowedMerchants)
}

func TestValidateCreate(t *testing.T) {
	now := time.Unix(1700000000, 0)

	s := New()
	s.UpdateCreateForm("", "1.5", now.Add(time.Hour).Unix(), now.Add(2*time.Hour).Unix())
	assert.NoError(t, s.ValidateCreate(now))

	s.UpdateCreateForm("", "0", now.Add(time.Hour).Unix(), now.Add(2*time.Hour).Unix())
	err := s.ValidateCreate(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be a positive number")

	s.UpdateCreateForm("", "1.5", now.Add(-time.Hour).Unix(), now.Add(2*time.Hour).Unix())
	err = s.ValidateCreate(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unlock date must be in the future")

	s.UpdateCreateForm("", "1.5", now.Add(2*time.Hour).Unix(), now.Add(time.Hour).Unix())
	err = s.ValidateCreate(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refund date must be after the unlock date")
}

func TestValidateRedeem(t *testing.T) {
	s := New()

	s.UpdateRedeemForm(testMerchant, "0.5")
	assert.NoError(t, s.ValidateRedeem())

	s.UpdateRedeemForm(testMerchant, "-1")
	assert.Error(t, s.ValidateRedeem())

	s.UpdateRedeemForm("not-a-pubkey", "0.5")
	err := s.ValidateRedeem()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid merchant address")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.AddMerchant(fmt.Sprintf("merchant-%d", i))
			s.Cards()
			s.SetLoading(i%2 == 0)
		}
	}()
	for i := 0; i < 100; i++ {
		s.SetWallet(fmt.Sprintf("wallet-%d", i))
		s.CreateForm()
		s.Loading()
	}
	<-done
}
