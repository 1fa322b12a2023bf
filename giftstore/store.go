// Package giftstore holds in-progress form input and the cached card list
// for one wallet session, independent of on-chain state, so edits survive
// between requests. It is an explicit, injected container: construct one per
// session and pass it where it is needed.
package giftstore

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"giftcards/giftprogram"
)

var errAmountNotPositive = errors.New("amount must be a positive number")

// CreateForm - In-progress input for the create flow
type CreateForm struct {
	TokenMint        string   `json:"token_mint"`
	Amount           string   `json:"amount"`
	UnlockDate       int64    `json:"unlock_date"`
	RefundDate       int64    `json:"refund_date"`
	AllowedMerchants []string `json:"allowed_merchants"`
}

// RedeemForm - In-progress input for the redeem flow
type RedeemForm struct {
	Merchant string `json:"merchant"`
	Amount   string `json:"amount"`
}

// Store - Per-session state. Safe for concurrent handlers.
type Store struct {
	mu sync.Mutex

	wallet    string
	cards     []giftprogram.GiftCardWithAddress
	selected  *uint64
	loading   bool
	lastError string

	create CreateForm
	redeem RedeemForm
}

// New - Empty store with the default token preselected
func New() *Store {
	return &Store{
		create: CreateForm{TokenMint: giftprogram.WSOLMint, AllowedMerchants: []string{}},
	}
}

// SetWallet - Connect or switch wallets. Any change invalidates the cached
// cards; this is the sole cache invalidation event.
func (s *Store) SetWallet(wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wallet == wallet {
		return
	}
	s.wallet = wallet
	s.cards = nil
	s.selected = nil
	s.lastError = ""
}

// Wallet - Currently connected wallet, empty when disconnected
func (s *Store) Wallet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet
}

// SetCards - Replace the cached card list after a fetch
func (s *Store) SetCards(cards []giftprogram.GiftCardWithAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = cards
}

// Cards - Cached card list; empty (never nil) when nothing is cached
func (s *Store) Cards() []giftprogram.GiftCardWithAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return []giftprogram.GiftCardWithAddress{}
	}
	out := make([]giftprogram.GiftCardWithAddress, len(s.cards))
	copy(out, s.cards)
	return out
}

// SelectCard - Mark a card as the target for redeem/refund actions
func (s *Store) SelectCard(cardID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &cardID
}

// SelectedCard - The selected card id, or false when none is selected
func (s *Store) SelectedCard() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

// SetLoading marks a fetch in flight.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SetError records the last user-facing error message.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

// LastError returns the last recorded error message.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// UpdateCreateForm - Replace the editable create fields, preserving the
// merchant list which has its own add/remove rules
func (s *Store) UpdateCreateForm(tokenMint, amount string, unlockDate, refundDate int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tokenMint != "" {
		s.create.TokenMint = tokenMint
	}
	s.create.Amount = amount
	s.create.UnlockDate = unlockDate
	s.create.RefundDate = refundDate
}

// CreateForm - Snapshot of the create form
func (s *Store) CreateForm() CreateForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := s.create
	form.AllowedMerchants = append([]string{}, s.create.AllowedMerchants...)
	return form
}

// AddMerchant - Append to the allow-list. Blank entries, duplicates and
// anything past the cap of 10 are ignored silently, not rejected with an
// error. Returns whether the entry was added.
func (s *Store) AddMerchant(merchant string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(merchant)
	if trimmed == "" {
		return false
	}
	for _, existing := range s.create.AllowedMerchants {
		if existing == trimmed {
			return false
		}
	}
	if len(s.create.AllowedMerchants) >= giftprogram.MaxAllowedMerchants {
		return false
	}
	s.create.AllowedMerchants = append(s.create.AllowedMerchants, trimmed)
	return true
}

// RemoveMerchant - Drop the allow-list entry at index; out-of-range is a no-op
func (s *Store) RemoveMerchant(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.create.AllowedMerchants) {
		return
	}
	s.create.AllowedMerchants = append(
		s.create.AllowedMerchants[:index],
		s.create.AllowedMerchants[index+1:]...,
	)
}

// ClearMerchants empties the allow-list.
func (s *Store) ClearMerchants() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.create.AllowedMerchants = []string{}
}

// UpdateRedeemForm - Replace the redeem fields
func (s *Store) UpdateRedeemForm(merchant, amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redeem.Merchant = merchant
	s.redeem.Amount = amount
}

// RedeemForm - Snapshot of the redeem form
func (s *Store) RedeemForm() RedeemForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redeem
}

// ResetCreateForm - Clear the create fields after a successful submission.
// The token selection is kept.
func (s *Store) ResetCreateForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.create.Amount = ""
	s.create.UnlockDate = 0
	s.create.RefundDate = 0
	s.create.AllowedMerchants = []string{}
}

// ResetRedeemForm clears the redeem fields.
func (s *Store) ResetRedeemForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redeem = RedeemForm{}
}

// ValidateCreate - Enforce the create rules before submission: a positive
// amount, an unlock date strictly in the future and a refund date strictly
// after it. Returns the first violation as a user-facing message.
func (s *Store) ValidateCreate(now time.Time) error {
	form := s.CreateForm()

	if err := validateAmount(form.Amount); err != nil {
		return err
	}
	return giftprogram.ValidateDates(
		time.Unix(form.UnlockDate, 0),
		time.Unix(form.RefundDate, 0),
		now,
	)
}

// ValidateRedeem - Enforce the redeem rules: a positive amount and a
// well-formed merchant address
func (s *Store) ValidateRedeem() error {
	form := s.RedeemForm()

	if err := validateAmount(form.Amount); err != nil {
		return err
	}
	if _, err := giftprogram.ParseMerchants([]string{form.Merchant}); err != nil {
		return err
	}
	return nil
}

func validateAmount(amount string) error {
	d, err := decimal.NewFromString(amount)
	if err != nil || !d.IsPositive() {
		return errAmountNotPositive
	}
	return nil
}
