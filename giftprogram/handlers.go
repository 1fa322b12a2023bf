package giftprogram

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
)

// CreateGiftCardRequest - Create flow input. Dates are unix seconds. The
// token may be named by mint address or by registry symbol; the mint wins
// when both are present.
type CreateGiftCardRequest struct {
	OwnerAddress string `json:"owner_address"`
	TokenMint    string `json:"token_mint"`
	TokenSymbol  string `json:"token_symbol"`
	Amount       string `json:"amount"`
	UnlockDate   int64  `json:"unlock_date"`
	RefundDate   int64  `json:"refund_date"`
}

type RedeemRequest struct {
	OwnerAddress    string `json:"owner_address"`
	CardID          uint64 `json:"card_id"`
	MerchantAddress string `json:"merchant_address"`
	Amount          string `json:"amount"`
}

type RefundRequest struct {
	OwnerAddress string `json:"owner_address"`
	CardID       uint64 `json:"card_id"`
}

type SetRulesRequest struct {
	OwnerAddress string   `json:"owner_address"`
	CardID       uint64   `json:"card_id"`
	Merchants    []string `json:"merchants"`
}

type DeleteRequest struct {
	OwnerAddress string `json:"owner_address"`
	CardID       uint64 `json:"card_id"`
}

// SendTransactionRequest - A wallet-signed transaction plus the operation
// metadata it was built for, echoed back so the activity history can record
// what the wallet actually signed
type SendTransactionRequest struct {
	SignedTransaction string `json:"signed_transaction"`
	Operation         string `json:"operation,omitempty"`
	CardID            uint64 `json:"card_id,omitempty"`
	Merchant          string `json:"merchant,omitempty"`
	Amount            uint64 `json:"amount,omitempty"`
}

// Response - Standard handler response
type Response struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	ErrorCode   *int        `json:"error_code,omitempty"`
	ProgramLogs []string    `json:"program_logs,omitempty"`
}

// CardView - JSON shape of a gift card for list/detail endpoints
type CardView struct {
	Address          string   `json:"address"`
	CardID           uint64   `json:"card_id"`
	Owner            string   `json:"owner"`
	Balance          uint64   `json:"balance"`
	BalanceDisplay   string   `json:"balance_display"`
	UnlockDate       int64    `json:"unlock_date"`
	RefundDate       int64    `json:"refund_date"`
	TokenMint        string   `json:"token_mint"`
	EscrowAccount    string   `json:"escrow_token_account"`
	Decimals         uint8    `json:"decimals"`
	AllowedMerchants []string `json:"allowed_merchants"`
	Unlocked         bool     `json:"unlocked"`
	Refundable       bool     `json:"refundable"`
}

func newCardView(card GiftCardWithAddress) CardView {
	merchants := make([]string, 0, len(card.AllowedMerchants))
	for _, m := range card.AllowedMerchants {
		merchants = append(merchants, m.String())
	}
	now := time.Now()
	return CardView{
		Address:          card.Address.String(),
		CardID:           card.CardID,
		Owner:            card.Owner.String(),
		Balance:          card.Balance,
		BalanceDisplay:   FromBaseUnits(card.Balance, card.Decimals),
		UnlockDate:       card.UnlockDate,
		RefundDate:       card.RefundDate,
		TokenMint:        card.TokenMint.String(),
		EscrowAccount:    card.EscrowTokenAccount.String(),
		Decimals:         card.Decimals,
		AllowedMerchants: merchants,
		Unlocked:         card.IsUnlocked(now),
		Refundable:       card.IsRefundable(now),
	}
}

func respondJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// respondError - Program errors carry their extracted code and logs so the
// caller can show something better than a raw RPC string
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, Response{
		Success:     false,
		Message:     ParseProgramError(err),
		ErrorCode:   ExtractErrorCode(err),
		ProgramLogs: ExtractLogMessages(err),
	})
}

// HandleCreateGiftCard - POST: build an unsigned create transaction
func (c *Client) HandleCreateGiftCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req CreateGiftCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	owner, err := solana.PublicKeyFromBase58(req.OwnerAddress)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}
	if req.TokenMint == "" && req.TokenSymbol != "" {
		known, ok := GetTokenBySymbol(req.TokenSymbol)
		if !ok {
			respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Unknown token symbol %q", req.TokenSymbol)})
			return
		}
		req.TokenMint = known.Mint
	}
	tokenMint, err := solana.PublicKeyFromBase58(req.TokenMint)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid token mint: %v", err)})
		return
	}

	resp, err := c.CreateUnsignedGiftCard(r.Context(), owner, CreateGiftCardParams{
		TokenMint:  tokenMint,
		Amount:     req.Amount,
		UnlockDate: time.Unix(req.UnlockDate, 0),
		RefundDate: time.Unix(req.RefundDate, 0),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleRedeem - POST: build an unsigned redeem transaction
func (c *Client) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	owner, err := solana.PublicKeyFromBase58(req.OwnerAddress)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}
	merchant, err := solana.PublicKeyFromBase58(req.MerchantAddress)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid merchant address: %v", err)})
		return
	}

	resp, err := c.RedeemUnsigned(r.Context(), RedeemParams{
		Owner:    owner,
		CardID:   req.CardID,
		Merchant: merchant,
		Amount:   req.Amount,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleRefund - POST: build an unsigned refund transaction
func (c *Client) HandleRefund(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	owner, err := solana.PublicKeyFromBase58(req.OwnerAddress)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}

	resp, err := c.RefundUnsigned(r.Context(), RefundParams{Owner: owner, CardID: req.CardID})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleSetRules - POST: build an unsigned rule_set transaction. Merchant
// addresses are validated locally; malformed input never reaches the cluster.
func (c *Client) HandleSetRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SetRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	owner, err := solana.PublicKeyFromBase58(req.OwnerAddress)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}

	resp, err := c.SetRulesUnsigned(r.Context(), SetRulesParams{
		Owner:     owner,
		CardID:    req.CardID,
		Merchants: req.Merchants,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleDelete - POST: build an unsigned delete transaction
func (c *Client) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	owner, err := solana.PublicKeyFromBase58(req.OwnerAddress)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}

	resp, err := c.DeleteGiftCardUnsigned(r.Context(), owner, req.CardID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{Success: true, Message: resp.Message, Data: resp})
}

// HandleSendTransaction - POST: submit a wallet-signed transaction
func (c *Client) HandleSendTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}
	if req.SignedTransaction == "" {
		respondJSON(w, Response{Success: false, Message: "signed_transaction is required"})
		return
	}

	sig, err := c.SendSignedTransaction(r.Context(), req.SignedTransaction, Activity{
		CardID:    req.CardID,
		Operation: req.Operation,
		Merchant:  req.Merchant,
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{
		Success: true,
		Message: "Transaction confirmed",
		Data:    map[string]string{"signature": sig, "explorer_url": c.GetExplorerURL(sig)},
	})
}

// HandleListGiftCards - GET ?owner=: all cards of an owner. A missing owner
// (disconnected wallet) is an empty list, not an error.
func (c *Client) HandleListGiftCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ownerParam := r.URL.Query().Get("owner")
	if ownerParam == "" {
		respondJSON(w, Response{Success: true, Data: []CardView{}})
		return
	}
	owner, err := solana.PublicKeyFromBase58(ownerParam)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}

	cards, err := c.GetAllGiftCards(r.Context(), owner)
	if err != nil {
		respondError(w, err)
		return
	}

	views := make([]CardView, 0, len(cards))
	for _, card := range cards {
		views = append(views, newCardView(card))
	}
	respondJSON(w, Response{Success: true, Data: views})
}

// HandleGetGiftCard - GET ?owner=&card_id=: one card's detail view
func (c *Client) HandleGetGiftCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	owner, err := solana.PublicKeyFromBase58(r.URL.Query().Get("owner"))
	if err != nil {
		respondJSON(w, Response{Success: false, Message: fmt.Sprintf("Invalid owner address: %v", err)})
		return
	}
	cardID, err := strconv.ParseUint(r.URL.Query().Get("card_id"), 10, 64)
	if err != nil {
		respondJSON(w, Response{Success: false, Message: "card_id parameter must be an unsigned integer"})
		return
	}

	card, err := c.GetGiftCard(r.Context(), owner, cardID)
	if err != nil {
		respondError(w, err)
		return
	}
	if card == nil {
		respondJSON(w, Response{Success: false, Message: "Gift card not found"})
		return
	}
	respondJSON(w, Response{Success: true, Data: newCardView(*card)})
}

// HandleGetTransactionStatus - GET ?signature=
func (c *Client) HandleGetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	signature := r.URL.Query().Get("signature")
	if signature == "" {
		respondJSON(w, Response{Success: false, Message: "signature parameter required"})
		return
	}

	result, err := c.GetTransactionStatus(r.Context(), signature)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, Response{Success: true, Data: result})
}

// HandleListTokens - GET: the static token registry
func (c *Client) HandleListTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, Response{Success: true, Data: CommonTokens})
}
