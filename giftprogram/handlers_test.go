package giftprogram

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleCreateGiftCard_RejectsWrongMethod(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	client.HandleCreateGiftCard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/giftcard/create", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleCreateGiftCard_RejectsBadJSON(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/create", strings.NewReader("{not json"))
	client.HandleCreateGiftCard(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid request")
}

func TestHandleCreateGiftCard_RejectsBadAddresses(t *testing.T) {
	client := testClient(t)

	body := `{"owner_address":"nope","token_mint":"` + WSOLMint + `","amount":"1.5"}`
	rec := httptest.NewRecorder()
	client.HandleCreateGiftCard(rec, httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/create", strings.NewReader(body)))
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid owner address")

	body = `{"owner_address":"9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx","token_mint":"nope","amount":"1.5"}`
	rec = httptest.NewRecorder()
	client.HandleCreateGiftCard(rec, httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/create", strings.NewReader(body)))
	resp = decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid token mint")
}

func TestHandleCreateGiftCard_UnknownTokenSymbol(t *testing.T) {
	client := testClient(t)

	body := `{"owner_address":"9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx","token_symbol":"DOGE","amount":"1.5"}`
	rec := httptest.NewRecorder()
	client.HandleCreateGiftCard(rec, httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/create", strings.NewReader(body)))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, `Unknown token symbol "DOGE"`)
}

func TestHandleCreateGiftCard_ResolvesTokenSymbol(t *testing.T) {
	server := fakeRPCServer(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":null}`,
	}, map[string]string{
		"getTokenAccountBalance": `{"code":-32602,"message":"could not find account"}`,
	})
	client := clientAgainst(t, server)

	body := fmt.Sprintf(
		`{"owner_address":"9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx","token_symbol":"usdc","amount":"1.5","unlock_date":%d,"refund_date":%d}`,
		time.Now().Add(time.Hour).Unix(), time.Now().Add(2*time.Hour).Unix())
	rec := httptest.NewRecorder()
	client.HandleCreateGiftCard(rec, httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/create", strings.NewReader(body)))

	// The preflight runs against the resolved USDC mint, so its unfunded
	// error names the registry's mint address.
	usdc, _ := GetTokenBySymbol("USDC")
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, usdc.Mint)
}

func TestHandleSendTransaction_ForwardsActivityMetadata(t *testing.T) {
	server := fakeRPCServer(t, map[string]string{
		"sendTransaction":      fmt.Sprintf("%q", fakeSignature),
		"getSignatureStatuses": confirmedStatusResult,
	}, nil)
	client := clientAgainst(t, server)

	recorder := &capturingRecorder{}
	client.SetActivityRecorder(recorder)

	wallet := solana.NewWallet()
	instruction, err := client.BuildDeleteGiftCardInstruction(wallet.PublicKey(), 42)
	require.NoError(t, err)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		solana.Hash(solana.MustPublicKeyFromBase58(WSOLMint)),
		solana.TransactionPayer(wallet.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if wallet.PublicKey().Equals(key) {
			return &wallet.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
	txBytes, err := tx.MarshalBinary()
	require.NoError(t, err)

	body := fmt.Sprintf(`{"signed_transaction":%q,"operation":"delete","card_id":42}`,
		base64.StdEncoding.EncodeToString(txBytes))
	rec := httptest.NewRecorder()
	client.HandleSendTransaction(rec, httptest.NewRequest(http.MethodPost, "/api/v1/transaction/send", strings.NewReader(body)))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	require.Len(t, recorder.submitted, 1)
	assert.Equal(t, "delete", recorder.submitted[0].Operation)
	assert.Equal(t, uint64(42), recorder.submitted[0].CardID)
	assert.Equal(t, wallet.PublicKey().String(), recorder.submitted[0].Owner)
	require.Len(t, recorder.statuses, 1)
	assert.Equal(t, StatusConfirmed, recorder.statuses[0])
}

func TestHandleRedeem_RejectsBadMerchant(t *testing.T) {
	client := testClient(t)

	body := `{"owner_address":"9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx","card_id":1,"merchant_address":"nope","amount":"1"}`
	rec := httptest.NewRecorder()
	client.HandleRedeem(rec, httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/redeem", strings.NewReader(body)))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid merchant address")
}

func TestHandleListGiftCards_EmptyOwnerIsEmptyList(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	client.HandleListGiftCards(rec, httptest.NewRequest(http.MethodGet, "/api/v1/giftcard/list", nil))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Message)

	// An empty list is dropped by omitempty; anything present must be empty.
	views, _ := resp.Data.([]interface{})
	assert.Empty(t, views)
}

func TestHandleListGiftCards_RejectsBadOwner(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	client.HandleListGiftCards(rec, httptest.NewRequest(http.MethodGet, "/api/v1/giftcard/list?owner=nope", nil))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid owner address")
}

func TestHandleGetGiftCard_RejectsBadCardID(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	url := "/api/v1/giftcard/get?owner=9fru5gQYKd8PMS1qztZ9zLdTvVRQ11eF87PZYVUYVQsx&card_id=abc"
	client.HandleGetGiftCard(rec, httptest.NewRequest(http.MethodGet, url, nil))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "card_id")
}

func TestHandleGetTransactionStatus_RequiresSignature(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	client.HandleGetTransactionStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/giftcard/status", nil))

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "signature")
}

func TestHandleSendTransaction_RequiresPayload(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/send", strings.NewReader(`{}`))
	client.HandleSendTransaction(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "signed_transaction is required")
}

func TestHandleSendTransaction_RejectsBadBase64(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/giftcard/send", strings.NewReader(`{"signed_transaction":"!!not-base64!!"}`))
	client.HandleSendTransaction(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "failed to decode transaction")
}

func TestHandleListTokens(t *testing.T) {
	client := testClient(t)
	rec := httptest.NewRecorder()
	client.HandleListTokens(rec, httptest.NewRequest(http.MethodGet, "/api/v1/giftcard/tokens", nil))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	tokens, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, tokens, len(CommonTokens))
}
