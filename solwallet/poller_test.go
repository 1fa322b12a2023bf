package solwallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRPCServer answers each JSON-RPC method with a canned raw result, or a
// canned error object when the method appears in errs instead.
func fakeRPCServer(t *testing.T, results, errs map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if errObj, ok := errs[req.Method]; ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":%s}`, req.ID, errObj)
			return
		}
		result, ok := results[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found: %s"}}`, req.ID, req.Method)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(server.Close)
	return server
}

func newPollerWallet(t *testing.T, rpcURL string) *SolWallet {
	t.Helper()
	w, err := NewSolWallet(context.Background(), Config{
		RPCURL:  rpcURL,
		Network: "localhost",
	}, nil)
	require.NoError(t, err)
	return w
}

func TestWatchSolBalance_DeliversUpdates(t *testing.T) {
	server := fakeRPCServer(t, map[string]string{
		"getBalance": `{"context":{"slot":1},"value":5000000000}`,
	}, nil)
	w := newPollerWallet(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan uint64, 64)
	w.WatchSolBalance(ctx, solana.PublicKey{}, 5*time.Millisecond, func(lamports uint64) {
		updates <- lamports
	})

	for i := 0; i < 2; i++ {
		select {
		case lamports := <-updates:
			assert.Equal(t, uint64(5_000_000_000), lamports)
		case <-time.After(2 * time.Second):
			t.Fatal("no balance update delivered")
		}
	}
}

func TestWatchSolBalance_StopsOnCancel(t *testing.T) {
	server := fakeRPCServer(t, map[string]string{
		"getBalance": `{"context":{"slot":1},"value":1}`,
	}, nil)
	w := newPollerWallet(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan uint64, 64)
	w.WatchSolBalance(ctx, solana.PublicKey{}, 5*time.Millisecond, func(lamports uint64) {
		updates <- lamports
	})

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never started")
	}
	cancel()

	// Let a read already in flight drain, then expect silence.
	time.Sleep(50 * time.Millisecond)
	for len(updates) > 0 {
		<-updates
	}
	select {
	case <-updates:
		t.Fatal("poller kept delivering after cancellation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchTokenBalance_DeliversAmount(t *testing.T) {
	server := fakeRPCServer(t, map[string]string{
		"getTokenAccountBalance": `{"context":{"slot":1},"value":{"amount":"1500000","decimals":6,"uiAmount":1.5,"uiAmountString":"1.5"}}`,
	}, nil)
	w := newPollerWallet(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan string, 64)
	w.WatchTokenBalance(ctx, solana.PublicKey{}, 5*time.Millisecond, func(amount string) {
		updates <- amount
	})

	select {
	case amount := <-updates:
		assert.Equal(t, "1500000", amount)
	case <-time.After(2 * time.Second):
		t.Fatal("no token balance update delivered")
	}
}

func TestWatchTokenBalance_MissingAccountIsZero(t *testing.T) {
	server := fakeRPCServer(t, nil, map[string]string{
		"getTokenAccountBalance": `{"code":-32602,"message":"could not find account"}`,
	})
	w := newPollerWallet(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan string, 64)
	w.WatchTokenBalance(ctx, solana.PublicKey{}, 5*time.Millisecond, func(amount string) {
		updates <- amount
	})

	select {
	case amount := <-updates:
		assert.Equal(t, "0", amount, "a missing account reads as zero")
	case <-time.After(2 * time.Second):
		t.Fatal("no token balance update delivered")
	}
}
