package solwallet

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type faucetRequest struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleFaucet - POST: request a devnet SOL airdrop
func (w *SolWallet) HandleFaucet(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req faucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(rw, apiResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.Address == "" {
		respondJSON(rw, apiResponse{Success: false, Message: "address is required"})
		return
	}
	if req.Lamports == 0 {
		req.Lamports = 1_000_000_000 // 1 SOL
	}

	sig, err := w.RequestAirdrop(r.Context(), req.Address, req.Lamports)
	if err != nil {
		respondJSON(rw, apiResponse{Success: false, Message: err.Error()})
		return
	}
	respondJSON(rw, apiResponse{
		Success: true,
		Message: "Airdrop requested",
		Data:    map[string]string{"signature": sig, "explorer_url": w.GetExplorerURL(sig)},
	})
}

// HandleGetBalance - GET ?address=: lamport balance
func (w *SolWallet) HandleGetBalance(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	address := r.URL.Query().Get("address")
	if address == "" {
		respondJSON(rw, apiResponse{Success: false, Message: "address parameter required"})
		return
	}

	lamports, err := w.GetSolBalance(r.Context(), address)
	if err != nil {
		respondJSON(rw, apiResponse{Success: false, Message: err.Error()})
		return
	}
	respondJSON(rw, apiResponse{Success: true, Data: map[string]uint64{"lamports": lamports}})
}

// HandleGetActivityHistory - GET ?owner=&limit=: persisted operation history
func (w *SolWallet) HandleGetActivityHistory(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		respondJSON(rw, apiResponse{Success: false, Message: "owner parameter required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := w.GetActivityHistory(owner, limit)
	if err != nil {
		respondJSON(rw, apiResponse{Success: false, Message: err.Error()})
		return
	}
	respondJSON(rw, apiResponse{Success: true, Data: activities})
}
