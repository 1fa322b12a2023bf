package giftprogram

import "strings"

// TokenInfo - Known SPL token metadata
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
}

// CommonTokens - Token mints offered in the create flow (Devnet)
var CommonTokens = []TokenInfo{
	{
		Symbol:   "WSOL",
		Name:     "Wrapped SOL (WSOL)",
		Mint:     "So11111111111111111111111111111111111111112",
		Decimals: 9,
	},
	{
		Symbol:   "USDC",
		Name:     "USD Coin",
		Mint:     "Gh9ZwEmdLJ8DscKNTkTqPbNwLNNBjuSzaG9Vp2KGtKJr",
		Decimals: 6,
	},
	{
		Symbol:   "USDT",
		Name:     "Tether USD",
		Mint:     "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
		Decimals: 6,
	},
}

// WSOLMint - Wrapped SOL mint, same address on every network
const WSOLMint = "So11111111111111111111111111111111111111112"

// GetTokenByMint - Look up a known token by its mint address
func GetTokenByMint(mint string) (TokenInfo, bool) {
	for _, token := range CommonTokens {
		if token.Mint == mint {
			return token, true
		}
	}
	return TokenInfo{}, false
}

// GetTokenBySymbol - Look up a known token by symbol (case-insensitive)
func GetTokenBySymbol(symbol string) (TokenInfo, bool) {
	for _, token := range CommonTokens {
		if strings.EqualFold(token.Symbol, symbol) {
			return token, true
		}
	}
	return TokenInfo{}, false
}
