package giftprogram

import "github.com/gagliardetto/solana-go"

// Program IDs
const (
	// Gift card program ID (dari declare_id di program Solana)
	GiftCardProgramID = "GcoSaa4P2NADPsf6R5urbrUEv9SccPTP5Xjd6GznV8p"
)

// PDA Seeds
var (
	SeedGiftCard = []byte("gift_card")
)

// Limits
const (
	// Max merchants per gift card allow-list (program account size limit)
	MaxAllowedMerchants = 10

	// Decimals assumed when the mint account cannot be fetched
	DefaultTokenDecimals = 9
)

// System Program IDs
var (
	SystemProgramID       = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	TokenProgramID        = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysVarRentID          = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

// Explorer URLs
const (
	ExplorerURLDevnet  = "https://explorer.solana.com/tx/%s?cluster=devnet"
	ExplorerURLTestnet = "https://explorer.solana.com/tx/%s?cluster=testnet"
	ExplorerURLMainnet = "https://explorer.solana.com/tx/%s"
)

// RPC URLs
const (
	RPCURLDevnet    = "https://api.devnet.solana.com"
	RPCURLTestnet   = "https://api.testnet.solana.com"
	RPCURLMainnet   = "https://api.mainnet-beta.solana.com"
	RPCURLLocalhost = "http://127.0.0.1:8899"
)

// WS URLs
const (
	WSURLDevnet    = "wss://api.devnet.solana.com"
	WSURLTestnet   = "wss://api.testnet.solana.com"
	WSURLMainnet   = "wss://api.mainnet-beta.solana.com"
	WSURLLocalhost = "ws://127.0.0.1:8900"
)
