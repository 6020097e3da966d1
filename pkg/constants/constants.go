package constants

import "time"

const (
	DelayBetweenRPCCalls      = 200              // delay in milliseconds between RPC calls
	TransactionReceiptTimeout = 2 * time.Second  // timeout for a single receipt/status lookup
	CallContractTimeout       = 10 * time.Second // timeout for contract call
	ExplorerTimeout           = 30 * time.Second // timeout for block explorer requests
	TLSHandshakeTimeout       = 10 * time.Second // timeout for TLS handshake
	ResponseHeaderTimeout     = 20 * time.Second // timeout for response header
	ExpectContinueTimeout     = 1 * time.Second  // timeout for expect continue
	MaxResponseBodySize       = 10 * 1024 * 1024 // maximum response body size in bytes (10MB)
)

// Confirmation polling. Submission itself is never retried.
const (
	ConfirmationTimeout      = 90 * time.Second
	ConfirmationPollInterval = 1 * time.Second
)

const (
	HistoryLimit            = 20 // signatures / explorer rows per history request
	HistoryMaxParallel      = 8  // concurrent getParsedTransaction calls
	ExplorerMaxOffset       = 100
	SolanaDecimals          = 9
	PolygonDecimals         = 18
	PolygonGasTipFallback   = 30_000_000_000 // 30 gwei, Polygon's minimum priority fee
	PolygonFeeCapMultiplier = 2
)

// Network Types
const (
	NetworkSolana       = "solana"
	NetworkSolanaDevnet = "solana-devnet"
	NetworkPolygon      = "polygon"
	NetworkPolygonAmoy  = "polygon-amoy"
)

// Native asset symbols
const (
	SymbolSOL = "SOL"
	SymbolPOL = "POL"
)

const (
	USDCDevAddressSolanaDevnet = "Gh9ZwEmdLJ8DscKNTkTqPbNwLNNBjuSzaG9Vp2KGtKJr"
	USDCAddressPolygonAmoy     = "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582"
	LINKAddressPolygonAmoy     = "0x0Fd9e8d3aF1aaee056EB9e802c3A762a667b1904"
)

// mapping from network name to numeric chain ID
var NetworkToChainID = map[string]int64{
	NetworkPolygon:     137,
	NetworkPolygonAmoy: 80002,
}

var OfficialRPCEndpoints = map[string]string{
	NetworkSolana:       "https://api.mainnet-beta.solana.com",
	NetworkSolanaDevnet: "https://api.devnet.solana.com",
	NetworkPolygon:      "https://polygon-rpc.com",
	NetworkPolygonAmoy:  "https://rpc.ankr.com/polygon_amoy",
}

// ChainListURL lists public RPC endpoints per EVM chain id
const ChainListURL = "https://chainlist.org/rpcs.json"

var ExplorerAPIEndpoints = map[string]string{
	NetworkPolygon:     "https://api.polygonscan.com/api",
	NetworkPolygonAmoy: "https://api-amoy.polygonscan.com/api",
}

var BlockExplorerURLs = map[string]string{
	NetworkSolana:       "https://explorer.solana.com/",
	NetworkSolanaDevnet: "https://explorer.solana.com/",
	NetworkPolygon:      "https://polygonscan.com/",
	NetworkPolygonAmoy:  "https://amoy.polygonscan.com/",
}
