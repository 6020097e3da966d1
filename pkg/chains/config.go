package chains

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/walletkit/pkg/constants"
)

// AssetDescriptor describes one transferable asset on a chain
type AssetDescriptor struct {
	Name     string
	Symbol   string // unique within a chain
	Address  string // token contract (EVM) or mint (SVM); empty for the native asset
	Decimals uint8
	Icon     string
}

// IsNative reports whether the asset is the chain's base currency
func (a AssetDescriptor) IsNative() bool {
	return a.Address == ""
}

// ChainConfig is the static metadata for one chain. It is never mutated after
// construction; WithRPCURL and friends return modified copies.
type ChainConfig struct {
	ID             ChainID
	Network        string // constants.Network* name, e.g. "solana-devnet"
	RPCURL         string
	ExplorerURL    string // block explorer UI
	ExplorerAPIURL string // indexing API, empty when the chain has none
	Assets         []AssetDescriptor
	IsValidAddress func(address string) bool
}

// FindAsset resolves symbol against the chain's asset list
func (c ChainConfig) FindAsset(symbol string) (AssetDescriptor, error) {
	for _, asset := range c.Assets {
		if asset.Symbol == symbol {
			return asset, nil
		}
	}
	return AssetDescriptor{}, UnsupportedAssetError(c.ID, symbol)
}

// NativeAsset returns the chain's base currency descriptor
func (c ChainConfig) NativeAsset() AssetDescriptor {
	for _, asset := range c.Assets {
		if asset.IsNative() {
			return asset
		}
	}
	return AssetDescriptor{}
}

// Symbols returns the asset symbols in configuration order
func (c ChainConfig) Symbols() []string {
	symbols := make([]string, len(c.Assets))
	for i, asset := range c.Assets {
		symbols[i] = asset.Symbol
	}
	return symbols
}

// WithRPCURL returns a copy of the config pointing at a different RPC endpoint
func (c ChainConfig) WithRPCURL(url string) ChainConfig {
	if url != "" {
		c.RPCURL = url
	}
	return c
}

// WithExplorerAPIURL returns a copy of the config with a different indexing API
func (c ChainConfig) WithExplorerAPIURL(url string) ChainConfig {
	if url != "" {
		c.ExplorerAPIURL = url
	}
	return c
}

// Validate checks the per-chain invariants: one native asset, unique symbols
func (c ChainConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Assets))
	natives := 0
	for _, asset := range c.Assets {
		if _, dup := seen[asset.Symbol]; dup {
			return fmt.Errorf("duplicate asset symbol %s on %s", asset.Symbol, c.ID)
		}
		seen[asset.Symbol] = struct{}{}
		if asset.IsNative() {
			natives++
		}
	}
	if natives != 1 {
		return fmt.Errorf("chain %s must declare exactly one native asset, found %d", c.ID, natives)
	}
	if c.IsValidAddress == nil {
		return fmt.Errorf("chain %s has no address validator", c.ID)
	}
	return nil
}

var solanaAssets = []AssetDescriptor{
	{
		Name:     "Solana",
		Symbol:   constants.SymbolSOL,
		Decimals: constants.SolanaDecimals,
		Icon:     "/assets/icons/solana.svg",
	},
	{
		Name:     "USD Coin Dev",
		Symbol:   "USDC-Dev",
		Address:  constants.USDCDevAddressSolanaDevnet,
		Decimals: 6,
		Icon:     "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v/logo.png",
	},
}

var polygonAssets = []AssetDescriptor{
	{
		Name:     "Polygon",
		Symbol:   constants.SymbolPOL,
		Decimals: constants.PolygonDecimals,
		Icon:     "/assets/icons/polygon.svg",
	},
	{
		Name:     "ChainLink Token",
		Symbol:   "LINK",
		Address:  constants.LINKAddressPolygonAmoy,
		Decimals: 18,
		Icon:     "/assets/icons/link.svg",
	},
	{
		Name:     "USDC",
		Symbol:   "USDC",
		Address:  constants.USDCAddressPolygonAmoy,
		Decimals: 6,
		Icon:     "/assets/icons/usdc.svg",
	},
}

var configs = map[ChainID]ChainConfig{
	ChainSolana: {
		ID:             ChainSolana,
		Network:        constants.NetworkSolanaDevnet,
		RPCURL:         constants.OfficialRPCEndpoints[constants.NetworkSolanaDevnet],
		ExplorerURL:    constants.BlockExplorerURLs[constants.NetworkSolanaDevnet],
		Assets:         solanaAssets,
		IsValidAddress: IsValidSolanaAddress,
	},
	ChainPolygon: {
		ID:             ChainPolygon,
		Network:        constants.NetworkPolygonAmoy,
		RPCURL:         constants.OfficialRPCEndpoints[constants.NetworkPolygonAmoy],
		ExplorerURL:    constants.BlockExplorerURLs[constants.NetworkPolygonAmoy],
		ExplorerAPIURL: constants.ExplorerAPIEndpoints[constants.NetworkPolygonAmoy],
		Assets:         polygonAssets,
		IsValidAddress: IsValidEVMAddress,
	},
}

// GetConfig returns the static configuration for chain
func GetConfig(chain ChainID) (ChainConfig, error) {
	cfg, ok := configs[chain]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	return cfg, nil
}

// IsValidSolanaAddress accepts any base58 string that decodes to a 32-byte key
func IsValidSolanaAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// IsValidEVMAddress accepts 0x-prefixed or bare 40 hex character addresses
func IsValidEVMAddress(address string) bool {
	return common.IsHexAddress(address)
}
