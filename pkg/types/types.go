// Package types holds the JSON shapes walletctl prints with -json
package types

import (
	"time"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/constants"
)

// ChainInfo describes a supported chain
type ChainInfo struct {
	Chain       string      `json:"chain"`
	Network     string      `json:"network"`
	RPCURL      string      `json:"rpcUrl"`
	ExplorerURL string      `json:"explorerUrl,omitempty"`
	Assets      []AssetInfo `json:"assets"`
}

// AssetInfo describes one asset of a chain
type AssetInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address,omitempty"` // empty for the native asset
	Decimals uint8  `json:"decimals"`
	Icon     string `json:"icon,omitempty"`
}

// BalanceResponse is a single balance read. Error is set when the balance
// degraded to zero.
type BalanceResponse struct {
	Chain   string  `json:"chain"`
	Address string  `json:"address"`
	Asset   string  `json:"asset"`
	Balance float64 `json:"balance"`
	Error   string  `json:"error,omitempty"`
}

// SendResponse reports a transfer
type SendResponse struct {
	Chain           string  `json:"chain"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Asset           string  `json:"asset"`
	Amount          float64 `json:"amount"`
	Fee             float64 `json:"fee"`
	TransactionHash string  `json:"transactionHash,omitempty"`
	ExplorerURL     string  `json:"explorerUrl,omitempty"`
	Status          string  `json:"status"` // "confirmed" or "failed"
	Error           string  `json:"error,omitempty"`
}

// HistoryResponse represents the transaction history response
type HistoryResponse struct {
	Chain        string                    `json:"chain"`
	Address      string                    `json:"address"`
	Transactions []*TransactionHistoryItem `json:"transactions"`
	Total        int                       `json:"total"`
	Error        string                    `json:"error,omitempty"`
}

// TransactionHistoryItem represents a single transaction in the history response
type TransactionHistoryItem struct {
	TransactionHash string     `json:"transactionHash"`
	BlockTime       *time.Time `json:"blockTime,omitempty"`
	ExplorerURL     string     `json:"explorerUrl,omitempty"`
}

// NewChainInfo converts a chain configuration
func NewChainInfo(cfg chains.ChainConfig) ChainInfo {
	info := ChainInfo{
		Chain:       cfg.ID.String(),
		Network:     cfg.Network,
		RPCURL:      cfg.RPCURL,
		ExplorerURL: cfg.ExplorerURL,
		Assets:      make([]AssetInfo, 0, len(cfg.Assets)),
	}
	for _, asset := range cfg.Assets {
		info.Assets = append(info.Assets, AssetInfo{
			Name:     asset.Name,
			Symbol:   asset.Symbol,
			Address:  asset.Address,
			Decimals: asset.Decimals,
			Icon:     asset.Icon,
		})
	}
	return info
}

// NewBalanceResponse converts a balance read
func NewBalanceResponse(cfg chains.ChainConfig, address, symbol string, balance chains.Recovered[float64]) BalanceResponse {
	return BalanceResponse{
		Chain:   cfg.ID.String(),
		Address: address,
		Asset:   symbol,
		Balance: balance.Value,
		Error:   errString(balance.Err),
	}
}

// NewHistoryResponse converts a history read. Transactions is never null.
func NewHistoryResponse(cfg chains.ChainConfig, address string, history chains.Recovered[[]chains.TransactionRecord]) HistoryResponse {
	items := make([]*TransactionHistoryItem, 0, len(history.Value))
	for _, record := range history.Value {
		items = append(items, &TransactionHistoryItem{
			TransactionHash: record.Signature,
			BlockTime:       record.BlockTime,
			ExplorerURL:     TxURL(cfg, record.Signature),
		})
	}
	return HistoryResponse{
		Chain:        cfg.ID.String(),
		Address:      address,
		Transactions: items,
		Total:        len(items),
		Error:        errString(history.Err),
	}
}

// TxURL links a transaction in the chain's block explorer
func TxURL(cfg chains.ChainConfig, txID string) string {
	if cfg.ExplorerURL == "" || txID == "" {
		return ""
	}
	url := cfg.ExplorerURL + "tx/" + txID
	if cfg.Network == constants.NetworkSolanaDevnet {
		url += "?cluster=devnet"
	}
	return url
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
