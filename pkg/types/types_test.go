package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigweihq/walletkit/pkg/chains"
)

func mustConfig(t *testing.T, id chains.ChainID) chains.ChainConfig {
	t.Helper()
	cfg, err := chains.GetConfig(id)
	require.NoError(t, err)
	return cfg
}

func TestNewChainInfo(t *testing.T) {
	info := NewChainInfo(mustConfig(t, chains.ChainPolygon))

	assert.Equal(t, "polygon", info.Chain)
	assert.Equal(t, "polygon-amoy", info.Network)
	require.Len(t, info.Assets, 3)
	assert.Equal(t, "POL", info.Assets[0].Symbol)
	assert.Empty(t, info.Assets[0].Address)
	assert.NotEmpty(t, info.Assets[1].Address)
}

func TestAssetInfo_NativeOmitsAddress(t *testing.T) {
	raw, err := json.Marshal(AssetInfo{Name: "Solana", Symbol: "SOL", Decimals: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Solana","symbol":"SOL","decimals":9}`, string(raw))
}

func TestNewBalanceResponse(t *testing.T) {
	cfg := mustConfig(t, chains.ChainSolana)

	tests := []struct {
		name     string
		balance  chains.Recovered[float64]
		wantJSON string
	}{
		{
			name:     "ok",
			balance:  chains.Recovered[float64]{Value: 1.5},
			wantJSON: `{"chain":"solana","address":"addr","asset":"SOL","balance":1.5}`,
		},
		{
			name:     "degraded",
			balance:  chains.Recovered[float64]{Err: errors.New("rpc down")},
			wantJSON: `{"chain":"solana","address":"addr","asset":"SOL","balance":0,"error":"rpc down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(NewBalanceResponse(cfg, "addr", "SOL", tt.balance))
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(raw))
		})
	}
}

func TestNewHistoryResponse(t *testing.T) {
	cfg := mustConfig(t, chains.ChainSolana)
	when := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

	resp := NewHistoryResponse(cfg, "addr", chains.Recovered[[]chains.TransactionRecord]{
		Value: []chains.TransactionRecord{
			{Signature: "sig1", BlockTime: &when},
			{Signature: "sig2"},
		},
	})

	assert.Equal(t, 2, resp.Total)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "https://explorer.solana.com/tx/sig1?cluster=devnet", resp.Transactions[0].ExplorerURL)
	assert.Nil(t, resp.Transactions[1].BlockTime)

	raw, err := json.Marshal(resp.Transactions[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"blockTime":"2024-01-15T10:30:00Z"`)
}

func TestNewHistoryResponse_EmptyIsArray(t *testing.T) {
	resp := NewHistoryResponse(mustConfig(t, chains.ChainPolygon), "0xabc", chains.Recovered[[]chains.TransactionRecord]{
		Err: chains.ErrHistoryUnavailable,
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"transactions":[]`)
	assert.Contains(t, string(raw), `"error":"transaction history unavailable"`)
}

func TestTxURL(t *testing.T) {
	tests := []struct {
		name  string
		chain chains.ChainID
		txID  string
		want  string
	}{
		{"polygon", chains.ChainPolygon, "0xdead", "https://amoy.polygonscan.com/tx/0xdead"},
		{"solana devnet", chains.ChainSolana, "5sig", "https://explorer.solana.com/tx/5sig?cluster=devnet"},
		{"empty id", chains.ChainPolygon, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TxURL(mustConfig(t, tt.chain), tt.txID))
		})
	}
}
