package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sigweihq/walletkit/pkg/chains"
)

// GetBalance implements chains.Service
func (a *Adapter) GetBalance(ctx context.Context, address, symbol string) chains.Recovered[float64] {
	balance, err := a.balance(ctx, address, symbol)
	if err != nil {
		a.logger.WarnContext(ctx, "balance read failed", "address", address, "symbol", symbol, "error", err)
		a.notify(ctx, chains.NoticeError, fmt.Sprintf("Could not load %s balance", symbol), err)
		return chains.Recovered[float64]{Value: 0, Err: err}
	}
	return chains.Recovered[float64]{Value: balance}
}

func (a *Adapter) balance(ctx context.Context, address, symbol string) (float64, error) {
	asset, err := a.cfg.FindAsset(symbol)
	if err != nil {
		return 0, err
	}
	owner, err := a.parseAddress(address)
	if err != nil {
		return 0, err
	}

	if asset.IsNative() {
		wei, err := a.backend.BalanceAt(ctx, owner, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to get balance: %w", err)
		}
		return chains.FromBaseUnits(wei, asset.Decimals), nil
	}

	raw, err := tokenBalance(ctx, a.backend, common.HexToAddress(asset.Address), owner)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s balance: %w", asset.Symbol, err)
	}
	return chains.FromBaseUnits(raw, asset.Decimals), nil
}
