package evm

import (
	"context"
	"fmt"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/explorer"
)

// GetTransactionHistory implements chains.Service. Native transactions come
// from the explorer's txlist endpoint, newest first.
func (a *Adapter) GetTransactionHistory(ctx context.Context, address string) chains.Recovered[[]chains.TransactionRecord] {
	records, err := a.nativeHistory(ctx, address)
	if err != nil {
		a.logger.WarnContext(ctx, "history read failed", "address", address, "error", err)
		a.notify(ctx, chains.NoticeError, "Could not load transaction history", err)
		return chains.Recovered[[]chains.TransactionRecord]{Value: []chains.TransactionRecord{}, Err: err}
	}
	return chains.Recovered[[]chains.TransactionRecord]{Value: records}
}

// GetAssetTransactionHistory implements chains.AssetHistorian. Token
// transfer history is not indexed; callers get an empty list and a notice.
func (a *Adapter) GetAssetTransactionHistory(ctx context.Context, address, symbol string) chains.Recovered[[]chains.TransactionRecord] {
	asset, err := a.cfg.FindAsset(symbol)
	if err != nil {
		a.notify(ctx, chains.NoticeError, "Could not load transaction history", err)
		return chains.Recovered[[]chains.TransactionRecord]{Value: []chains.TransactionRecord{}, Err: err}
	}
	if asset.IsNative() {
		return a.GetTransactionHistory(ctx, address)
	}

	err = fmt.Errorf("%w: %s transfers on %s", chains.ErrHistoryUnavailable, asset.Symbol, a.Chain())
	a.notify(ctx, chains.NoticeInfo, fmt.Sprintf("%s history is not available yet", asset.Symbol), err)
	return chains.Recovered[[]chains.TransactionRecord]{Value: []chains.TransactionRecord{}, Err: err}
}

func (a *Adapter) nativeHistory(ctx context.Context, address string) ([]chains.TransactionRecord, error) {
	if _, err := a.parseAddress(address); err != nil {
		return nil, err
	}
	if a.explorer == nil {
		return nil, fmt.Errorf("%w: no explorer API configured", chains.ErrHistoryUnavailable)
	}

	txs, err := a.explorer.TxList(ctx, address, &explorer.TxListParams{
		Page:   1,
		Offset: a.historyLimit,
		Sort:   "desc",
	})
	if err != nil {
		return nil, err
	}

	records := make([]chains.TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, chains.TransactionRecord{
			Signature: tx.Hash,
			BlockTime: tx.BlockTime(),
			Raw:       tx,
		})
	}
	return records, nil
}
