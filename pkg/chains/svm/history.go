package svm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/walletkit/pkg/chains"
	"golang.org/x/sync/errgroup"
)

// GetTransactionHistory implements chains.Service. Signatures are listed
// newest first and resolved concurrently; transactions that cannot be
// fetched are left out rather than failing the whole list.
func (a *Adapter) GetTransactionHistory(ctx context.Context, address string) chains.Recovered[[]chains.TransactionRecord] {
	owner, err := a.parseAddress(address)
	if err != nil {
		return a.historyFailed(ctx, err)
	}

	limit := a.historyLimit
	signatures, err := a.rpc.GetSignaturesForAddressWithOpts(ctx, owner, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: a.commitment,
	})
	if err != nil {
		return a.historyFailed(ctx, err)
	}

	resolved := make([]*chains.TransactionRecord, len(signatures))
	var dropped atomic.Int32
	maxVersion := uint64(0)

	var g errgroup.Group
	g.SetLimit(a.historyParallel)
	for i, entry := range signatures {
		if entry == nil {
			dropped.Add(1)
			continue
		}
		g.Go(func() error {
			tx, err := a.rpc.GetParsedTransaction(ctx, entry.Signature, &rpc.GetParsedTransactionOpts{
				Commitment:                     a.commitment,
				MaxSupportedTransactionVersion: &maxVersion,
			})
			if err != nil || tx == nil {
				a.logger.DebugContext(ctx, "dropping unresolved transaction", "signature", entry.Signature, "error", err)
				dropped.Add(1)
				return nil
			}

			record := &chains.TransactionRecord{
				Signature: entry.Signature.String(),
				Raw:       tx,
			}
			switch {
			case tx.BlockTime != nil:
				record.BlockTime = unixTime(int64(*tx.BlockTime))
			case entry.BlockTime != nil:
				record.BlockTime = unixTime(int64(*entry.BlockTime))
			}
			resolved[i] = record
			return nil
		})
	}
	_ = g.Wait()

	records := make([]chains.TransactionRecord, 0, len(resolved))
	for _, record := range resolved {
		if record != nil {
			records = append(records, *record)
		}
	}
	if n := dropped.Load(); n > 0 {
		a.logger.WarnContext(ctx, "some transactions could not be resolved", "address", address, "dropped", n)
	}
	return chains.Recovered[[]chains.TransactionRecord]{Value: records}
}

func (a *Adapter) historyFailed(ctx context.Context, err error) chains.Recovered[[]chains.TransactionRecord] {
	a.logger.WarnContext(ctx, "history read failed", "error", err)
	a.notify(ctx, chains.NoticeError, "Could not load transaction history", err)
	return chains.Recovered[[]chains.TransactionRecord]{Value: []chains.TransactionRecord{}, Err: err}
}

func unixTime(seconds int64) *time.Time {
	t := time.Unix(seconds, 0).UTC()
	return &t
}
