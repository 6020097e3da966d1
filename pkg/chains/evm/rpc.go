package evm

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/constants"
)

// Backend is the subset of the Ethereum JSON-RPC API the adapter uses.
// *ethclient.Client satisfies it.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

var _ Backend = (*ethclient.Client)(nil)

var errReceiptTimeout = errors.New("timed out waiting for receipt")

// waitForReceipt polls for the receipt of txHash until it is mined or the
// confirmation deadline passes. Each lookup has its own short timeout so one
// stuck request does not consume the whole budget. Caller cancellation is
// ignored once the transaction is on the wire.
func (a *Adapter) waitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.confirmTimeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		callCtx, callCancel := context.WithTimeout(ctx, constants.TransactionReceiptTimeout)
		receipt, err := a.backend.TransactionReceipt(callCtx, txHash)
		callCancel()

		switch {
		case err == nil && receipt != nil:
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return receipt, chains.ConfirmationError(a.Chain(), txHash.Hex(), errors.New("transaction reverted"))
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			a.logger.DebugContext(ctx, "receipt lookup failed", "tx", txHash.Hex(), "attempt", attempt, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, chains.ConfirmationError(a.Chain(), txHash.Hex(), errReceiptTimeout)
		case <-time.After(a.pollInterval):
		}
	}
}
