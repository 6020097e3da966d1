package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/constants"
)

// PreparedTransfer is an unsigned EIP-1559 transfer
type PreparedTransfer struct {
	Tx     *ethtypes.Transaction
	From   common.Address
	To     common.Address // recipient, not the token contract
	Symbol string
	Amount *big.Int // base units
	// BaseFee is the base fee of the head block the estimate was built on
	BaseFee *big.Int
	FeeWei  *big.Int

	fee float64
}

var _ chains.PreparedTransaction = (*PreparedTransfer)(nil)

// Chain implements chains.PreparedTransaction
func (p *PreparedTransfer) Chain() chains.ChainID { return chains.ChainPolygon }

// Asset implements chains.PreparedTransaction
func (p *PreparedTransfer) Asset() string { return p.Symbol }

// Fee implements chains.PreparedTransaction. The value is advisory: the
// actual charge depends on the base fee when the transaction is mined.
func (p *PreparedTransfer) Fee() float64 { return p.fee }

// PrepareTransaction implements chains.Service
func (a *Adapter) PrepareTransaction(ctx context.Context, from, to string, amount float64, symbol string) (chains.PreparedTransaction, error) {
	asset, err := a.cfg.FindAsset(symbol)
	if err != nil {
		return nil, err
	}
	fromAddr, err := a.parseAddress(from)
	if err != nil {
		return nil, err
	}
	toAddr, err := a.parseAddress(to)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %v", chains.ErrInvalidAmount, amount)
	}
	raw, err := chains.ToBaseUnits(amount, asset.Decimals)
	if err != nil {
		return nil, err
	}

	txTo := toAddr
	value := raw
	var data []byte
	if !asset.IsNative() {
		txTo = common.HexToAddress(asset.Address)
		value = new(big.Int)
		if data, err = transferCallData(toAddr, raw); err != nil {
			return nil, err
		}
	}

	nonce, err := a.backend.PendingNonceAt(ctx, fromAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gas, err := a.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  fromAddr,
		To:    &txTo,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tip, err := a.backend.SuggestGasTipCap(ctx)
	if err != nil {
		a.logger.DebugContext(ctx, "gas tip suggestion failed, using fallback", "error", err)
		tip = big.NewInt(constants.PolygonGasTipFallback)
	}

	head, err := a.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}
	baseFee := new(big.Int)
	if head.BaseFee != nil {
		baseFee.Set(head.BaseFee)
	}

	feeCap := new(big.Int).Mul(baseFee, big.NewInt(constants.PolygonFeeCapMultiplier))
	feeCap.Add(feeCap, tip)

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   a.ChainID(),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &txTo,
		Value:     value,
		Data:      data,
	})

	feeWei := new(big.Int).Add(baseFee, tip)
	feeWei.Mul(feeWei, new(big.Int).SetUint64(gas))

	a.logger.DebugContext(ctx, "prepared transfer",
		"symbol", asset.Symbol, "amount", raw.String(), "to", toAddr.Hex(),
		"nonce", nonce, "gas", gas, "fee_wei", feeWei.String())

	return &PreparedTransfer{
		Tx:      tx,
		From:    fromAddr,
		To:      toAddr,
		Symbol:  asset.Symbol,
		Amount:  raw,
		BaseFee: baseFee,
		FeeWei:  feeWei,
		fee:     chains.FromBaseUnits(feeWei, a.cfg.NativeAsset().Decimals),
	}, nil
}

// SendPreparedTransaction implements chains.Service. The transaction is
// broadcast once; when the receipt does not arrive or reports a revert the
// hash is still returned alongside the error.
func (a *Adapter) SendPreparedTransaction(ctx context.Context, prepared chains.PreparedTransaction) (string, error) {
	transfer, ok := prepared.(*PreparedTransfer)
	if !ok || transfer == nil || transfer.Tx == nil {
		return "", fmt.Errorf("%w: %T", chains.ErrForeignTransaction, prepared)
	}

	provider, err := a.provider()
	if err != nil {
		return "", err
	}
	signed, err := provider.SignTransaction(ctx, transfer.From, transfer.Tx, a.ChainID())
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := a.backend.SendTransaction(ctx, signed); err != nil {
		err = chains.SubmissionError(a.Chain(), err)
		a.notify(ctx, chains.NoticeError, "Transaction was rejected", err)
		return "", err
	}

	hash := signed.Hash()
	a.logger.InfoContext(ctx, "transaction submitted", "tx", hash.Hex(), "symbol", transfer.Symbol)

	receipt, err := a.waitForReceipt(ctx, hash)
	if err != nil {
		a.notify(ctx, chains.NoticeError, "Transaction was not confirmed", err)
		return hash.Hex(), err
	}

	a.logger.InfoContext(ctx, "transfer confirmed", "tx", hash.Hex(), "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
	a.notify(ctx, chains.NoticeSuccess, fmt.Sprintf("Sent %s", transfer.Symbol), nil)
	return hash.Hex(), nil
}

// SendTransaction prepares and sends a transfer in one step, skipping the
// fee review
func (a *Adapter) SendTransaction(ctx context.Context, from, to string, amount float64, symbol string) (string, error) {
	prepared, err := a.PrepareTransaction(ctx, from, to, amount, symbol)
	if err != nil {
		return "", err
	}
	return a.SendPreparedTransaction(ctx, prepared)
}
