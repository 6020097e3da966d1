package evm

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sigweihq/walletkit/pkg/explorer"
)

// fakeBackend is an in-memory Backend used by the adapter tests
type fakeBackend struct {
	mu sync.Mutex

	balances      map[common.Address]*big.Int
	tokenBalances map[common.Address]*big.Int // by owner
	callErr       error

	nonce   uint64
	gas     uint64
	tip     *big.Int
	tipErr  error
	baseFee *big.Int

	sendErr       error
	sent          []*ethtypes.Transaction
	receiptStatus uint64
	noReceipt     bool

	lastCall ethereum.CallMsg
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		balances:      map[common.Address]*big.Int{},
		tokenBalances: map[common.Address]*big.Int{},
		nonce:         7,
		gas:           21_000,
		tip:           big.NewInt(30_000_000_000),
		baseFee:       big.NewInt(10_000_000_000),
		receiptStatus: ethtypes.ReceiptStatusSuccessful,
	}
}

func (f *fakeBackend) sentTxs() []*ethtypes.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ethtypes.Transaction(nil), f.sent...)
}

func (f *fakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if b, ok := f.balances[account]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	args, err := erc20ABI.Methods["balanceOf"].Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	owner := args[0].(common.Address)
	balance, ok := f.tokenBalances[owner]
	if !ok {
		balance = new(big.Int)
	}
	return erc20ABI.Methods["balanceOf"].Outputs.Pack(balance)
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCall = call
	return f.gas, nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if f.tipErr != nil {
		return nil, f.tipErr
	}
	return new(big.Int).Set(f.tip), nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	return &ethtypes.Header{Number: big.NewInt(100), BaseFee: f.baseFee}, nil
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(80002), nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.noReceipt {
		return nil, ethereum.NotFound
	}
	for _, tx := range f.sent {
		if tx.Hash() == txHash {
			return &ethtypes.Receipt{
				Status:      f.receiptStatus,
				TxHash:      txHash,
				BlockNumber: big.NewInt(101),
				GasUsed:     tx.Gas(),
			}, nil
		}
	}
	return nil, ethereum.NotFound
}

// fakeExplorer is an in-memory TxLister
type fakeExplorer struct {
	txs        []explorer.Transaction
	err        error
	lastParams *explorer.TxListParams
}

func (f *fakeExplorer) TxList(ctx context.Context, address string, params *explorer.TxListParams) ([]explorer.Transaction, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.txs, nil
}

var errRateLimited = errors.New("max rate limit reached")
