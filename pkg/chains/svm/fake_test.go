package svm

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// fakeRPC is an in-memory RPC used by the adapter tests
type fakeRPC struct {
	mu sync.Mutex

	balances      map[solana.PublicKey]uint64
	tokenAccounts map[solana.PublicKey]token.Account
	balanceErr    error

	blockhash   solana.Hash
	lastValid   uint64
	blockHeight uint64
	fee         uint64
	rent        uint64

	sendErr   error
	sent      [][]byte
	statusErr any // non-nil marks the submitted transaction as failed
	pending   bool

	signatures []solana.Signature
	sigErr     error
	failingTx  map[solana.Signature]bool
}

var _ RPC = (*fakeRPC)(nil)

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		balances:      map[solana.PublicKey]uint64{},
		tokenAccounts: map[solana.PublicKey]token.Account{},
		blockhash:     solana.Hash{9, 9, 9},
		lastValid:     1_000,
		blockHeight:   900,
		fee:           5_000,
		rent:          2_039_280,
		failingTx:     map[solana.Signature]bool{},
	}
}

func (f *fakeRPC) setTokenAccount(address solana.PublicKey, account token.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenAccounts[address] = account
}

func (f *fakeRPC) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeRPC) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return &rpc.GetBalanceResult{Value: f.balances[account]}, nil
}

func (f *fakeRPC) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.tokenAccounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	buf := new(bytes.Buffer)
	if err := bin.NewBinEncoder(buf).Encode(&acct); err != nil {
		return nil, err
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Owner: solana.TokenProgramID,
			Data:  rpc.DataBytesOrJSONFromBytes(buf.Bytes()),
		},
	}, nil
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            f.blockhash,
			LastValidBlockHeight: f.lastValid,
		},
	}, nil
}

func (f *fakeRPC) GetFeeForMessage(ctx context.Context, message string, commitment rpc.CommitmentType) (*rpc.GetFeeForMessageResult, error) {
	fee := f.fee
	return &rpc.GetFeeForMessageResult{Value: &fee}, nil
}

func (f *fakeRPC) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error) {
	if dataSize != tokenAccountSize {
		return 0, fmt.Errorf("unexpected data size %d", dataSize)
	}
	return f.rent, nil
}

func (f *fakeRPC) SendRawTransactionWithOpts(ctx context.Context, rawTx []byte, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sent = append(f.sent, rawTx)

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return solana.Signature{}, err
	}
	return tx.Signatures[0], nil
}

func (f *fakeRPC) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &rpc.GetSignatureStatusesResult{}
	for range transactionSignatures {
		if f.pending {
			result.Value = append(result.Value, nil)
			continue
		}
		result.Value = append(result.Value, &rpc.SignatureStatusesResult{
			Err:                f.statusErr,
			ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
		})
	}
	return result, nil
}

func (f *fakeRPC) GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blockHeight, nil
}

func (f *fakeRPC) GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error) {
	if f.sigErr != nil {
		return nil, f.sigErr
	}
	var out []*rpc.TransactionSignature
	for _, sig := range f.signatures {
		out = append(out, &rpc.TransactionSignature{Signature: sig})
	}
	if opts != nil && opts.Limit != nil && len(out) > *opts.Limit {
		out = out[:*opts.Limit]
	}
	return out, nil
}

func (f *fakeRPC) GetParsedTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetParsedTransactionOpts) (*rpc.GetParsedTransactionResult, error) {
	f.mu.Lock()
	failing := f.failingTx[txSig]
	f.mu.Unlock()
	if failing {
		return nil, errors.New("transaction not available")
	}
	blockTime := solana.UnixTimeSeconds(1_700_000_000)
	return &rpc.GetParsedTransactionResult{BlockTime: &blockTime}, nil
}

func testKey(offset byte) solana.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = offset + byte(i)
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed))
}
