package session

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/utils"
)

// LocalSolanaWallet signs with an embedded ed25519 key
type LocalSolanaWallet struct {
	key solana.PrivateKey
}

var _ SolanaWallet = (*LocalSolanaWallet)(nil)

// NewLocalSolanaWallet wraps an existing key
func NewLocalSolanaWallet(key solana.PrivateKey) *LocalSolanaWallet {
	return &LocalSolanaWallet{key: key}
}

// LocalSolanaWalletFromString parses a hex or base58 encoded key
func LocalSolanaWalletFromString(encoded string) (*LocalSolanaWallet, error) {
	key, err := utils.ParseSolanaPrivateKey(encoded)
	if err != nil {
		return nil, err
	}
	return NewLocalSolanaWallet(key), nil
}

// PublicKey returns the wallet's address
func (w *LocalSolanaWallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

// RequestAccounts implements SolanaWallet
func (w *LocalSolanaWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{w.key.PublicKey().String()}, nil
}

// SignTransaction implements SolanaWallet. The wallet's key must be one of
// the transaction's required signers.
func (w *LocalSolanaWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	owner := w.key.PublicKey()
	if !requiresSigner(tx, owner) {
		return nil, fmt.Errorf("%w: wallet %s is not a signer of this transaction", chains.ErrInvalidAddress, owner)
	}
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

func requiresSigner(tx *solana.Transaction, key solana.PublicKey) bool {
	if tx == nil {
		return false
	}
	signers := int(tx.Message.Header.NumRequiredSignatures)
	for i, account := range tx.Message.AccountKeys {
		if i >= signers {
			break
		}
		if account.Equals(key) {
			return true
		}
	}
	return false
}

// Request implements SolanaWallet
func (w *LocalSolanaWallet) Request(ctx context.Context, method string) (any, error) {
	switch method {
	case MethodSolanaPrivateKey:
		return hex.EncodeToString(w.key), nil
	default:
		return nil, fmt.Errorf("unsupported request method: %s", method)
	}
}

// LocalEVMProvider signs with an embedded secp256k1 key
type LocalEVMProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ EVMProvider = (*LocalEVMProvider)(nil)

// NewLocalEVMProvider wraps an existing key
func NewLocalEVMProvider(key *ecdsa.PrivateKey) *LocalEVMProvider {
	return &LocalEVMProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// LocalEVMProviderFromString parses a hex encoded key
func LocalEVMProviderFromString(encoded string) (*LocalEVMProvider, error) {
	key, err := utils.ParseEVMPrivateKey(encoded)
	if err != nil {
		return nil, err
	}
	return NewLocalEVMProvider(key), nil
}

// Address returns the provider's account
func (p *LocalEVMProvider) Address() common.Address {
	return p.address
}

// Accounts implements EVMProvider
func (p *LocalEVMProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{p.address}, nil
}

// SignTransaction implements EVMProvider
func (p *LocalEVMProvider) SignTransaction(ctx context.Context, from common.Address, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	if from != p.address {
		return nil, fmt.Errorf("%w: provider controls %s, not %s", chains.ErrInvalidAddress, p.address.Hex(), from.Hex())
	}
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Request implements EVMProvider
func (p *LocalEVMProvider) Request(ctx context.Context, method string) (any, error) {
	switch method {
	case MethodEVMPrivateKey:
		return hex.EncodeToString(crypto.FromECDSA(p.key)), nil
	default:
		return nil, fmt.Errorf("unsupported request method: %s", method)
	}
}
