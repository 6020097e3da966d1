package session

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/walletkit/pkg/chains"
)

// Key export request methods understood by embedded-key signers
const (
	MethodSolanaPrivateKey = "private_key"
	MethodEVMPrivateKey    = "eth_private_key"
)

// SolanaWallet is the signing capability for Solana
type SolanaWallet interface {
	// RequestAccounts returns the base58 addresses the wallet controls
	RequestAccounts(ctx context.Context) ([]string, error)

	// SignTransaction adds the wallet's signature to tx
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)

	// Request is a raw passthrough, used for key export
	Request(ctx context.Context, method string) (any, error)
}

// EVMProvider is the signing capability for EVM chains
type EVMProvider interface {
	// Accounts returns the addresses the provider controls
	Accounts(ctx context.Context) ([]common.Address, error)

	// SignTransaction signs tx on behalf of from for the given chain id
	SignTransaction(ctx context.Context, from common.Address, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)

	// Request is a raw passthrough, used for key export
	Request(ctx context.Context, method string) (any, error)
}

// SolanaSource yields the current Solana wallet
type SolanaSource interface {
	SolanaWallet() (SolanaWallet, error)
}

// EVMSource yields the current EVM provider
type EVMSource interface {
	EVMProvider() (EVMProvider, error)
}

// Session is the signer/provider supply for every chain. It is constructed
// once at startup and passed to the wallet registry; logging in or out swaps
// the signers without rebuilding the adapters.
type Session struct {
	mu           sync.RWMutex
	solanaWallet SolanaWallet
	evmProvider  EVMProvider
	solanaRPC    *rpc.Client
	evmClient    *ethclient.Client
}

// Option configures a Session
type Option func(*Session)

// WithSolanaWallet sets the Solana signing capability
func WithSolanaWallet(w SolanaWallet) Option {
	return func(s *Session) { s.solanaWallet = w }
}

// WithEVMProvider sets the EVM signing capability
func WithEVMProvider(p EVMProvider) Option {
	return func(s *Session) { s.evmProvider = p }
}

// WithSolanaRPC sets the read-only Solana connection
func WithSolanaRPC(client *rpc.Client) Option {
	return func(s *Session) { s.solanaRPC = client }
}

// WithEVMClient sets the read-only EVM connection
func WithEVMClient(client *ethclient.Client) Option {
	return func(s *Session) { s.evmClient = client }
}

// New creates a session
func New(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SolanaWallet implements SolanaSource
func (s *Session) SolanaWallet() (SolanaWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.solanaWallet == nil {
		return nil, fmt.Errorf("%w: solana wallet", chains.ErrProviderNotInitialized)
	}
	return s.solanaWallet, nil
}

// EVMProvider implements EVMSource
func (s *Session) EVMProvider() (EVMProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.evmProvider == nil {
		return nil, fmt.Errorf("%w: polygon provider", chains.ErrProviderNotInitialized)
	}
	return s.evmProvider, nil
}

// SetSolanaWallet swaps the Solana signer (nil logs out)
func (s *Session) SetSolanaWallet(w SolanaWallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solanaWallet = w
}

// SetEVMProvider swaps the EVM signer (nil logs out)
func (s *Session) SetEVMProvider(p EVMProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evmProvider = p
}

// SolanaRPC returns the Solana connection, dialling rpcURL on first use
func (s *Session) SolanaRPC(rpcURL string) *rpc.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solanaRPC == nil {
		s.solanaRPC = rpc.New(rpcURL)
	}
	return s.solanaRPC
}

// EVMClient returns the EVM connection, dialling rpcURL on first use
func (s *Session) EVMClient(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evmClient == nil {
		client, err := ethclient.DialContext(ctx, rpcURL)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
		}
		s.evmClient = client
	}
	return s.evmClient, nil
}

// Close releases the network connections held by the session
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evmClient != nil {
		s.evmClient.Close()
		s.evmClient = nil
	}
	if s.solanaRPC != nil {
		err := s.solanaRPC.Close()
		s.solanaRPC = nil
		return err
	}
	return nil
}
