package evm

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/sigweihq/walletkit/pkg/explorer"
	"github.com/sigweihq/walletkit/pkg/session"
)

// TxLister lists an account's native transactions from an indexing API.
// *explorer.Client satisfies it.
type TxLister interface {
	TxList(ctx context.Context, address string, params *explorer.TxListParams) ([]explorer.Transaction, error)
}

var _ TxLister = (*explorer.Client)(nil)

// Adapter implements chains.Service for Polygon and other EVM chains
type Adapter struct {
	cfg       chains.ChainConfig
	chainID   *big.Int
	backend   Backend
	providers session.EVMSource
	explorer  TxLister
	notifier  chains.Notifier
	logger    *slog.Logger

	confirmTimeout time.Duration
	pollInterval   time.Duration
	historyLimit   int
}

var (
	_ chains.Service        = (*Adapter)(nil)
	_ chains.AssetHistorian = (*Adapter)(nil)
)

// Option configures an Adapter
type Option func(*Adapter)

// WithLogger sets the adapter's logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithNotifier sets where degraded reads and completed transfers are reported
func WithNotifier(n chains.Notifier) Option {
	return func(a *Adapter) {
		if n != nil {
			a.notifier = n
		}
	}
}

// WithExplorer sets the indexing API used for native history
func WithExplorer(l TxLister) Option {
	return func(a *Adapter) { a.explorer = l }
}

// WithConfirmation overrides the receipt deadline and poll interval
func WithConfirmation(timeout, interval time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.confirmTimeout = timeout
		}
		if interval > 0 {
			a.pollInterval = interval
		}
	}
}

// WithHistoryLimit sets the explorer page size
func WithHistoryLimit(limit int) Option {
	return func(a *Adapter) {
		if limit > 0 {
			a.historyLimit = limit
		}
	}
}

// NewAdapter creates an EVM service for cfg. The numeric chain id used for
// signing comes from constants.NetworkToChainID.
func NewAdapter(cfg chains.ChainConfig, backend Backend, providers session.EVMSource, opts ...Option) (*Adapter, error) {
	if cfg.ID != chains.ChainPolygon {
		return nil, fmt.Errorf("%w: evm adapter cannot serve %s", chains.ErrUnsupportedChain, cfg.ID)
	}
	chainID, ok := constants.NetworkToChainID[cfg.Network]
	if !ok {
		return nil, fmt.Errorf("%w: no chain id for network %s", chains.ErrUnsupportedChain, cfg.Network)
	}
	if backend == nil {
		return nil, fmt.Errorf("evm backend is required")
	}

	a := &Adapter{
		cfg:            cfg,
		chainID:        big.NewInt(chainID),
		backend:        backend,
		providers:      providers,
		notifier:       chains.NewLogNotifier(nil),
		logger:         slog.Default(),
		confirmTimeout: constants.ConfirmationTimeout,
		pollInterval:   constants.ConfirmationPollInterval,
		historyLimit:   constants.HistoryLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("chain", cfg.ID.String(), "network", cfg.Network)
	return a, nil
}

// Chain implements chains.Service
func (a *Adapter) Chain() chains.ChainID {
	return chains.ChainPolygon
}

// Config implements chains.Service
func (a *Adapter) Config() chains.ChainConfig {
	return a.cfg
}

// ChainID returns the numeric chain id transactions are signed for
func (a *Adapter) ChainID() *big.Int {
	return new(big.Int).Set(a.chainID)
}

// PublicKey implements chains.Service
func (a *Adapter) PublicKey(ctx context.Context) (string, error) {
	provider, err := a.provider()
	if err != nil {
		return "", err
	}
	accounts, err := provider.Accounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to request evm accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", nil
	}
	return accounts[0].Hex(), nil
}

// PrivateKey implements chains.Service. Injected providers that refuse the
// export request yield "".
func (a *Adapter) PrivateKey(ctx context.Context) (string, error) {
	provider, err := a.provider()
	if err != nil {
		return "", err
	}
	result, err := provider.Request(ctx, session.MethodEVMPrivateKey)
	if err != nil {
		a.logger.DebugContext(ctx, "provider declined key export", "error", err)
		return "", nil
	}
	key, ok := result.(string)
	if !ok {
		return "", nil
	}
	return key, nil
}

func (a *Adapter) provider() (session.EVMProvider, error) {
	if a.providers == nil {
		return nil, fmt.Errorf("evm provider: %w", chains.ErrProviderNotInitialized)
	}
	return a.providers.EVMProvider()
}

func (a *Adapter) parseAddress(address string) (common.Address, error) {
	if !chains.IsValidEVMAddress(address) {
		return common.Address{}, chains.InvalidAddressError(a.Chain(), address)
	}
	return common.HexToAddress(address), nil
}

func (a *Adapter) notify(ctx context.Context, level chains.NoticeLevel, msg string, err error) {
	a.notifier.Notify(ctx, chains.Notice{
		Level:   level,
		Chain:   a.Chain(),
		Message: msg,
		Err:     err,
	})
}
