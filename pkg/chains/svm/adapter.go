package svm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/sigweihq/walletkit/pkg/session"
)

// Adapter implements chains.Service for Solana
type Adapter struct {
	cfg      chains.ChainConfig
	rpc      RPC
	wallets  session.SolanaSource
	notifier chains.Notifier
	logger   *slog.Logger

	commitment      rpc.CommitmentType
	confirmTimeout  time.Duration
	pollInterval    time.Duration
	historyLimit    int
	historyParallel int
}

var _ chains.Service = (*Adapter)(nil)

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

// WithConfirmation overrides the confirmation deadline and poll interval
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

// WithHistory overrides how many signatures are listed and how many
// transactions are resolved concurrently
func WithHistory(limit, parallel int) Option {
	return func(a *Adapter) {
		if limit > 0 {
			a.historyLimit = limit
		}
		if parallel > 0 {
			a.historyParallel = parallel
		}
	}
}

// NewAdapter creates a Solana service. client is usually *rpc.Client; wallets
// supplies the signer at call time so logins do not require a new adapter.
func NewAdapter(cfg chains.ChainConfig, client RPC, wallets session.SolanaSource, opts ...Option) (*Adapter, error) {
	if cfg.ID != chains.ChainSolana {
		return nil, fmt.Errorf("%w: svm adapter cannot serve %s", chains.ErrUnsupportedChain, cfg.ID)
	}
	if client == nil {
		return nil, fmt.Errorf("solana rpc client is required")
	}

	a := &Adapter{
		cfg:             cfg,
		rpc:             client,
		wallets:         wallets,
		notifier:        chains.NewLogNotifier(nil),
		logger:          slog.Default(),
		commitment:      rpc.CommitmentConfirmed,
		confirmTimeout:  constants.ConfirmationTimeout,
		pollInterval:    constants.ConfirmationPollInterval,
		historyLimit:    constants.HistoryLimit,
		historyParallel: constants.HistoryMaxParallel,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("chain", cfg.ID.String(), "network", cfg.Network)
	return a, nil
}

// Chain implements chains.Service
func (a *Adapter) Chain() chains.ChainID {
	return chains.ChainSolana
}

// Config implements chains.Service
func (a *Adapter) Config() chains.ChainConfig {
	return a.cfg
}

// PublicKey implements chains.Service
func (a *Adapter) PublicKey(ctx context.Context) (string, error) {
	wallet, err := a.wallet()
	if err != nil {
		return "", err
	}
	accounts, err := wallet.RequestAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to request solana accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", nil
	}
	return accounts[0], nil
}

// PrivateKey implements chains.Service. Only embedded-key wallets answer the
// export request; anything else yields "".
func (a *Adapter) PrivateKey(ctx context.Context) (string, error) {
	wallet, err := a.wallet()
	if err != nil {
		return "", err
	}
	result, err := wallet.Request(ctx, session.MethodSolanaPrivateKey)
	if err != nil {
		a.logger.DebugContext(ctx, "wallet declined key export", "error", err)
		return "", nil
	}
	key, ok := result.(string)
	if !ok {
		return "", nil
	}
	return key, nil
}

func (a *Adapter) wallet() (session.SolanaWallet, error) {
	if a.wallets == nil {
		return nil, fmt.Errorf("solana wallet: %w", chains.ErrProviderNotInitialized)
	}
	return a.wallets.SolanaWallet()
}

func (a *Adapter) parseAddress(address string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, chains.InvalidAddressError(a.Chain(), address)
	}
	return key, nil
}

func (a *Adapter) notify(ctx context.Context, level chains.NoticeLevel, msg string, err error) {
	a.notifier.Notify(ctx, chains.Notice{
		Level:   level,
		Chain:   a.Chain(),
		Message: msg,
		Err:     err,
	})
}
