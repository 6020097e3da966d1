// Package wallet is the entry point for obtaining chain services. A Registry
// builds each chain's adapter on first use and hands out the same instance
// afterwards.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/chains/evm"
	"github.com/sigweihq/walletkit/pkg/chains/svm"
	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/sigweihq/walletkit/pkg/explorer"
	"github.com/sigweihq/walletkit/pkg/session"
	"github.com/sigweihq/walletkit/pkg/utils"
)

// Registry manages one service per supported chain
type Registry struct {
	sess     *session.Session
	logger   *slog.Logger
	notifier chains.Notifier

	configs        map[chains.ChainID]chains.ChainConfig
	solanaRPC      svm.RPC
	evmBackend     evm.Backend
	txLister       evm.TxLister
	explorerAPIKey string
	endpoints      *evm.ChainListEndpointProvider

	confirmTimeout time.Duration
	pollInterval   time.Duration

	slots map[chains.ChainID]*serviceSlot
	mu    sync.Mutex
}

// serviceSlot serialises builds of one chain so a slow build never blocks
// callers of another chain
type serviceSlot struct {
	mu  sync.Mutex
	svc chains.Service
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger handed to every adapter
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNotifier sets where adapters report degraded reads and transfer results
func WithNotifier(n chains.Notifier) Option {
	return func(r *Registry) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithChainConfig replaces the built-in configuration of one chain
func WithChainConfig(cfg chains.ChainConfig) Option {
	return func(r *Registry) { r.configs[cfg.ID] = cfg }
}

// WithSolanaRPC uses client instead of dialling the configured endpoint
func WithSolanaRPC(client svm.RPC) Option {
	return func(r *Registry) { r.solanaRPC = client }
}

// WithEVMBackend uses backend instead of dialling the configured endpoint
func WithEVMBackend(backend evm.Backend) Option {
	return func(r *Registry) { r.evmBackend = backend }
}

// WithTxLister uses l for Polygon history instead of the configured explorer
func WithTxLister(l evm.TxLister) Option {
	return func(r *Registry) { r.txLister = l }
}

// WithExplorerAPIKey sets the key sent to the block explorer API
func WithExplorerAPIKey(key string) Option {
	return func(r *Registry) { r.explorerAPIKey = key }
}

// WithEndpointDiscovery lets the registry fall back to discovered public
// endpoints when the configured Polygon endpoint does not answer
func WithEndpointDiscovery(p *evm.ChainListEndpointProvider) Option {
	return func(r *Registry) { r.endpoints = p }
}

// WithConfirmation overrides the confirmation deadline and poll interval
func WithConfirmation(timeout, interval time.Duration) Option {
	return func(r *Registry) {
		r.confirmTimeout = timeout
		r.pollInterval = interval
	}
}

// NewRegistry creates a registry bound to sess. Adapters are not built until
// GetService is called for their chain.
func NewRegistry(sess *session.Session, opts ...Option) *Registry {
	if sess == nil {
		sess = session.New()
	}
	r := &Registry{
		sess:           sess,
		logger:         slog.Default(),
		configs:        make(map[chains.ChainID]chains.ChainConfig),
		confirmTimeout: constants.ConfirmationTimeout,
		pollInterval:   constants.ConfirmationPollInterval,
		slots:          make(map[chains.ChainID]*serviceSlot),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.notifier == nil {
		r.notifier = chains.NewLogNotifier(r.logger)
	}
	return r
}

// Session returns the signer supply the registry was built with
func (r *Registry) Session() *session.Session {
	return r.sess
}

// SupportedChains lists the chains GetService accepts
func (r *Registry) SupportedChains() []chains.ChainID {
	out := make([]chains.ChainID, len(chains.SupportedChains))
	copy(out, chains.SupportedChains)
	return out
}

// GetService returns the service for id, building it on first use. A failed
// build is not cached, so a later call can succeed once the cause (e.g. a
// missing provider) is fixed.
func (r *Registry) GetService(ctx context.Context, id chains.ChainID) (chains.Service, error) {
	if !id.IsValid() {
		return nil, fmt.Errorf("%w: %s", chains.ErrUnsupportedChain, id)
	}

	r.mu.Lock()
	slot, ok := r.slots[id]
	if !ok {
		slot = &serviceSlot{}
		r.slots[id] = slot
	}
	r.mu.Unlock()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.svc != nil {
		return slot.svc, nil
	}

	svc, err := r.build(ctx, id)
	if err != nil {
		return nil, err
	}
	slot.svc = svc
	r.logger.Debug("chain service created", "chain", id.String())
	return svc, nil
}

// Config returns the effective configuration for id
func (r *Registry) Config(id chains.ChainID) (chains.ChainConfig, error) {
	if cfg, ok := r.configs[id]; ok {
		return cfg, nil
	}
	return chains.GetConfig(id)
}

func (r *Registry) build(ctx context.Context, id chains.ChainID) (chains.Service, error) {
	cfg, err := r.Config(id)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch id {
	case chains.ChainSolana:
		return r.buildSolana(cfg)
	case chains.ChainPolygon:
		return r.buildPolygon(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", chains.ErrUnsupportedChain, id)
	}
}

func (r *Registry) buildSolana(cfg chains.ChainConfig) (chains.Service, error) {
	client := r.solanaRPC
	if client == nil {
		if err := utils.ValidateEndpointURL(cfg.RPCURL); err != nil {
			return nil, fmt.Errorf("solana rpc: %w", err)
		}
		client = r.sess.SolanaRPC(cfg.RPCURL)
	}

	adapter, err := svm.NewAdapter(cfg, client, r.sess,
		svm.WithLogger(r.logger),
		svm.WithNotifier(r.notifier),
		svm.WithConfirmation(r.confirmTimeout, r.pollInterval),
	)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// buildPolygon requires an EVM provider up front; without one there is no
// account to act for.
func (r *Registry) buildPolygon(ctx context.Context, cfg chains.ChainConfig) (chains.Service, error) {
	if _, err := r.sess.EVMProvider(); err != nil {
		return nil, err
	}

	backend := r.evmBackend
	if backend == nil {
		rpcURL, err := r.polygonEndpoint(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client, err := r.sess.EVMClient(ctx, rpcURL)
		if err != nil {
			return nil, err
		}
		backend = client
	}

	opts := []evm.Option{
		evm.WithLogger(r.logger),
		evm.WithNotifier(r.notifier),
		evm.WithConfirmation(r.confirmTimeout, r.pollInterval),
	}
	lister, err := r.polygonExplorer(cfg)
	if err != nil {
		return nil, err
	}
	if lister != nil {
		opts = append(opts, evm.WithExplorer(lister))
	}

	adapter, err := evm.NewAdapter(cfg, backend, r.sess, opts...)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

func (r *Registry) polygonEndpoint(ctx context.Context, cfg chains.ChainConfig) (string, error) {
	if r.endpoints == nil {
		if err := utils.ValidateEndpointURL(cfg.RPCURL); err != nil {
			return "", fmt.Errorf("polygon rpc: %w", err)
		}
		return cfg.RPCURL, nil
	}

	chainID, ok := constants.NetworkToChainID[cfg.Network]
	if !ok {
		return "", fmt.Errorf("%w: no chain id for network %s", chains.ErrUnsupportedChain, cfg.Network)
	}
	if err := r.endpoints.RefreshEndpoints(ctx); err != nil {
		r.logger.Warn("endpoint discovery failed", "error", err)
	}
	return r.endpoints.SelectEndpoint(ctx, chainID, cfg.RPCURL, constants.CallContractTimeout)
}

func (r *Registry) polygonExplorer(cfg chains.ChainConfig) (evm.TxLister, error) {
	if r.txLister != nil {
		return r.txLister, nil
	}
	if cfg.ExplorerAPIURL == "" {
		return nil, nil
	}

	opts := []explorer.Option{explorer.WithLogger(r.logger)}
	// multichain endpoints (Etherscan v2) select the chain by query parameter
	if strings.Contains(cfg.ExplorerAPIURL, "/v2/") {
		opts = append(opts, explorer.WithChainID(constants.NetworkToChainID[cfg.Network]))
	}
	client, err := explorer.NewClient(cfg.ExplorerAPIURL, r.explorerAPIKey, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}
