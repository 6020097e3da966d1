package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/sigweihq/walletkit/pkg/utils"
)

// ChainListResponse represents a chain entry from chainlist.org/rpcs.json
type ChainListResponse struct {
	ChainID int `json:"chainId"`
	RPC     []struct {
		URL string `json:"url"`
	} `json:"rpc"`
}

// ChainListEndpointProvider discovers public RPC endpoints from chainlist.org
// and picks one that answers for the expected chain id
type ChainListEndpointProvider struct {
	sourceURL  string
	httpClient *http.Client
	endpoints  map[int64][]string // chainID -> []rpc_urls
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewChainListEndpointProvider creates a provider that fetches from sourceURL
// (constants.ChainListURL when empty)
func NewChainListEndpointProvider(logger *slog.Logger, sourceURL string) *ChainListEndpointProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if sourceURL == "" {
		sourceURL = constants.ChainListURL
	}
	return &ChainListEndpointProvider{
		sourceURL:  sourceURL,
		httpClient: utils.CreateHTTPClientWithTimeouts(),
		endpoints:  make(map[int64][]string),
		logger:     logger,
	}
}

// GetEndpoints returns the known endpoints for chainID, official first
func (p *ChainListEndpointProvider) GetEndpoints(chainID int64) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := officialEndpoints(chainID)
	for _, endpoint := range p.endpoints[chainID] {
		if !contains(out, endpoint) {
			out = append(out, endpoint)
		}
	}
	return out
}

// RefreshEndpoints fetches fresh endpoints from chainlist.org
func (p *ChainListEndpointProvider) RefreshEndpoints(ctx context.Context) error {
	chainListData, err := p.fetchAllChains(ctx)
	if err != nil {
		p.logger.Warn("failed to fetch from chainlist.org, using official endpoints only", "error", err)
		return err
	}

	endpoints := make(map[int64][]string)
	for _, chain := range chainListData {
		for _, rpc := range chain.RPC {
			// Only include HTTPS URLs and exclude templated URLs
			if strings.HasPrefix(rpc.URL, "https://") && !strings.Contains(rpc.URL, "${") {
				endpoints[int64(chain.ChainID)] = append(endpoints[int64(chain.ChainID)], rpc.URL)
			}
		}
	}

	p.mu.Lock()
	p.endpoints = endpoints
	p.mu.Unlock()
	return nil
}

// SelectEndpoint returns the first endpoint, trying preferred before the
// discovered ones, that reports chainID. Each probe gets timeout.
func (p *ChainListEndpointProvider) SelectEndpoint(ctx context.Context, chainID int64, preferred string, timeout time.Duration) (string, error) {
	candidates := p.GetEndpoints(chainID)
	if preferred != "" {
		candidates = append([]string{preferred}, remove(candidates, preferred)...)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no RPC endpoints known for chain %d", chainID)
	}

	var errs []error
	for _, endpoint := range candidates {
		if err := probeEndpoint(ctx, endpoint, chainID, timeout); err != nil {
			p.logger.Debug("endpoint rejected", "endpoint", endpoint, "chainID", chainID, "error", err)
			errs = append(errs, &RPCError{Endpoint: endpoint, Err: err})
			continue
		}
		p.logger.Debug("endpoint selected", "endpoint", endpoint, "chainID", chainID)
		return endpoint, nil
	}
	return "", fmt.Errorf("no healthy RPC endpoint for chain %d: %w", chainID, errors.Join(errs...))
}

// fetchAllChains fetches chain data from chainlist.org
func (p *ChainListEndpointProvider) fetchAllChains(ctx context.Context) ([]ChainListResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chainlist data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chainlist returned status %d", resp.StatusCode)
	}

	var chains []ChainListResponse
	if err := json.NewDecoder(resp.Body).Decode(&chains); err != nil {
		return nil, fmt.Errorf("failed to decode chainlist data: %w", err)
	}

	return chains, nil
}

// probeEndpoint dials endpoint and checks it serves chainID
func probeEndpoint(ctx context.Context, endpoint string, chainID int64, timeout time.Duration) error {
	if err := utils.ValidateEndpointURL(endpoint); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return err
	}
	defer client.Close()

	got, err := client.ChainID(ctx)
	if err != nil {
		return err
	}
	if got.Int64() != chainID {
		return fmt.Errorf("endpoint serves chain %s, want %d", got, chainID)
	}
	return nil
}

func officialEndpoints(chainID int64) []string {
	var out []string
	for network, id := range constants.NetworkToChainID {
		if id != chainID {
			continue
		}
		if endpoint, ok := constants.OfficialRPCEndpoints[network]; ok {
			out = append(out, endpoint)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
