// Package explorer is a client for Etherscan-compatible block explorer APIs
// (Polygonscan, Etherscan v2). Only the account endpoints used for wallet
// history are implemented.
package explorer

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sigweihq/walletkit/pkg/utils"
)

// Client queries a block explorer API
type Client struct {
	baseURL    string
	apiKey     string
	chainID    int64 // sent as chainid for multichain (v2) endpoints; 0 omits it
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithChainID targets one chain on a multichain endpoint
func WithChainID(id int64) Option {
	return func(cl *Client) { cl.chainID = id }
}

// WithLogger sets the client's logger
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates an explorer client for baseURL, e.g.
// https://api-amoy.polygonscan.com/api. apiKey may be empty; most explorers
// then apply a stricter rate limit.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if err := utils.ValidateEndpointURL(baseURL); err != nil {
		return nil, fmt.Errorf("invalid explorer URL: %w", err)
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: utils.CreateHTTPClientWithTimeouts(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API endpoint the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}
