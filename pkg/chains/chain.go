package chains

import (
	"context"
	"time"
)

// ChainID names a supported chain and is used as a lookup key everywhere
type ChainID string

const (
	ChainSolana  ChainID = "solana"
	ChainPolygon ChainID = "polygon"
)

// SupportedChains lists every chain the registry can build a service for
var SupportedChains = []ChainID{
	ChainSolana,
	ChainPolygon,
}

// IsValid reports whether the chain is in the supported set
func (c ChainID) IsValid() bool {
	for _, supported := range SupportedChains {
		if c == supported {
			return true
		}
	}
	return false
}

func (c ChainID) String() string {
	return string(c)
}

// Service is the chain-agnostic wallet contract every adapter implements.
// Amounts crossing this boundary are always display units, never base units.
type Service interface {
	// Chain returns the chain this service operates on
	Chain() ChainID

	// Config returns the static chain configuration
	Config() ChainConfig

	// PublicKey resolves the authenticated account's address.
	// Returns "" and a nil error when no account is connected yet.
	PublicKey(ctx context.Context) (string, error)

	// GetBalance returns the balance of symbol held by address.
	// Failures never abort the read: the value degrades to 0 and the cause is
	// reported in Recovered.Err and through the notifier.
	GetBalance(ctx context.Context, address, symbol string) Recovered[float64]

	// PrepareTransaction builds an unsigned transfer and estimates its fee.
	// Nothing is submitted to the network.
	PrepareTransaction(ctx context.Context, from, to string, amount float64, symbol string) (PreparedTransaction, error)

	// SendPreparedTransaction signs and submits tx exactly once, then waits
	// for confirmation. Returns the transaction signature or hash.
	SendPreparedTransaction(ctx context.Context, tx PreparedTransaction) (string, error)

	// GetTransactionHistory lists recent transactions for address, newest first
	GetTransactionHistory(ctx context.Context, address string) Recovered[[]TransactionRecord]

	// PrivateKey exports the signing key when the embedded-key custody model
	// is active. Returns "" and a nil error for external wallets.
	PrivateKey(ctx context.Context) (string, error)
}

// PreparedTransaction is an unsigned, chain-specific transfer plus its fee
// estimate. It is only valid for the chain and asset it was built for.
type PreparedTransaction interface {
	// Chain returns the chain the transaction was prepared for
	Chain() ChainID

	// Asset returns the asset symbol being transferred
	Asset() string

	// Fee returns the estimated network fee in native-asset display units
	Fee() float64
}

// TransactionRecord is a normalized view of a historical transaction
type TransactionRecord struct {
	Signature string     // Solana signature or EVM transaction hash
	BlockTime *time.Time // nil when the network did not report one
	Raw       any        // chain-specific payload
}

// Recovered carries the result of a read path that degrades instead of
// failing. Value holds the recovered default when Err is non-nil.
type Recovered[T any] struct {
	Value T
	Err   error
}

// OK reports whether the value was read without degradation
func (r Recovered[T]) OK() bool {
	return r.Err == nil
}

// AssetHistorian is implemented by services that can filter history by
// asset. Services whose history does not depend on the asset return the
// same records as GetTransactionHistory.
type AssetHistorian interface {
	GetAssetTransactionHistory(ctx context.Context, address, symbol string) Recovered[[]TransactionRecord]
}
