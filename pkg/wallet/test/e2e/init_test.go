package e2e

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/session"
	"github.com/sigweihq/walletkit/pkg/wallet"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// TestRealRegistryReads builds both services against the public test
// networks and performs read-only calls. No key material is needed.
//
// Run with: go test -v -run TestRealRegistryReads ./pkg/wallet/test/e2e
func TestRealRegistryReads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("E2E_NETWORK") == "" {
		t.Skip("E2E_NETWORK not set, skipping tests that reach public RPC endpoints")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := newLogger()
	// Throwaway provider so the polygon service can be built
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sess := session.New(session.WithEVMProvider(session.NewLocalEVMProvider(key)))
	registry := wallet.NewRegistry(sess, wallet.WithLogger(logger))
	defer registry.Session().Close()

	t.Run("solana balance of the system program", func(t *testing.T) {
		svc, err := registry.GetService(ctx, chains.ChainSolana)
		require.NoError(t, err)

		balance := svc.GetBalance(ctx, "11111111111111111111111111111111", "SOL")
		assert.True(t, balance.OK(), "balance read degraded: %v", balance.Err)
	})

	t.Run("polygon balance of a fresh account", func(t *testing.T) {
		svc, err := registry.GetService(ctx, chains.ChainPolygon)
		require.NoError(t, err)

		address, err := svc.PublicKey(ctx)
		require.NoError(t, err)

		balance := svc.GetBalance(ctx, address, "POL")
		require.True(t, balance.OK(), "balance read degraded: %v", balance.Err)
		assert.Zero(t, balance.Value)
	})
}
