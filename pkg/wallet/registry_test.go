package wallet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/chains/evm"
	"github.com/sigweihq/walletkit/pkg/chains/svm"
	"github.com/sigweihq/walletkit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test private key (DO NOT USE IN PRODUCTION)
const testEVMKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// localConfigs points both chains at local endpoints. Neither client
// connects until a request is made.
func localConfigs(t *testing.T) []Option {
	t.Helper()
	solanaCfg, err := chains.GetConfig(chains.ChainSolana)
	require.NoError(t, err)
	polygonCfg, err := chains.GetConfig(chains.ChainPolygon)
	require.NoError(t, err)

	return []Option{
		WithChainConfig(solanaCfg.WithRPCURL("http://127.0.0.1:8899")),
		WithChainConfig(polygonCfg.WithRPCURL("http://127.0.0.1:8545")),
	}
}

func newEVMSession(t *testing.T) *session.Session {
	t.Helper()
	provider, err := session.LocalEVMProviderFromString(testEVMKeyHex)
	require.NoError(t, err)
	return session.New(session.WithEVMProvider(provider))
}

func TestRegistrySameInstance(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newEVMSession(t), localConfigs(t)...)
	defer registry.Session().Close()

	for _, id := range registry.SupportedChains() {
		t.Run(id.String(), func(t *testing.T) {
			first, err := registry.GetService(ctx, id)
			require.NoError(t, err)
			second, err := registry.GetService(ctx, id)
			require.NoError(t, err)

			assert.Same(t, first, second)
			assert.Equal(t, id, first.Chain())
		})
	}
}

func TestRegistryAdapterTypes(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newEVMSession(t), localConfigs(t)...)
	defer registry.Session().Close()

	solanaSvc, err := registry.GetService(ctx, chains.ChainSolana)
	require.NoError(t, err)
	assert.IsType(t, &svm.Adapter{}, solanaSvc)

	polygonSvc, err := registry.GetService(ctx, chains.ChainPolygon)
	require.NoError(t, err)
	assert.IsType(t, &evm.Adapter{}, polygonSvc)
	assert.Equal(t, "http://127.0.0.1:8545", polygonSvc.Config().RPCURL)
}

func TestRegistryUnsupportedChain(t *testing.T) {
	registry := NewRegistry(nil)
	for _, id := range []chains.ChainID{"bitcoin", "", "Solana"} {
		_, err := registry.GetService(context.Background(), id)
		assert.ErrorIs(t, err, chains.ErrUnsupportedChain, "chain %q", id)
	}
}

func TestRegistryProviderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	sess := session.New()
	registry := NewRegistry(sess, localConfigs(t)...)
	defer sess.Close()

	_, err := registry.GetService(ctx, chains.ChainPolygon)
	assert.ErrorIs(t, err, chains.ErrProviderNotInitialized)

	provider, err := session.LocalEVMProviderFromString(testEVMKeyHex)
	require.NoError(t, err)
	sess.SetEVMProvider(provider)

	svc, err := registry.GetService(ctx, chains.ChainPolygon)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestRegistryRejectsInsecureEndpoint(t *testing.T) {
	cfg, err := chains.GetConfig(chains.ChainSolana)
	require.NoError(t, err)

	registry := NewRegistry(nil, WithChainConfig(cfg.WithRPCURL("http://rpc.example.org")))
	_, err = registry.GetService(context.Background(), chains.ChainSolana)
	assert.ErrorContains(t, err, "must use HTTPS")
}

func TestRegistryRejectsInvalidConfig(t *testing.T) {
	cfg, err := chains.GetConfig(chains.ChainSolana)
	require.NoError(t, err)
	cfg.Assets = append(cfg.Assets, cfg.Assets[0])

	registry := NewRegistry(nil, WithChainConfig(cfg))
	_, err = registry.GetService(context.Background(), chains.ChainSolana)
	assert.ErrorContains(t, err, "duplicate asset symbol")
}

func TestRegistryConcurrentGetService(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newEVMSession(t), localConfigs(t)...)
	defer registry.Session().Close()

	const workers = 16
	results := make([]chains.Service, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc, err := registry.GetService(ctx, chains.ChainSolana)
			assert.NoError(t, err)
			results[i] = svc
		}(i)
	}
	wg.Wait()

	for _, svc := range results {
		assert.Same(t, results[0], svc)
	}
}

func TestRegistrySlowBuildDoesNotBlockOtherChains(t *testing.T) {
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	var startOnce, releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }

	chainlist := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startOnce.Do(func() { close(started) })
		<-release
		_, _ = w.Write([]byte("[]"))
	}))
	defer chainlist.Close()
	defer unblock()

	opts := append(localConfigs(t), WithEndpointDiscovery(evm.NewChainListEndpointProvider(nil, chainlist.URL)))
	registry := NewRegistry(newEVMSession(t), opts...)
	defer registry.Session().Close()

	polygonDone := make(chan struct{})
	go func() {
		defer close(polygonDone)
		_, _ = registry.GetService(ctx, chains.ChainPolygon)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("polygon build never reached endpoint discovery")
	}

	solanaDone := make(chan error, 1)
	go func() {
		_, err := registry.GetService(ctx, chains.ChainSolana)
		solanaDone <- err
	}()

	select {
	case err := <-solanaDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("solana service waited on the polygon build")
	}

	unblock()
	<-polygonDone
}
