package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const localChainID = 31337

func newChainIDServer(t *testing.T, chainID int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Method != "eth_chainId" {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x%x"}`, req.ID, chainID)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRefreshEndpoints(t *testing.T) {
	chainlist := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"chainId":80002,"rpc":[{"url":"https://amoy.example.org"},{"url":"http://insecure.example.org"},{"url":"https://amoy.example.org/${API_KEY}"}]},
			{"chainId":31337,"rpc":[{"url":"https://local.example.org"}]}
		]`))
	}))
	defer chainlist.Close()

	provider := NewChainListEndpointProvider(nil, chainlist.URL)
	require.NoError(t, provider.RefreshEndpoints(context.Background()))

	amoy := provider.GetEndpoints(constants.NetworkToChainID[constants.NetworkPolygonAmoy])
	require.Len(t, amoy, 2)
	assert.Equal(t, constants.OfficialRPCEndpoints[constants.NetworkPolygonAmoy], amoy[0])
	assert.Equal(t, "https://amoy.example.org", amoy[1])

	assert.Equal(t, []string{"https://local.example.org"}, provider.GetEndpoints(localChainID))
}

func TestRefreshEndpointsFailure(t *testing.T) {
	chainlist := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer chainlist.Close()

	provider := NewChainListEndpointProvider(nil, chainlist.URL)
	assert.Error(t, provider.RefreshEndpoints(context.Background()))

	// official endpoints survive a failed refresh
	amoyID := constants.NetworkToChainID[constants.NetworkPolygonAmoy]
	assert.Equal(t, []string{constants.OfficialRPCEndpoints[constants.NetworkPolygonAmoy]}, provider.GetEndpoints(amoyID))
}

func TestSelectEndpoint(t *testing.T) {
	ctx := context.Background()
	good := newChainIDServer(t, localChainID)
	wrong := newChainIDServer(t, 137)

	provider := NewChainListEndpointProvider(nil, "")

	endpoint, err := provider.SelectEndpoint(ctx, localChainID, good.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, good.URL, endpoint)

	_, err = provider.SelectEndpoint(ctx, localChainID, wrong.URL, time.Second)
	require.Error(t, err)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, wrong.URL, rpcErr.Endpoint)
	assert.Contains(t, err.Error(), "serves chain 137")

	_, err = provider.SelectEndpoint(ctx, localChainID, "", time.Second)
	assert.ErrorContains(t, err, "no RPC endpoints known")
}
