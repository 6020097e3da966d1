package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/types"
)

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "usage: walletctl")
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"mint"}, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: mint")
}

func TestRun_Chains(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"chains"}, strings.NewReader(""), &out))

	text := out.String()
	assert.Contains(t, text, "solana (solana-devnet)")
	assert.Contains(t, text, "polygon (polygon-amoy)")
	assert.Contains(t, text, "USDC-Dev")
	assert.Contains(t, text, "LINK")
}

func TestRun_ChainsJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-json", "chains"}, strings.NewReader(""), &out))

	var infos []types.ChainInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "solana", infos[0].Chain)
	assert.Equal(t, "polygon", infos[1].Chain)
}

func TestRun_BadConfig(t *testing.T) {
	t.Setenv("WALLETKIT_SOLANA_RPC_URL", "http://solana.example.com")

	var out bytes.Buffer
	err := run(context.Background(), []string{"chains"}, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solana.rpc_url")
}

func TestRun_UnsupportedChain(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"balance", "-chain", "bitcoin", "-address", "x"}, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chains.ErrUnsupportedChain))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "proceed? [y/N]: ", out.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.25", formatAmount(0.25))
	assert.Equal(t, "5", formatAmount(5))
	assert.Equal(t, "0.000005", formatAmount(0.000005))
	assert.Equal(t, "0", formatAmount(0))
}
