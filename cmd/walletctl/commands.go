package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/session"
	"github.com/sigweihq/walletkit/pkg/types"
)

func newFlagSet(c *cli, name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	chain := fs.String("chain", string(chains.ChainSolana), "chain: solana or polygon")
	return fs, chain
}

func runChains(_ context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("chains", flag.ContinueOnError)
	fs.SetOutput(c.out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var infos []types.ChainInfo
	for _, id := range c.registry.SupportedChains() {
		cfg, err := c.registry.Config(id)
		if err != nil {
			return err
		}
		if c.json {
			infos = append(infos, types.NewChainInfo(cfg))
			continue
		}
		fmt.Fprintf(c.out, "%s (%s) %s\n", id, cfg.Network, cfg.RPCURL)
		for _, asset := range cfg.Assets {
			kind := "token " + asset.Address
			if asset.IsNative() {
				kind = "native"
			}
			fmt.Fprintf(c.out, "  %-10s decimals=%-2d %s\n", asset.Symbol, asset.Decimals, kind)
		}
	}
	if c.json {
		return c.printJSON(infos)
	}
	return nil
}

func runAddress(ctx context.Context, c *cli, args []string) error {
	fs, chain := newFlagSet(c, "address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.service(ctx, chains.ChainID(*chain), true)
	if err != nil {
		return err
	}
	address, err := svc.PublicKey(ctx)
	if err != nil {
		return err
	}
	if address == "" {
		return errors.New("no account connected")
	}
	fmt.Fprintln(c.out, address)
	return nil
}

func runBalance(ctx context.Context, c *cli, args []string) error {
	fs, chain := newFlagSet(c, "balance")
	asset := fs.String("asset", "", "asset symbol (default: the chain's native asset)")
	address := fs.String("address", "", "address to inspect (default: the signer)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.service(ctx, chains.ChainID(*chain), *address == "")
	if err != nil {
		return err
	}
	owner, err := c.resolveAddress(ctx, svc, *address)
	if err != nil {
		return err
	}
	symbol := c.resolveAsset(svc, *asset)

	balance := svc.GetBalance(ctx, owner, symbol)
	if c.json {
		if err := c.printJSON(types.NewBalanceResponse(svc.Config(), owner, symbol, balance)); err != nil {
			return err
		}
		return balance.Err
	}
	fmt.Fprintf(c.out, "%s %s\n", formatAmount(balance.Value), symbol)
	return balance.Err
}

func runSend(ctx context.Context, c *cli, args []string) error {
	fs, chain := newFlagSet(c, "send")
	asset := fs.String("asset", "", "asset symbol (default: the chain's native asset)")
	to := fs.String("to", "", "recipient address")
	amount := fs.Float64("amount", 0, "amount in display units")
	yes := fs.Bool("yes", false, "skip the fee confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" {
		return errors.New("send: -to is required")
	}

	svc, err := c.service(ctx, chains.ChainID(*chain), true)
	if err != nil {
		return err
	}
	from, err := c.resolveAddress(ctx, svc, "")
	if err != nil {
		return err
	}
	symbol := c.resolveAsset(svc, *asset)

	tx, err := svc.PrepareTransaction(ctx, from, *to, *amount, symbol)
	if err != nil {
		return err
	}

	native := svc.Config().NativeAsset().Symbol
	fmt.Fprintf(c.prompts(), "send %s %s from %s to %s\nnetwork fee: %s %s\n",
		formatAmount(*amount), symbol, from, *to, formatAmount(tx.Fee()), native)
	if !*yes {
		ok, err := confirm(c.in, c.prompts(), "proceed?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.prompts(), "aborted")
			return nil
		}
	}

	txID, err := svc.SendPreparedTransaction(ctx, tx)
	if c.json {
		resp := types.SendResponse{
			Chain:           svc.Chain().String(),
			From:            from,
			To:              *to,
			Asset:           symbol,
			Amount:          *amount,
			Fee:             tx.Fee(),
			TransactionHash: txID,
			ExplorerURL:     types.TxURL(svc.Config(), txID),
			Status:          "confirmed",
		}
		if err != nil {
			resp.Status = "failed"
			resp.Error = err.Error()
		}
		if jsonErr := c.printJSON(resp); jsonErr != nil {
			return jsonErr
		}
		return err
	}
	if txID != "" {
		fmt.Fprintln(c.out, txID)
	}
	return err
}

func runHistory(ctx context.Context, c *cli, args []string) error {
	fs, chain := newFlagSet(c, "history")
	asset := fs.String("asset", "", "filter by asset where the chain supports it")
	address := fs.String("address", "", "address to inspect (default: the signer)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.service(ctx, chains.ChainID(*chain), *address == "")
	if err != nil {
		return err
	}
	owner, err := c.resolveAddress(ctx, svc, *address)
	if err != nil {
		return err
	}

	var history chains.Recovered[[]chains.TransactionRecord]
	if historian, ok := svc.(chains.AssetHistorian); ok && *asset != "" {
		history = historian.GetAssetTransactionHistory(ctx, owner, *asset)
	} else {
		history = svc.GetTransactionHistory(ctx, owner)
	}

	if c.json {
		if err := c.printJSON(types.NewHistoryResponse(svc.Config(), owner, history)); err != nil {
			return err
		}
		return history.Err
	}

	for _, record := range history.Value {
		when := "-"
		if record.BlockTime != nil {
			when = record.BlockTime.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(c.out, "%s  %s\n", when, record.Signature)
	}
	return history.Err
}

func runExportKey(ctx context.Context, c *cli, args []string) error {
	fs, chain := newFlagSet(c, "export-key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := c.service(ctx, chains.ChainID(*chain), true)
	if err != nil {
		return err
	}
	key, err := svc.PrivateKey(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		return chains.ErrKeyExportUnsupported
	}
	fmt.Fprintln(c.out, key)
	return nil
}

// service resolves the chain's adapter. When needSigner is set and no key is
// configured, the key is read from the terminal first.
func (c *cli) service(ctx context.Context, id chains.ChainID, needSigner bool) (chains.Service, error) {
	if !id.IsValid() {
		return nil, fmt.Errorf("%w: %s", chains.ErrUnsupportedChain, id)
	}
	if needSigner {
		if err := c.ensureSigner(id); err != nil {
			return nil, err
		}
	}
	return c.registry.GetService(ctx, id)
}

func (c *cli) ensureSigner(id chains.ChainID) error {
	sess := c.registry.Session()
	switch id {
	case chains.ChainSolana:
		if _, err := sess.SolanaWallet(); err == nil {
			return nil
		}
		encoded, err := promptSecret(fmt.Sprintf("%s private key: ", id))
		if err != nil {
			return err
		}
		w, err := session.LocalSolanaWalletFromString(encoded)
		if err != nil {
			return err
		}
		sess.SetSolanaWallet(w)
	case chains.ChainPolygon:
		if _, err := sess.EVMProvider(); err == nil {
			return nil
		}
		encoded, err := promptSecret(fmt.Sprintf("%s private key: ", id))
		if err != nil {
			return err
		}
		p, err := session.LocalEVMProviderFromString(encoded)
		if err != nil {
			return err
		}
		sess.SetEVMProvider(p)
	}
	return nil
}

func (c *cli) resolveAddress(ctx context.Context, svc chains.Service, address string) (string, error) {
	if address != "" {
		return address, nil
	}
	address, err := svc.PublicKey(ctx)
	if err != nil {
		return "", err
	}
	if address == "" {
		return "", errors.New("no account connected; pass -address")
	}
	return address, nil
}

func (c *cli) resolveAsset(svc chains.Service, symbol string) string {
	if symbol != "" {
		return symbol
	}
	return svc.Config().NativeAsset().Symbol
}

// prompts is where interactive text goes; stdout stays machine-readable
// under -json
func (c *cli) prompts() io.Writer {
	if c.json {
		return os.Stderr
	}
	return c.out
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.9f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
