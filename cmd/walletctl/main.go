// walletctl is a command-line front end for the wallet registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sigweihq/walletkit/pkg/chains"
	"github.com/sigweihq/walletkit/pkg/config"
	"github.com/sigweihq/walletkit/pkg/wallet"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds what every subcommand needs
type cli struct {
	registry *wallet.Registry
	cfg      *config.Config
	json     bool
	in       io.Reader
	out      io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	global := flag.NewFlagSet("walletctl", flag.ContinueOnError)
	global.SetOutput(out)
	configPath := global.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to a YAML config file")
	jsonOut := global.Bool("json", false, "print results as JSON")
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(out)
		return nil
	}

	handlers := map[string]func(context.Context, *cli, []string) error{
		"chains":     runChains,
		"address":    runAddress,
		"balance":    runBalance,
		"send":       runSend,
		"history":    runHistory,
		"export-key": runExportKey,
	}
	handler, ok := handlers[rest[0]]
	if !ok {
		printUsage(out)
		return fmt.Errorf("unknown command: %s", rest[0])
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	sess, err := cfg.Session()
	if err != nil {
		return err
	}
	defer sess.Close()

	logger := cfg.Logger()
	opts, err := cfg.RegistryOptions(logger)
	if err != nil {
		return err
	}
	opts = append(opts, wallet.WithNotifier(chains.NewLogNotifier(logger)))

	c := &cli{
		registry: wallet.NewRegistry(sess, opts...),
		cfg:      cfg,
		json:     *jsonOut,
		in:       in,
		out:      out,
	}
	return handler(ctx, c, rest[1:])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: walletctl [-config file] [-json] <command> [flags]

commands:
  chains       list supported chains and assets
  address      print the signer's address
  balance      print an asset balance
  send         prepare, confirm and submit a transfer
  history      list recent transactions
  export-key   print the signer's private key`)
}
