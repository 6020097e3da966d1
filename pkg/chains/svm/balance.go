package svm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/sigweihq/walletkit/pkg/chains"
)

// GetBalance implements chains.Service. SPL balances are read from the
// owner's associated token account, which is created on first use.
func (a *Adapter) GetBalance(ctx context.Context, address, symbol string) chains.Recovered[float64] {
	balance, err := a.balance(ctx, address, symbol)
	if err != nil {
		a.logger.WarnContext(ctx, "balance read failed", "address", address, "symbol", symbol, "error", err)
		a.notify(ctx, chains.NoticeError, fmt.Sprintf("Could not load %s balance", symbol), err)
		return chains.Recovered[float64]{Value: 0, Err: err}
	}
	return chains.Recovered[float64]{Value: balance}
}

func (a *Adapter) balance(ctx context.Context, address, symbol string) (float64, error) {
	asset, err := a.cfg.FindAsset(symbol)
	if err != nil {
		return 0, err
	}
	owner, err := a.parseAddress(address)
	if err != nil {
		return 0, err
	}

	if asset.IsNative() {
		result, err := a.rpc.GetBalance(ctx, owner, a.commitment)
		if err != nil {
			return 0, fmt.Errorf("failed to get balance: %w", err)
		}
		return chains.FromBaseUnitsUint64(result.Value, asset.Decimals), nil
	}

	mint, err := solana.PublicKeyFromBase58(asset.Address)
	if err != nil {
		return 0, fmt.Errorf("invalid mint address for %s: %w", asset.Symbol, err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive token account: %w", err)
	}

	account, err := getTokenAccount(ctx, a.rpc, ata, a.commitment)
	if err != nil {
		return 0, err
	}
	if account == nil {
		if err := a.ensureTokenAccount(ctx, owner, mint, ata); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return chains.FromBaseUnitsUint64(account.Amount, asset.Decimals), nil
}

// ensureTokenAccount creates owner's associated token account for mint,
// paid for by the connected wallet. Without a connected wallet the account
// is simply left absent; its balance is zero either way.
func (a *Adapter) ensureTokenAccount(ctx context.Context, owner, mint, ata solana.PublicKey) error {
	wallet, err := a.wallet()
	if err != nil {
		a.logger.DebugContext(ctx, "skipping token account creation", "owner", owner, "error", err)
		return nil
	}
	accounts, err := wallet.RequestAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to request solana accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil
	}
	payer, err := a.parseAddress(accounts[0])
	if err != nil {
		return err
	}

	latest, err := a.rpc.GetLatestBlockhash(ctx, a.commitment)
	if err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build(),
		},
		latest.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return fmt.Errorf("failed to build transaction: %w", err)
	}

	signed, err := wallet.SignTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	sig, err := a.submit(ctx, signed)
	if err != nil {
		return err
	}
	if err := a.confirm(ctx, sig, latest.Value.LastValidBlockHeight); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "created token account", "owner", owner, "mint", mint, "account", ata, "signature", sig)
	return nil
}
