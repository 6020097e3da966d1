package svm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/walletkit/pkg/chains"
)

var errBlockhashExpired = errors.New("blockhash expired before the transaction was confirmed")

// tokenAccountSize is the data length of an SPL token account
const tokenAccountSize = 165

// PreparedTransfer is an unsigned Solana transfer. The blockhash it was built
// against bounds how long it can be confirmed.
type PreparedTransfer struct {
	Transaction          *solana.Transaction
	Symbol               string
	Amount               uint64 // base units
	From                 solana.PublicKey
	To                   solana.PublicKey
	CreatesTokenAccount  bool // recipient ATA is created by this transaction
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
	FeeLamports          uint64
	RentLamports         uint64 // rent deposit for the recipient ATA, 0 unless CreatesTokenAccount

	fee float64
}

var _ chains.PreparedTransaction = (*PreparedTransfer)(nil)

// Chain implements chains.PreparedTransaction
func (p *PreparedTransfer) Chain() chains.ChainID { return chains.ChainSolana }

// Asset implements chains.PreparedTransaction
func (p *PreparedTransfer) Asset() string { return p.Symbol }

// Fee implements chains.PreparedTransaction. It is the signature fee plus,
// when the recipient token account is created, its rent deposit.
func (p *PreparedTransfer) Fee() float64 { return p.fee }

// PrepareTransaction implements chains.Service. When the recipient has no
// token account yet, its creation is folded into the same transaction so that
// nothing is written on chain before the user confirms.
func (a *Adapter) PrepareTransaction(ctx context.Context, from, to string, amount float64, symbol string) (chains.PreparedTransaction, error) {
	asset, err := a.cfg.FindAsset(symbol)
	if err != nil {
		return nil, err
	}
	fromKey, err := a.parseAddress(from)
	if err != nil {
		return nil, err
	}
	toKey, err := a.parseAddress(to)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %v", chains.ErrInvalidAmount, amount)
	}
	raw, err := chains.ToBaseUnitsUint64(amount, asset.Decimals)
	if err != nil {
		return nil, err
	}

	prepared := &PreparedTransfer{
		Symbol: asset.Symbol,
		Amount: raw,
		From:   fromKey,
		To:     toKey,
	}

	var instructions []solana.Instruction
	if asset.IsNative() {
		instructions = append(instructions, system.NewTransferInstruction(raw, fromKey, toKey).Build())
	} else {
		mint, err := solana.PublicKeyFromBase58(asset.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid mint address for %s: %w", asset.Symbol, err)
		}
		sourceATA, _, err := solana.FindAssociatedTokenAddress(fromKey, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive source token account: %w", err)
		}
		destATA, _, err := solana.FindAssociatedTokenAddress(toKey, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive destination token account: %w", err)
		}

		destAccount, err := getTokenAccount(ctx, a.rpc, destATA, a.commitment)
		if err != nil {
			return nil, err
		}
		if destAccount == nil {
			instructions = append(instructions,
				associatedtokenaccount.NewCreateInstruction(fromKey, toKey, mint).Build())
			prepared.CreatesTokenAccount = true
		}

		instructions = append(instructions, token.NewTransferCheckedInstruction(
			raw,
			asset.Decimals,
			sourceATA,
			mint,
			destATA,
			fromKey,
			[]solana.PublicKey{},
		).Build())
	}

	latest, err := a.rpc.GetLatestBlockhash(ctx, a.commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash, solana.TransactionPayer(fromKey))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	lamports, err := a.estimateFee(ctx, tx)
	if err != nil {
		return nil, err
	}

	prepared.Transaction = tx
	prepared.Blockhash = latest.Value.Blockhash
	prepared.LastValidBlockHeight = latest.Value.LastValidBlockHeight
	prepared.FeeLamports = lamports
	if prepared.CreatesTokenAccount {
		rent, err := a.rpc.GetMinimumBalanceForRentExemption(ctx, tokenAccountSize, a.commitment)
		if err != nil {
			return nil, fmt.Errorf("failed to get token account rent: %w", err)
		}
		prepared.RentLamports = rent
	}
	prepared.fee = chains.FromBaseUnitsUint64(lamports+prepared.RentLamports, a.cfg.NativeAsset().Decimals)

	a.logger.DebugContext(ctx, "prepared transfer",
		"symbol", asset.Symbol, "amount", raw, "to", toKey, "fee_lamports", lamports,
		"rent_lamports", prepared.RentLamports, "creates_token_account", prepared.CreatesTokenAccount)
	return prepared, nil
}

func (a *Adapter) estimateFee(ctx context.Context, tx *solana.Transaction) (uint64, error) {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("failed to encode message: %w", err)
	}
	result, err := a.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(message), a.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate fee: %w", err)
	}
	if result == nil || result.Value == nil {
		return 0, fmt.Errorf("failed to estimate fee: blockhash not found")
	}
	return *result.Value, nil
}

// SendPreparedTransaction implements chains.Service. The transaction is
// submitted once; on a confirmation failure the signature is still returned
// so the caller can look it up.
func (a *Adapter) SendPreparedTransaction(ctx context.Context, prepared chains.PreparedTransaction) (string, error) {
	transfer, ok := prepared.(*PreparedTransfer)
	if !ok || transfer == nil || transfer.Transaction == nil {
		return "", fmt.Errorf("%w: %T", chains.ErrForeignTransaction, prepared)
	}

	wallet, err := a.wallet()
	if err != nil {
		return "", err
	}
	signed, err := wallet.SignTransaction(ctx, transfer.Transaction)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := a.submit(ctx, signed)
	if err != nil {
		a.notify(ctx, chains.NoticeError, "Transaction was rejected", err)
		return "", err
	}

	// the transaction is on the wire; only the confirmation bound applies now
	if err := a.confirm(context.WithoutCancel(ctx), sig, transfer.LastValidBlockHeight); err != nil {
		a.notify(ctx, chains.NoticeError, "Transaction was not confirmed", err)
		return sig.String(), err
	}

	a.logger.InfoContext(ctx, "transfer confirmed", "signature", sig, "symbol", transfer.Symbol, "amount", transfer.Amount)
	a.notify(ctx, chains.NoticeSuccess, fmt.Sprintf("Sent %s", transfer.Symbol), nil)
	return sig.String(), nil
}

func (a *Adapter) submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	sig, err := a.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: a.commitment,
	})
	if err != nil {
		return solana.Signature{}, chains.SubmissionError(a.Chain(), err)
	}
	return sig, nil
}

// confirm polls the signature status until it reaches the adapter's
// commitment, the blockhash expires, the confirmation deadline passes or ctx
// is cancelled.
func (a *Adapter) confirm(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ctx, cancel := context.WithTimeout(ctx, a.confirmTimeout)
	defer cancel()

	for {
		statuses, err := a.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			a.logger.DebugContext(ctx, "signature status lookup failed", "signature", sig, "error", err)
		} else if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return chains.ConfirmationError(a.Chain(), sig.String(), fmt.Errorf("transaction failed: %v", status.Err))
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		if lastValidBlockHeight > 0 {
			height, err := a.rpc.GetBlockHeight(ctx, a.commitment)
			if err == nil && height > lastValidBlockHeight {
				return chains.ConfirmationError(a.Chain(), sig.String(), errBlockhashExpired)
			}
		}

		select {
		case <-ctx.Done():
			return chains.ConfirmationError(a.Chain(), sig.String(), ctx.Err())
		case <-time.After(a.pollInterval):
		}
	}
}
