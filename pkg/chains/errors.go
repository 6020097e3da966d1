package chains

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedChain       = errors.New("unsupported chain")
	ErrUnsupportedAsset       = errors.New("unsupported asset")
	ErrProviderNotInitialized = errors.New("provider not initialized")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrSubmissionFailed       = errors.New("transaction submission failed")
	ErrConfirmationFailed     = errors.New("transaction confirmation failed")
	ErrHistoryUnavailable     = errors.New("transaction history unavailable")
	ErrForeignTransaction     = errors.New("prepared transaction belongs to another chain")
	ErrKeyExportUnsupported   = errors.New("signer does not expose key material")
)

// UnsupportedAssetError wraps ErrUnsupportedAsset with the lookup details
func UnsupportedAssetError(chain ChainID, symbol string) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupportedAsset, symbol, chain)
}

// InvalidAddressError wraps ErrInvalidAddress with the offending value
func InvalidAddressError(chain ChainID, address string) error {
	return fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, address, chain)
}

// SubmissionError marks a transaction the network refused to accept
func SubmissionError(chain ChainID, err error) error {
	return fmt.Errorf("%w on %s: %w", ErrSubmissionFailed, chain, err)
}

// ConfirmationError marks a transaction that was accepted but did not settle
func ConfirmationError(chain ChainID, txID string, err error) error {
	return fmt.Errorf("%w on %s (tx %s): %w", ErrConfirmationFailed, chain, txID, err)
}
