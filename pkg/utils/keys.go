package utils

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

// ParseSolanaPrivateKey accepts a hex encoded seed (32 bytes) or keypair
// (64 bytes), with or without 0x prefix, or a base58 encoded keypair
func ParseSolanaPrivateKey(encoded string) (solana.PrivateKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("empty private key")
	}

	if privateKeyBytes, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x")); err == nil {
		// Solana Ed25519 private keys are 64 bytes (32-byte seed + 32-byte public key)
		// But we support providing just the 32-byte seed
		switch len(privateKeyBytes) {
		case ed25519.SeedSize:
			return solana.PrivateKey(ed25519.NewKeyFromSeed(privateKeyBytes)), nil
		case ed25519.PrivateKeySize:
			return solana.PrivateKey(privateKeyBytes), nil
		}
		if strings.HasPrefix(encoded, "0x") {
			return nil, fmt.Errorf("invalid private key length: %d (expected 32 or 64 bytes)", len(privateKeyBytes))
		}
	}

	privateKey, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: not hex or base58: %w", err)
	}
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d (expected 64 bytes)", len(privateKey))
	}
	return privateKey, nil
}

// DeriveSolanaAddress derives a Solana address from a private key
func DeriveSolanaAddress(encoded string) (string, error) {
	privateKey, err := ParseSolanaPrivateKey(encoded)
	if err != nil {
		return "", err
	}
	return privateKey.PublicKey().String(), nil
}

// ParseEVMPrivateKey decodes a hex secp256k1 key, with or without 0x prefix
func ParseEVMPrivateKey(encoded string) (*ecdsa.PrivateKey, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(encoded), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// DeriveEVMAddress derives the checksummed address for a hex private key
func DeriveEVMAddress(encoded string) (string, error) {
	privateKey, err := ParseEVMPrivateKey(encoded)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex(), nil
}
