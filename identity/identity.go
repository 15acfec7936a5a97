// Package identity provides the Ethereum side of the TanX identity: the
// signer that authenticates logins and produces the user signature from
// which the STARK key pair is derived.
package identity

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/types"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity is an Ethereum account able to produce EIP-191 personal
// signatures. Hardware wallets and remote signers can implement it
// directly; PrivateKeySigner covers raw keys.
type Identity interface {
	// Address returns the Ethereum address of the signer
	Address() common.Address

	// SignMessage signs message with the EIP-191 prefix and returns the
	// 65 byte [R || S || V] signature with V in {27, 28}
	SignMessage(message []byte) ([]byte, error)
}

// PrivateKeySigner is an Identity backed by an in-memory private key
type PrivateKeySigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

var _ Identity = (*PrivateKeySigner)(nil)

// FromPrivateKey wraps an existing secp256k1 key
func FromPrivateKey(privateKey *ecdsa.PrivateKey) (*PrivateKeySigner, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key is required")
	}

	return &PrivateKeySigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// FromHex parses a hex encoded private key, with or without 0x prefix
func FromHex(hexKey string) (*PrivateKeySigner, error) {
	privateKey, err := crypto.HexToECDSA(utils.RemoveHexPrefix(hexKey, false))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return FromPrivateKey(privateKey)
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

// SignMessage signs message using the "\x19Ethereum Signed Message" scheme
func (s *PrivateKeySigner) SignMessage(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	if len(sig) != 65 {
		return nil, fmt.Errorf("invalid signature length: %d", len(sig))
	}

	// Ethereum canonical V = 27 or 28
	if sig[64] < 27 {
		sig[64] += 27
	}

	return sig, nil
}

// UserSignature signs the environment's fixed message. The result is a
// pure function of (key, environment) and is the seed of the STARK key.
func UserSignature(id Identity, env types.Environment) (string, error) {
	sig, err := id.SignMessage([]byte(env.OrDefault().UserSignatureMessage()))
	if err != nil {
		return "", fmt.Errorf("failed to create user signature: %w", err)
	}

	return hexutil.Encode(sig), nil
}

// SignNonce signs a login nonce issued by the exchange
func SignNonce(id Identity, nonce string) (string, error) {
	sig, err := id.SignMessage([]byte(nonce))
	if err != nil {
		return "", fmt.Errorf("failed to sign login nonce: %w", err)
	}

	return hexutil.Encode(sig), nil
}

// RecoverAddress returns the address that produced an EIP-191 signature
// over message.
func RecoverAddress(message []byte, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature: %w", err)
	}
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(sig))
	}

	sig = append([]byte(nil), sig...)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
