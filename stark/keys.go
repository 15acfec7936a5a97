// Package stark derives STARK-curve key pairs from Ethereum signatures
// and signs the message hashes the exchange issues for orders,
// withdrawals and internal transfers.
package stark

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/banky/go-tanx/identity"
	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/types"
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/dontpanicdao/caigo"
)

// KeyPair is an immutable STARK-curve key pair
type KeyPair struct {
	private *big.Int
	public  starkcurve.G1Affine
}

// KeyPairFromPrivateKey builds a key pair from a hex encoded private
// scalar, with or without 0x prefix.
func KeyPairFromPrivateKey(privateKeyHex string) (KeyPair, error) {
	priv, ok := new(big.Int).SetString(utils.RemoveHexPrefix(privateKeyHex, false), 16)
	if !ok {
		return KeyPair{}, fmt.Errorf("invalid stark private key")
	}

	return newKeyPair(priv)
}

// KeyPairFromSignature derives the key pair from an Ethereum user
// signature. Only the r component seeds the key, so the derivation does
// not depend on the signature's v byte.
func KeyPairFromSignature(userSignature string) (KeyPair, error) {
	priv, err := PrivateKeyFromSignature(userSignature)
	if err != nil {
		return KeyPair{}, err
	}

	return newKeyPair(priv)
}

// DeriveKeyPair signs the environment message with id and derives the
// key pair from the result.
func DeriveKeyPair(id identity.Identity, env types.Environment) (KeyPair, error) {
	sig, err := identity.UserSignature(id, env)
	if err != nil {
		return KeyPair{}, err
	}

	return KeyPairFromSignature(sig)
}

// PrivateKeyFromSignature grinds the r component of an Ethereum
// signature into a scalar below the STARK curve order.
func PrivateKeyFromSignature(userSignature string) (*big.Int, error) {
	raw := utils.RemoveHexPrefix(userSignature, false)
	if len(raw) < 64 {
		return nil, fmt.Errorf("user signature too short: %d hex characters", len(raw))
	}

	r, err := hex.DecodeString(raw[:64])
	if err != nil {
		return nil, fmt.Errorf("invalid user signature: %w", err)
	}

	return GrindKey(r, caigo.Curve.N), nil
}

// GrindKey hashes seed with an increasing index until the digest falls
// below the largest multiple of limit that fits in 256 bits, then reduces
// it modulo limit. This keeps the result uniform in [0, limit).
func GrindKey(seed []byte, limit *big.Int) *big.Int {
	maxDigest := new(big.Int).Lsh(big.NewInt(1), 256)
	maxAllowed := new(big.Int).Sub(maxDigest, new(big.Int).Mod(maxDigest, limit))

	for i := int64(0); ; i++ {
		key := hashKeyWithIndex(seed, i)
		if key.Cmp(maxAllowed) < 0 {
			return key.Mod(key, limit)
		}
	}
}

func hashKeyWithIndex(seed []byte, index int64) *big.Int {
	indexBytes := big.NewInt(index).Bytes()
	if len(indexBytes) == 0 {
		indexBytes = []byte{0}
	}

	h := sha256.New()
	h.Write(seed)
	h.Write(indexBytes)

	return new(big.Int).SetBytes(h.Sum(nil))
}

func newKeyPair(priv *big.Int) (KeyPair, error) {
	if priv.Sign() <= 0 || priv.Cmp(caigo.Curve.N) >= 0 {
		return KeyPair{}, fmt.Errorf("stark private key out of range")
	}

	_, g := starkcurve.Generators()

	kp := KeyPair{private: new(big.Int).Set(priv)}
	kp.public.ScalarMultiplication(&g, priv)

	return kp, nil
}

// PrivateKeyHex returns the private scalar as 0x-prefixed hex
func (k KeyPair) PrivateKeyHex() string {
	return "0x" + k.private.Text(16)
}

// PublicKeyHex returns the x coordinate of the public point, which is
// what the exchange calls the stark key.
func (k KeyPair) PublicKeyHex() string {
	return "0x" + k.PublicX().Text(16)
}

func (k KeyPair) PublicX() *big.Int {
	return k.public.X.BigInt(new(big.Int))
}

func (k KeyPair) PublicY() *big.Int {
	return k.public.Y.BigInt(new(big.Int))
}

// IsZero reports whether k is the zero value
func (k KeyPair) IsZero() bool {
	return k.private == nil
}

// String never includes the private scalar
func (k KeyPair) String() string {
	if k.IsZero() {
		return "KeyPair{}"
	}
	return fmt.Sprintf("KeyPair{Public: %s}", k.PublicKeyHex())
}
