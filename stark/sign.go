package stark

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/types"
	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/dontpanicdao/caigo"
)

// Signature is the wire form of a STARK signature. RecoveryParam is only
// set for withdrawals, where the on-chain verifier needs it.
type Signature struct {
	R             string `json:"r"`
	S             string `json:"s"`
	RecoveryParam *int   `json:"recoveryParam,omitempty"`
}

// HashEncoding selects how a message hash without a 0x prefix is read.
// A 0x prefix always means hex.
type HashEncoding int

const (
	// HexHash reads unprefixed hashes as hex. Order and internal transfer
	// nonces are issued this way.
	HexHash HashEncoding = iota
	// DecimalHash reads unprefixed all-digit hashes as decimal integers,
	// which is how withdrawal initiation reports them. Other unprefixed
	// hashes are read as hex.
	DecimalHash
)

// NormalizeMessageHash parses a message hash, reading unprefixed hashes
// as hex
func NormalizeMessageHash(msgHash string) (*big.Int, error) {
	return ParseMessageHash(msgHash, HexHash)
}

// ParseMessageHash parses a server issued message hash with enc deciding
// the base of unprefixed input. The result must be a non-zero value below
// 2^251.
func ParseMessageHash(msgHash string, enc HashEncoding) (*big.Int, error) {
	s := strings.TrimSpace(msgHash)
	if s == "" {
		return nil, &types.InvalidMessageHashError{Hash: msgHash, Reason: "empty"}
	}

	var (
		z  *big.Int
		ok bool
	)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		z, ok = new(big.Int).SetString(s[2:], 16)
	case enc == DecimalHash && isDecimal(s):
		z, ok = new(big.Int).SetString(s, 10)
	default:
		z, ok = new(big.Int).SetString(s, 16)
	}
	if !ok {
		return nil, &types.InvalidMessageHashError{Hash: msgHash, Reason: "not a number"}
	}

	if z.Sign() <= 0 || z.Cmp(caigo.Curve.Max) >= 0 {
		return nil, &types.InvalidMessageHashError{Hash: msgHash, Reason: "out of range"}
	}

	return z, nil
}

// MessageHashHex returns the parsed hash as 0x-prefixed hex without
// leading zeros.
func MessageHashHex(msgHash string, enc HashEncoding) (string, error) {
	z, err := ParseMessageHash(msgHash, enc)
	if err != nil {
		return "", err
	}
	return "0x" + z.Text(16), nil
}

// SignMessageHash signs an order message hash
func SignMessageHash(kp KeyPair, msgHash string) (Signature, error) {
	_, r, s, err := sign(kp, msgHash, HexHash)
	if err != nil {
		return Signature{}, err
	}

	return Signature{R: toHex(r), S: toHex(s)}, nil
}

// SignInternalTransferHash signs an internal transfer message hash. The
// transfer verifier takes no recovery parameter.
func SignInternalTransferHash(kp KeyPair, msgHash string) (Signature, error) {
	return SignMessageHash(kp, msgHash)
}

// SignWithdrawalHash signs a withdrawal message hash and includes the
// recovery parameter of the signature point. Unprefixed all-digit hashes
// are read as decimal.
func SignWithdrawalHash(kp KeyPair, msgHash string) (Signature, error) {
	z, r, s, err := sign(kp, msgHash, DecimalHash)
	if err != nil {
		return Signature{}, err
	}

	param := recoveryParam(kp, z, r, s)

	return Signature{R: toHex(r), S: toHex(s), RecoveryParam: &param}, nil
}

// Verify checks sig over msgHash against the public point of kp. An
// unprefixed msgHash is read as hex.
func Verify(kp KeyPair, msgHash string, sig Signature) bool {
	if kp.IsZero() {
		return false
	}

	z, err := NormalizeMessageHash(msgHash)
	if err != nil {
		return false
	}

	r, ok := new(big.Int).SetString(utils.RemoveHexPrefix(sig.R, false), 16)
	if !ok {
		return false
	}
	s, ok := new(big.Int).SetString(utils.RemoveHexPrefix(sig.S, false), 16)
	if !ok {
		return false
	}

	return caigo.Curve.Verify(z, r, s, kp.PublicX(), kp.PublicY())
}

func sign(kp KeyPair, msgHash string, enc HashEncoding) (z, r, s *big.Int, err error) {
	if kp.IsZero() {
		return nil, nil, nil, fmt.Errorf("empty stark key pair")
	}

	z, err = ParseMessageHash(msgHash, enc)
	if err != nil {
		return nil, nil, nil, err
	}

	// RFC 6979 nonce, so the same (key, hash) always yields the same
	// signature
	r, s, err = caigo.Curve.Sign(z, kp.private)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to sign message hash: %w", err)
	}

	return z, r, s, nil
}

// recoveryParam recomputes R = (z/s)G + (r/s)Q and encodes the parity of
// R.y in bit 0 and whether R.x overflowed the curve order in bit 1.
func recoveryParam(kp KeyPair, z, r, s *big.Int) int {
	n := caigo.Curve.N

	w := new(big.Int).ModInverse(s, n)
	u1 := new(big.Int).Mul(z, w)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(r, w)
	u2.Mod(u2, n)

	_, g := starkcurve.Generators()

	var p1, p2 starkcurve.G1Affine
	p1.ScalarMultiplication(&g, u1)
	p2.ScalarMultiplication(&kp.public, u2)

	var sum, addend starkcurve.G1Jac
	sum.FromAffine(&p1)
	addend.FromAffine(&p2)
	sum.AddAssign(&addend)

	var point starkcurve.G1Affine
	point.FromJacobian(&sum)

	param := 0
	if point.Y.BigInt(new(big.Int)).Bit(0) == 1 {
		param |= 1
	}
	if point.X.BigInt(new(big.Int)).Cmp(r) != 0 {
		param |= 2
	}

	return param
}

func toHex(v *big.Int) string {
	return "0x" + v.Text(16)
}

func isDecimal(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
