package exchange

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ethDecimals is the precision of ether amounts on every EVM network
const ethDecimals = 18

// ParseAmount parses a decimal amount as typed by a user. Anything that is
// not a number greater than zero is an InvalidAmountError.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, &types.InvalidAmountError{Amount: s}
	}
	if err := checkAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

// checkAmount is the first guard of every flow that moves funds and runs
// before any network call
func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &types.InvalidAmountError{Amount: amount.String()}
	}
	return nil
}

// amountToWire formats an amount without exponent or trailing zeros
func amountToWire(amount decimal.Decimal) string {
	return utils.TrimDecimal(amount)
}

// parseQuantization reads the quantization exponent of a coin, which the
// API sends as a string
func parseQuantization(q string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(q), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid quantization %q: %w", q, err)
	}
	return int32(v), nil
}

// hexToBig parses a 0x-prefixed hex integer such as a stark asset id
func hexToBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(utils.RemoveHexPrefix(s, false), 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex integer: %q", s)
	}
	return v, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// normalizeCoin lower-cases a coin symbol, which is how the network
// configuration keys its tokens
func normalizeCoin(coin string) string {
	return strings.ToLower(strings.TrimSpace(coin))
}
