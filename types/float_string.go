package types

import (
	"encoding/json"
	"strconv"

	"github.com/banky/go-tanx/internal/utils"
	"github.com/shopspring/decimal"
)

// FloatString represents a decimal number that can be encoded as a JSON
// string or number
type FloatString decimal.Decimal

// UnmarshalJSON implements json.Unmarshaler for FloatString
func (f *FloatString) UnmarshalJSON(b []byte) error {
	// Handle "null"
	if string(b) == "null" || string(b) == `""` {
		*f = FloatString(decimal.Zero)
		return nil
	}

	// Remove quotes if needed and parse as string
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		*f = FloatString(v)
		return nil
	}

	// Otherwise fall back to a JSON number
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	*f = FloatString(v)
	return nil
}

func (f FloatString) MarshalJSON() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f FloatString) String() string {
	return utils.TrimDecimal(f.Raw())
}

func (f FloatString) Raw() decimal.Decimal {
	return decimal.Decimal(f)
}

// IntString is an integer that the API sometimes sends quoted,
// e.g. coin decimals.
type IntString int64

func (i *IntString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" || string(b) == `""` {
		*i = 0
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*i = IntString(v)
		return nil
	}

	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = IntString(v)
	return nil
}

func (i IntString) Int() int32 {
	return int32(i)
}
