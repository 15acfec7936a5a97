package types

import "fmt"

// AuthenticationError is returned when an operation needs a session and
// none exists, or when the session could not be refreshed.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("authentication error: %s", e.Msg)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// CoinNotFoundError is returned when a coin is absent from the allow-list
// consulted for the requested operation.
type CoinNotFoundError struct {
	Coin    string
	Network string
}

func (e *CoinNotFoundError) Error() string {
	if e.Network != "" {
		return fmt.Sprintf("coin '%s' not found on network %s", e.Coin, e.Network)
	}
	return fmt.Sprintf("coin '%s' not found", e.Coin)
}

type InvalidAmountError struct {
	Amount string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf(
		"invalid amount %q: it should be a numerical value greater than zero",
		e.Amount,
	)
}

type BalanceTooLowError struct {
	Currency string
	Balance  string
	Required string
}

func (e *BalanceTooLowError) Error() string {
	return fmt.Sprintf(
		"current balance (%s) for '%s' is too low for %s, please add balance before deposit",
		e.Balance, e.Currency, e.Required,
	)
}

type AllowanceTooLowError struct {
	Currency  string
	Allowance string
	Required  string
}

func (e *AllowanceTooLowError) Error() string {
	return fmt.Sprintf(
		"current allowance (%s) for '%s' is too low for %s, please set an allowance first",
		e.Allowance, e.Currency, e.Required,
	)
}

// InstitutionalOnlyError is returned by deposit flows when the client was
// not configured for institutional access.
type InstitutionalOnlyError struct {
	Operation string
}

func (e *InstitutionalOnlyError) Error() string {
	return fmt.Sprintf("%s is only available to institutional accounts", e.Operation)
}

// InvalidMessageHashError is returned when a message hash issued for
// signing cannot be parsed or falls outside the signable range.
type InvalidMessageHashError struct {
	Hash   string
	Reason string
}

func (e *InvalidMessageHashError) Error() string {
	return fmt.Sprintf("invalid message hash %q: %s", e.Hash, e.Reason)
}

// DepositLimitError is returned when a bridged deposit falls outside the
// limits quoted by the exchange.
type DepositLimitError struct {
	Currency string
	Amount   string
	Min      string
	Max      string
}

func (e *DepositLimitError) Error() string {
	return fmt.Sprintf(
		"deposit of %s '%s' is outside the allowed range [%s, %s]",
		e.Amount, e.Currency, e.Min, e.Max,
	)
}
