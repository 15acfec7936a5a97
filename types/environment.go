package types

import (
	"fmt"

	"github.com/banky/go-tanx/constants"
	"github.com/ethereum/go-ethereum/common"
)

// Environment selects which TanX deployment a client talks to
type Environment string

const (
	Mainnet Environment = "mainnet"
	Testnet Environment = "testnet"
)

// Valid reports whether e is a known environment
func (e Environment) Valid() bool {
	return e == Mainnet || e == Testnet
}

// OrDefault returns e, or Mainnet when e is empty
func (e Environment) OrDefault() Environment {
	if e == "" {
		return Mainnet
	}
	return e
}

func (e Environment) BaseURL() string {
	if e == Testnet {
		return constants.TESTNET_API_URL
	}
	return constants.MAINNET_API_URL
}

func (e Environment) WsURL() string {
	if e == Testnet {
		return constants.TESTNET_WS_URL
	}
	return constants.MAINNET_WS_URL
}

// UserSignatureMessage is the text signed by the Ethereum key when
// deriving the STARK key pair for this environment.
func (e Environment) UserSignatureMessage() string {
	if e == Testnet {
		return constants.TESTNET_USER_SIGNATURE_MESSAGE
	}
	return constants.MAINNET_USER_SIGNATURE_MESSAGE
}

// StarkContract is the StarkEx L1 contract for this environment
func (e Environment) StarkContract() common.Address {
	if e == Testnet {
		return constants.TESTNET_STARK_CONTRACT
	}
	return constants.MAINNET_STARK_CONTRACT
}

// ParseEnvironment parses "mainnet" or "testnet"
func ParseEnvironment(s string) (Environment, error) {
	e := Environment(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown environment: %q", s)
	}
	return e, nil
}
