package info

import (
	"fmt"
	"slices"

	"github.com/banky/go-tanx/types"
)

// AllowList selects which list of a network configuration a cross-chain
// coin lookup consults.
type AllowList int

const (
	// Tokens is the set of tokens the network knows about
	Tokens AllowList = iota
	// Deposit is the set of tokens that may be deposited from the network
	Deposit
	// Withdrawal is the set of tokens eligible for fast withdrawal to the
	// network
	Withdrawal
)

func (a AllowList) String() string {
	switch a {
	case Tokens:
		return "TOKENS"
	case Deposit:
		return "DEPOSIT"
	case Withdrawal:
		return "WITHDRAWAL"
	default:
		return fmt.Sprintf("AllowList(%d)", int(a))
	}
}

// ResolveHomeCoin finds the coin whose symbol matches exactly
func ResolveHomeCoin(stats CoinStats, symbol string) (CoinConfig, error) {
	for _, coin := range stats {
		if coin.Symbol == symbol {
			return coin, nil
		}
	}

	return CoinConfig{}, &types.CoinNotFoundError{Coin: symbol}
}

// ResolveCrossChainCoin checks symbol against the allow-list selected by
// kind and returns the token entry of the network. Membership in one list
// says nothing about the others.
func ResolveCrossChainCoin(
	config NetworkCoinConfig,
	symbol string,
	kind AllowList,
) (NetworkToken, error) {
	notFound := &types.CoinNotFoundError{Coin: symbol}

	switch kind {
	case Tokens:
	case Deposit:
		if !slices.Contains(config.AllowedTokensForDeposit, symbol) {
			return NetworkToken{}, notFound
		}
	case Withdrawal:
		if !slices.Contains(config.AllowedTokensForFastWd, symbol) {
			return NetworkToken{}, notFound
		}
	default:
		return NetworkToken{}, fmt.Errorf("unknown allow-list: %s", kind)
	}

	token, ok := config.Tokens[symbol]
	if !ok {
		return NetworkToken{}, notFound
	}

	return token, nil
}

// NetworkConfigFor returns the configuration of network from stats
func NetworkConfigFor(stats NetworkStats, network types.Network) (NetworkCoinConfig, error) {
	config, ok := stats[string(network.Normalize())]
	if !ok {
		return NetworkCoinConfig{}, fmt.Errorf("network %s is not supported", network)
	}
	return config, nil
}
