package types

import "strings"

// Network is a chain the exchange accepts deposits from or pays
// withdrawals to. Ethereum is the home network, every other value is a
// cross-chain network configured server side.
type Network string

const (
	Ethereum Network = "ETHEREUM"
	Polygon  Network = "POLYGON"
	Optimism Network = "OPTIMISM"
	Arbitrum Network = "ARBITRUM"
	Linea    Network = "LINEA"
	Scroll   Network = "SCROLL"
	Mode     Network = "MODE"
	Starknet Network = "STARKNET"
)

// Normalize upper-cases the network name, which is how the server keys
// its network configuration.
func (n Network) Normalize() Network {
	return Network(strings.ToUpper(string(n)))
}

func (n Network) IsEthereum() bool {
	return n.Normalize() == Ethereum
}

// NativeCurrency returns the symbol of the gas token on n
func (n Network) NativeCurrency() string {
	switch n.Normalize() {
	case Polygon:
		return "pol"
	default:
		return "eth"
	}
}
