package exchange

import (
	"github.com/samber/mo"
)

/*//////////////////////////////////////////////////////////////
                            BALANCE
//////////////////////////////////////////////////////////////*/

// BalanceOption is a functional option for balance queries
type BalanceOption func(*balanceConfig)

type balanceConfig struct {
	currency mo.Option[string]
}

// WithBalanceCurrency restricts the query to one currency
func WithBalanceCurrency(currency string) BalanceOption {
	return func(cfg *balanceConfig) {
		cfg.currency = mo.Some(currency)
	}
}

/*//////////////////////////////////////////////////////////////
                        FAST WITHDRAWAL
//////////////////////////////////////////////////////////////*/

// FastWithdrawalOption is a functional option for fast withdrawals
type FastWithdrawalOption func(*fastWithdrawalConfig)

type fastWithdrawalConfig struct {
	ccAddress mo.Option[string]
}

// WithCrossChainAddress pays the withdrawal to address instead of the
// account's own address on the target network
func WithCrossChainAddress(address string) FastWithdrawalOption {
	return func(cfg *fastWithdrawalConfig) {
		cfg.ccAddress = mo.Some(address)
	}
}

/*//////////////////////////////////////////////////////////////
                       INTERNAL TRANSFER
//////////////////////////////////////////////////////////////*/

// InternalTransferOption is a functional option for internal transfers
type InternalTransferOption func(*internalTransferConfig)

type internalTransferConfig struct {
	clientReferenceID mo.Option[string]
}

// WithClientReferenceID sets the identifier the transfer can later be
// looked up by. A random UUID is used when none is given.
func WithClientReferenceID(id string) InternalTransferOption {
	return func(cfg *internalTransferConfig) {
		cfg.clientReferenceID = mo.Some(id)
	}
}
