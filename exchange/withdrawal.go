package exchange

import (
	"context"
	"fmt"

	"github.com/banky/go-tanx/chain"
	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/info"
	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/stark"
	"github.com/banky/go-tanx/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

/*//////////////////////////////////////////////////////////////
                       NORMAL WITHDRAWAL
//////////////////////////////////////////////////////////////*/

// StartNormalWithdrawal asks the exchange for the hash authorizing a
// withdrawal of amount coin to Ethereum
func (e *Exchange) StartNormalWithdrawal(
	ctx context.Context,
	amount decimal.Decimal,
	coin string,
) (WithdrawalStart, error) {
	return rest.PostPayload[WithdrawalStart](
		ctx,
		e.rest,
		constants.PathNormalWithdrawalInitiate,
		normalWithdrawalStartRequest{
			Amount:  types.FloatString(amount),
			TokenID: coin,
		},
	)
}

// ValidateNormalWithdrawal submits the signed withdrawal hash
func (e *Exchange) ValidateNormalWithdrawal(
	ctx context.Context,
	req ValidateWithdrawalRequest,
) (Receipt, error) {
	var result Receipt
	if err := e.rest.Post(ctx, constants.PathNormalWithdrawalValidate, req, &result); err != nil {
		return Receipt{}, err
	}
	return result, nil
}

// InitiateNormalWithdrawal runs the exchange side of a normal withdrawal:
// initiate, sign with kp, validate. Once the exchange has processed it the
// funds are claimed on chain with CompleteNormalWithdrawal.
func (e *Exchange) InitiateNormalWithdrawal(
	ctx context.Context,
	kp stark.KeyPair,
	amount decimal.Decimal,
	coin string,
) (Receipt, error) {
	const flow = "normal_withdrawal"

	if err := checkAmount(amount); err != nil {
		return Receipt{}, err
	}
	if err := e.rest.RequireAuth(); err != nil {
		return Receipt{}, err
	}
	if _, err := e.info.HomeCoin(ctx, coin); err != nil {
		return Receipt{}, err
	}

	start, err := e.StartNormalWithdrawal(ctx, amount, coin)
	if err != nil {
		return Receipt{}, err
	}
	e.step(flow, "INITIATED", logrus.Fields{"coin": coin, "nonce": start.Nonce})

	req, err := signNormalWithdrawal(kp, start)
	if err != nil {
		return Receipt{}, err
	}
	e.step(flow, "SIGNED", nil)

	receipt, err := e.ValidateNormalWithdrawal(ctx, req)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to validate withdrawal: %w", err)
	}
	e.step(flow, "VALIDATED", nil)

	return receipt, nil
}

// CompleteNormalWithdrawal claims the released funds of coin from the
// StarkEx contract to the adapter's address. It needs no STARK signature
// and may be repeated.
func (e *Exchange) CompleteNormalWithdrawal(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
) (chain.Tx, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return chain.Tx{}, err
	}

	coinConfig, err := e.info.HomeCoin(ctx, coin)
	if err != nil {
		return chain.Tx{}, err
	}

	assetType, err := hexToBig(coinConfig.StarkAssetID)
	if err != nil {
		return chain.Tx{}, fmt.Errorf("coin %s: %w", coin, err)
	}

	tx, err := adapter.Withdraw(ctx, e.env.StarkContract(), adapter.Address(), assetType)
	if err != nil {
		return chain.Tx{}, err
	}
	e.step("normal_withdrawal", "COMPLETED", logrus.Fields{"coin": coin, "hash": tx.Hash.Hex()})

	return tx, nil
}

// PendingNormalWithdrawalAmount returns how much of coin is released on
// the StarkEx contract and waiting to be claimed by the adapter's address
func (e *Exchange) PendingNormalWithdrawalAmount(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
) (decimal.Decimal, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return decimal.Decimal{}, err
	}

	coinConfig, err := e.info.HomeCoin(ctx, coin)
	if err != nil {
		return decimal.Decimal{}, err
	}

	assetID, err := hexToBig(coinConfig.StarkAssetID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("coin %s: %w", coin, err)
	}

	balance, err := adapter.WithdrawalBalance(ctx, e.env.StarkContract(), adapter.Address(), assetID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	decimals := coinConfig.BlockchainDecimal.Int()
	if coin == "eth" {
		decimals = ethDecimals
	}

	return utils.FormatUnits(balance, decimals), nil
}

func (e *Exchange) ListNormalWithdrawals(
	ctx context.Context,
	params ListParams,
) (Pagination[NormalWithdrawal], error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Pagination[NormalWithdrawal]{}, err
	}
	return rest.GetPayload[Pagination[NormalWithdrawal]](
		ctx,
		e.rest,
		constants.PathNormalWithdrawals,
		params.query(),
	)
}

/*//////////////////////////////////////////////////////////////
                        FAST WITHDRAWAL
//////////////////////////////////////////////////////////////*/

// StartFastWithdrawal asks the exchange for the hash authorizing a fast
// withdrawal to network
func (e *Exchange) StartFastWithdrawal(
	ctx context.Context,
	amount decimal.Decimal,
	coin string,
	network types.Network,
	opts ...FastWithdrawalOption,
) (FastWithdrawalStart, error) {
	var cfg fastWithdrawalConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return rest.PostPayload[FastWithdrawalStart](
		ctx,
		e.rest,
		constants.PathFastWithdrawalInitiate,
		fastWithdrawalStartRequest{
			Amount:    types.FloatString(amount),
			TokenID:   coin,
			Network:   network,
			CCAddress: cfg.ccAddress.OrEmpty(),
		},
	)
}

// ProcessFastWithdrawal submits the signed fast withdrawal hash
func (e *Exchange) ProcessFastWithdrawal(
	ctx context.Context,
	req ProcessFastWithdrawalRequest,
) (Receipt, error) {
	var result Receipt
	if err := e.rest.Post(ctx, constants.PathFastWithdrawalProcess, req, &result); err != nil {
		return Receipt{}, err
	}
	return result, nil
}

// FastWithdrawal withdraws amount coin to network through the exchange's
// liquidity. Ethereum withdrawals accept any home coin; other networks
// only accept the coins on their fast withdrawal allow-list.
func (e *Exchange) FastWithdrawal(
	ctx context.Context,
	kp stark.KeyPair,
	amount decimal.Decimal,
	coin string,
	network types.Network,
	opts ...FastWithdrawalOption,
) (Receipt, error) {
	const flow = "fast_withdrawal"

	if err := checkAmount(amount); err != nil {
		return Receipt{}, err
	}
	if err := e.rest.RequireAuth(); err != nil {
		return Receipt{}, err
	}

	coin = normalizeCoin(coin)

	if network.IsEthereum() {
		if _, err := e.info.HomeCoin(ctx, coin); err != nil {
			return Receipt{}, err
		}
	} else {
		if _, _, err := e.info.CrossChainCoin(ctx, network, coin, info.Withdrawal); err != nil {
			return Receipt{}, err
		}
	}

	start, err := e.StartFastWithdrawal(ctx, amount, coin, network, opts...)
	if err != nil {
		return Receipt{}, err
	}
	e.step(flow, "INITIATED", logrus.Fields{
		"coin":    coin,
		"network": network,
		"id":      start.FastWithdrawalID,
	})

	req, err := signFastWithdrawal(kp, start)
	if err != nil {
		return Receipt{}, err
	}
	e.step(flow, "SIGNED", nil)

	receipt, err := e.ProcessFastWithdrawal(ctx, req)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to process fast withdrawal: %w", err)
	}
	e.step(flow, "PROCESSED", nil)

	return receipt, nil
}

func (e *Exchange) ListFastWithdrawals(
	ctx context.Context,
	params ListParams,
) (Pagination[FastWithdrawal], error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Pagination[FastWithdrawal]{}, err
	}
	return rest.GetPayload[Pagination[FastWithdrawal]](
		ctx,
		e.rest,
		constants.PathFastWithdrawals,
		params.query(),
	)
}
