package exchange

import (
	"context"
	"fmt"
	"math/big"

	"github.com/banky/go-tanx/chain"
	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/info"
	"github.com/banky/go-tanx/internal/utils"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/stark"
	"github.com/banky/go-tanx/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func (e *Exchange) ListDeposits(ctx context.Context, params ListParams) (Pagination[Deposit], error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Pagination[Deposit]{}, err
	}
	return rest.GetPayload[Pagination[Deposit]](ctx, e.rest, constants.PathDeposits, params.query())
}

// TokenBalance returns the on-chain balance of coin held by the adapter's
// address on network
func (e *Exchange) TokenBalance(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
	network types.Network,
) (decimal.Decimal, error) {
	coin = normalizeCoin(coin)

	if coin == network.NativeCurrency() {
		balance, err := adapter.NativeBalance(ctx)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return utils.FormatUnits(balance, ethDecimals), nil
	}

	token, decimals, err := e.tokenContract(ctx, coin, network)
	if err != nil {
		return decimal.Decimal{}, err
	}

	balance, err := adapter.TokenBalance(ctx, token)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return utils.FormatUnits(balance, decimals), nil
}

// SetAllowance approves the contract that receives deposits of coin on
// network to spend an unlimited amount of it: the StarkEx contract on
// Ethereum, the network's deposit contract elsewhere
func (e *Exchange) SetAllowance(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
	network types.Network,
) (chain.Tx, error) {
	coin = normalizeCoin(coin)

	var token, spender common.Address

	if network.IsEthereum() {
		coinConfig, err := e.info.HomeCoin(ctx, coin)
		if err != nil {
			return chain.Tx{}, err
		}
		if token, err = parseAddress(coinConfig.TokenContract); err != nil {
			return chain.Tx{}, err
		}
		spender = e.env.StarkContract()
	} else {
		networkToken, config, err := e.info.CrossChainCoin(ctx, network, coin, info.Deposit)
		if err != nil {
			return chain.Tx{}, err
		}
		if token, err = parseAddress(networkToken.TokenContract); err != nil {
			return chain.Tx{}, err
		}
		if spender, err = parseAddress(config.DepositContract); err != nil {
			return chain.Tx{}, err
		}
	}

	tx, err := adapter.ApproveAllowance(ctx, token, spender, maxAllowance())
	if err != nil {
		return chain.Tx{}, err
	}

	e.logger.WithFields(logrus.Fields{
		"coin":    coin,
		"network": network.Normalize(),
		"hash":    tx.Hash.Hex(),
	}).Info("allowance approved")

	return tx, nil
}

// DepositFromEthereumNetwork deposits amount coin from the adapter's
// Ethereum account into the StarkEx vault of the key pair and reports the
// deposit to the exchange
func (e *Exchange) DepositFromEthereumNetwork(
	ctx context.Context,
	adapter chain.Adapter,
	kp stark.KeyPair,
	coin string,
	amount decimal.Decimal,
) (DepositReceipt, error) {
	const flow = "ethereum_deposit"

	if err := e.requireInstitutional("deposit from ethereum"); err != nil {
		return DepositReceipt{}, err
	}
	if err := checkAmount(amount); err != nil {
		return DepositReceipt{}, err
	}
	if err := e.rest.RequireAuth(); err != nil {
		return DepositReceipt{}, err
	}

	coin = normalizeCoin(coin)

	coinConfig, err := e.info.HomeCoin(ctx, coin)
	if err != nil {
		return DepositReceipt{}, err
	}

	quantization, err := parseQuantization(coinConfig.Quantization)
	if err != nil {
		return DepositReceipt{}, err
	}
	quantizedAmount, err := utils.ParseUnits(amount, quantization)
	if err != nil {
		return DepositReceipt{}, err
	}

	assetType, err := hexToBig(coinConfig.StarkAssetID)
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("coin %s: %w", coin, err)
	}

	vaultID, err := e.VaultID(ctx, coin)
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("failed to get vault: %w", err)
	}

	if err := e.checkBalance(ctx, adapter, coin, types.Ethereum, amount); err != nil {
		return DepositReceipt{}, err
	}

	starkContract := e.env.StarkContract()
	starkKey := kp.PublicX()

	var (
		tx         chain.Tx
		wireAmount string
	)

	if coin == types.Ethereum.NativeCurrency() {
		value, err := utils.ParseUnits(amount, ethDecimals)
		if err != nil {
			return DepositReceipt{}, err
		}

		tx, err = adapter.DepositEth(ctx, starkContract, starkKey, assetType, big.NewInt(vaultID), value)
		if err != nil {
			return DepositReceipt{}, err
		}

		// ether deposits are reported in units of 10^-10 eth
		wireAmount = amountToWire(amount.Shift(10))
	} else {
		token, err := parseAddress(coinConfig.TokenContract)
		if err != nil {
			return DepositReceipt{}, err
		}

		err = e.checkAllowance(ctx, adapter, coin, token, starkContract, coinConfig.Decimal.Int(), amount)
		if err != nil {
			return DepositReceipt{}, err
		}

		tx, err = adapter.DepositERC20(ctx, starkContract, starkKey, assetType, big.NewInt(vaultID), quantizedAmount)
		if err != nil {
			return DepositReceipt{}, err
		}

		wireAmount = quantizedAmount.String()
	}
	e.step(flow, "DEPOSITED", logrus.Fields{"coin": coin, "hash": tx.Hash.Hex(), "vault": vaultID})

	result, err := e.CryptoDepositStart(ctx, CryptoDepositStartRequest{
		Amount:                 wireAmount,
		TokenID:                utils.Normalize0x0(coinConfig.StarkAssetID),
		StarkKey:               utils.Normalize0x0(kp.PublicKeyHex()),
		DepositBlockchainHash:  tx.Hash.Hex(),
		DepositBlockchainNonce: tx.Nonce,
		VaultID:                vaultID,
	})
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("deposit %s sent but not reported: %w", tx.Hash.Hex(), err)
	}
	e.step(flow, "REPORTED", nil)

	return DepositReceipt{
		Status:          result.Status,
		Message:         result.Message,
		TransactionHash: tx.Hash.Hex(),
		Nonce:           tx.Nonce,
	}, nil
}

// CrossChainDeposit deposits amount coin from the adapter's account on a
// secondary network through that network's deposit contract and reports
// the deposit to the exchange
func (e *Exchange) CrossChainDeposit(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
	amount decimal.Decimal,
	network types.Network,
) (DepositReceipt, error) {
	const flow = "cross_chain_deposit"

	if err := e.requireInstitutional("cross-chain deposit"); err != nil {
		return DepositReceipt{}, err
	}
	if err := checkAmount(amount); err != nil {
		return DepositReceipt{}, err
	}
	if err := e.rest.RequireAuth(); err != nil {
		return DepositReceipt{}, err
	}
	if network.IsEthereum() {
		return DepositReceipt{}, fmt.Errorf("ethereum deposits go through DepositFromEthereumNetwork")
	}

	coin = normalizeCoin(coin)
	network = network.Normalize()

	token, config, err := e.info.CrossChainCoin(ctx, network, coin, info.Deposit)
	if err != nil {
		return DepositReceipt{}, err
	}

	depositContract, err := parseAddress(config.DepositContract)
	if err != nil {
		return DepositReceipt{}, err
	}

	if err := e.checkBalance(ctx, adapter, coin, network, amount); err != nil {
		return DepositReceipt{}, err
	}

	var tx chain.Tx

	if coin == network.NativeCurrency() {
		value, err := utils.ParseUnits(amount, ethDecimals)
		if err != nil {
			return DepositReceipt{}, err
		}

		tx, err = adapter.DepositNative(ctx, depositContract, value)
		if err != nil {
			return DepositReceipt{}, err
		}
	} else {
		decimals := token.BlockchainDecimal.Int()

		quantizedAmount, err := utils.ParseUnits(amount, decimals)
		if err != nil {
			return DepositReceipt{}, err
		}

		tokenAddress, err := parseAddress(token.TokenContract)
		if err != nil {
			return DepositReceipt{}, err
		}

		err = e.checkAllowance(ctx, adapter, coin, tokenAddress, depositContract, decimals, amount)
		if err != nil {
			return DepositReceipt{}, err
		}

		tx, err = adapter.DepositToken(ctx, depositContract, tokenAddress, quantizedAmount)
		if err != nil {
			return DepositReceipt{}, err
		}
	}
	e.step(flow, "DEPOSITED", logrus.Fields{"coin": coin, "network": network, "hash": tx.Hash.Hex()})

	result, err := e.CrossChainDepositStart(ctx, CrossChainDepositStartRequest{
		Amount:                 amountToWire(amount),
		Currency:               coin,
		Network:                network,
		DepositBlockchainHash:  tx.Hash.Hex(),
		DepositBlockchainNonce: tx.Nonce,
	})
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("deposit %s sent but not reported: %w", tx.Hash.Hex(), err)
	}
	e.step(flow, "REPORTED", nil)

	return DepositReceipt{
		Status:          result.Status,
		Message:         result.Message,
		TransactionHash: tx.Hash.Hex(),
		Nonce:           tx.Nonce,
	}, nil
}

// CryptoDepositStart reports an L1 StarkEx deposit
func (e *Exchange) CryptoDepositStart(ctx context.Context, req CryptoDepositStartRequest) (Receipt, error) {
	var result Receipt
	if err := e.rest.Post(ctx, constants.PathStarkDepositStart, req, &result); err != nil {
		return Receipt{}, err
	}
	return result, nil
}

// CrossChainDepositStart reports a deposit made on a secondary network.
// The network defaults to POLYGON.
func (e *Exchange) CrossChainDepositStart(ctx context.Context, req CrossChainDepositStartRequest) (Receipt, error) {
	if req.Network == "" {
		req.Network = types.Polygon
	}
	req.Currency = normalizeCoin(req.Currency)

	var result Receipt
	if err := e.rest.Post(ctx, constants.PathCrossChainDepositInit, req, &result); err != nil {
		return Receipt{}, err
	}
	return result, nil
}

// StarknetDeposit bridges amount coin from a Starknet account: quote the
// bridge fee, check the balance and limits, open the deposit, execute the
// bridge calls and report the transaction
func (e *Exchange) StarknetDeposit(
	ctx context.Context,
	account chain.StarknetAccount,
	coin string,
	amount decimal.Decimal,
) (DepositReceipt, error) {
	const flow = "starknet_deposit"

	if err := e.requireInstitutional("starknet deposit"); err != nil {
		return DepositReceipt{}, err
	}
	if err := checkAmount(amount); err != nil {
		return DepositReceipt{}, err
	}
	if err := e.rest.RequireAuth(); err != nil {
		return DepositReceipt{}, err
	}

	coin = normalizeCoin(coin)

	token, _, err := e.info.CrossChainCoin(ctx, types.Starknet, coin, info.Deposit)
	if err != nil {
		return DepositReceipt{}, err
	}

	raw, err := account.TokenBalance(ctx, token.TokenContract)
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("failed to read balance: %w", err)
	}
	balance := utils.FormatUnits(raw, token.BlockchainDecimal.Int())

	fee, err := e.LayerSwapDepositInfo(ctx, LayerSwapFeeParams{TokenID: coin, SourceNetwork: types.Starknet})
	if err != nil {
		return DepositReceipt{}, err
	}

	feeAmount := fee.FeeAmount.Raw()
	if balance.IsZero() || balance.Sub(feeAmount).LessThan(amount) {
		return DepositReceipt{}, &types.BalanceTooLowError{
			Currency: coin,
			Balance:  amountToWire(balance),
			Required: amountToWire(amount.Add(feeAmount)),
		}
	}

	minAmount, maxAmount := fee.MinAmount.Raw(), fee.MaxAmount.Raw()
	if amount.LessThan(minAmount) || (maxAmount.IsPositive() && amount.GreaterThan(maxAmount)) {
		return DepositReceipt{}, &types.DepositLimitError{
			Currency: coin,
			Amount:   amountToWire(amount),
			Min:      amountToWire(minAmount),
			Max:      amountToWire(maxAmount),
		}
	}
	e.step(flow, "QUOTED", logrus.Fields{"coin": coin, "fee": amountToWire(feeAmount)})

	deposit, err := e.InitiateLayerSwapDeposit(ctx, InitiateLayerSwapDepositRequest{
		Amount:    types.FloatString(amount),
		TokenID:   coin,
		CCAddress: account.Address(),
		FeeMeta:   fee,
	})
	if err != nil {
		return DepositReceipt{}, err
	}

	calls, err := chain.ParseStarknetCalls(deposit.LsData.Data)
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("deposit %s: %w", deposit.RefID, err)
	}
	e.step(flow, "INITIATED", logrus.Fields{"ref_id": deposit.RefID, "calls": len(calls)})

	hash, err := account.Execute(ctx, calls)
	if err != nil {
		return DepositReceipt{}, err
	}
	e.step(flow, "DEPOSITED", logrus.Fields{"hash": hash})

	result, err := e.SaveLayerSwapTx(ctx, deposit.RefID, hash)
	if err != nil {
		return DepositReceipt{}, fmt.Errorf("deposit %s sent but not reported: %w", hash, err)
	}
	e.step(flow, "REPORTED", nil)

	return DepositReceipt{
		Status:          result.Status,
		Message:         result.Message,
		TransactionHash: hash,
	}, nil
}

// LayerSwapDepositInfo quotes the fee and limits of a bridged deposit
func (e *Exchange) LayerSwapDepositInfo(ctx context.Context, params LayerSwapFeeParams) (LayerSwapDepositFee, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return LayerSwapDepositFee{}, err
	}
	params.TokenID = normalizeCoin(params.TokenID)

	return rest.GetPayload[LayerSwapDepositFee](ctx, e.rest, constants.PathLayerSwapDepositFee, params.query())
}

// InitiateLayerSwapDeposit opens a bridged deposit. The source network
// defaults to STARKNET.
func (e *Exchange) InitiateLayerSwapDeposit(ctx context.Context, req InitiateLayerSwapDepositRequest) (LayerSwapDeposit, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return LayerSwapDeposit{}, err
	}
	if req.SourceNetwork == "" {
		req.SourceNetwork = types.Starknet
	}
	req.TokenID = normalizeCoin(req.TokenID)

	return rest.PostPayload[LayerSwapDeposit](ctx, e.rest, constants.PathLayerSwapDeposit, req)
}

// SaveLayerSwapTx reports the transaction that funded a bridged deposit
func (e *Exchange) SaveLayerSwapTx(ctx context.Context, refID, transactionHash string) (Receipt, error) {
	var result Receipt
	err := e.rest.Post(ctx, constants.PathLayerSwapDepositSave, saveLayerSwapTxRequest{
		RefID:           refID,
		TransactionHash: transactionHash,
	}, &result)
	if err != nil {
		return Receipt{}, err
	}
	return result, nil
}

func (e *Exchange) requireInstitutional(operation string) error {
	if !e.institutional {
		return &types.InstitutionalOnlyError{Operation: operation}
	}
	return nil
}

// tokenContract resolves the token contract and on-chain decimals of a
// non-native coin on network
func (e *Exchange) tokenContract(
	ctx context.Context,
	coin string,
	network types.Network,
) (common.Address, int32, error) {
	if network.IsEthereum() {
		coinConfig, err := e.info.HomeCoin(ctx, coin)
		if err != nil {
			return common.Address{}, 0, err
		}
		address, err := parseAddress(coinConfig.TokenContract)
		return address, coinConfig.Decimal.Int(), err
	}

	token, _, err := e.info.CrossChainCoin(ctx, network, coin, info.Tokens)
	if err != nil {
		return common.Address{}, 0, err
	}
	address, err := parseAddress(token.TokenContract)
	return address, token.BlockchainDecimal.Int(), err
}

func (e *Exchange) checkBalance(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
	network types.Network,
	amount decimal.Decimal,
) error {
	balance, err := e.TokenBalance(ctx, adapter, coin, network)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	if balance.LessThan(amount) {
		return &types.BalanceTooLowError{
			Currency: coin,
			Balance:  amountToWire(balance),
			Required: amountToWire(amount),
		}
	}
	return nil
}

func (e *Exchange) checkAllowance(
	ctx context.Context,
	adapter chain.Adapter,
	coin string,
	token common.Address,
	spender common.Address,
	decimals int32,
	amount decimal.Decimal,
) error {
	raw, err := adapter.Allowance(ctx, token, spender)
	if err != nil {
		return fmt.Errorf("failed to read allowance: %w", err)
	}

	allowance := utils.FormatUnits(raw, decimals)
	if allowance.LessThan(amount) {
		return &types.AllowanceTooLowError{
			Currency:  coin,
			Allowance: amountToWire(allowance),
			Required:  amountToWire(amount),
		}
	}
	return nil
}

func maxAllowance() *big.Int {
	v, _ := new(big.Int).SetString(constants.MAX_INT_ALLOWANCE, 10)
	return v
}
