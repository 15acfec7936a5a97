// Package chain talks to the EVM chains the exchange settles with: token
// balances and approvals, StarkEx deposits and withdrawals on Ethereum,
// and the deposit contracts of the cross-chain networks.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
)

// Tx identifies a submitted transaction
type Tx struct {
	Hash  common.Hash
	Nonce uint64
}

// Adapter is the signing account on one chain
type Adapter interface {
	Address() common.Address

	NativeBalance(ctx context.Context) (*big.Int, error)
	TokenBalance(ctx context.Context, token common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error)
	ApproveAllowance(ctx context.Context, token, spender common.Address, amount *big.Int) (Tx, error)

	// StarkEx contract, Ethereum only
	DepositEth(ctx context.Context, starkContract common.Address, starkKey, assetType, vaultID, value *big.Int) (Tx, error)
	DepositERC20(ctx context.Context, starkContract common.Address, starkKey, assetType, vaultID, quantizedAmount *big.Int) (Tx, error)
	Withdraw(ctx context.Context, starkContract, owner common.Address, assetType *big.Int) (Tx, error)
	WithdrawalBalance(ctx context.Context, starkContract, owner common.Address, assetID *big.Int) (*big.Int, error)

	// Cross-chain deposit contract
	DepositNative(ctx context.Context, depositContract common.Address, value *big.Int) (Tx, error)
	DepositToken(ctx context.Context, depositContract, token common.Address, amount *big.Int) (Tx, error)
}

// Backend is the part of ethclient.Client the adapter needs
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

var _ Backend = (*ethclient.Client)(nil)

// EVM is an Adapter that signs EIP-155 transactions with a local key
type EVM struct {
	backend    Backend
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	gasPrice   mo.Option[*big.Int]
	gasLimit   mo.Option[uint64]
	logger     logrus.FieldLogger

	erc20   abi.ABI
	starkEx abi.ABI
	deposit abi.ABI
}

var _ Adapter = (*EVM)(nil)

// Option configures an EVM adapter
type Option func(*EVM)

// WithGasPrice overrides the node's suggested gas price
func WithGasPrice(gasPrice *big.Int) Option {
	return func(e *EVM) {
		e.gasPrice = mo.Some(gasPrice)
	}
}

// WithGasLimit skips gas estimation and uses limit for every transaction
func WithGasLimit(limit uint64) Option {
	return func(e *EVM) {
		e.gasLimit = mo.Some(limit)
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *EVM) {
		e.logger = logger
	}
}

// NewEVM creates an adapter over backend
func NewEVM(
	backend Backend,
	privateKey *ecdsa.PrivateKey,
	chainID *big.Int,
	opts ...Option,
) (*EVM, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key is required")
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("invalid chain id")
	}

	erc20, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	starkEx, err := abi.JSON(strings.NewReader(StarkExABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse StarkEx ABI: %w", err)
	}
	deposit, err := abi.JSON(strings.NewReader(DepositContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse deposit contract ABI: %w", err)
	}

	e := &EVM{
		backend:    backend,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    new(big.Int).Set(chainID),
		logger:     logrus.StandardLogger(),
		erc20:      erc20,
		starkEx:    starkEx,
		deposit:    deposit,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Dial connects to rpcURL and reads the chain id from the node
func Dial(
	ctx context.Context,
	rpcURL string,
	privateKey *ecdsa.PrivateKey,
	opts ...Option,
) (*EVM, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc node: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	return NewEVM(client, privateKey, chainID, opts...)
}

func (e *EVM) Address() common.Address {
	return e.address
}

func (e *EVM) ChainID() *big.Int {
	return new(big.Int).Set(e.chainID)
}

func (e *EVM) NativeBalance(ctx context.Context) (*big.Int, error) {
	balance, err := e.backend.BalanceAt(ctx, e.address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read native balance: %w", err)
	}
	return balance, nil
}

func (e *EVM) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	return e.callUint(ctx, e.erc20, token, "balanceOf", e.address)
}

func (e *EVM) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	return e.callUint(ctx, e.erc20, token, "allowance", e.address, spender)
}

func (e *EVM) ApproveAllowance(
	ctx context.Context,
	token common.Address,
	spender common.Address,
	amount *big.Int,
) (Tx, error) {
	return e.transact(ctx, e.erc20, token, nil, "approve", spender, amount)
}

func (e *EVM) DepositEth(
	ctx context.Context,
	starkContract common.Address,
	starkKey, assetType, vaultID, value *big.Int,
) (Tx, error) {
	return e.transact(ctx, e.starkEx, starkContract, value, "depositEth", starkKey, assetType, vaultID)
}

func (e *EVM) DepositERC20(
	ctx context.Context,
	starkContract common.Address,
	starkKey, assetType, vaultID, quantizedAmount *big.Int,
) (Tx, error) {
	return e.transact(ctx, e.starkEx, starkContract, nil, "depositERC20", starkKey, assetType, vaultID, quantizedAmount)
}

// Withdraw moves funds released by a validated withdrawal from the
// StarkEx contract to owner. It needs no STARK signature and can be
// repeated; the contract pays out whatever is pending.
func (e *EVM) Withdraw(
	ctx context.Context,
	starkContract common.Address,
	owner common.Address,
	assetType *big.Int,
) (Tx, error) {
	return e.transact(ctx, e.starkEx, starkContract, nil, "withdraw", ownerKey(owner), assetType)
}

// WithdrawalBalance returns the amount released for owner and not yet
// withdrawn, in on-chain units
func (e *EVM) WithdrawalBalance(
	ctx context.Context,
	starkContract common.Address,
	owner common.Address,
	assetID *big.Int,
) (*big.Int, error) {
	return e.callUint(ctx, e.starkEx, starkContract, "getWithdrawalBalance", ownerKey(owner), assetID)
}

func (e *EVM) DepositNative(
	ctx context.Context,
	depositContract common.Address,
	value *big.Int,
) (Tx, error) {
	return e.transact(ctx, e.deposit, depositContract, value, "depositNative")
}

func (e *EVM) DepositToken(
	ctx context.Context,
	depositContract common.Address,
	token common.Address,
	amount *big.Int,
) (Tx, error) {
	return e.transact(ctx, e.deposit, depositContract, nil, "deposit", token, amount)
}

func (e *EVM) callUint(
	ctx context.Context,
	contractABI abi.ABI,
	to common.Address,
	method string,
	args ...any,
) (*big.Int, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	result, err := e.backend.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	values, err := contractABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s: expected 1 return value, got %d", method, len(values))
	}

	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected return type %T", method, values[0])
	}

	return value, nil
}

func (e *EVM) transact(
	ctx context.Context,
	contractABI abi.ABI,
	to common.Address,
	value *big.Int,
	method string,
	args ...any,
) (Tx, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return Tx{}, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	if value == nil {
		value = big.NewInt(0)
	}

	nonce, err := e.backend.PendingNonceAt(ctx, e.address)
	if err != nil {
		return Tx{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, ok := e.gasPrice.Get()
	if !ok {
		gasPrice, err = e.backend.SuggestGasPrice(ctx)
		if err != nil {
			return Tx{}, fmt.Errorf("failed to get gas price: %w", err)
		}
	}

	gasLimit, ok := e.gasLimit.Get()
	if !ok {
		gasLimit, err = e.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  e.address,
			To:    &to,
			Data:  data,
			Value: value,
		})
		if err != nil {
			return Tx{}, fmt.Errorf("failed to estimate gas for %s: %w", method, err)
		}
	}

	tx := ethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(e.chainID), e.privateKey)
	if err != nil {
		return Tx{}, fmt.Errorf("failed to sign %s transaction: %w", method, err)
	}

	if err := e.backend.SendTransaction(ctx, signedTx); err != nil {
		return Tx{}, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}

	e.logger.WithFields(logrus.Fields{
		"method": method,
		"to":     to.Hex(),
		"hash":   signedTx.Hash().Hex(),
		"nonce":  nonce,
	}).Info("transaction sent")

	return Tx{Hash: signedTx.Hash(), Nonce: nonce}, nil
}

// ownerKey is the uint256 form of an Ethereum address, as StarkEx keys
// L1 withdrawals by address
func ownerKey(owner common.Address) *big.Int {
	return new(big.Int).SetBytes(owner.Bytes())
}
