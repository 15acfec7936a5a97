package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "0123456789012345678901234567890123456789012345678901234567890123"

var (
	testChainID = big.NewInt(11155111)
	testToken   = common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	testStark   = common.HexToAddress("0xA2eC709125Ea693f5522aEfBBC3cb22fb9146B52")
)

type fakeBackend struct {
	calls      []ethereum.CallMsg
	callResult func(msg ethereum.CallMsg) ([]byte, error)
	balance    *big.Int
	nonce      uint64
	gasPrice   *big.Int
	gas        uint64
	estimates  int
	sendErr    error
	sent       []*ethtypes.Transaction
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	return f.callResult(msg)
}

func (f *fakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimates++
	return f.gas, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		balance:  big.NewInt(5e17),
		nonce:    7,
		gasPrice: big.NewInt(2_000_000_000),
		gas:      90_000,
	}
}

func newTestEVM(t *testing.T, backend Backend, opts ...Option) *EVM {
	t.Helper()

	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	opts = append([]Option{WithLogger(logger)}, opts...)

	evm, err := NewEVM(backend, key, testChainID, opts...)
	require.NoError(t, err)

	return evm
}

func parseABI(t *testing.T, definition string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(definition))
	require.NoError(t, err)
	return parsed
}

func decodeInputs(t *testing.T, contractABI abi.ABI, data []byte) (string, []any) {
	t.Helper()
	require.GreaterOrEqual(t, len(data), 4)

	method, err := contractABI.MethodById(data[:4])
	require.NoError(t, err)

	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)

	return method.Name, args
}

func TestNewEVMValidation(t *testing.T) {
	_, err := NewEVM(newFakeBackend(), nil, testChainID)
	require.Error(t, err)

	key, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)

	_, err = NewEVM(newFakeBackend(), key, big.NewInt(0))
	require.Error(t, err)

	evm, err := NewEVM(newFakeBackend(), key, testChainID)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), evm.Address())
	assert.Equal(t, 0, evm.ChainID().Cmp(testChainID))
}

func TestTokenBalance(t *testing.T) {
	erc20 := parseABI(t, ERC20ABI)
	backend := newFakeBackend()
	backend.callResult = func(msg ethereum.CallMsg) ([]byte, error) {
		return erc20.Methods["balanceOf"].Outputs.Pack(big.NewInt(1234))
	}

	evm := newTestEVM(t, backend)
	balance, err := evm.TokenBalance(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), balance.Int64())

	require.Len(t, backend.calls, 1)
	assert.Equal(t, testToken, *backend.calls[0].To)

	name, args := decodeInputs(t, erc20, backend.calls[0].Data)
	assert.Equal(t, "balanceOf", name)
	assert.Equal(t, evm.Address(), args[0])
}

func TestAllowance(t *testing.T) {
	erc20 := parseABI(t, ERC20ABI)
	backend := newFakeBackend()
	backend.callResult = func(msg ethereum.CallMsg) ([]byte, error) {
		return erc20.Methods["allowance"].Outputs.Pack(big.NewInt(99))
	}

	evm := newTestEVM(t, backend)
	allowance, err := evm.Allowance(context.Background(), testToken, testStark)
	require.NoError(t, err)
	assert.Equal(t, int64(99), allowance.Int64())

	name, args := decodeInputs(t, erc20, backend.calls[0].Data)
	assert.Equal(t, "allowance", name)
	assert.Equal(t, []any{evm.Address(), testStark}, args)
}

func TestCallError(t *testing.T) {
	backend := newFakeBackend()
	backend.callResult = func(msg ethereum.CallMsg) ([]byte, error) {
		return nil, errors.New("execution reverted")
	}

	evm := newTestEVM(t, backend)
	_, err := evm.TokenBalance(context.Background(), testToken)
	require.ErrorContains(t, err, "execution reverted")
}

func TestNativeBalance(t *testing.T) {
	evm := newTestEVM(t, newFakeBackend())
	balance, err := evm.NativeBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5e17), balance)
}

func TestApproveAllowanceSignsEIP155(t *testing.T) {
	erc20 := parseABI(t, ERC20ABI)
	backend := newFakeBackend()
	evm := newTestEVM(t, backend)

	amount, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	tx, err := evm.ApproveAllowance(context.Background(), testToken, testStark, amount)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	sent := backend.sent[0]
	assert.Equal(t, sent.Hash(), tx.Hash)
	assert.Equal(t, uint64(7), tx.Nonce)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, testToken, *sent.To())
	assert.Equal(t, uint64(90_000), sent.Gas())
	assert.Equal(t, 0, sent.GasPrice().Cmp(big.NewInt(2_000_000_000)))
	assert.Equal(t, 0, sent.Value().Sign())

	sender, err := ethtypes.Sender(ethtypes.NewEIP155Signer(testChainID), sent)
	require.NoError(t, err)
	assert.Equal(t, evm.Address(), sender)

	name, args := decodeInputs(t, erc20, sent.Data())
	assert.Equal(t, "approve", name)
	assert.Equal(t, testStark, args[0])
	assert.Equal(t, 0, amount.Cmp(args[1].(*big.Int)))
}

func TestDepositEthCarriesValue(t *testing.T) {
	starkEx := parseABI(t, StarkExABI)
	backend := newFakeBackend()
	evm := newTestEVM(t, backend)

	starkKey, _ := new(big.Int).SetString("3c1e9550e66958296d11b60f8e8e7a7ad990d07fa65d5f7652c4a6c87d4e3cc", 16)
	assetType, _ := new(big.Int).SetString("2ce625e94458d39dd0bf3b45a843544dd4a14b8169045a3a3d15aa564b936c5", 16)
	value := big.NewInt(1e16)

	_, err := evm.DepositEth(context.Background(), testStark, starkKey, assetType, big.NewInt(42), value)
	require.NoError(t, err)

	sent := backend.sent[0]
	assert.Equal(t, testStark, *sent.To())
	assert.Equal(t, 0, sent.Value().Cmp(value))

	name, args := decodeInputs(t, starkEx, sent.Data())
	assert.Equal(t, "depositEth", name)
	assert.Equal(t, 0, starkKey.Cmp(args[0].(*big.Int)))
	assert.Equal(t, 0, assetType.Cmp(args[1].(*big.Int)))
	assert.Equal(t, int64(42), args[2].(*big.Int).Int64())
}

func TestDepositERC20(t *testing.T) {
	starkEx := parseABI(t, StarkExABI)
	backend := newFakeBackend()
	evm := newTestEVM(t, backend)

	_, err := evm.DepositERC20(context.Background(), testStark, big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(2_500_000))
	require.NoError(t, err)

	sent := backend.sent[0]
	assert.Equal(t, 0, sent.Value().Sign())

	name, args := decodeInputs(t, starkEx, sent.Data())
	assert.Equal(t, "depositERC20", name)
	assert.Equal(t, int64(2_500_000), args[3].(*big.Int).Int64())
}

func TestWithdrawUsesAddressAsOwnerKey(t *testing.T) {
	starkEx := parseABI(t, StarkExABI)
	backend := newFakeBackend()
	evm := newTestEVM(t, backend)

	owner := common.HexToAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a")
	_, err := evm.Withdraw(context.Background(), testStark, owner, big.NewInt(77))
	require.NoError(t, err)

	name, args := decodeInputs(t, starkEx, backend.sent[0].Data())
	assert.Equal(t, "withdraw", name)
	assert.Equal(t, owner, common.BigToAddress(args[0].(*big.Int)))
	assert.Equal(t, int64(77), args[1].(*big.Int).Int64())
}

func TestWithdrawalBalance(t *testing.T) {
	starkEx := parseABI(t, StarkExABI)
	backend := newFakeBackend()
	backend.callResult = func(msg ethereum.CallMsg) ([]byte, error) {
		return starkEx.Methods["getWithdrawalBalance"].Outputs.Pack(big.NewInt(3_000_000))
	}
	evm := newTestEVM(t, backend)

	owner := common.HexToAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a")
	balance, err := evm.WithdrawalBalance(context.Background(), testStark, owner, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), balance.Int64())

	name, args := decodeInputs(t, starkEx, backend.calls[0].Data)
	assert.Equal(t, "getWithdrawalBalance", name)
	assert.Equal(t, owner, common.BigToAddress(args[0].(*big.Int)))
}

func TestDepositNativeAndToken(t *testing.T) {
	deposit := parseABI(t, DepositContractABI)
	backend := newFakeBackend()
	evm := newTestEVM(t, backend)

	depositContract := common.HexToAddress("0x1f7ad2f28a9ebd2d2d3f5d0a6e0c3c7f6d3a8b21")

	_, err := evm.DepositNative(context.Background(), depositContract, big.NewInt(1e18))
	require.NoError(t, err)
	_, err = evm.DepositToken(context.Background(), depositContract, testToken, big.NewInt(10_000_000))
	require.NoError(t, err)
	require.Len(t, backend.sent, 2)

	native := backend.sent[0]
	assert.Equal(t, deposit.Methods["depositNative"].ID, native.Data())
	assert.Equal(t, 0, native.Value().Cmp(big.NewInt(1e18)))

	name, args := decodeInputs(t, deposit, backend.sent[1].Data())
	assert.Equal(t, "deposit", name)
	assert.Equal(t, testToken, args[0])
	assert.Equal(t, int64(10_000_000), args[1].(*big.Int).Int64())
	assert.Equal(t, 0, backend.sent[1].Value().Sign())
}

func TestGasOverrides(t *testing.T) {
	backend := newFakeBackend()
	evm := newTestEVM(t, backend, WithGasLimit(250_000), WithGasPrice(big.NewInt(9)))

	_, err := evm.ApproveAllowance(context.Background(), testToken, testStark, big.NewInt(1))
	require.NoError(t, err)

	assert.Equal(t, 0, backend.estimates)
	assert.Equal(t, uint64(250_000), backend.sent[0].Gas())
	assert.Equal(t, int64(9), backend.sent[0].GasPrice().Int64())
}

func TestSendError(t *testing.T) {
	backend := newFakeBackend()
	backend.sendErr = errors.New("insufficient funds for gas")
	evm := newTestEVM(t, backend)

	_, err := evm.DepositNative(context.Background(), testStark, big.NewInt(1))
	require.ErrorContains(t, err, "insufficient funds")
}
