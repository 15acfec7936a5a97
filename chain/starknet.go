package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/dontpanicdao/caigo"
	"github.com/dontpanicdao/caigo/rpcv01"
	ctypes "github.com/dontpanicdao/caigo/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

// StarknetAccount is the signing account on Starknet. Deposits from
// Starknet are bridged, so the account only reads token balances and
// executes the calls the exchange hands out.
type StarknetAccount interface {
	Address() string
	TokenBalance(ctx context.Context, token string) (*big.Int, error)
	Execute(ctx context.Context, calls []StarknetCall) (string, error)
}

// StarknetBackend is the part of caigo.Account the Starknet account needs
type StarknetBackend interface {
	Call(ctx context.Context, call ctypes.FunctionCall) ([]string, error)
	Execute(ctx context.Context, calls []ctypes.FunctionCall, details ctypes.ExecuteDetails) (*ctypes.AddInvokeTransactionOutput, error)
}

var _ StarknetBackend = (*caigo.Account)(nil)

// StarknetCall is one contract invocation of a multicall
type StarknetCall struct {
	ContractAddress string   `json:"contractAddress"`
	Entrypoint      string   `json:"entrypoint"`
	Calldata        Calldata `json:"calldata"`
}

// Calldata holds felts that arrive as JSON strings or numbers
type Calldata []string

func (c *Calldata) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Calldata, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}

		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("invalid calldata element %s", item)
		}
		out = append(out, n.String())
	}

	*c = out
	return nil
}

// ParseStarknetCalls decodes a multicall given either as JSON or as a JSON
// string holding it. A single call object is accepted too.
func ParseStarknetCalls(data json.RawMessage) ([]StarknetCall, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("no starknet calls")
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("invalid starknet calls: %w", err)
		}
		return ParseStarknetCalls(json.RawMessage(inner))
	}

	if data[0] == '{' {
		var call StarknetCall
		if err := json.Unmarshal(data, &call); err != nil {
			return nil, fmt.Errorf("invalid starknet call: %w", err)
		}
		return []StarknetCall{call}, nil
	}

	var calls []StarknetCall
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("invalid starknet calls: %w", err)
	}
	if len(calls) == 0 {
		return nil, fmt.Errorf("no starknet calls")
	}

	return calls, nil
}

// Starknet is a StarknetAccount over a caigo account
type Starknet struct {
	backend StarknetBackend
	address string
	logger  logrus.FieldLogger
}

var _ StarknetAccount = (*Starknet)(nil)

// NewStarknet wraps backend, the account deployed at address
func NewStarknet(backend StarknetBackend, address string, logger logrus.FieldLogger) (*Starknet, error) {
	if backend == nil {
		return nil, fmt.Errorf("starknet backend is required")
	}
	if address == "" {
		return nil, fmt.Errorf("starknet account address is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Starknet{
		backend: backend,
		address: address,
		logger:  logger.WithField("chain", "starknet"),
	}, nil
}

// DialStarknet connects to a Starknet JSON-RPC node and opens the account
// at address with privateKey
func DialStarknet(
	ctx context.Context,
	rpcURL string,
	address string,
	privateKey string,
	logger logrus.FieldLogger,
) (*Starknet, error) {
	client, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to starknet node: %w", err)
	}

	account, err := caigo.NewRPCAccount(privateKey, address, rpcv01.NewProvider(client), caigo.AccountVersion1)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to open starknet account: %w", err)
	}

	return NewStarknet(account, address, logger)
}

func (s *Starknet) Address() string {
	return s.address
}

// TokenBalance reads balanceOf on the ERC-20 token. A u256 result comes
// back as its low and high 128-bit halves.
func (s *Starknet) TokenBalance(ctx context.Context, token string) (*big.Int, error) {
	result, err := s.backend.Call(ctx, ctypes.FunctionCall{
		ContractAddress:    ctypes.HexToHash(token),
		EntryPointSelector: "balanceOf",
		Calldata:           []string{s.address},
	})
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}

	switch len(result) {
	case 1:
		return ctypes.SNValToBN(result[0]), nil
	case 2:
		low := ctypes.SNValToBN(result[0])
		high := ctypes.SNValToBN(result[1])
		return new(big.Int).Add(low, new(big.Int).Lsh(high, 128)), nil
	default:
		return nil, fmt.Errorf("balanceOf: unexpected result %v", result)
	}
}

// Execute sends calls as one invoke transaction and returns its hash
func (s *Starknet) Execute(ctx context.Context, calls []StarknetCall) (string, error) {
	if len(calls) == 0 {
		return "", fmt.Errorf("no starknet calls")
	}

	functionCalls := make([]ctypes.FunctionCall, len(calls))
	for i, call := range calls {
		functionCalls[i] = ctypes.FunctionCall{
			ContractAddress:    ctypes.HexToHash(call.ContractAddress),
			EntryPointSelector: call.Entrypoint,
			Calldata:           call.Calldata,
		}
	}

	out, err := s.backend.Execute(ctx, functionCalls, ctypes.ExecuteDetails{})
	if err != nil {
		return "", fmt.Errorf("failed to execute starknet calls: %w", err)
	}

	s.logger.WithField("hash", out.TransactionHash).Info("starknet transaction sent")

	return out.TransactionHash, nil
}
