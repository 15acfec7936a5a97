package exchange

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/banky/go-tanx/chain"
	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/identity"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/stark"
	"github.com/banky/go-tanx/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/maxatome/go-testdeep/td"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	testEthKey  = "0123456789012345678901234567890123456789012345678901234567890123"
	testMsgHash = "0x397e76d1667c4454bfb83514e120583af836f8e32a516765497823eabe16a3f"
)

// recordedRequest is one request seen by the fake exchange
type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Query  map[string]string
	Body   map[string]any
	Raw    []byte
}

type handlerFunc func(req recordedRequest) (int, any)

// fakeExchange serves canned envelopes per path and records every
// request it receives
type fakeExchange struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]handlerFunc
	requests []recordedRequest
}

func newFakeExchange(t *testing.T) *fakeExchange {
	f := &fakeExchange{handlers: make(map[string]handlerFunc)}

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		req := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Query:  make(map[string]string),
			Raw:    raw,
		}
		for k := range r.URL.Query() {
			req.Query[k] = r.URL.Query().Get(k)
		}
		if len(raw) > 0 {
			json.Unmarshal(raw, &req.Body)
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		h, ok := f.handlers[r.URL.Path]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"status": "error", "message": "not found: " + r.URL.Path, "payload": "",
			})
			return
		}

		status, body := h(req)
		w.WriteHeader(status)
		if raw, ok := body.([]byte); ok {
			w.Write(raw)
			return
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeExchange) handle(path string, h handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = h
}

// reply registers a handler that always answers with a success envelope
func (f *fakeExchange) reply(path string, payload any) {
	f.handle(path, func(recordedRequest) (int, any) {
		return http.StatusOK, success(payload)
	})
}

// replyFile registers a handler that answers with a recorded response
func (f *fakeExchange) replyFile(t *testing.T, path, file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	f.handle(path, func(recordedRequest) (int, any) {
		return http.StatusOK, data
	})
}

func (f *fakeExchange) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	paths := make([]string, len(f.requests))
	for i, r := range f.requests {
		paths[i] = r.Path
	}
	return paths
}

// last returns the most recent request to path
func (f *fakeExchange) last(t *testing.T, path string) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Path == path {
			return f.requests[i]
		}
	}
	t.Fatalf("no request to %s", path)
	return recordedRequest{}
}

func success(payload any) map[string]any {
	return map[string]any{"status": "success", "message": "ok", "payload": payload}
}

// withConfigs serves the recorded coin and network configuration
func (f *fakeExchange) withConfigs(t *testing.T) *fakeExchange {
	f.replyFile(t, constants.PathCoinStats, "../info/cassettes/coin_stats.json")
	f.replyFile(t, constants.PathNetworkConfig, "../info/cassettes/network_config.json")
	return f
}

func newTestExchange(t *testing.T, f *fakeExchange, institutional bool) *Exchange {
	logger, _ := test.NewNullLogger()

	e, err := New(Config{
		Environment:         types.Testnet,
		BaseURL:             f.URL,
		Logger:              logger,
		InstitutionalAccess: institutional,
	})
	if err != nil {
		t.Fatalf("failed to create exchange: %v", err)
	}
	return e
}

// loggedIn returns an exchange holding a session without going through
// login
func loggedIn(t *testing.T, f *fakeExchange, institutional bool) *Exchange {
	e := newTestExchange(t, f, institutional)
	e.rest.SetTokens(rest.Tokens{Access: "access-1", Refresh: "refresh-1"})
	return e
}

func testIdentity(t *testing.T) *identity.PrivateKeySigner {
	id, err := identity.FromHex(testEthKey)
	if err != nil {
		t.Fatalf("invalid test key: %v", err)
	}
	return id
}

func testKeyPair(t *testing.T) stark.KeyPair {
	kp, err := stark.DeriveKeyPair(testIdentity(t), types.Testnet)
	if err != nil {
		t.Fatalf("failed to derive key pair: %v", err)
	}
	return kp
}

// signatureFrom decodes the signature object of a request body
func signatureFrom(t *testing.T, body map[string]any) stark.Signature {
	raw, err := json.Marshal(body["signature"])
	td.Require(t).CmpNoError(err)

	var sig stark.Signature
	td.Require(t).CmpNoError(json.Unmarshal(raw, &sig))
	return sig
}

/*//////////////////////////////////////////////////////////////
                        FAKE CHAIN ADAPTER
//////////////////////////////////////////////////////////////*/

type adapterCall struct {
	Method string
	To     common.Address
	Args   []*big.Int
	Token  common.Address
	Owner  common.Address
}

type fakeAdapter struct {
	address   common.Address
	native    *big.Int
	tokens    map[common.Address]*big.Int
	allowance *big.Int
	pending   *big.Int
	nonce     uint64

	calls []adapterCall
}

var _ chain.Adapter = (*fakeAdapter)(nil)

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		address:   common.HexToAddress("0x14791697260E4c9A71f18484C9f997B308e59325"),
		native:    big.NewInt(0),
		tokens:    make(map[common.Address]*big.Int),
		allowance: big.NewInt(0),
		pending:   big.NewInt(0),
		nonce:     11,
	}
}

func (a *fakeAdapter) tx() chain.Tx {
	a.nonce++
	return chain.Tx{Hash: common.BigToHash(big.NewInt(int64(a.nonce))), Nonce: a.nonce}
}

func (a *fakeAdapter) Address() common.Address { return a.address }

func (a *fakeAdapter) NativeBalance(ctx context.Context) (*big.Int, error) {
	return a.native, nil
}

func (a *fakeAdapter) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	if b, ok := a.tokens[token]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (a *fakeAdapter) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	a.calls = append(a.calls, adapterCall{Method: "allowance", To: spender, Token: token})
	return a.allowance, nil
}

func (a *fakeAdapter) ApproveAllowance(ctx context.Context, token, spender common.Address, amount *big.Int) (chain.Tx, error) {
	a.calls = append(a.calls, adapterCall{Method: "approve", To: spender, Token: token, Args: []*big.Int{amount}})
	return a.tx(), nil
}

func (a *fakeAdapter) DepositEth(ctx context.Context, starkContract common.Address, starkKey, assetType, vaultID, value *big.Int) (chain.Tx, error) {
	a.calls = append(a.calls, adapterCall{Method: "depositEth", To: starkContract, Args: []*big.Int{starkKey, assetType, vaultID, value}})
	return a.tx(), nil
}

func (a *fakeAdapter) DepositERC20(ctx context.Context, starkContract common.Address, starkKey, assetType, vaultID, quantizedAmount *big.Int) (chain.Tx, error) {
	a.calls = append(a.calls, adapterCall{Method: "depositERC20", To: starkContract, Args: []*big.Int{starkKey, assetType, vaultID, quantizedAmount}})
	return a.tx(), nil
}

func (a *fakeAdapter) Withdraw(ctx context.Context, starkContract, owner common.Address, assetType *big.Int) (chain.Tx, error) {
	a.calls = append(a.calls, adapterCall{Method: "withdraw", To: starkContract, Owner: owner, Args: []*big.Int{assetType}})
	return a.tx(), nil
}

func (a *fakeAdapter) WithdrawalBalance(ctx context.Context, starkContract, owner common.Address, assetID *big.Int) (*big.Int, error) {
	a.calls = append(a.calls, adapterCall{Method: "getWithdrawalBalance", To: starkContract, Owner: owner, Args: []*big.Int{assetID}})
	return a.pending, nil
}

func (a *fakeAdapter) DepositNative(ctx context.Context, depositContract common.Address, value *big.Int) (chain.Tx, error) {
	a.calls = append(a.calls, adapterCall{Method: "depositNative", To: depositContract, Args: []*big.Int{value}})
	return a.tx(), nil
}

func (a *fakeAdapter) DepositToken(ctx context.Context, depositContract, token common.Address, amount *big.Int) (chain.Tx, error) {
	a.calls = append(a.calls, adapterCall{Method: "deposit", To: depositContract, Token: token, Args: []*big.Int{amount}})
	return a.tx(), nil
}

func (a *fakeAdapter) methods() []string {
	methods := make([]string, len(a.calls))
	for i, c := range a.calls {
		methods[i] = c.Method
	}
	return methods
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("invalid integer " + s)
	}
	return v
}

func bigStrings(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
