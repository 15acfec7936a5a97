// Package exchange provides the private TanX endpoints and the
// transaction flows built on them: login, orders, withdrawals, internal
// transfers and deposits.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/identity"
	"github.com/banky/go-tanx/info"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/types"
	"github.com/sirupsen/logrus"
)

// Config for initializing the Exchange client
type Config struct {
	Environment types.Environment
	// BaseURL overrides the environment's API URL
	BaseURL string
	// Timeout is the timeout for network requests in seconds
	Timeout uint
	Logger  logrus.FieldLogger
	// RefreshBeforeExpiry refreshes the session ahead of requests made
	// within this window of the access token's expiry
	RefreshBeforeExpiry time.Duration
	// InstitutionalAccess enables the deposit flows, which the exchange
	// only serves to institutional accounts
	InstitutionalAccess bool
}

// Exchange provides access to account and transaction operations. It
// holds the session; everything else is passed per call.
type Exchange struct {
	rest          rest.ClientInterface
	info          *info.Info
	env           types.Environment
	logger        logrus.FieldLogger
	institutional bool
}

// New creates a new Exchange client
func New(cfg Config) (*Exchange, error) {
	env := cfg.Environment.OrDefault()
	if !env.Valid() {
		return nil, fmt.Errorf("unknown environment: %q", cfg.Environment)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = env.BaseURL()
	}

	restClient := rest.New(rest.Config{
		BaseUrl:             baseURL,
		Timeout:             cfg.Timeout,
		Logger:              cfg.Logger,
		RefreshBeforeExpiry: cfg.RefreshBeforeExpiry,
	})

	e := NewWithClient(restClient, env, cfg.Logger)
	e.institutional = cfg.InstitutionalAccess

	return e, nil
}

// NewWithClient creates an Exchange on top of an existing REST client.
// The embedded Info client shares the same session.
func NewWithClient(
	client rest.ClientInterface,
	env types.Environment,
	logger logrus.FieldLogger,
) *Exchange {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Exchange{
		rest:   client,
		info:   info.NewWithClient(client, logger),
		env:    env.OrDefault(),
		logger: logger,
	}
}

// Info returns the public data client sharing this exchange's session
func (e *Exchange) Info() *info.Info {
	return e.info
}

func (e *Exchange) Environment() types.Environment {
	return e.env
}

// step logs a transition of a transaction flow
func (e *Exchange) step(flow, state string, fields logrus.Fields) {
	entry := e.logger.WithFields(logrus.Fields{
		"flow":  flow,
		"state": state,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Debug("transaction step")
}

/*//////////////////////////////////////////////////////////////
                            SESSION
//////////////////////////////////////////////////////////////*/

// Nonce requests the login nonce for ethAddress
func (e *Exchange) Nonce(ctx context.Context, ethAddress string) (string, error) {
	return rest.PostPayload[string](
		ctx,
		e.rest,
		constants.PathAuthNonce,
		nonceRequest{EthAddress: ethAddress},
	)
}

// Login exchanges a signed nonce for a session
func (e *Exchange) Login(
	ctx context.Context,
	ethAddress string,
	userSignature string,
) (LoginResponse, error) {
	var result LoginResponse
	err := e.rest.Post(
		ctx,
		constants.PathAuthLogin,
		loginRequest{EthAddress: ethAddress, UserSignature: userSignature},
		&result,
	)
	if err != nil {
		return LoginResponse{}, err
	}
	if result.Token.Access == "" {
		return LoginResponse{}, &types.AuthenticationError{Msg: "login response carried no access token"}
	}

	e.rest.SetTokens(result.Token)
	result.Payload.Signature = userSignature

	e.logger.WithField("address", ethAddress).Info("logged in")

	return result, nil
}

// CompleteLogin requests a nonce, signs it with id and logs in
func (e *Exchange) CompleteLogin(ctx context.Context, id identity.Identity) (LoginResponse, error) {
	address := id.Address().Hex()

	nonce, err := e.Nonce(ctx, address)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to get login nonce: %w", err)
	}

	signature, err := identity.SignNonce(id, nonce)
	if err != nil {
		return LoginResponse{}, err
	}

	return e.Login(ctx, address, signature)
}

// Logout drops the session locally. The server is not notified and the
// tokens stay valid until they expire.
func (e *Exchange) Logout() {
	e.rest.ClearTokens()
	e.logger.Info("logged out")
}

// RefreshTokens rotates the session now instead of waiting for a 401
func (e *Exchange) RefreshTokens(ctx context.Context) error {
	return e.rest.Refresh(ctx)
}

func (e *Exchange) IsAuthenticated() bool {
	return e.rest.IsAuthenticated()
}

/*//////////////////////////////////////////////////////////////
                            ACCOUNT
//////////////////////////////////////////////////////////////*/

func (e *Exchange) ProfileInfo(ctx context.Context) (Profile, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return Profile{}, err
	}
	return rest.GetPayload[Profile](ctx, e.rest, constants.PathProfile, nil)
}

// Balance returns the exchange balances of the account, or of one
// currency with WithBalanceCurrency
func (e *Exchange) Balance(ctx context.Context, opts ...BalanceOption) ([]Balance, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return nil, err
	}

	var cfg balanceConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var query map[string]string
	if currency, ok := cfg.currency.Get(); ok {
		query = map[string]string{"currency": currency}
	}

	result, err := rest.GetPayload[balances](ctx, e.rest, constants.PathBalance, query)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Exchange) ProfitAndLoss(ctx context.Context) ([]ProfitAndLoss, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return nil, err
	}
	return rest.GetPayload[[]ProfitAndLoss](ctx, e.rest, constants.PathPnl, nil)
}

// VaultID returns the StarkEx vault of coin, creating it on first use
func (e *Exchange) VaultID(ctx context.Context, coin string) (int64, error) {
	if err := e.rest.RequireAuth(); err != nil {
		return 0, err
	}

	v, err := rest.PostPayload[vault](ctx, e.rest, constants.PathCreateVault, vaultRequest{Coin: coin})
	if err != nil {
		return 0, err
	}
	return v.ID, nil
}
