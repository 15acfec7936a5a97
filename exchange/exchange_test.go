package exchange

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/banky/go-tanx/identity"
	"github.com/banky/go-tanx/stark"
	"github.com/banky/go-tanx/types"
	"github.com/joho/godotenv"
	"github.com/maxatome/go-testdeep/helpers/tdsuite"
	"github.com/maxatome/go-testdeep/td"
	"github.com/shopspring/decimal"
)

// ExchangeIntegrationSuite groups manual integration tests against the
// TanX testnet.
type ExchangeIntegrationSuite struct {
	id       *identity.PrivateKeySigner
	keyPair  stark.KeyPair
	exchange *Exchange
}

// Setup is called once before any test runs.
func (s *ExchangeIntegrationSuite) Setup(t *td.T) error {
	_ = godotenv.Load("../.env")

	rawKey := os.Getenv("TANX_ETH_PRIVATE_KEY")
	if rawKey == "" {
		return fmt.Errorf("TANX_ETH_PRIVATE_KEY not set in environment")
	}

	id, err := identity.FromHex(rawKey)
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}

	e, err := New(Config{Environment: types.Testnet, Timeout: 30})
	if err != nil {
		return fmt.Errorf("failed to create exchange client: %w", err)
	}

	kp, err := stark.DeriveKeyPair(id, types.Testnet)
	if err != nil {
		return fmt.Errorf("failed to derive stark key: %w", err)
	}

	if _, err := e.CompleteLogin(context.Background(), id); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	s.id = id
	s.keyPair = kp
	s.exchange = e

	return nil
}

// Test entry point for the suite.
// The suite only runs when TANX_ETH_PRIVATE_KEY is set.
func TestExchangeIntegrationSuite(t *testing.T) {
	_ = godotenv.Load("../.env")

	if os.Getenv("TANX_ETH_PRIVATE_KEY") == "" || os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("skipping ExchangeIntegrationSuite; set TANX_ETH_PRIVATE_KEY to run")
	}

	tdsuite.Run(t, &ExchangeIntegrationSuite{})
}

func (s *ExchangeIntegrationSuite) TestProfile(assert, require *td.T) {
	ctx := context.Background()

	profile, err := s.exchange.ProfileInfo(ctx)
	require.CmpNoError(err)
	assert.NotEmpty(profile.StarkKey)

	balances, err := s.exchange.Balance(ctx)
	require.CmpNoError(err)

	for _, b := range balances {
		fmt.Println(b)
	}
}

func (s *ExchangeIntegrationSuite) TestOrder(assert, require *td.T) {
	ctx := context.Background()

	// A limit buy far below the market rests on the book
	order, err := s.exchange.PlaceOrder(
		ctx,
		s.keyPair,
		OrderNonceRequest(
			"ethusdc",
			Buy,
			decimal.RequireFromString("0.01"),
			WithLimitPrice(decimal.NewFromInt(100)),
		),
	)
	require.CmpNoError(err)
	assert.NotZero(order.ID)

	fmt.Println(order)

	cancelled, err := s.exchange.CancelOrder(ctx, order.ID)
	require.CmpNoError(err)
	assert.Cmp(cancelled.OrderID, order.ID)
}

func (s *ExchangeIntegrationSuite) TestHistory(assert, require *td.T) {
	ctx := context.Background()

	withdrawals, err := s.exchange.ListNormalWithdrawals(ctx, ListParams{Limit: 5})
	require.CmpNoError(err)
	fmt.Println(withdrawals)

	deposits, err := s.exchange.ListDeposits(ctx, ListParams{Limit: 5})
	require.CmpNoError(err)
	fmt.Println(deposits)

	transfers, err := s.exchange.ListInternalTransfers(ctx, ListInternalTransfersParams{Limit: 5})
	require.CmpNoError(err)
	assert.Gte(transfers.TotalCount, 0)
}
