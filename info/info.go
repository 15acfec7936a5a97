// Package info provides the public TanX endpoints: market data and the
// coin and network configuration the transaction flows resolve against.
package info

import (
	"context"
	"errors"
	"strconv"

	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/types"
	"github.com/sirupsen/logrus"
)

// Info provides access to market data and exchange configuration
type Info struct {
	rest   rest.ClientInterface
	logger logrus.FieldLogger
}

// Config for initializing the Info client
type Config struct {
	Environment types.Environment
	// BaseURL overrides the environment's API URL
	BaseURL string
	Timeout uint
	Logger  logrus.FieldLogger
}

// New creates a new Info client
func New(cfg Config) *Info {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cfg.Environment.OrDefault().BaseURL()
	}

	client := rest.New(rest.Config{
		BaseUrl: baseURL,
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
	})

	return NewWithClient(client, cfg.Logger)
}

// NewWithClient creates an Info client on top of an existing REST client,
// so that it shares the client's session.
func NewWithClient(client rest.ClientInterface, logger logrus.FieldLogger) *Info {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Info{
		rest:   client,
		logger: logger,
	}
}

// ===== Market Data Queries =====

// TestConnection calls the health endpoint and returns its message
func (i *Info) TestConnection(ctx context.Context) (string, error) {
	var result rest.Response[string]
	if err := i.rest.Get(ctx, constants.PathHealth, nil, &result); err != nil {
		return "", err
	}

	if result.Payload != "" {
		return result.Payload, nil
	}
	return result.Message, nil
}

// Ticker retrieves the 24h price summary of a market
func (i *Info) Ticker(ctx context.Context, market string) (MarketTicker, error) {
	return rest.GetPayload[MarketTicker](
		ctx,
		i.rest,
		constants.PathTickers,
		map[string]string{"market": market},
	)
}

// Tickers retrieves the 24h price summary of every market
func (i *Info) Tickers(ctx context.Context) (map[string]MarketTicker, error) {
	return rest.GetPayload[map[string]MarketTicker](ctx, i.rest, constants.PathTickers, nil)
}

// Candlestick retrieves OHLCV candles for a market
func (i *Info) Candlestick(ctx context.Context, params CandlestickParams) ([]Candle, error) {
	query := map[string]string{"market": params.Market}
	if params.Period != 0 {
		query["period"] = strconv.Itoa(params.Period)
	}
	if params.StartTime != 0 {
		query["start_time"] = strconv.FormatInt(params.StartTime, 10)
	}
	if params.EndTime != 0 {
		query["end_time"] = strconv.FormatInt(params.EndTime, 10)
	}
	if params.Limit != 0 {
		query["limit"] = strconv.Itoa(params.Limit)
	}

	return rest.GetPayload[[]Candle](ctx, i.rest, constants.PathCandlestick, query)
}

// OrderBook retrieves the public order book of a market
func (i *Info) OrderBook(ctx context.Context, params OrderBookParams) (OrderBook, error) {
	query := map[string]string{"market": params.Market}
	if params.AsksLimit != 0 {
		query["asks_limit"] = strconv.Itoa(params.AsksLimit)
	}
	if params.BidsLimit != 0 {
		query["bids_limit"] = strconv.Itoa(params.BidsLimit)
	}

	return rest.GetPayload[OrderBook](ctx, i.rest, constants.PathOrderBook, query)
}

// RecentTrades retrieves the latest public trades of a market
func (i *Info) RecentTrades(ctx context.Context, params RecentTradesParams) ([]PublicTrade, error) {
	query := map[string]string{"market": params.Market}
	if params.Limit != 0 {
		query["limit"] = strconv.Itoa(params.Limit)
	}
	if params.Timestamp != 0 {
		query["timestamp"] = strconv.FormatInt(params.Timestamp, 10)
	}
	if params.OrderBy != "" {
		query["order_by"] = params.OrderBy
	}

	return rest.GetPayload[[]PublicTrade](ctx, i.rest, constants.PathRecentTrades, query)
}

// ===== Configuration Queries =====

// CoinStats retrieves the home chain configuration of every coin
func (i *Info) CoinStats(ctx context.Context) (CoinStats, error) {
	return rest.PostPayload[CoinStats](ctx, i.rest, constants.PathCoinStats, nil)
}

// NetworkConfig retrieves the configuration of every secondary network
func (i *Info) NetworkConfig(ctx context.Context) (NetworkStats, error) {
	payload, err := rest.PostPayload[appAndMarkets](ctx, i.rest, constants.PathNetworkConfig, nil)
	if err != nil {
		return nil, err
	}

	return payload.NetworkConfig, nil
}

// HomeCoin fetches the coin stats and resolves symbol against them
func (i *Info) HomeCoin(ctx context.Context, symbol string) (CoinConfig, error) {
	stats, err := i.CoinStats(ctx)
	if err != nil {
		return CoinConfig{}, err
	}

	return ResolveHomeCoin(stats, symbol)
}

// CrossChainCoin fetches the network configuration and resolves symbol
// against the allow-list selected by kind. The network's configuration is
// returned along with the token since deposits need its contract.
func (i *Info) CrossChainCoin(
	ctx context.Context,
	network types.Network,
	symbol string,
	kind AllowList,
) (NetworkToken, NetworkCoinConfig, error) {
	stats, err := i.NetworkConfig(ctx)
	if err != nil {
		return NetworkToken{}, NetworkCoinConfig{}, err
	}

	config, err := NetworkConfigFor(stats, network)
	if err != nil {
		return NetworkToken{}, NetworkCoinConfig{}, err
	}

	token, err := ResolveCrossChainCoin(config, symbol, kind)
	if err != nil {
		var notFound *types.CoinNotFoundError
		if errors.As(err, &notFound) {
			notFound.Network = string(network.Normalize())
		}

		i.logger.WithFields(logrus.Fields{
			"coin":    symbol,
			"network": network,
			"list":    kind,
		}).Debug("coin rejected by network allow-list")

		return NetworkToken{}, NetworkCoinConfig{}, err
	}

	return token, config, nil
}
