package info

import (
	"encoding/json"
	"fmt"

	"github.com/banky/go-tanx/types"
)

// ===== Market Data Types =====

// Ticker is the rolling 24h summary of a market
type Ticker struct {
	At                 int64             `json:"at"`
	Low                types.FloatString `json:"low"`
	High               types.FloatString `json:"high"`
	Open               types.FloatString `json:"open"`
	Last               types.FloatString `json:"last"`
	Volume             types.FloatString `json:"volume"`
	Amount             types.FloatString `json:"amount"`
	Vol                types.FloatString `json:"vol"`
	AvgPrice           types.FloatString `json:"avg_price"`
	PriceChangePercent string            `json:"price_change_percent"`
}

// MarketTicker wraps a Ticker with the time it was computed
type MarketTicker struct {
	At     int64  `json:"at"`
	Ticker Ticker `json:"ticker"`
}

// CandlestickParams selects the candles returned by Candlestick
type CandlestickParams struct {
	Market string
	// Period is the candle width in minutes
	Period    int
	StartTime int64
	EndTime   int64
	Limit     int
}

// Candle is a single OHLCV candle. The API encodes it as
// [timestamp, open, high, low, close, volume].
type Candle struct {
	Timestamp int64
	Open      types.FloatString
	High      types.FloatString
	Low       types.FloatString
	Close     types.FloatString
	Volume    types.FloatString
}

func (c *Candle) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 6 {
		return fmt.Errorf("candle: expected 6 fields, got %d", len(raw))
	}

	if err := json.Unmarshal(raw[0], &c.Timestamp); err != nil {
		return fmt.Errorf("candle timestamp: %w", err)
	}
	fields := []*types.FloatString{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
	for i, field := range fields {
		if err := json.Unmarshal(raw[i+1], field); err != nil {
			return fmt.Errorf("candle field %d: %w", i+1, err)
		}
	}

	return nil
}

// OrderBookParams selects the depth returned by OrderBook
type OrderBookParams struct {
	Market    string
	AsksLimit int
	BidsLimit int
}

// OrderBookEntry is a resting order in the public book
type OrderBookEntry struct {
	ID              int64             `json:"id"`
	Side            string            `json:"side"`
	OrdType         string            `json:"ord_type"`
	Price           types.FloatString `json:"price"`
	AvgPrice        types.FloatString `json:"avg_price"`
	State           string            `json:"state"`
	Market          string            `json:"market"`
	CreatedAt       string            `json:"created_at"`
	OriginVolume    types.FloatString `json:"origin_volume"`
	RemainingVolume types.FloatString `json:"remaining_volume"`
	ExecutedVolume  types.FloatString `json:"executed_volume"`
	TradesCount     int               `json:"trades_count"`
}

type OrderBook struct {
	Asks []OrderBookEntry `json:"asks"`
	Bids []OrderBookEntry `json:"bids"`
}

// RecentTradesParams selects the trades returned by RecentTrades
type RecentTradesParams struct {
	Market    string
	Limit     int
	Timestamp int64
	// OrderBy is "asc" or "desc"
	OrderBy string
}

type PublicTrade struct {
	ID        int64             `json:"id"`
	Price     types.FloatString `json:"price"`
	Amount    types.FloatString `json:"amount"`
	Total     types.FloatString `json:"total"`
	Market    string            `json:"market"`
	CreatedAt int64             `json:"created_at"`
	TakerType string            `json:"taker_type"`
}

// ===== Configuration Types =====

// CoinConfig describes a coin settled on the home chain (Ethereum)
type CoinConfig struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Decimal types.IntString `json:"decimal"`
	// Quantization is spelled as the API spells it
	Quantization      string          `json:"quanitization"`
	TokenContract     string          `json:"token_contract"`
	StarkAssetID      string          `json:"stark_asset_id"`
	BlockchainDecimal types.IntString `json:"blockchain_decimal"`
}

// CoinStats maps a coin key to its home chain configuration
type CoinStats map[string]CoinConfig

// NetworkToken describes a token on a secondary chain
type NetworkToken struct {
	Symbol            string          `json:"symbol"`
	TokenContract     string          `json:"token_contract"`
	BlockchainDecimal types.IntString `json:"blockchain_decimal"`
	StarkAssetID      string          `json:"stark_asset_id"`
}

// NetworkCoinConfig is the configuration of one secondary chain. The
// three allow-lists are independent: a token may be known to the network
// without being depositable or eligible for fast withdrawal.
type NetworkCoinConfig struct {
	DepositContract         string                  `json:"deposit_contract"`
	Tokens                  map[string]NetworkToken `json:"tokens"`
	AllowedTokensForDeposit []string                `json:"allowed_tokens_for_deposit"`
	AllowedTokensForFastWd  []string                `json:"allowed_tokens_for_fast_wd"`
}

// NetworkStats maps a network name to its configuration
type NetworkStats map[string]NetworkCoinConfig

type appAndMarkets struct {
	NetworkConfig NetworkStats `json:"network_config"`
}
