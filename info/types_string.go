package info

import (
	"fmt"
	"sort"
	"strings"
)

// String implements fmt.Stringer for Candle
func (c Candle) String() string {
	return fmt.Sprintf(
		"Candle{\n"+
			"  Timestamp: %d\n"+
			"  Open:      %s\n"+
			"  High:      %s\n"+
			"  Low:       %s\n"+
			"  Close:     %s\n"+
			"  Volume:    %s\n"+
			"}",
		c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume,
	)
}

// String implements fmt.Stringer for OrderBookEntry
func (o OrderBookEntry) String() string {
	return fmt.Sprintf(
		"OrderBookEntry{\n"+
			"  Side:            %s\n"+
			"  Price:           %s\n"+
			"  RemainingVolume: %s\n"+
			"}",
		o.Side, o.Price, o.RemainingVolume,
	)
}

// String implements fmt.Stringer for OrderBook
func (o OrderBook) String() string {
	return fmt.Sprintf(
		"OrderBook{\n"+
			"  Asks: %s\n"+
			"  Bids: %s\n"+
			"}",
		formatEntries(o.Asks), formatEntries(o.Bids),
	)
}

// String implements fmt.Stringer for CoinConfig
func (c CoinConfig) String() string {
	return fmt.Sprintf(
		"CoinConfig{\n"+
			"  Symbol:            %s\n"+
			"  Decimal:           %d\n"+
			"  Quantization:      %s\n"+
			"  TokenContract:     %s\n"+
			"  StarkAssetID:      %s\n"+
			"  BlockchainDecimal: %d\n"+
			"}",
		c.Symbol, c.Decimal, c.Quantization, c.TokenContract,
		c.StarkAssetID, c.BlockchainDecimal,
	)
}

// String implements fmt.Stringer for NetworkToken
func (t NetworkToken) String() string {
	return fmt.Sprintf(
		"NetworkToken{\n"+
			"  Symbol:            %s\n"+
			"  TokenContract:     %s\n"+
			"  BlockchainDecimal: %d\n"+
			"}",
		t.Symbol, t.TokenContract, t.BlockchainDecimal,
	)
}

// String implements fmt.Stringer for NetworkCoinConfig
func (n NetworkCoinConfig) String() string {
	symbols := make([]string, 0, len(n.Tokens))
	for symbol := range n.Tokens {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return fmt.Sprintf(
		"NetworkCoinConfig{\n"+
			"  DepositContract: %s\n"+
			"  Tokens:          [%s]\n"+
			"  Deposit:         [%s]\n"+
			"  FastWithdrawal:  [%s]\n"+
			"}",
		n.DepositContract,
		strings.Join(symbols, ", "),
		strings.Join(n.AllowedTokensForDeposit, ", "),
		strings.Join(n.AllowedTokensForFastWd, ", "),
	)
}

// Helper functions

func indentString(s string, spaces int64) string {
	indent := strings.Repeat(" ", int(spaces))
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func formatEntries(entries []OrderBookEntry) string {
	if len(entries) == 0 {
		return "[]"
	}
	var buf strings.Builder
	buf.WriteString("[\n")
	for i, entry := range entries {
		buf.WriteString(fmt.Sprintf("    %s", indentString(entry.String(), 4)))
		if i < len(entries)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("  ]")
	return buf.String()
}
