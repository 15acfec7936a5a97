package exchange

import (
	"fmt"
	"strings"
)

// String implements fmt.Stringer for orderNonceRequest
func (o orderNonceRequest) String() string {
	price := "-"
	if o.Price != nil {
		price = o.Price.String()
	}

	return fmt.Sprintf(
		"OrderNonceRequest{\n"+
			"  Market:  %s\n"+
			"  OrdType: %s\n"+
			"  Side:    %s\n"+
			"  Price:   %s\n"+
			"  Volume:  %s\n"+
			"}",
		o.Market, o.OrdType, o.Side, price, o.Volume,
	)
}

// String implements fmt.Stringer for Order
func (o Order) String() string {
	return fmt.Sprintf(
		"Order{\n"+
			"  ID:              %d\n"+
			"  Market:          %s\n"+
			"  Side:            %s\n"+
			"  OrdType:         %s\n"+
			"  State:           %s\n"+
			"  Price:           %s\n"+
			"  Volume:          %s\n"+
			"  RemainingVolume: %s\n"+
			"}",
		o.ID, o.Market, o.Side, o.OrdType, o.State, o.Price, o.Volume, o.RemainingVolume,
	)
}

// String implements fmt.Stringer for Balance
func (b Balance) String() string {
	return fmt.Sprintf(
		"Balance{\n"+
			"  Currency: %s\n"+
			"  Balance:  %s\n"+
			"  Locked:   %s\n"+
			"}",
		b.Currency, b.Balance, b.Locked,
	)
}

// String implements fmt.Stringer for InternalTransfer
func (t InternalTransfer) String() string {
	return fmt.Sprintf(
		"InternalTransfer{\n"+
			"  ClientReferenceID:  %s\n"+
			"  Currency:           %s\n"+
			"  Amount:             %s\n"+
			"  DestinationAddress: %s\n"+
			"  Status:             %s\n"+
			"}",
		t.ClientReferenceID, t.Currency, t.Amount, t.DestinationAddress, t.Status,
	)
}

// String implements fmt.Stringer for DepositReceipt
func (d DepositReceipt) String() string {
	return fmt.Sprintf(
		"DepositReceipt{\n"+
			"  Status:          %s\n"+
			"  TransactionHash: %s\n"+
			"  Nonce:           %d\n"+
			"}",
		d.Status, d.TransactionHash, d.Nonce,
	)
}

// String implements fmt.Stringer for Pagination
func (p Pagination[T]) String() string {
	items := make([]string, len(p.Results))
	for i, r := range p.Results {
		items[i] = indentString(fmt.Sprint(r), 4)
	}

	return fmt.Sprintf(
		"Pagination{\n"+
			"  Count:   %d\n"+
			"  Results: [\n%s\n  ]\n"+
			"}",
		p.Count, strings.Join(items, ",\n"),
	)
}

func indentString(s string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
