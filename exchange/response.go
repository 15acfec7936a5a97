package exchange

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/banky/go-tanx/rest"
	"github.com/banky/go-tanx/types"
)

// Receipt is the envelope of an endpoint whose payload the client does
// not interpret
type Receipt = rest.Response[json.RawMessage]

// LoginResponse carries the session tokens next to the usual envelope.
// Payload.Signature is set by the client to the user signature it sent.
type LoginResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Payload LoginPayload `json:"payload"`
	Token   rest.Tokens  `json:"token"`
}

type LoginPayload struct {
	UID       string `json:"uid"`
	Signature string `json:"signature"`
}

type Profile struct {
	Name         string `json:"name"`
	CustomerID   string `json:"customer_id"`
	Username     string `json:"username"`
	StarkKey     string `json:"stark_key"`
	Img          string `json:"img"`
	ReferralCode string `json:"referral_code"`
}

type Balance struct {
	Currency     string            `json:"currency"`
	DisplayName  string            `json:"display_name"`
	Balance      types.FloatString `json:"balance"`
	Locked       types.FloatString `json:"locked"`
	AvgPrice     types.FloatString `json:"avg_price"`
	StarkAssetID string            `json:"stark_asset_id"`
}

// balances decodes the balance payload, which is a single object when a
// currency was requested and a list otherwise
type balances []Balance

func (b *balances) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*b = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var one Balance
		if err := json.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("failed to unmarshal balance: %w", err)
		}
		*b = balances{one}
		return nil
	}

	var many []Balance
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("failed to unmarshal balances: %w", err)
	}
	*b = many
	return nil
}

type ProfitAndLoss struct {
	Currency string            `json:"currency"`
	Amount   types.FloatString `json:"amount"`
	Pnl      types.FloatString `json:"pnl"`
}

type vault struct {
	ID int64 `json:"id"`
}

/*//////////////////////////////////////////////////////////////
                             ORDERS
//////////////////////////////////////////////////////////////*/

// OrderNonce is the message hash the exchange issued for an order
type OrderNonce struct {
	Nonce   int64  `json:"nonce"`
	MsgHash string `json:"msg_hash"`
}

type Order struct {
	ID              int64             `json:"id"`
	UUID            string            `json:"uuid"`
	Market          string            `json:"market"`
	Side            Side              `json:"side"`
	OrdType         OrderKind         `json:"ord_type"`
	State           string            `json:"state"`
	Price           types.FloatString `json:"price"`
	AvgPrice        types.FloatString `json:"avg_price"`
	Volume          types.FloatString `json:"volume"`
	RemainingVolume types.FloatString `json:"remaining_volume"`
	ExecutedVolume  types.FloatString `json:"executed_volume"`
	TradesCount     int               `json:"trades_count"`
	CreatedAt       string            `json:"created_at"`
}

// CancelledOrder is the order as reported by the cancel endpoint, which
// names the identifier order_id
type CancelledOrder struct {
	OrderID int64             `json:"order_id"`
	Market  string            `json:"market"`
	Side    Side              `json:"side"`
	State   string            `json:"state"`
	Price   types.FloatString `json:"price"`
	Volume  types.FloatString `json:"volume"`
}

type Trade struct {
	ID          int64             `json:"id"`
	Market      string            `json:"market"`
	Side        Side              `json:"side"`
	Price       types.FloatString `json:"price"`
	Volume      types.FloatString `json:"volume"`
	Funds       types.FloatString `json:"funds"`
	Fee         types.FloatString `json:"fee"`
	FeeCurrency string            `json:"fee_currency"`
	CreatedAt   string            `json:"created_at"`
}

/*//////////////////////////////////////////////////////////////
                          WITHDRAWALS
//////////////////////////////////////////////////////////////*/

// WithdrawalStart is the message hash issued for a normal withdrawal
type WithdrawalStart struct {
	MsgHash string `json:"msg_hash"`
	Nonce   int64  `json:"nonce"`
}

// FastWithdrawalStart is the message hash issued for a fast withdrawal
type FastWithdrawalStart struct {
	MsgHash          string `json:"msg_hash"`
	FastWithdrawalID int64  `json:"fastwithdrawal_withdrawal_id"`
}

type NormalWithdrawal struct {
	Amount          types.FloatString `json:"amount"`
	TokenID         string            `json:"token_id"`
	Status          string            `json:"status"`
	TransactionHash string            `json:"transaction_hash"`
	CreatedAt       string            `json:"created_at"`
}

type FastWithdrawal struct {
	Amount          types.FloatString `json:"amount"`
	TokenID         string            `json:"token_id"`
	Network         types.Network     `json:"network"`
	Status          string            `json:"status"`
	FeeAmount       types.FloatString `json:"fee_amount"`
	TransactionHash string            `json:"transaction_hash"`
	CreatedAt       string            `json:"created_at"`
}

// Pagination is the page envelope of the list endpoints
type Pagination[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

/*//////////////////////////////////////////////////////////////
                       INTERNAL TRANSFERS
//////////////////////////////////////////////////////////////*/

// InternalTransferStart is the message hash issued for an internal
// transfer
type InternalTransferStart struct {
	MsgHash string `json:"msg_hash"`
	Nonce   int64  `json:"nonce"`
}

type InternalTransfer struct {
	ClientReferenceID  string            `json:"client_reference_id"`
	Amount             types.FloatString `json:"amount"`
	Currency           string            `json:"currency"`
	FromAddress        string            `json:"from_address"`
	DestinationAddress string            `json:"destination_address"`
	Status             string            `json:"status"`
	CreatedAt          string            `json:"created_at"`
}

type InternalTransferList struct {
	InternalTransfers []InternalTransfer `json:"internal_transfers"`
	TotalCount        int                `json:"total_count"`
}

type UserExists struct {
	DestinationAddress string `json:"destination_address"`
	Exists             bool   `json:"exists"`
}

/*//////////////////////////////////////////////////////////////
                            DEPOSITS
//////////////////////////////////////////////////////////////*/

type Deposit struct {
	TokenID               string            `json:"token_id"`
	Network               types.Network     `json:"network"`
	Amount                types.FloatString `json:"amount"`
	Status                string            `json:"status"`
	DepositBlockchainHash string            `json:"deposit_blockchain_hash"`
	CreatedAt             string            `json:"created_at"`
}

// LayerSwapDepositFee is a bridge fee quote with the deposit limits. The
// quote is kept as received so it can be echoed back on initiation.
type LayerSwapDepositFee struct {
	FeeAmount types.FloatString `json:"fee_amount"`
	MinAmount types.FloatString `json:"min_amount"`
	MaxAmount types.FloatString `json:"max_amount"`

	raw json.RawMessage
}

func (f *LayerSwapDepositFee) UnmarshalJSON(b []byte) error {
	type fee LayerSwapDepositFee

	var v fee
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*f = LayerSwapDepositFee(v)
	f.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (f LayerSwapDepositFee) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}

	type fee LayerSwapDepositFee
	return json.Marshal(fee(f))
}

// LayerSwapDeposit is an opened bridged deposit. Data holds the Starknet
// calls that move the funds to the bridge.
type LayerSwapDeposit struct {
	RefID  string        `json:"ref_id"`
	LsData LayerSwapData `json:"ls_data"`
}

type LayerSwapData struct {
	ToAddress string            `json:"to_address"`
	BaseUnits types.FloatString `json:"base_units"`
	Data      json.RawMessage   `json:"data"`
}

// DepositReceipt identifies the on-chain transaction of a deposit the
// exchange has been told about
type DepositReceipt struct {
	Status          string
	Message         string
	TransactionHash string
	Nonce           uint64
}
