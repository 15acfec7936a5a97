package exchange

import (
	"strconv"

	"github.com/banky/go-tanx/stark"
	"github.com/banky/go-tanx/types"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// Side of an order
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderKind is the order type the exchange calls ord_type
type OrderKind string

const (
	Limit  OrderKind = "limit"
	Market OrderKind = "market"
)

/*//////////////////////////////////////////////////////////////
                             ORDERS
//////////////////////////////////////////////////////////////*/

// orderNonceRequest asks the exchange to prepare an order and issue the
// message hash that authorizes it
type orderNonceRequest struct {
	Market  string             `json:"market"`
	OrdType OrderKind          `json:"ord_type"`
	Price   *types.FloatString `json:"price,omitempty"`
	Side    Side               `json:"side"`
	Volume  types.FloatString  `json:"volume"`
}

type orderNonceRequestConfig struct {
	kind  OrderKind
	price mo.Option[decimal.Decimal]
}

type orderNonceRequestOption func(*orderNonceRequestConfig)

// OrderNonceRequest builds the body of an order nonce request. Orders are
// market orders unless WithLimitPrice is given.
func OrderNonceRequest(
	market string,
	side Side,
	volume decimal.Decimal,
	opts ...orderNonceRequestOption,
) orderNonceRequest {
	cfg := orderNonceRequestConfig{kind: Market}
	for _, opt := range opts {
		opt(&cfg)
	}

	req := orderNonceRequest{
		Market:  market,
		OrdType: cfg.kind,
		Side:    side,
		Volume:  types.FloatString(volume),
	}

	if price, ok := cfg.price.Get(); ok {
		p := types.FloatString(price)
		req.Price = &p
	}

	return req
}

// WithLimitPrice makes the order a limit order at price
func WithLimitPrice(price decimal.Decimal) orderNonceRequestOption {
	return func(cfg *orderNonceRequestConfig) {
		cfg.kind = Limit
		cfg.price = mo.Some(price)
	}
}

// WithMarketPrice sets the reference price sent with a market order
func WithMarketPrice(price decimal.Decimal) orderNonceRequestOption {
	return func(cfg *orderNonceRequestConfig) {
		cfg.kind = Market
		cfg.price = mo.Some(price)
	}
}

// CreateOrderRequest submits a signed order nonce
type CreateOrderRequest struct {
	MsgHash   string          `json:"msg_hash"`
	Signature stark.Signature `json:"signature"`
	Nonce     int64           `json:"nonce"`
}

type cancelOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

// BulkCancelRequest cancels the open orders of a market, optionally
// limited to one side
type BulkCancelRequest struct {
	Market string `json:"market"`
	Side   Side   `json:"side,omitempty"`
	Limit  int    `json:"limit,string,omitempty"`
}

// ListOrdersParams filters the order history
type ListOrdersParams struct {
	Market string
	State  string
	Side   Side
	Page   int
	Limit  int
}

func (p ListOrdersParams) query() map[string]string {
	q := make(map[string]string)
	setString(q, "market", p.Market)
	setString(q, "state", p.State)
	setString(q, "side", string(p.Side))
	setInt(q, "page", int64(p.Page))
	setInt(q, "limit", int64(p.Limit))
	return q
}

// TradesParams filters the trade history
type TradesParams struct {
	Market    string
	Limit     int
	StartTime int64
	EndTime   int64
	OrderBy   string
}

func (p TradesParams) query() map[string]string {
	q := make(map[string]string)
	setString(q, "market", p.Market)
	setInt(q, "limit", int64(p.Limit))
	setInt(q, "start_time", p.StartTime)
	setInt(q, "end_time", p.EndTime)
	setString(q, "order_by", p.OrderBy)
	return q
}

/*//////////////////////////////////////////////////////////////
                          WITHDRAWALS
//////////////////////////////////////////////////////////////*/

type normalWithdrawalStartRequest struct {
	Amount  types.FloatString `json:"amount"`
	TokenID string            `json:"token_id"`
}

// ValidateWithdrawalRequest submits the signed hash of a normal withdrawal
type ValidateWithdrawalRequest struct {
	MsgHash   string          `json:"msg_hash"`
	Signature stark.Signature `json:"signature"`
	Nonce     int64           `json:"nonce"`
}

type fastWithdrawalStartRequest struct {
	Amount    types.FloatString `json:"amount"`
	TokenID   string            `json:"token_id"`
	Network   types.Network     `json:"network"`
	CCAddress string            `json:"cc_address,omitempty"`
}

// ProcessFastWithdrawalRequest submits the signed hash of a fast
// withdrawal
type ProcessFastWithdrawalRequest struct {
	MsgHash          string          `json:"msg_hash"`
	Signature        stark.Signature `json:"signature"`
	FastWithdrawalID int64           `json:"fastwithdrawal_withdrawal_id"`
}

// ListParams pages through deposits and withdrawals
type ListParams struct {
	Page    int
	Limit   int
	Network types.Network
}

func (p ListParams) query() map[string]string {
	q := make(map[string]string)
	setInt(q, "page", int64(p.Page))
	setInt(q, "limit", int64(p.Limit))
	setString(q, "network", string(p.Network))
	return q
}

/*//////////////////////////////////////////////////////////////
                       INTERNAL TRANSFERS
//////////////////////////////////////////////////////////////*/

// Credentials are the organization and API keys issued out of band to
// institutional accounts. They are not part of the STARK identity.
type Credentials struct {
	OrganizationKey string `json:"organization_key"`
	APIKey          string `json:"api_key"`
}

// InternalTransferRequest moves funds to another exchange account
type InternalTransferRequest struct {
	Credentials
	Currency           string            `json:"currency"`
	Amount             types.FloatString `json:"amount"`
	DestinationAddress string            `json:"destination_address"`
	ClientReferenceID  string            `json:"client_reference_id,omitempty"`
}

// InternalTransferProcessRequest submits the signed transfer hash with the
// credentials that initiated it
type InternalTransferProcessRequest struct {
	Credentials
	Signature stark.Signature `json:"signature"`
	Nonce     int64           `json:"nonce"`
	MsgHash   string          `json:"msg_hash"`
}

type checkUserExistsRequest struct {
	Credentials
	DestinationAddress string `json:"destination_address"`
}

// ListInternalTransfersParams pages through internal transfers
type ListInternalTransfersParams struct {
	Limit  int
	Offset int
}

func (p ListInternalTransfersParams) query() map[string]string {
	q := make(map[string]string)
	setInt(q, "limit", int64(p.Limit))
	setInt(q, "offset", int64(p.Offset))
	return q
}

/*//////////////////////////////////////////////////////////////
                            DEPOSITS
//////////////////////////////////////////////////////////////*/

// CryptoDepositStartRequest reports an L1 StarkEx deposit to the exchange
type CryptoDepositStartRequest struct {
	Amount                 string `json:"amount"`
	TokenID                string `json:"token_id"`
	StarkKey               string `json:"stark_key"`
	DepositBlockchainHash  string `json:"deposit_blockchain_hash"`
	DepositBlockchainNonce uint64 `json:"deposit_blockchain_nonce"`
	VaultID                int64  `json:"vault_id"`
}

// CrossChainDepositStartRequest reports a deposit made on a secondary
// network
type CrossChainDepositStartRequest struct {
	Amount                 string        `json:"amount"`
	Currency               string        `json:"currency"`
	Network                types.Network `json:"network"`
	DepositBlockchainHash  string        `json:"deposit_blockchain_hash"`
	DepositBlockchainNonce uint64        `json:"deposit_blockchain_nonce"`
}

// LayerSwapFeeParams selects the bridge route a deposit fee is quoted for
type LayerSwapFeeParams struct {
	TokenID       string
	SourceNetwork types.Network
}

func (p LayerSwapFeeParams) query() map[string]string {
	q := make(map[string]string)
	setString(q, "token_id", p.TokenID)
	setString(q, "source_network", string(p.SourceNetwork))
	return q
}

// InitiateLayerSwapDepositRequest opens a bridged deposit. FeeMeta is the
// quote returned by LayerSwapDepositInfo, sent back unchanged.
type InitiateLayerSwapDepositRequest struct {
	Amount        types.FloatString   `json:"amount"`
	TokenID       string              `json:"token_id"`
	CCAddress     string              `json:"cc_address"`
	FeeMeta       LayerSwapDepositFee `json:"fee_meta"`
	SourceNetwork types.Network       `json:"source_network"`
}

type saveLayerSwapTxRequest struct {
	RefID           string `json:"ref_id"`
	TransactionHash string `json:"transaction_hash"`
}

/*//////////////////////////////////////////////////////////////
                         SESSION, ACCOUNT
//////////////////////////////////////////////////////////////*/

type nonceRequest struct {
	EthAddress string `json:"eth_address"`
}

type loginRequest struct {
	EthAddress    string `json:"eth_address"`
	UserSignature string `json:"user_signature"`
}

type vaultRequest struct {
	Coin string `json:"coin"`
}

func setString(q map[string]string, key, value string) {
	if value != "" {
		q[key] = value
	}
}

func setInt(q map[string]string, key string, value int64) {
	if value != 0 {
		q[key] = strconv.FormatInt(value, 10)
	}
}
