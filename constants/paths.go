package constants

// REST paths used by the client. Paths with a %s or %d verb are
// formatted with the resource identifier.
const (
	PathHealth       = "/sapi/v1/health/"
	PathTickers      = "/sapi/v1/market/tickers/"
	PathCandlestick  = "/sapi/v1/market/kline/"
	PathOrderBook    = "/sapi/v1/market/orderbook/"
	PathRecentTrades = "/sapi/v1/market/trades/"

	PathAuthNonce    = "/sapi/v2/auth/nonce/"
	PathAuthLogin    = "/sapi/v2/auth/login/"
	PathTokenRefresh = "/sapi/v1/auth/token/refresh/"

	PathCoinStats     = "/main/stat/v2/coins/"
	PathNetworkConfig = "/main/stat/v2/app-and-markets/"
	PathCreateVault   = "/main/user/create_vault/"

	PathProfile    = "/sapi/v1/user/profile/"
	PathBalance    = "/sapi/v1/user/balance/"
	PathPnl        = "/sapi/v1/user/pnl/"
	PathBulkCancel = "/sapi/v1/user/bulkcancel/"

	PathOrderNonce  = "/sapi/v1/orders/nonce/"
	PathOrderCreate = "/sapi/v1/orders/create/"
	PathOrderCancel = "/sapi/v1/orders/cancel/"
	PathOrders      = "/sapi/v1/orders"
	PathOrder       = "/sapi/v1/orders/%d"
	PathTrades      = "/sapi/v1/trades/"

	PathNormalWithdrawals        = "/sapi/v1/payment/withdrawals/"
	PathNormalWithdrawalInitiate = "/sapi/v1/payment/withdrawals/v1/initiate/"
	PathNormalWithdrawalValidate = "/sapi/v1/payment/withdrawals/v1/validate/"
	PathFastWithdrawals          = "/sapi/v1/payment/fast-withdrawals/"
	PathFastWithdrawalInitiate   = "/sapi/v1/payment/fast-withdrawals/v2/initiate/"
	PathFastWithdrawalProcess    = "/sapi/v1/payment/fast-withdrawals/v2/process/"

	PathInternalTransfers         = "/sapi/v1/internal_transfers/v2/"
	PathInternalTransfer          = "/sapi/v1/internal_transfers/v2/%s"
	PathInternalTransferInitiate  = "/sapi/v1/internal_transfers/v2/initiate/"
	PathInternalTransferProcess   = "/sapi/v1/internal_transfers/v2/process/"
	PathInternalTransferUserCheck = "/sapi/v1/internal_transfers/v2/check_user_exists/"

	PathDeposits              = "/sapi/v1/deposits/all"
	PathStarkDepositStart     = "/sapi/v1/payment/stark/start/"
	PathCrossChainDepositInit = "/sapi/v1/deposits/crosschain/create/"

	PathLayerSwapDeposit     = "/sapi/v1/payment/layer-swap/deposit/"
	PathLayerSwapDepositSave = "/sapi/v1/payment/layer-swap/deposit/save/"
	PathLayerSwapDepositFee  = "/sapi/v1/payment/layer-swap/deposit/fee/"
)
