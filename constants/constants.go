package constants

import "github.com/ethereum/go-ethereum/common"

const MAINNET_API_URL = "https://api.tanx.fi"
const TESTNET_API_URL = "https://api-testnet.tanx.fi"

const MAINNET_WS_URL = "wss://api.tanx.fi"
const TESTNET_WS_URL = "wss://api-testnet.tanx.fi"

// Messages signed with the Ethereum key to derive the STARK key pair.
// Changing either value changes every derived L2 identity.
const MAINNET_USER_SIGNATURE_MESSAGE = "Get started with TanX. Make sure the origin is https://trade.tanx.fi"
const TESTNET_USER_SIGNATURE_MESSAGE = "Click sign to verify you're a human - TanX Finance"

var MAINNET_STARK_CONTRACT = common.HexToAddress("0x1390f521A79BaBE99b69B37154D63D431da27A07")
var TESTNET_STARK_CONTRACT = common.HexToAddress("0xA2eC709125Ea693f5522aEfBBC3cb22fb9146B52")

// MAX_INT_ALLOWANCE is 2^256 - 1, used for unlimited ERC-20 approvals
const MAX_INT_ALLOWANCE = "115792089237316195423570985008687907853269984665640564039457584007913129639935"
