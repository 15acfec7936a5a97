package chain

// ERC20ABI covers the token methods used for balances and approvals
const ERC20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// StarkExABI covers the StarkEx deposit and withdrawal entry points
const StarkExABI = `[
	{"inputs":[{"name":"starkKey","type":"uint256"},{"name":"assetType","type":"uint256"},{"name":"vaultId","type":"uint256"}],"name":"depositEth","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"starkKey","type":"uint256"},{"name":"assetType","type":"uint256"},{"name":"vaultId","type":"uint256"},{"name":"quantizedAmount","type":"uint256"}],"name":"depositERC20","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"ownerKey","type":"uint256"},{"name":"assetType","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"ownerKey","type":"uint256"},{"name":"assetId","type":"uint256"}],"name":"getWithdrawalBalance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// DepositContractABI covers the cross-chain deposit contract deployed on
// each secondary network
const DepositContractABI = `[
	{"inputs":[],"name":"depositNative","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"name":"deposit","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`
