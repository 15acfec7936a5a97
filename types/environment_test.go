package types

import (
	"testing"

	"github.com/banky/go-tanx/constants"
	"github.com/maxatome/go-testdeep/td"
)

func TestEnvironmentEndpoints(t *testing.T) {
	td.Cmp(t, Environment("").OrDefault(), Mainnet)

	td.Cmp(t, Mainnet.BaseURL(), constants.MAINNET_API_URL)
	td.Cmp(t, Mainnet.WsURL(), constants.MAINNET_WS_URL)
	td.Cmp(t, Mainnet.StarkContract(), constants.MAINNET_STARK_CONTRACT)

	td.Cmp(t, Testnet.BaseURL(), constants.TESTNET_API_URL)
	td.Cmp(t, Testnet.WsURL(), constants.TESTNET_WS_URL)
	td.Cmp(t, Testnet.UserSignatureMessage(), constants.TESTNET_USER_SIGNATURE_MESSAGE)
}

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment("testnet")
	td.CmpNoError(t, err)
	td.Cmp(t, env, Testnet)

	// only the two public deployments are addressable
	for _, s := range []string{"", "local", "Mainnet"} {
		_, err := ParseEnvironment(s)
		td.CmpError(t, err, s)
	}
}
