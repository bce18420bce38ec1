// internal/wallet/networks_test.go
package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworksOverrides(t *testing.T) {
	table := Networks(map[string]string{"sepolia": "https://rpc.sepolia.example"})

	assert.Equal(t, []string{"https://rpc.sepolia.example"}, table[NetworkSepolia].RPCURLs)
	assert.Equal(t, "0xaa36a7", table[NetworkSepolia].ChainID)
	assert.Equal(t, "https://sepolia.infura.io/v3/", networks[NetworkSepolia].RPCURLs[0])
}

func TestNetworkInfo(t *testing.T) {
	name, symbol := NetworkInfo("0x89")
	assert.Equal(t, "Polygon Mainnet", name)
	assert.Equal(t, "MATIC", symbol)

	name, symbol = NetworkInfo("0x5")
	assert.Equal(t, "Unknown (0x5)", name)
	assert.Equal(t, "???", symbol)
}

func TestChainIDConversion(t *testing.T) {
	id, err := ChainIDToBig("0xAA36A7")
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id.Int64())
	assert.Equal(t, "0xaa36a7", ChainIDFromBig(id))

	_, err = ChainIDToBig("sepolia")
	assert.Error(t, err)
}

func TestAddChainParams(t *testing.T) {
	params := networks[NetworkMumbai].AddChainParams()
	assert.Equal(t, "0x13881", params.ChainID)
	assert.Equal(t, 18, params.NativeCurrency.Decimals)
	assert.Equal(t, "MATIC", params.NativeCurrency.Symbol)
}
