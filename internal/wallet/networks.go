// internal/wallet/networks.go
package wallet

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type NetworkKey string

const (
	NetworkEthereum NetworkKey = "ethereum"
	NetworkSepolia  NetworkKey = "sepolia"
	NetworkPolygon  NetworkKey = "polygon"
	NetworkMumbai   NetworkKey = "mumbai"
)

type Network struct {
	Key          NetworkKey `json:"key"`
	ChainID      string     `json:"chain_id"`
	Name         string     `json:"name"`
	Symbol       string     `json:"symbol"`
	RPCURLs      []string   `json:"rpc_urls"`
	ExplorerURLs []string   `json:"explorer_urls"`
}

var networks = map[NetworkKey]Network{
	NetworkEthereum: {
		Key:          NetworkEthereum,
		ChainID:      "0x1",
		Name:         "Ethereum Mainnet",
		Symbol:       "ETH",
		RPCURLs:      []string{"https://mainnet.infura.io/v3/"},
		ExplorerURLs: []string{"https://etherscan.io/"},
	},
	NetworkSepolia: {
		Key:          NetworkSepolia,
		ChainID:      "0xaa36a7",
		Name:         "Sepolia Testnet",
		Symbol:       "ETH",
		RPCURLs:      []string{"https://sepolia.infura.io/v3/"},
		ExplorerURLs: []string{"https://sepolia.etherscan.io/"},
	},
	NetworkPolygon: {
		Key:          NetworkPolygon,
		ChainID:      "0x89",
		Name:         "Polygon Mainnet",
		Symbol:       "MATIC",
		RPCURLs:      []string{"https://polygon-rpc.com/"},
		ExplorerURLs: []string{"https://polygonscan.com/"},
	},
	NetworkMumbai: {
		Key:          NetworkMumbai,
		ChainID:      "0x13881",
		Name:         "Polygon Mumbai",
		Symbol:       "MATIC",
		RPCURLs:      []string{"https://rpc-mumbai.maticvigil.com/"},
		ExplorerURLs: []string{"https://mumbai.polygonscan.com/"},
	},
}

// Networks returns a copy of the supported network table with the given RPC
// overrides (keyed by network name) applied.
func Networks(rpcOverrides map[string]string) map[NetworkKey]Network {
	out := make(map[NetworkKey]Network, len(networks))
	for key, n := range networks {
		n.RPCURLs = append([]string(nil), n.RPCURLs...)
		n.ExplorerURLs = append([]string(nil), n.ExplorerURLs...)
		if url := rpcOverrides[string(key)]; url != "" {
			n.RPCURLs = []string{url}
		}
		out[key] = n
	}
	return out
}

func ParseNetworkKey(s string) (NetworkKey, bool) {
	key := NetworkKey(strings.ToLower(strings.TrimSpace(s)))
	_, ok := networks[key]
	return key, ok
}

// LookupChain finds a supported network by its hex chain id.
func LookupChain(chainID string) (Network, bool) {
	for _, n := range networks {
		if strings.EqualFold(n.ChainID, chainID) {
			return n, true
		}
	}
	return Network{}, false
}

// NetworkInfo returns the display name and symbol for a chain id.
func NetworkInfo(chainID string) (name, symbol string) {
	if chainID == "" {
		return "", ""
	}
	if n, ok := LookupChain(chainID); ok {
		return n.Name, n.Symbol
	}
	return fmt.Sprintf("Unknown (%s)", chainID), "???"
}

func (n Network) AddChainParams() AddChainParams {
	return AddChainParams{
		ChainID:   n.ChainID,
		ChainName: n.Name,
		NativeCurrency: NativeCurrency{
			Name:     n.Symbol,
			Symbol:   n.Symbol,
			Decimals: 18,
		},
		RPCURLs:           n.RPCURLs,
		BlockExplorerURLs: n.ExplorerURLs,
	}
}

func networkFromParams(p AddChainParams) Network {
	return Network{
		ChainID:      strings.ToLower(p.ChainID),
		Name:         p.ChainName,
		Symbol:       p.NativeCurrency.Symbol,
		RPCURLs:      p.RPCURLs,
		ExplorerURLs: p.BlockExplorerURLs,
	}
}

func ChainIDToBig(chainID string) (*big.Int, error) {
	id, err := hexutil.DecodeBig(strings.ToLower(chainID))
	if err != nil {
		return nil, fmt.Errorf("invalid chain id %q: %w", chainID, err)
	}
	return id, nil
}

func ChainIDFromBig(id *big.Int) string {
	return hexutil.EncodeBig(id)
}
