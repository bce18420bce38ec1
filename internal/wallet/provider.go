// internal/wallet/provider.go
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// JSON-RPC methods understood by an injected wallet.
const (
	MethodRequestAccounts   = "eth_requestAccounts"
	MethodAccounts          = "eth_accounts"
	MethodChainID           = "eth_chainId"
	MethodSwitchChain       = "wallet_switchEthereumChain"
	MethodAddChain          = "wallet_addEthereumChain"
	MethodRevokePermissions = "wallet_revokePermissions"
)

// EIP-1193 / EIP-1474 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnsupportedMethod = 4200
	CodeUnrecognizedChain = 4902
	CodeInvalidParams     = -32602
	CodeRequestPending    = -32002
)

var (
	ErrProviderUnavailable   = errors.New("wallet provider unavailable")
	ErrUserRejected          = errors.New("user rejected the request")
	ErrRequestAlreadyPending = errors.New("wallet request already pending")
	ErrUnsupportedChain      = errors.New("chain not supported by wallet")
	ErrNotConnected          = errors.New("wallet not connected")
	ErrNoAccounts            = errors.New("wallet returned no accounts")
	ErrUnknownNetwork        = errors.New("unknown network")
	ErrTransactionReverted   = errors.New("transaction reverted")
)

// ProviderError is an error reported by the provider itself.
type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// Is lets callers match provider codes against the package sentinels.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrUserRejected:
		return e.Code == CodeUserRejected
	case ErrRequestAlreadyPending:
		return e.Code == CodeRequestPending
	case ErrUnsupportedChain:
		return e.Code == CodeUnrecognizedChain
	}
	return false
}

// Backend is the chain RPC surface needed to call, transact and wait on the
// marketplace contract.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Events are the provider notifications the connector listens to. Either
// handler may be nil.
type Events struct {
	AccountsChanged func(accounts []string)
	ChainChanged    func(chainID string)
}

// Provider is the injected wallet. Request follows the EIP-1193 request
// shape; result receives the JSON-decoded response when non-nil.
type Provider interface {
	Request(ctx context.Context, method string, params []interface{}, result interface{}) error
	Subscribe(events Events) (unsubscribe func())
	Client(ctx context.Context) (Backend, error)
	Signer(ctx context.Context, account common.Address) (*bind.TransactOpts, error)
}

type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

func isCode(err error, code int) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Code == code
}
