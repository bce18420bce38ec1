// internal/wallet/local_provider.go
package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Approver decides whether a prompting request goes through. Returning a
// ProviderError with CodeUserRejected models the user declining.
type Approver func(ctx context.Context, method string) error

// Dialer opens a chain client for an RPC URL.
type Dialer func(ctx context.Context, rawurl string) (Backend, error)

// AutoApprove accepts every prompt.
func AutoApprove(context.Context, string) error { return nil }

// RejectAll declines every prompt the way a user would.
func RejectAll(context.Context, string) error {
	return &ProviderError{Code: CodeUserRejected, Message: "User rejected the request."}
}

func DialEthClient(ctx context.Context, rawurl string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// LocalProvider is a key-backed wallet that speaks the injected-provider
// protocol. It holds one account and tracks a current chain among the
// networks it knows about.
type LocalProvider struct {
	key     *ecdsa.PrivateKey
	account common.Address
	approve Approver
	dial    Dialer
	log     *logrus.Entry

	mu         sync.Mutex
	networks   map[string]Network
	current    string
	authorized bool
	pending    bool
	clients    map[string]Backend
	listeners  map[int]Events
	nextID     int
}

type LocalOption func(*LocalProvider)

func WithApprover(approve Approver) LocalOption {
	return func(p *LocalProvider) { p.approve = approve }
}

func WithDialer(dial Dialer) LocalOption {
	return func(p *LocalProvider) { p.dial = dial }
}

// WithAuthorized pre-grants account access, as a wallet remembering an
// earlier approval would.
func WithAuthorized() LocalOption {
	return func(p *LocalProvider) { p.authorized = true }
}

// NewLocalProvider builds a provider for the hex private key. Only the
// initial network is known at first; others are learned through
// wallet_addEthereumChain, except those passed in known.
func NewLocalProvider(hexKey string, initial Network, known []Network, opts ...LocalOption) (*LocalProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid wallet private key: %w", err)
	}

	p := &LocalProvider{
		key:       key,
		account:   crypto.PubkeyToAddress(key.PublicKey),
		approve:   AutoApprove,
		dial:      DialEthClient,
		log:       logrus.WithField("component", "local_wallet"),
		networks:  make(map[string]Network),
		current:   strings.ToLower(initial.ChainID),
		clients:   make(map[string]Backend),
		listeners: make(map[int]Events),
	}
	p.networks[p.current] = initial
	for _, n := range known {
		p.networks[strings.ToLower(n.ChainID)] = n
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *LocalProvider) Address() common.Address {
	return p.account
}

func (p *LocalProvider) Request(ctx context.Context, method string, params []interface{}, result interface{}) error {
	var (
		value interface{}
		err   error
	)

	switch method {
	case MethodRequestAccounts:
		value, err = p.requestAccounts(ctx)
	case MethodAccounts:
		value = p.accounts()
	case MethodChainID:
		p.mu.Lock()
		value = p.current
		p.mu.Unlock()
	case MethodSwitchChain:
		err = p.switchChain(ctx, params)
	case MethodAddChain:
		err = p.addChain(ctx, params)
	case MethodRevokePermissions:
		p.revoke()
	default:
		return &ProviderError{Code: CodeUnsupportedMethod, Message: "The requested method is not supported: " + method}
	}
	if err != nil {
		return err
	}
	return assign(value, result)
}

func (p *LocalProvider) Subscribe(events Events) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = events
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Client returns a cached chain client for the current network.
func (p *LocalProvider) Client(ctx context.Context) (Backend, error) {
	p.mu.Lock()
	chainID := p.current
	network := p.networks[chainID]
	client, ok := p.clients[chainID]
	p.mu.Unlock()

	if ok {
		return client, nil
	}
	if len(network.RPCURLs) == 0 || network.RPCURLs[0] == "" {
		return nil, fmt.Errorf("no RPC endpoint for chain %s", chainID)
	}

	client, err := p.dial(ctx, network.RPCURLs[0])
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", network.Name, err)
	}

	p.mu.Lock()
	existing, raced := p.clients[chainID]
	if !raced {
		p.clients[chainID] = client
	}
	p.mu.Unlock()

	if raced {
		if closer, ok := client.(interface{ Close() }); ok {
			closer.Close()
		}
		return existing, nil
	}
	return client, nil
}

func (p *LocalProvider) Signer(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	if account != p.account {
		return nil, fmt.Errorf("account %s is not managed by this wallet", account.Hex())
	}

	p.mu.Lock()
	chainID := p.current
	p.mu.Unlock()

	id, err := ChainIDToBig(chainID)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(p.key, id)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func (p *LocalProvider) requestAccounts(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	authorized := p.authorized
	p.mu.Unlock()

	if !authorized {
		if err := p.prompt(ctx, MethodRequestAccounts); err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.authorized = true
		p.mu.Unlock()
	}
	return []string{p.account.Hex()}, nil
}

func (p *LocalProvider) accounts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized {
		return []string{}
	}
	return []string{p.account.Hex()}
}

func (p *LocalProvider) switchChain(ctx context.Context, params []interface{}) error {
	var req SwitchChainParams
	if err := decodeParam(params, &req); err != nil {
		return err
	}
	chainID := strings.ToLower(req.ChainID)

	p.mu.Lock()
	_, known := p.networks[chainID]
	same := p.current == chainID
	p.mu.Unlock()

	if !known {
		return &ProviderError{
			Code:    CodeUnrecognizedChain,
			Message: fmt.Sprintf("Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", req.ChainID),
		}
	}
	if same {
		return nil
	}
	if err := p.prompt(ctx, MethodSwitchChain); err != nil {
		return err
	}
	p.setChain(chainID)
	return nil
}

func (p *LocalProvider) addChain(ctx context.Context, params []interface{}) error {
	var req AddChainParams
	if err := decodeParam(params, &req); err != nil {
		return err
	}
	if req.ChainID == "" || len(req.RPCURLs) == 0 {
		return &ProviderError{Code: CodeInvalidParams, Message: "chainId and rpcUrls are required"}
	}
	if _, err := ChainIDToBig(req.ChainID); err != nil {
		return &ProviderError{Code: CodeInvalidParams, Message: err.Error()}
	}

	if err := p.prompt(ctx, MethodAddChain); err != nil {
		return err
	}

	network := networkFromParams(req)
	p.mu.Lock()
	p.networks[network.ChainID] = network
	p.mu.Unlock()
	p.log.WithField("chain_id", network.ChainID).Info("Network added to wallet")

	p.setChain(network.ChainID)
	return nil
}

func (p *LocalProvider) revoke() {
	p.mu.Lock()
	wasAuthorized := p.authorized
	p.authorized = false
	p.mu.Unlock()

	if wasAuthorized {
		p.emit(func(e Events) {
			if e.AccountsChanged != nil {
				e.AccountsChanged([]string{})
			}
		})
	}
}

func (p *LocalProvider) setChain(chainID string) {
	p.mu.Lock()
	changed := p.current != chainID
	p.current = chainID
	p.mu.Unlock()

	if changed {
		p.emit(func(e Events) {
			if e.ChainChanged != nil {
				e.ChainChanged(chainID)
			}
		})
	}
}

// prompt runs the approver with at most one prompt open at a time.
func (p *LocalProvider) prompt(ctx context.Context, method string) error {
	p.mu.Lock()
	if p.pending {
		p.mu.Unlock()
		return &ProviderError{
			Code:    CodeRequestPending,
			Message: fmt.Sprintf("Request of type '%s' already pending. Please wait.", method),
		}
	}
	p.pending = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.pending = false
		p.mu.Unlock()
	}()

	if p.approve == nil {
		return nil
	}
	return p.approve(ctx, method)
}

// emit calls listeners outside the lock so they may call back in.
func (p *LocalProvider) emit(fn func(Events)) {
	p.mu.Lock()
	listeners := make([]Events, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()

	for _, l := range listeners {
		fn(l)
	}
}

func decodeParam(params []interface{}, out interface{}) error {
	if len(params) == 0 {
		return &ProviderError{Code: CodeInvalidParams, Message: "missing request params"}
	}
	if err := assign(params[0], out); err != nil {
		return &ProviderError{Code: CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

func assign(value, result interface{}) error {
	if value == nil || result == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}
