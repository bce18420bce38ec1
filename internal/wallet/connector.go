// internal/wallet/connector.go
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// Session is the observable wallet state shared by every view of the gateway.
type Session struct {
	Address    string   `json:"address"`
	ChainID    string   `json:"chain_id"`
	Balance    *big.Int `json:"-"`
	Connected  bool     `json:"connected"`
	Connecting bool     `json:"connecting"`
}

func (s Session) Account() common.Address {
	return common.HexToAddress(s.Address)
}

// IsOn reports whether the session's chain is the given network.
func (s Session) IsOn(network Network) bool {
	return s.ChainID != "" && equalChain(s.ChainID, network.ChainID)
}

// Connector owns the single wallet session of the process. All state
// changes are funneled through update so subscribers see a consistent copy.
type Connector struct {
	provider Provider
	flags    FlagStore
	networks map[NetworkKey]Network
	log      *logrus.Entry

	mu      sync.RWMutex
	session Session

	subMu  sync.Mutex
	subs   map[int]func(Session)
	nextID int

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// NewConnector builds a connector. provider may be nil when no wallet is
// installed; connect attempts then fail with ErrProviderUnavailable.
func NewConnector(provider Provider, flags FlagStore, networks map[NetworkKey]Network, log *logrus.Entry) *Connector {
	if flags == nil {
		flags = &MemoryFlagStore{}
	}
	if networks == nil {
		networks = Networks(nil)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Connector{
		provider: provider,
		flags:    flags,
		networks: networks,
		log:      log.WithField("component", "wallet"),
		subs:     make(map[int]func(Session)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to provider events and performs the silent reconnect.
func (c *Connector) Start(ctx context.Context) error {
	if c.provider == nil {
		c.log.Warn("No wallet provider configured; wallet features are disabled")
		return nil
	}
	c.unsubscribe = c.provider.Subscribe(Events{
		AccountsChanged: c.onAccountsChanged,
		ChainChanged:    c.onChainChanged,
	})
	return c.AutoReconnect(ctx)
}

// Close detaches from the provider. The session is left as is.
func (c *Connector) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.cancel()
}

func (c *Connector) Available() bool {
	return c.provider != nil
}

func (c *Connector) Network(key NetworkKey) (Network, bool) {
	n, ok := c.networks[key]
	return n, ok
}

func (c *Connector) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Subscribe registers fn for every session change until the returned func
// is called.
func (c *Connector) Subscribe(fn func(Session)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Connector) update(fn func(s *Session)) {
	c.mu.Lock()
	fn(&c.session)
	c.session.Connected = c.session.Address != ""
	snapshot := c.session
	c.mu.Unlock()

	c.subMu.Lock()
	subs := make([]func(Session), 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.subMu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

// Connect asks the wallet for account access. A user rejection leaves the
// session disconnected and is not an error.
func (c *Connector) Connect(ctx context.Context) error {
	if c.provider == nil {
		return ErrProviderUnavailable
	}

	c.update(func(s *Session) { s.Connecting = true })
	defer c.update(func(s *Session) { s.Connecting = false })

	var accounts []string
	if err := c.provider.Request(ctx, MethodRequestAccounts, nil, &accounts); err != nil {
		switch {
		case errors.Is(err, ErrUserRejected):
			c.log.Info("Wallet connection rejected by user")
			return nil
		case errors.Is(err, ErrRequestAlreadyPending):
			return ErrRequestAlreadyPending
		}
		return fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		return ErrNoAccounts
	}

	chainID, err := c.readChainID(ctx)
	if err != nil {
		return err
	}

	c.update(func(s *Session) {
		s.Address = accounts[0]
		s.ChainID = chainID
		s.Balance = nil
	})
	if err := c.flags.SetConnected(true); err != nil {
		c.log.WithError(err).Warn("Failed to persist wallet reconnect flag")
	}
	c.RefreshBalance(ctx)

	c.log.WithFields(logrus.Fields{
		"address":  accounts[0],
		"chain_id": chainID,
	}).Info("Wallet connected")
	return nil
}

// Disconnect clears the session locally. The wallet's own permission grant
// is untouched.
func (c *Connector) Disconnect() {
	c.update(func(s *Session) { *s = Session{} })
	if err := c.flags.SetConnected(false); err != nil {
		c.log.WithError(err).Warn("Failed to clear wallet reconnect flag")
	}
	c.log.Info("Wallet disconnected")
}

// AutoReconnect restores the session without prompting when the wallet was
// left connected and still exposes an authorized account.
func (c *Connector) AutoReconnect(ctx context.Context) error {
	if c.provider == nil || !c.flags.Connected() {
		return nil
	}

	var accounts []string
	if err := c.provider.Request(ctx, MethodAccounts, nil, &accounts); err != nil {
		return fmt.Errorf("read authorized accounts: %w", err)
	}
	if len(accounts) == 0 {
		if err := c.flags.SetConnected(false); err != nil {
			c.log.WithError(err).Warn("Failed to clear wallet reconnect flag")
		}
		return nil
	}

	chainID, err := c.readChainID(ctx)
	if err != nil {
		return err
	}
	c.update(func(s *Session) {
		s.Address = accounts[0]
		s.ChainID = chainID
	})
	c.RefreshBalance(ctx)
	c.log.WithField("address", accounts[0]).Info("Wallet reconnected")
	return nil
}

// SwitchNetwork asks the wallet to move to the given network, registering it
// first when the wallet does not know the chain. A user rejection is silent.
func (c *Connector) SwitchNetwork(ctx context.Context, key NetworkKey) error {
	network, ok := c.networks[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, key)
	}
	if c.provider == nil {
		return ErrProviderUnavailable
	}

	err := c.provider.Request(ctx, MethodSwitchChain, []interface{}{SwitchChainParams{ChainID: network.ChainID}}, nil)
	switch {
	case err == nil:
	case isCode(err, CodeUnrecognizedChain):
		if addErr := c.provider.Request(ctx, MethodAddChain, []interface{}{network.AddChainParams()}, nil); addErr != nil {
			if errors.Is(addErr, ErrUserRejected) {
				c.log.WithField("network", key).Info("Adding network rejected by user")
				return nil
			}
			return fmt.Errorf("%w: %v", ErrUnsupportedChain, addErr)
		}
	case errors.Is(err, ErrUserRejected):
		c.log.WithField("network", key).Info("Network switch rejected by user")
		return nil
	case errors.Is(err, ErrRequestAlreadyPending):
		return ErrRequestAlreadyPending
	default:
		return fmt.Errorf("switch network: %w", err)
	}

	// Not every provider emits chainChanged after a switch.
	if chainID, err := c.readChainID(ctx); err == nil {
		c.onChainChanged(chainID)
	}
	return nil
}

// RefreshBalance re-reads the native balance of the connected account.
// Failures are logged and keep the previous value.
func (c *Connector) RefreshBalance(ctx context.Context) {
	session := c.Session()
	if !session.Connected || c.provider == nil {
		return
	}

	backend, err := c.provider.Client(ctx)
	if err != nil {
		c.log.WithError(err).Debug("Balance refresh skipped")
		return
	}
	balance, err := backend.BalanceAt(ctx, session.Account(), nil)
	if err != nil {
		c.log.WithError(err).Warn("Failed to read wallet balance")
		return
	}

	c.update(func(s *Session) {
		if s.Address == session.Address && s.ChainID == session.ChainID {
			s.Balance = balance
		}
	})
}

// Backend returns the chain client of the wallet's current network.
func (c *Connector) Backend(ctx context.Context) (Backend, error) {
	if c.provider == nil {
		return nil, ErrProviderUnavailable
	}
	return c.provider.Client(ctx)
}

// TransactOpts returns signing options for the connected account.
func (c *Connector) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	session := c.Session()
	if !session.Connected {
		return nil, ErrNotConnected
	}
	opts, err := c.provider.Signer(ctx, session.Account())
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// SendTransaction transfers amount wei to the given address, waits for the
// receipt and refreshes the balance.
func (c *Connector) SendTransaction(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	opts, err := c.TransactOpts(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	backend, err := c.Backend(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := backend.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return common.Hash{}, fmt.Errorf("read nonce: %w", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}
	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: opts.From, To: &to, Value: amount})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      gas,
		GasPrice: gasPrice,
	})
	signed, err := opts.Signer(opts.From, tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, backend, signed)
	if err != nil {
		return signed.Hash(), fmt.Errorf("wait for transaction: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return signed.Hash(), ErrTransactionReverted
	}

	c.RefreshBalance(ctx)
	return signed.Hash(), nil
}

func (c *Connector) onAccountsChanged(accounts []string) {
	if len(accounts) == 0 {
		c.Disconnect()
		return
	}
	c.update(func(s *Session) {
		if s.Address != accounts[0] {
			s.Balance = nil
		}
		s.Address = accounts[0]
	})
	c.RefreshBalance(c.ctx)
}

func (c *Connector) onChainChanged(chainID string) {
	changed := false
	c.update(func(s *Session) {
		if !equalChain(s.ChainID, chainID) {
			s.ChainID = chainID
			s.Balance = nil
			changed = true
		}
	})
	if changed {
		c.log.WithField("chain_id", chainID).Info("Wallet network changed")
		c.RefreshBalance(c.ctx)
	}
}

func (c *Connector) readChainID(ctx context.Context) (string, error) {
	var chainID string
	if err := c.provider.Request(ctx, MethodChainID, nil, &chainID); err != nil {
		return "", fmt.Errorf("read chain id: %w", err)
	}
	return chainID, nil
}

func equalChain(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	x, errA := ChainIDToBig(a)
	y, errB := ChainIDToBig(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return x.Cmp(y) == 0
}
