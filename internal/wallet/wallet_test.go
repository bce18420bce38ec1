// internal/wallet/wallet_test.go
package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

// fakeBackend only answers balance reads.
type fakeBackend struct {
	Backend
	mu      sync.Mutex
	balance *big.Int
	err     error
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, f.err
}

func newTestProvider(t *testing.T, backend *fakeBackend, opts ...LocalOption) *LocalProvider {
	t.Helper()
	opts = append([]LocalOption{WithDialer(func(context.Context, string) (Backend, error) {
		return backend, nil
	})}, opts...)
	p, err := NewLocalProvider(testKey, networks[NetworkEthereum], nil, opts...)
	require.NoError(t, err)
	return p
}

// closingBackend counts Close calls.
type closingBackend struct {
	fakeBackend
	closed *atomic.Int32
}

func (b *closingBackend) Close() { b.closed.Add(1) }

func newTestConnector(provider Provider, flags FlagStore) *Connector {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewConnector(provider, flags, Networks(nil), logrus.NewEntry(log))
}

func TestConnectAdoptsAccountAndBalance(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(42)}
	provider := newTestProvider(t, backend)
	flags := &MemoryFlagStore{}
	c := newTestConnector(provider, flags)

	require.NoError(t, c.Connect(context.Background()))

	s := c.Session()
	assert.True(t, s.Connected)
	assert.False(t, s.Connecting)
	assert.Equal(t, provider.Address().Hex(), s.Address)
	assert.Equal(t, "0x1", s.ChainID)
	assert.Equal(t, int64(42), s.Balance.Int64())
	assert.True(t, flags.Connected())
}

func TestConnectRejectedStaysDisconnected(t *testing.T) {
	provider := newTestProvider(t, &fakeBackend{}, WithApprover(RejectAll))
	c := newTestConnector(provider, nil)

	require.NoError(t, c.Connect(context.Background()))
	assert.False(t, c.Session().Connected)
	assert.False(t, c.Session().Connecting)
}

func TestConnectWhilePromptPending(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	provider := newTestProvider(t, &fakeBackend{}, WithApprover(func(ctx context.Context, method string) error {
		close(entered)
		<-release
		return nil
	}))
	c := newTestConnector(provider, nil)

	done := make(chan error, 1)
	go func() { done <- c.Connect(context.Background()) }()
	<-entered

	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrRequestAlreadyPending)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.Session().Connected)
}

func TestConnectWithoutProvider(t *testing.T) {
	c := newTestConnector(nil, nil)
	assert.ErrorIs(t, c.Connect(context.Background()), ErrProviderUnavailable)
	assert.ErrorIs(t, c.SwitchNetwork(context.Background(), NetworkSepolia), ErrProviderUnavailable)
}

func TestSwitchNetworkAddsUnknownChain(t *testing.T) {
	provider := newTestProvider(t, &fakeBackend{balance: big.NewInt(1)})
	c := newTestConnector(provider, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.SwitchNetwork(context.Background(), NetworkSepolia))

	s := c.Session()
	assert.True(t, s.IsOn(networks[NetworkSepolia]))
	assert.True(t, s.Connected)
}

func TestSwitchNetworkRejectedIsSilent(t *testing.T) {
	provider := newTestProvider(t, &fakeBackend{})
	c := newTestConnector(provider, nil)
	require.NoError(t, c.Connect(context.Background()))

	provider.approve = RejectAll
	require.NoError(t, c.SwitchNetwork(context.Background(), NetworkSepolia))
	assert.Equal(t, "0x1", c.Session().ChainID)
}

func TestSwitchNetworkUnknownKey(t *testing.T) {
	c := newTestConnector(newTestProvider(t, &fakeBackend{}), nil)
	assert.ErrorIs(t, c.SwitchNetwork(context.Background(), NetworkKey("goerli")), ErrUnknownNetwork)
}

func TestAutoReconnect(t *testing.T) {
	flags := &MemoryFlagStore{}
	require.NoError(t, flags.SetConnected(true))

	provider := newTestProvider(t, &fakeBackend{balance: big.NewInt(7)}, WithAuthorized())
	c := newTestConnector(provider, flags)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.True(t, c.Session().Connected)
	assert.Equal(t, int64(7), c.Session().Balance.Int64())
}

func TestAutoReconnectClearsStaleFlag(t *testing.T) {
	flags := &MemoryFlagStore{}
	require.NoError(t, flags.SetConnected(true))

	c := newTestConnector(newTestProvider(t, &fakeBackend{}), flags)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.False(t, c.Session().Connected)
	assert.False(t, flags.Connected())
}

func TestRevokedAccountsDisconnect(t *testing.T) {
	flags := &MemoryFlagStore{}
	provider := newTestProvider(t, &fakeBackend{})
	c := newTestConnector(provider, flags)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	require.NoError(t, c.Connect(context.Background()))

	var seen []Session
	unsubscribe := c.Subscribe(func(s Session) { seen = append(seen, s) })
	defer unsubscribe()

	require.NoError(t, provider.Request(context.Background(), MethodRevokePermissions, nil, nil))

	assert.False(t, c.Session().Connected)
	assert.False(t, flags.Connected())
	require.NotEmpty(t, seen)
	assert.False(t, seen[len(seen)-1].Connected)
}

func TestChainChangedUpdatesChainAndBalance(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(1)}
	provider := newTestProvider(t, backend)
	c := newTestConnector(provider, nil)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	require.NoError(t, c.Connect(context.Background()))
	require.Equal(t, int64(1), c.Session().Balance.Int64())

	backend.mu.Lock()
	backend.balance = big.NewInt(99)
	backend.mu.Unlock()

	var seen []Session
	unsubscribe := c.Subscribe(func(s Session) { seen = append(seen, s) })
	defer unsubscribe()

	// Adding a chain switches to it, so the provider emits chainChanged.
	params := []interface{}{networks[NetworkSepolia].AddChainParams()}
	require.NoError(t, provider.Request(context.Background(), MethodAddChain, params, nil))

	s := c.Session()
	assert.Equal(t, networks[NetworkSepolia].ChainID, s.ChainID)
	assert.True(t, s.Connected)
	require.NotNil(t, s.Balance)
	assert.Equal(t, int64(99), s.Balance.Int64())
	require.NotEmpty(t, seen)
	assert.Equal(t, networks[NetworkSepolia].ChainID, seen[len(seen)-1].ChainID)
}

func TestCloseStopsProviderEvents(t *testing.T) {
	flags := &MemoryFlagStore{}
	provider := newTestProvider(t, &fakeBackend{balance: big.NewInt(5)})
	c := newTestConnector(provider, flags)
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Connect(context.Background()))
	before := c.Session()

	var seen []Session
	unsubscribe := c.Subscribe(func(s Session) { seen = append(seen, s) })
	defer unsubscribe()

	c.Close()

	require.NoError(t, provider.Request(context.Background(), MethodRevokePermissions, nil, nil))
	params := []interface{}{networks[NetworkSepolia].AddChainParams()}
	require.NoError(t, provider.Request(context.Background(), MethodAddChain, params, nil))

	after := c.Session()
	assert.True(t, after.Connected)
	assert.Equal(t, before.Address, after.Address)
	assert.Equal(t, before.ChainID, after.ChainID)
	assert.True(t, flags.Connected())
	assert.Empty(t, seen)
}

func TestBalanceFailureKeepsSession(t *testing.T) {
	backend := &fakeBackend{err: errors.New("rpc down")}
	c := newTestConnector(newTestProvider(t, backend), nil)

	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, c.Session().Connected)
	assert.Nil(t, c.Session().Balance)
}

func TestTransactOptsRequiresConnection(t *testing.T) {
	c := newTestConnector(newTestProvider(t, &fakeBackend{}), nil)
	_, err := c.TransactOpts(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, c.Connect(context.Background()))
	opts, err := c.TransactOpts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, c.Session().Account(), opts.From)
}

func TestLocalProviderClosesLosingDial(t *testing.T) {
	var dials, closed atomic.Int32
	release := make(chan struct{})
	p, err := NewLocalProvider(testKey, networks[NetworkEthereum], nil,
		WithDialer(func(context.Context, string) (Backend, error) {
			dials.Add(1)
			<-release
			return &closingBackend{closed: &closed}, nil
		}))
	require.NoError(t, err)

	const callers = 4
	var wg sync.WaitGroup
	clients := make([]Backend, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := p.Client(context.Background())
			assert.NoError(t, err)
			clients[i] = client
		}(i)
	}

	require.Eventually(t, func() bool { return dials.Load() == callers }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, callers-1, int(closed.Load()))
	for _, client := range clients[1:] {
		assert.Same(t, clients[0], client)
	}

	cached, err := p.Client(context.Background())
	require.NoError(t, err)
	assert.Same(t, clients[0], cached)
	assert.Equal(t, int32(callers), dials.Load())
}

func TestLocalProviderUnsupportedMethod(t *testing.T) {
	p := newTestProvider(t, &fakeBackend{})
	err := p.Request(context.Background(), "eth_sign", nil, nil)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CodeUnsupportedMethod, perr.Code)
}

func TestLocalProviderSwitchUnknownChain(t *testing.T) {
	p := newTestProvider(t, &fakeBackend{})
	err := p.Request(context.Background(), MethodSwitchChain, []interface{}{SwitchChainParams{ChainID: "0x89"}}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedChain)
}

func TestFileFlagStore(t *testing.T) {
	store := NewFileFlagStore(t.TempDir() + "/flag")
	assert.False(t, store.Connected())

	require.NoError(t, store.SetConnected(true))
	assert.True(t, store.Connected())

	require.NoError(t, store.SetConnected(false))
	assert.False(t, store.Connected())
	require.NoError(t, store.SetConnected(false))
}
