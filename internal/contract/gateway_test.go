// internal/contract/gateway_test.go
package contract

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frima-market/frima-gateway/internal/wallet"
)

const testContract = "0xA9bde62a88EFb45DfEd198349dCAEd9BE4743aB1"

var sepolia = wallet.Networks(nil)[wallet.NetworkSepolia]

type stubWallet struct {
	session wallet.Session
}

func (s *stubWallet) Session() wallet.Session { return s.session }

func (s *stubWallet) Backend(context.Context) (wallet.Backend, error) {
	return nil, wallet.ErrProviderUnavailable
}

func (s *stubWallet) TransactOpts(context.Context) (*bind.TransactOpts, error) {
	return nil, wallet.ErrNotConnected
}

func (s *stubWallet) RefreshBalance(context.Context) {}

// stubCaller answers getItem with a fixed packed tuple.
type stubCaller struct {
	output []byte
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stubCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

func (s *stubCaller) CallContract(ctx context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	s.calls.Add(1)
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.output, s.err
}

func parsedABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	require.NoError(t, err)
	return parsed
}

func packItem(t *testing.T, item ChainItem) []byte {
	t.Helper()
	out, err := parsedABI(t).Methods["getItem"].Outputs.Pack(item)
	require.NoError(t, err)
	return out
}

func sampleItem() ChainItem {
	return ChainItem{
		ItemId:      big.NewInt(7),
		TokenId:     big.NewInt(3),
		Title:       "Camera",
		Price:       FiatToNative(12000),
		Explanation: "used",
		ImageUrl:    "https://img.example/1.png",
		Uid:         "seller-uid",
		CreatedAt:   big.NewInt(1700000000),
		UpdatedAt:   big.NewInt(1700000000),
		IsPurchased: true,
		Category:    "electronics",
		Seller:      common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Buyer:       common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		Status:      uint8(StatusPurchased),
	}
}

func TestGetItemDecodesTuple(t *testing.T) {
	caller := &stubCaller{output: packItem(t, sampleItem())}
	g, err := NewGateway(testContract, sepolia, &stubWallet{}, WithReader(caller))
	require.NoError(t, err)

	item, err := g.GetItem(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, item.Exists())
	assert.Equal(t, StatusPurchased, item.ItemStatus())
	assert.Equal(t, int64(12000), NativeToFiat(item.Price))
	assert.Equal(t, "Camera", item.Title)
	assert.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000bb"), item.Buyer)
}

func TestGetItemUnknownID(t *testing.T) {
	caller := &stubCaller{output: packItem(t, ChainItem{
		ItemId: big.NewInt(0), TokenId: big.NewInt(0), Price: big.NewInt(0),
		CreatedAt: big.NewInt(0), UpdatedAt: big.NewInt(0),
	})}
	g, err := NewGateway(testContract, sepolia, &stubWallet{}, WithReader(caller))
	require.NoError(t, err)

	item, err := g.GetItem(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, item.Exists())
}

func TestGetItemCoalescesConcurrentReads(t *testing.T) {
	caller := &stubCaller{output: packItem(t, sampleItem()), delay: 50 * time.Millisecond}
	g, err := NewGateway(testContract, sepolia, &stubWallet{}, WithReader(caller))
	require.NoError(t, err)

	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func() {
			_, err := g.GetItem(context.Background(), 7)
			errs <- err
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, <-errs)
	}
	assert.Less(t, caller.calls.Load(), int32(5))
}

func TestGetItemSharedReadSurvivesFirstCallerCancel(t *testing.T) {
	caller := &stubCaller{output: packItem(t, sampleItem()), delay: 100 * time.Millisecond}
	g, err := NewGateway(testContract, sepolia, &stubWallet{}, WithReader(caller))
	require.NoError(t, err)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.GetItem(first, 7)
		firstErr <- err
	}()

	time.Sleep(10 * time.Millisecond)
	second := make(chan error, 1)
	go func() {
		item, err := g.GetItem(context.Background(), 7)
		if err == nil && item.ItemId.Int64() != sampleItem().ItemId.Int64() {
			err = errors.New("unexpected item")
		}
		second <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-firstErr, context.Canceled)
	assert.NoError(t, <-second)
}

func TestGetItemReadFailure(t *testing.T) {
	caller := &stubCaller{err: errors.New("connection refused")}
	g, err := NewGateway(testContract, sepolia, &stubWallet{}, WithReader(caller))
	require.NoError(t, err)

	_, err = g.GetItem(context.Background(), 7)
	assert.ErrorContains(t, err, "connection refused")
}

func TestWritesRequireConnectedWalletOnNetwork(t *testing.T) {
	w := &stubWallet{}
	g, err := NewGateway(testContract, sepolia, w)
	require.NoError(t, err)

	_, err = g.BuyItem(context.Background(), 1, big.NewInt(1))
	assert.ErrorIs(t, err, wallet.ErrNotConnected)

	w.session = wallet.Session{Address: "0x00000000000000000000000000000000000000aa", ChainID: "0x1", Connected: true}
	_, err = g.ConfirmReceipt(context.Background(), 1)
	assert.ErrorIs(t, err, ErrWrongNetwork)
}

func TestNewGatewayRejectsBadAddress(t *testing.T) {
	_, err := NewGateway("0x123", sepolia, &stubWallet{})
	assert.Error(t, err)
}

func TestTxOptions(t *testing.T) {
	var got common.Hash
	cfg := NewTxConfig(OnSubmitted(func(h common.Hash) { got = h }))
	require.NotNil(t, cfg.OnSubmitted)

	cfg.OnSubmitted(common.HexToHash("0x01"))
	assert.Equal(t, common.HexToHash("0x01"), got)
	assert.Nil(t, NewTxConfig().OnSubmitted)
}

