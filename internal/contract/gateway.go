// internal/contract/gateway.go
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/frima-market/frima-gateway/internal/wallet"
)

const sharedReadTimeout = 30 * time.Second

var (
	ErrTransactionFailed = errors.New("transaction failed")
	ErrWrongNetwork      = errors.New("wallet is not on the marketplace network")
)

// Wallet is what the gateway needs from the wallet session.
type Wallet interface {
	Session() wallet.Session
	Backend(ctx context.Context) (wallet.Backend, error)
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
	RefreshBalance(ctx context.Context)
}

type ListItemParams struct {
	Title       string
	Price       int64
	Explanation string
	ImageURL    string
	UID         string
	Category    string
	TokenURI    string
}

type UpdateItemParams struct {
	ItemID      uint64
	Title       string
	Price       int64
	Explanation string
	ImageURL    string
	Category    string
}

type ListResult struct {
	TxHash common.Hash
	// ItemID is 0 when the receipt carried no ItemListed event.
	ItemID uint64
}

type TxConfig struct {
	OnSubmitted func(hash common.Hash)
}

// TxOption adjusts a single write.
type TxOption func(*TxConfig)

// OnSubmitted is called with the transaction hash once the wallet has
// broadcast it, before the receipt is awaited.
func OnSubmitted(fn func(hash common.Hash)) TxOption {
	return func(c *TxConfig) { c.OnSubmitted = fn }
}

func NewTxConfig(opts ...TxOption) TxConfig {
	var cfg TxConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Gateway binds the FrimaMarketplace contract at a fixed address.
type Gateway struct {
	address common.Address
	abi     abi.ABI
	network wallet.Network
	wallet  Wallet
	reader  bind.ContractCaller
	reads   singleflight.Group
	log     *logrus.Entry
}

type GatewayOption func(*Gateway)

// WithReader serves reads from a dedicated RPC client instead of the
// wallet's, so item status is readable without a connected wallet.
func WithReader(reader bind.ContractCaller) GatewayOption {
	return func(g *Gateway) { g.reader = reader }
}

func NewGateway(address string, network wallet.Network, w Wallet, opts ...GatewayOption) (*Gateway, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse marketplace abi: %w", err)
	}

	g := &Gateway{
		address: common.HexToAddress(address),
		abi:     parsed,
		network: network,
		wallet:  w,
		log:     logrus.WithField("component", "contract"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gateway) Address() common.Address {
	return g.address
}

func (g *Gateway) ListItem(ctx context.Context, p ListItemParams, opts ...TxOption) (*ListResult, error) {
	receipt, err := g.transact(ctx, "listItem", nil, NewTxConfig(opts...),
		p.Title, FiatToNative(p.Price), p.Explanation, p.ImageURL, p.UID, p.Category, p.TokenURI)
	if err != nil {
		return nil, err
	}

	itemID := ListedItemID(g.abi, g.address, receipt.Logs)
	if itemID == 0 {
		g.log.WithField("tx_hash", receipt.TxHash.Hex()).Warn("ItemListed event not found in receipt")
	}
	return &ListResult{TxHash: receipt.TxHash, ItemID: itemID}, nil
}

func (g *Gateway) BuyItem(ctx context.Context, itemID uint64, priceWei *big.Int, opts ...TxOption) (common.Hash, error) {
	receipt, err := g.transact(ctx, "buyItem", priceWei, NewTxConfig(opts...), new(big.Int).SetUint64(itemID))
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

func (g *Gateway) ConfirmReceipt(ctx context.Context, itemID uint64, opts ...TxOption) (common.Hash, error) {
	receipt, err := g.transact(ctx, "confirmReceipt", nil, NewTxConfig(opts...), new(big.Int).SetUint64(itemID))
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

func (g *Gateway) CancelListing(ctx context.Context, itemID uint64, opts ...TxOption) (common.Hash, error) {
	receipt, err := g.transact(ctx, "cancelListing", nil, NewTxConfig(opts...), new(big.Int).SetUint64(itemID))
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

func (g *Gateway) UpdateItem(ctx context.Context, p UpdateItemParams, opts ...TxOption) (common.Hash, error) {
	receipt, err := g.transact(ctx, "updateItem", nil, NewTxConfig(opts...),
		new(big.Int).SetUint64(p.ItemID), p.Title, FiatToNative(p.Price), p.Explanation, p.ImageURL, p.Category)
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

// GetItem reads the canonical item record. Concurrent reads of the same id
// share one call.
func (g *Gateway) GetItem(ctx context.Context, itemID uint64) (*ChainItem, error) {
	ch := g.reads.DoChan(strconv.FormatUint(itemID, 10), func() (interface{}, error) {
		// The read is shared by every concurrent caller and outlives any one of them.
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()

		caller, err := g.caller(readCtx)
		if err != nil {
			return nil, err
		}

		bound := bind.NewBoundContract(g.address, g.abi, caller, nil, nil)
		var out []interface{}
		if err := bound.Call(&bind.CallOpts{Context: readCtx}, &out, "getItem", new(big.Int).SetUint64(itemID)); err != nil {
			return nil, fmt.Errorf("getItem(%d): %w", itemID, err)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("getItem(%d): empty result", itemID)
		}
		return abi.ConvertType(out[0], new(ChainItem)).(*ChainItem), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		item := *res.Val.(*ChainItem)
		return &item, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Gateway) caller(ctx context.Context) (bind.ContractCaller, error) {
	if g.reader != nil {
		return g.reader, nil
	}
	return g.wallet.Backend(ctx)
}

func (g *Gateway) transact(ctx context.Context, method string, value *big.Int, cfg TxConfig, args ...interface{}) (*types.Receipt, error) {
	session := g.wallet.Session()
	if !session.Connected {
		return nil, wallet.ErrNotConnected
	}
	if !session.IsOn(g.network) {
		return nil, ErrWrongNetwork
	}

	backend, err := g.wallet.Backend(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := g.wallet.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	opts.Value = value

	bound := bind.NewBoundContract(g.address, g.abi, backend, backend, backend)
	tx, err := bound.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	log := g.log.WithFields(logrus.Fields{
		"method":  method,
		"tx_hash": tx.Hash().Hex(),
	})
	log.Info("Transaction submitted")
	if cfg.OnSubmitted != nil {
		cfg.OnSubmitted(tx.Hash())
	}

	receipt, err := bind.WaitMined(ctx, backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn("Transaction reverted")
		return receipt, fmt.Errorf("%s %s: %w", method, tx.Hash().Hex(), ErrTransactionFailed)
	}

	log.WithField("block", receipt.BlockNumber).Info("Transaction mined")
	g.wallet.RefreshBalance(ctx)
	return receipt, nil
}
