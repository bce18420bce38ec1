// internal/services/ports.go
package services

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

// WalletSession is the part of the wallet connector the flows drive.
type WalletSession interface {
	Session() wallet.Session
	Connect(ctx context.Context) error
	SwitchNetwork(ctx context.Context, key wallet.NetworkKey) error
}

// ChainReader reads canonical item state.
type ChainReader interface {
	GetItem(ctx context.Context, itemID uint64) (*contract.ChainItem, error)
}

// MarketGateway is the marketplace contract.
type MarketGateway interface {
	ChainReader
	ListItem(ctx context.Context, p contract.ListItemParams, opts ...contract.TxOption) (*contract.ListResult, error)
	BuyItem(ctx context.Context, itemID uint64, priceWei *big.Int, opts ...contract.TxOption) (common.Hash, error)
	ConfirmReceipt(ctx context.Context, itemID uint64, opts ...contract.TxOption) (common.Hash, error)
	CancelListing(ctx context.Context, itemID uint64, opts ...contract.TxOption) (common.Hash, error)
	UpdateItem(ctx context.Context, p contract.UpdateItemParams, opts ...contract.TxOption) (common.Hash, error)
}

// ItemBackend is the REST backend's item surface.
type ItemBackend interface {
	ListItems(ctx context.Context, filter backend.ItemFilter) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, req backend.CreateItemRequest) (*models.Item, error)
	UpdateItem(ctx context.Context, id int64, req backend.UpdateItemRequest) error
	UpdateItemStatus(ctx context.Context, id int64, update backend.StatusUpdate) error
	UploadImage(ctx context.Context, filename string, content io.Reader) (string, error)
	RecordPurchase(ctx context.Context, record backend.PurchaseRecord) error
}

// SocialBackend is the REST backend's likes, messages and users surface.
type SocialBackend interface {
	AddLike(ctx context.Context, itemID int64, uid string) error
	RemoveLike(ctx context.Context, itemID int64, uid string) error
	LikeStatus(ctx context.Context, itemID int64, uid string) (*models.LikeStatus, error)
	UserLikes(ctx context.Context, uid string) ([]int64, error)
	Messages(ctx context.Context, myUID, partnerUID string) ([]models.Message, error)
	SendMessage(ctx context.Context, senderUID, receiverUID, content string) (*models.Message, error)
	MarkRead(ctx context.Context, myUID, partnerUID string) error
	Conversations(ctx context.Context, uid string) ([]models.Conversation, error)
	Register(ctx context.Context, reg models.UserRegistration) error
	User(ctx context.Context, uid string) (*models.UserRegistration, error)
}

// chainGuard holds the wallet preconditions shared by every on-chain flow.
type chainGuard struct {
	wallet  WalletSession
	network wallet.Network
}

// check asks the wallet to connect or switch network when needed. Either
// request leaves the flow in form; the user submits again afterwards.
func (g chainGuard) check(ctx context.Context) error {
	session := g.wallet.Session()
	if !session.Connected {
		if err := g.wallet.Connect(ctx); err != nil {
			return &GuardError{Key: NormalizeError(err).Key, Err: err}
		}
		return &GuardError{Key: i18n.KeyWalletConnectRequested}
	}
	if !session.IsOn(g.network) {
		if err := g.wallet.SwitchNetwork(ctx, g.network.Key); err != nil {
			return &GuardError{Key: NormalizeError(err).Key, Err: err}
		}
		return &GuardError{Key: i18n.KeyWalletSwitchRequested}
	}
	return nil
}
