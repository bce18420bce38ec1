// internal/services/mocks_test.go
package services

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

type mockWallet struct {
	mock.Mock
	session wallet.Session
}

func (m *mockWallet) Session() wallet.Session { return m.session }

func (m *mockWallet) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockWallet) SwitchNetwork(ctx context.Context, key wallet.NetworkKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockWallet) Available() bool { return true }

func (m *mockWallet) Disconnect() {
	m.Called()
	m.session = wallet.Session{}
}

func (m *mockWallet) SendTransaction(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	args := m.Called(ctx, to, amount)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockWallet) Subscribe(fn func(wallet.Session)) func() {
	m.Called(fn)
	return func() {}
}

type mockGateway struct {
	mock.Mock
}

func submitted(hash common.Hash, opts []contract.TxOption) {
	if cfg := contract.NewTxConfig(opts...); cfg.OnSubmitted != nil && hash != (common.Hash{}) {
		cfg.OnSubmitted(hash)
	}
}

func (m *mockGateway) GetItem(ctx context.Context, itemID uint64) (*contract.ChainItem, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*contract.ChainItem)
	return item, args.Error(1)
}

func (m *mockGateway) ListItem(ctx context.Context, p contract.ListItemParams, opts ...contract.TxOption) (*contract.ListResult, error) {
	args := m.Called(ctx, p)
	res, _ := args.Get(0).(*contract.ListResult)
	if res != nil {
		submitted(res.TxHash, opts)
	}
	return res, args.Error(1)
}

func (m *mockGateway) BuyItem(ctx context.Context, itemID uint64, priceWei *big.Int, opts ...contract.TxOption) (common.Hash, error) {
	args := m.Called(ctx, itemID, priceWei)
	hash := args.Get(0).(common.Hash)
	submitted(hash, opts)
	return hash, args.Error(1)
}

func (m *mockGateway) ConfirmReceipt(ctx context.Context, itemID uint64, opts ...contract.TxOption) (common.Hash, error) {
	args := m.Called(ctx, itemID)
	hash := args.Get(0).(common.Hash)
	submitted(hash, opts)
	return hash, args.Error(1)
}

func (m *mockGateway) CancelListing(ctx context.Context, itemID uint64, opts ...contract.TxOption) (common.Hash, error) {
	args := m.Called(ctx, itemID)
	hash := args.Get(0).(common.Hash)
	submitted(hash, opts)
	return hash, args.Error(1)
}

func (m *mockGateway) UpdateItem(ctx context.Context, p contract.UpdateItemParams, opts ...contract.TxOption) (common.Hash, error) {
	args := m.Called(ctx, p)
	hash := args.Get(0).(common.Hash)
	submitted(hash, opts)
	return hash, args.Error(1)
}

type mockItemBackend struct {
	mock.Mock
}

func (m *mockItemBackend) ListItems(ctx context.Context, filter backend.ItemFilter) ([]models.Item, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]models.Item)
	return items, args.Error(1)
}

func (m *mockItemBackend) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.Item)
	if item != nil {
		copied := *item
		return &copied, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemBackend) CreateItem(ctx context.Context, req backend.CreateItemRequest) (*models.Item, error) {
	args := m.Called(ctx, req)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

func (m *mockItemBackend) UpdateItem(ctx context.Context, id int64, req backend.UpdateItemRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockItemBackend) UpdateItemStatus(ctx context.Context, id int64, update backend.StatusUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *mockItemBackend) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename)
	return args.String(0), args.Error(1)
}

func (m *mockItemBackend) RecordPurchase(ctx context.Context, record backend.PurchaseRecord) error {
	return m.Called(ctx, record).Error(0)
}

type mockSocialBackend struct {
	mock.Mock
}

func (m *mockSocialBackend) AddLike(ctx context.Context, itemID int64, uid string) error {
	return m.Called(ctx, itemID, uid).Error(0)
}

func (m *mockSocialBackend) RemoveLike(ctx context.Context, itemID int64, uid string) error {
	return m.Called(ctx, itemID, uid).Error(0)
}

func (m *mockSocialBackend) LikeStatus(ctx context.Context, itemID int64, uid string) (*models.LikeStatus, error) {
	args := m.Called(ctx, itemID, uid)
	status, _ := args.Get(0).(*models.LikeStatus)
	return status, args.Error(1)
}

func (m *mockSocialBackend) UserLikes(ctx context.Context, uid string) ([]int64, error) {
	args := m.Called(ctx, uid)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockSocialBackend) Messages(ctx context.Context, myUID, partnerUID string) ([]models.Message, error) {
	args := m.Called(ctx, myUID, partnerUID)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *mockSocialBackend) SendMessage(ctx context.Context, senderUID, receiverUID, content string) (*models.Message, error) {
	args := m.Called(ctx, senderUID, receiverUID, content)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockSocialBackend) MarkRead(ctx context.Context, myUID, partnerUID string) error {
	return m.Called(ctx, myUID, partnerUID).Error(0)
}

func (m *mockSocialBackend) Conversations(ctx context.Context, uid string) ([]models.Conversation, error) {
	args := m.Called(ctx, uid)
	convs, _ := args.Get(0).([]models.Conversation)
	return convs, args.Error(1)
}

func (m *mockSocialBackend) Register(ctx context.Context, reg models.UserRegistration) error {
	return m.Called(ctx, reg).Error(0)
}

func (m *mockSocialBackend) User(ctx context.Context, uid string) (*models.UserRegistration, error) {
	args := m.Called(ctx, uid)
	u, _ := args.Get(0).(*models.UserRegistration)
	return u, args.Error(1)
}
