// internal/services/receipt_service.go
package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

// ReceiptService drives the post-purchase writes: the buyer confirming
// receipt and the seller cancelling a listing.
type ReceiptService struct {
	guard   chainGuard
	gateway MarketGateway
	backend ItemBackend
	items   *ItemService
	flows   *FlowRegistry
	log     *logrus.Entry
}

func NewReceiptService(w WalletSession, network wallet.Network, gateway MarketGateway, b ItemBackend, items *ItemService, flows *FlowRegistry) *ReceiptService {
	return &ReceiptService{
		guard:   chainGuard{wallet: w, network: network},
		gateway: gateway,
		backend: b,
		items:   items,
		flows:   flows,
		log:     logrus.WithField("component", "receipt"),
	}
}

type statusTx struct {
	key    string
	kind   models.IntentKind
	want   contract.Status
	result models.ItemStatus
	notice string
	send   func(ctx context.Context, chainID uint64, opts ...contract.TxOption) (common.Hash, error)
}

func (s *ReceiptService) ConfirmReceipt(ctx context.Context, itemID int64, lang string) (*models.TransactionIntent, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, item, lang, statusTx{
		key:    ReceiptKey(itemID),
		kind:   models.IntentConfirmReceipt,
		want:   contract.StatusPurchased,
		result: models.ItemStatusCompleted,
		notice: i18n.KeyItemReceiptConfirmed,
		send:   s.gateway.ConfirmReceipt,
	})
}

// CancelListing withdraws a listed item. Only its seller may cancel.
func (s *ReceiptService) CancelListing(ctx context.Context, itemID int64, uid, lang string) (*models.TransactionIntent, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UID != uid {
		return nil, &GuardError{Key: i18n.KeyItemNotOwner}
	}
	return s.run(ctx, item, lang, statusTx{
		key:    CancelKey(itemID),
		kind:   models.IntentCancelListing,
		want:   contract.StatusListed,
		result: models.ItemStatusCancelled,
		notice: i18n.KeyItemCancelled,
		send:   s.gateway.CancelListing,
	})
}

func (s *ReceiptService) Intent(key string) (*models.TransactionIntent, error) {
	flow, ok := s.flows.Get(key)
	if !ok {
		return nil, ErrFlowNotFound
	}
	return intentOf(flow), nil
}

func (s *ReceiptService) Dismiss(key string) (models.TransactionIntent, error) {
	return s.flows.Dismiss(key)
}

func (s *ReceiptService) run(ctx context.Context, item *models.Item, lang string, tx statusTx) (*models.TransactionIntent, error) {
	if !item.OnChain() {
		return nil, &GuardError{Key: i18n.KeyChainUnknownState, Err: ErrUnknownChainState}
	}

	flow := s.flows.Open(tx.key, tx.kind)
	if flow.Step().InFlight() {
		return nil, ErrFlowBusy
	}
	if err := s.guard.check(ctx); err != nil {
		return nil, err
	}
	if err := flow.Begin(); err != nil {
		return nil, err
	}
	chainID := *item.ChainItemID
	flow.Describe(item.ID, chainID)
	log := s.log.WithFields(logrus.Fields{"item_id": item.ID, "chain_item_id": chainID, "kind": tx.kind})

	if cerr := preflightStatus(ctx, s.gateway, chainID, tx.want, log); cerr != nil {
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}

	txCtx := context.WithoutCancel(ctx)
	hash, err := tx.send(txCtx, chainID, contract.OnSubmitted(flow.Submitted))
	if err != nil {
		cerr := NormalizeError(err)
		log.WithError(err).WithField("error_kind", cerr.Tag()).Warn("Transaction failed")
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}

	flow.Succeed(i18n.T(lang, tx.notice), "")
	log.WithField("tx_hash", hash.Hex()).Info("Item status changed")

	item.TxHash = hash.Hex()
	s.items.ApplyHint(txCtx, item, tx.result)
	if err := s.backend.UpdateItemStatus(txCtx, item.ID, backend.StatusUpdate{Status: tx.result, TxHash: hash.Hex()}); err != nil {
		log.WithError(err).Warn("Failed to report status to backend")
	}
	s.items.Reconcile(txCtx, item.ID)
	return intentOf(flow), nil
}
