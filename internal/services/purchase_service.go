// internal/services/purchase_service.go
package services

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

type PurchaseService struct {
	guard   chainGuard
	gateway MarketGateway
	backend ItemBackend
	items   *ItemService
	flows   *FlowRegistry
	log     *logrus.Entry
}

func NewPurchaseService(w WalletSession, network wallet.Network, gateway MarketGateway, b ItemBackend, items *ItemService, flows *FlowRegistry) *PurchaseService {
	return &PurchaseService{
		guard:   chainGuard{wallet: w, network: network},
		gateway: gateway,
		backend: b,
		items:   items,
		flows:   flows,
		log:     logrus.WithField("component", "purchase"),
	}
}

// Purchase buys an item on chain for buyerUID. Guard failures return a
// GuardError with the flow left in form; a second call while the first is
// in flight returns ErrFlowBusy. Transaction failures are reported through
// the returned intent, not the error.
func (s *PurchaseService) Purchase(ctx context.Context, itemID int64, buyerUID, lang string) (*models.TransactionIntent, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	flow := s.flows.Open(PurchaseKey(itemID), models.IntentPurchase)
	if flow.Step().InFlight() {
		return nil, ErrFlowBusy
	}
	if err := s.guard.check(ctx); err != nil {
		return nil, err
	}
	if !item.OnChain() {
		return nil, &GuardError{Key: i18n.KeyChainUnknownState, Err: ErrUnknownChainState}
	}
	if item.Price <= 0 {
		return nil, &GuardError{Key: i18n.KeyItemPriceInvalid}
	}

	if err := flow.Begin(); err != nil {
		return nil, err
	}
	chainID := *item.ChainItemID
	flow.Describe(itemID, chainID)
	log := s.log.WithFields(logrus.Fields{"item_id": itemID, "chain_item_id": chainID})

	priceWei, cerr := s.preflight(ctx, item, log)
	if cerr != nil {
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}
	flow.SetPrice(priceWei)

	// The purchase outlives the request that started it.
	txCtx := context.WithoutCancel(ctx)
	hash, err := s.gateway.BuyItem(txCtx, chainID, priceWei, contract.OnSubmitted(flow.Submitted))
	if err != nil {
		cerr := NormalizeError(err)
		log.WithError(err).WithField("kind", cerr.Tag()).Warn("Purchase failed")
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}

	flow.Succeed(i18n.T(lang, i18n.KeyItemPurchased), "")
	log.WithField("tx_hash", hash.Hex()).Info("Item purchased")

	item.TxHash = hash.Hex()
	s.items.ApplyHint(txCtx, item, models.ItemStatusPurchased)
	s.record(txCtx, itemID, buyerUID, hash, log)
	s.items.Reconcile(txCtx, itemID)

	return intentOf(flow), nil
}

// Intent returns the current purchase intent for an item.
func (s *PurchaseService) Intent(itemID int64) (*models.TransactionIntent, error) {
	flow, ok := s.flows.Get(PurchaseKey(itemID))
	if !ok {
		return nil, ErrFlowNotFound
	}
	return intentOf(flow), nil
}

func (s *PurchaseService) Dismiss(itemID int64) (models.TransactionIntent, error) {
	return s.flows.Dismiss(PurchaseKey(itemID))
}

// preflight reads the on-chain item. A read failure falls back to the local
// fiat price; an item that is not listed stops the purchase.
func (s *PurchaseService) preflight(ctx context.Context, item *models.Item, log *logrus.Entry) (*big.Int, *ChainError) {
	chainItem, err := s.gateway.GetItem(ctx, *item.ChainItemID)
	if err != nil {
		log.WithError(err).Warn("Pre-flight read failed, using local price")
		return contract.FiatToNative(item.Price), nil
	}
	if !chainItem.Exists() {
		return nil, NormalizeError(ErrUnknownChainState)
	}
	if status := chainItem.ItemStatus(); status != contract.StatusListed {
		return nil, StatusError(contract.StatusListed, status)
	}
	if chainItem.Price == nil || chainItem.Price.Sign() <= 0 {
		return contract.FiatToNative(item.Price), nil
	}
	return new(big.Int).Set(chainItem.Price), nil
}

func (s *PurchaseService) record(ctx context.Context, itemID int64, buyerUID string, hash common.Hash, log *logrus.Entry) {
	err := s.backend.RecordPurchase(ctx, backend.PurchaseRecord{ItemID: itemID, BuyerUID: buyerUID, TxHash: hash.Hex()})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Warn("Failed to record purchase with backend")
	}
}

func intentOf(f *Flow) *models.TransactionIntent {
	snap := f.Snapshot()
	return &snap
}
