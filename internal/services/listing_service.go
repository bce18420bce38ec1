// internal/services/listing_service.go
package services

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

type ListingService struct {
	guard   chainGuard
	gateway MarketGateway
	backend ItemBackend
	items   *ItemService
	flows   *FlowRegistry
	log     *logrus.Entry
}

type ListingRequest struct {
	UID         string
	Title       string
	Price       string
	Explanation string
	Category    string
	ImageName   string
	Image       io.Reader
}

type UpdateListingRequest struct {
	Title       string
	Price       string
	Explanation string
	Category    string
	ImageURL    string
}

func NewListingService(w WalletSession, network wallet.Network, gateway MarketGateway, b ItemBackend, items *ItemService, flows *FlowRegistry) *ListingService {
	return &ListingService{
		guard:   chainGuard{wallet: w, network: network},
		gateway: gateway,
		backend: b,
		items:   items,
		flows:   flows,
		log:     logrus.WithField("component", "listing"),
	}
}

// List uploads the image to the backend, lists the item on chain and then
// records it with the backend under the on-chain id.
func (s *ListingService) List(ctx context.Context, req ListingRequest, lang string) (*models.TransactionIntent, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Explanation) == "" || req.Category == "" {
		return nil, &GuardError{Key: i18n.KeyItemFieldsRequired}
	}
	if req.Image == nil {
		return nil, &GuardError{Key: i18n.KeyItemImageRequired}
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	flow := s.flows.Open(ListingKey(req.UID), models.IntentListing)
	if flow.Step().InFlight() {
		return nil, ErrFlowBusy
	}
	if err := s.guard.check(ctx); err != nil {
		return nil, err
	}
	if err := flow.Begin(); err != nil {
		return nil, err
	}
	flow.SetPrice(contract.FiatToNative(price))
	log := s.log.WithField("uid", req.UID)

	txCtx := context.WithoutCancel(ctx)
	imageURL, err := s.backend.UploadImage(txCtx, req.ImageName, req.Image)
	if err != nil {
		log.WithError(err).Warn("Image upload failed")
		flow.Fail(NormalizeError(err), lang)
		return intentOf(flow), nil
	}

	result, err := s.gateway.ListItem(txCtx, contract.ListItemParams{
		Title:       req.Title,
		Price:       price,
		Explanation: req.Explanation,
		ImageURL:    imageURL,
		UID:         req.UID,
		Category:    req.Category,
		TokenURI:    imageURL,
	}, contract.OnSubmitted(flow.Submitted))
	if err != nil {
		cerr := NormalizeError(err)
		log.WithError(err).WithField("kind", cerr.Tag()).Warn("Listing failed")
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}

	log = log.WithFields(logrus.Fields{"tx_hash": result.TxHash.Hex(), "chain_item_id": result.ItemID})
	var warning string
	if result.ItemID == 0 {
		warning = i18n.T(lang, i18n.KeyItemIDMissing)
	}

	created, err := s.backend.CreateItem(txCtx, backend.CreateItemRequest{
		Title:       req.Title,
		Price:       price,
		Explanation: req.Explanation,
		Category:    req.Category,
		UID:         req.UID,
		ImageURL:    imageURL,
		ChainItemID: result.ItemID,
		TxHash:      result.TxHash.Hex(),
	})
	if err != nil {
		log.WithError(err).Warn("Backend did not record the listing")
		if warning == "" {
			warning = i18n.T(lang, i18n.KeyItemBackendLagging)
		}
		flow.Describe(0, result.ItemID)
		flow.Succeed(i18n.T(lang, i18n.KeyItemListed), warning)
		return intentOf(flow), nil
	}

	if created.ChainItemID == nil && result.ItemID > 0 {
		id := result.ItemID
		created.ChainItemID = &id
	}
	if created.TxHash == "" {
		created.TxHash = result.TxHash.Hex()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	s.items.save(txCtx, created)

	flow.Describe(created.ID, result.ItemID)
	flow.Succeed(i18n.T(lang, i18n.KeyItemListed), warning)
	log.WithField("item_id", created.ID).Info("Item listed")
	return intentOf(flow), nil
}

// Current returns the seller's listing intent.
func (s *ListingService) Current(uid string) (*models.TransactionIntent, error) {
	flow, ok := s.flows.Get(ListingKey(uid))
	if !ok {
		return nil, ErrFlowNotFound
	}
	return intentOf(flow), nil
}

func (s *ListingService) Dismiss(uid string) (models.TransactionIntent, error) {
	return s.flows.Dismiss(ListingKey(uid))
}

// Update rewrites a listed item on chain, then mirrors the change to the
// backend.
func (s *ListingService) Update(ctx context.Context, itemID int64, uid string, req UpdateListingRequest, lang string) (*models.TransactionIntent, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Explanation) == "" || req.Category == "" {
		return nil, &GuardError{Key: i18n.KeyItemFieldsRequired}
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UID != uid {
		return nil, &GuardError{Key: i18n.KeyItemNotOwner}
	}
	if !item.OnChain() {
		return nil, &GuardError{Key: i18n.KeyChainUnknownState, Err: ErrUnknownChainState}
	}

	flow := s.flows.Open(UpdateKey(itemID), models.IntentUpdateListing)
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
	flow.Describe(itemID, chainID)
	flow.SetPrice(contract.FiatToNative(price))
	log := s.log.WithFields(logrus.Fields{"item_id": itemID, "chain_item_id": chainID})

	if cerr := preflightStatus(ctx, s.gateway, chainID, contract.StatusListed, log); cerr != nil {
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}

	imageURL := req.ImageURL
	if imageURL == "" && len(item.ImageURLs) > 0 {
		imageURL = item.ImageURLs[0]
	}

	txCtx := context.WithoutCancel(ctx)
	hash, err := s.gateway.UpdateItem(txCtx, contract.UpdateItemParams{
		ItemID:      chainID,
		Title:       req.Title,
		Price:       price,
		Explanation: req.Explanation,
		ImageURL:    imageURL,
		Category:    req.Category,
	}, contract.OnSubmitted(flow.Submitted))
	if err != nil {
		cerr := NormalizeError(err)
		log.WithError(err).WithField("kind", cerr.Tag()).Warn("Update failed")
		flow.Fail(cerr, lang)
		return intentOf(flow), nil
	}

	var warning string
	err = s.backend.UpdateItem(txCtx, itemID, backend.UpdateItemRequest{
		Title:       req.Title,
		Price:       price,
		Explanation: req.Explanation,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		TxHash:      hash.Hex(),
	})
	if err != nil {
		log.WithError(err).Warn("Backend did not record the update")
		warning = i18n.T(lang, i18n.KeyItemBackendLagging)
	}

	item.Title = req.Title
	item.Price = price
	item.Explanation = req.Explanation
	item.Category = req.Category
	if req.ImageURL != "" {
		item.ImageURLs = []string{req.ImageURL}
	}
	item.TxHash = hash.Hex()
	s.items.save(txCtx, item)

	flow.Succeed(i18n.T(lang, i18n.KeyItemUpdated), warning)
	s.items.Reconcile(txCtx, itemID)
	return intentOf(flow), nil
}

// preflightStatus checks the on-chain status before a write. An unreadable
// status does not block the write; the contract guards it anyway.
func preflightStatus(ctx context.Context, chain ChainReader, chainID uint64, want contract.Status, log *logrus.Entry) *ChainError {
	chainItem, err := chain.GetItem(ctx, chainID)
	if err != nil {
		log.WithError(err).Warn("Pre-flight read failed")
		return nil
	}
	if !chainItem.Exists() {
		return NormalizeError(ErrUnknownChainState)
	}
	if got := chainItem.ItemStatus(); got != want {
		return StatusError(want, got)
	}
	return nil
}

func parsePrice(text string) (int64, error) {
	price, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || price <= 0 {
		return 0, &GuardError{Key: i18n.KeyItemPriceInvalid, Err: err}
	}
	return price, nil
}
