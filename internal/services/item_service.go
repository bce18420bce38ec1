// internal/services/item_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/database"
	"github.com/frima-market/frima-gateway/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

// ItemService serves item reads. The backend record is the base, optimistic
// hints from confirmed transactions cover the backend's ingestion lag, and
// the contract's status wins over both.
type ItemService struct {
	backend ItemBackend
	mirror  database.ItemMirror
	chain   ChainReader
	log     *logrus.Entry
}

type ItemListQuery struct {
	Category string
	UID      string
	Latest   bool
	Search   string
	Page     int
	Limit    int
}

func NewItemService(b ItemBackend, mirror database.ItemMirror, chain ChainReader) *ItemService {
	return &ItemService{
		backend: b,
		mirror:  mirror,
		chain:   chain,
		log:     logrus.WithField("component", "items"),
	}
}

// Get returns the reconciled item.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	cached, _ := s.mirror.Find(ctx, id)

	item, err := s.backend.GetItem(ctx, id)
	switch {
	case err == nil:
		mergeHint(item, cached)
	case cached != nil:
		s.log.WithError(err).WithField("item_id", id).Warn("Backend read failed, serving mirrored item")
		item = cached
	case errors.Is(err, backend.ErrNotFound):
		return nil, ErrItemNotFound
	default:
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	s.overlayChain(ctx, item)
	s.save(ctx, item)
	return item, nil
}

// List returns one page of items and the total before paging. When the
// backend is unreachable the mirror answers instead.
func (s *ItemService) List(ctx context.Context, q ItemListQuery) ([]models.Item, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	items, err := s.backend.ListItems(ctx, backend.ItemFilter{Category: q.Category, UID: q.UID, Latest: q.Latest})
	if err != nil {
		s.log.WithError(err).Warn("Backend list failed, serving mirrored items")
		mirrored, total, mErr := s.mirror.Search(ctx, database.ItemQuery{
			Category: q.Category,
			UID:      q.UID,
			Keyword:  q.Search,
			Limit:    limit,
			Offset:   (page - 1) * limit,
		})
		if mErr != nil {
			return nil, 0, fmt.Errorf("failed to list items: %w", err)
		}
		return mirrored, total, nil
	}

	matched := make([]models.Item, 0, len(items))
	for i := range items {
		item := &items[i]
		if cached, _ := s.mirror.Find(ctx, item.ID); cached != nil {
			mergeHint(item, cached)
		}
		s.save(ctx, item)
		if database.MatchesKeyword(*item, q.Search) {
			matched = append(matched, *item)
		}
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Item{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ApplyHint records a status the user just confirmed on chain, ahead of the
// backend catching up.
func (s *ItemService) ApplyHint(ctx context.Context, item *models.Item, status models.ItemStatus) {
	item.ApplyStatus(status)
	item.StatusHint = true
	s.save(ctx, item)
}

// Reconcile re-reads an item after a write so the mirror converges on the
// backend and chain values.
func (s *ItemService) Reconcile(ctx context.Context, id int64) {
	if _, err := s.Get(ctx, id); err != nil {
		s.log.WithError(err).WithField("item_id", id).Warn("Reconciling read failed")
	}
}

func (s *ItemService) overlayChain(ctx context.Context, item *models.Item) {
	if s.chain == nil || !item.OnChain() {
		return
	}
	chainItem, err := s.chain.GetItem(ctx, *item.ChainItemID)
	if err != nil {
		s.log.WithError(err).WithField("chain_item_id", *item.ChainItemID).Debug("On-chain status unavailable")
		return
	}
	if !chainItem.Exists() {
		return
	}
	if status, ok := chainItem.ItemStatus().ItemStatus(); ok {
		item.ApplyStatus(status)
		item.StatusHint = false
	}
}

func (s *ItemService) save(ctx context.Context, item *models.Item) {
	item.SyncedAt = time.Now()
	if err := s.mirror.Save(ctx, item); err != nil {
		s.log.WithError(err).WithField("item_id", item.ID).Warn("Failed to mirror item")
	}
}

// mergeHint keeps an optimistic status while the backend still reports an
// earlier stage of the lifecycle.
func mergeHint(item, cached *models.Item) {
	if cached == nil || !cached.StatusHint {
		return
	}
	if statusRank(cached.EffectiveStatus()) > statusRank(item.EffectiveStatus()) {
		item.ApplyStatus(cached.Status)
		item.StatusHint = true
		if item.TxHash == "" {
			item.TxHash = cached.TxHash
		}
	}
}

func statusRank(s models.ItemStatus) int {
	switch s {
	case models.ItemStatusPurchased:
		return 1
	case models.ItemStatusCompleted, models.ItemStatusCancelled:
		return 2
	}
	return 0
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
