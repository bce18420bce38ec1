// internal/services/item_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/database"
	"github.com/frima-market/frima-gateway/internal/models"
)

func TestItemGetKeepsHintWhileBackendLags(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	mirror := database.NewMemoryItemMirror()
	svc := NewItemService(b, mirror, nil)

	hinted := listedItem()
	svc.ApplyHint(ctx, hinted, models.ItemStatusPurchased)
	b.On("GetItem", mock.Anything, int64(7)).Return(listedItem(), nil)

	item, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPurchased, item.Status)
	assert.True(t, item.IsPurchased)
	assert.True(t, item.StatusHint)
}

func TestItemGetDropsHintOnceBackendCatchesUp(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	mirror := database.NewMemoryItemMirror()
	svc := NewItemService(b, mirror, nil)

	svc.ApplyHint(ctx, listedItem(), models.ItemStatusPurchased)
	completed := listedItem()
	completed.ApplyStatus(models.ItemStatusCompleted)
	b.On("GetItem", mock.Anything, int64(7)).Return(completed, nil)

	item, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCompleted, item.Status)
	assert.False(t, item.StatusHint)
}

func TestItemGetChainStatusWins(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	chain := &mockGateway{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), chain)

	b.On("GetItem", mock.Anything, int64(7)).Return(listedItem(), nil)
	chain.On("GetItem", mock.Anything, uint64(42)).Return(chainItem(contract.StatusCancelled, 3000), nil)

	item, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCancelled, item.Status)
	assert.False(t, item.StatusHint)
}

func TestItemGetIgnoresUnreadableChain(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	chain := &mockGateway{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), chain)

	b.On("GetItem", mock.Anything, int64(7)).Return(listedItem(), nil)
	chain.On("GetItem", mock.Anything, uint64(42)).Return(nil, errors.New("dial tcp: connection refused"))

	item, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusListed, item.Status)
}

func TestItemGetServesMirrorWhenBackendDown(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	mirror := database.NewMemoryItemMirror()
	require.NoError(t, mirror.Save(ctx, listedItem()))
	svc := NewItemService(b, mirror, nil)

	b.On("GetItem", mock.Anything, int64(7)).Return(nil, errors.New("503 service unavailable"))

	item, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Camera", item.Title)
}

func TestItemGetNotFound(t *testing.T) {
	b := &mockItemBackend{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), nil)
	b.On("GetItem", mock.Anything, int64(99)).Return(nil, fmt.Errorf("GET /items/99: %w", backend.ErrNotFound))

	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemGetBackendErrorWithoutMirror(t *testing.T) {
	b := &mockItemBackend{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), nil)
	b.On("GetItem", mock.Anything, int64(7)).Return(nil, errors.New("timeout"))

	_, err := svc.Get(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrItemNotFound)
}

func catalog() []models.Item {
	return []models.Item{
		{ID: 1, Title: "Film camera", Explanation: "35mm", Category: "electronics", Status: models.ItemStatusListed},
		{ID: 2, Title: "Desk lamp", Explanation: "LED", Category: "furniture", Status: models.ItemStatusListed},
		{ID: 3, Title: "Camera bag", Explanation: "Fits two lenses", Category: "fashion", Status: models.ItemStatusListed},
		{ID: 4, Title: "Tripod", Explanation: "For any camera", Category: "electronics", Status: models.ItemStatusListed},
	}
}

func TestItemListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), nil)
	b.On("ListItems", mock.Anything, backend.ItemFilter{}).Return(catalog(), nil)

	items, total, err := svc.List(ctx, ItemListQuery{Search: "CAMERA", Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(3), items[1].ID)

	items, _, err = svc.List(ctx, ItemListQuery{Search: "camera", Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].ID)

	items, total, err = svc.List(ctx, ItemListQuery{Search: "camera", Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(3), total)
}

func TestItemListAppliesHints(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), nil)

	sold := catalog()[1]
	svc.ApplyHint(ctx, &sold, models.ItemStatusPurchased)
	b.On("ListItems", mock.Anything, backend.ItemFilter{Category: "furniture"}).Return([]models.Item{catalog()[1]}, nil)

	items, _, err := svc.List(ctx, ItemListQuery{Category: "furniture"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsPurchased)
}

func TestItemListFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	b := &mockItemBackend{}
	svc := NewItemService(b, database.NewMemoryItemMirror(), nil)

	b.On("ListItems", mock.Anything, backend.ItemFilter{}).Return(catalog(), nil).Once()
	_, _, err := svc.List(ctx, ItemListQuery{})
	require.NoError(t, err)

	b.On("ListItems", mock.Anything, backend.ItemFilter{Category: "electronics"}).Return(nil, errors.New("connection reset"))
	items, total, err := svc.List(ctx, ItemListQuery{Category: "electronics"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{3, 50, 3, 50},
		{-1, 101, 1, 20},
		{2, 100, 2, 100},
	}
	for _, tt := range tests {
		page, limit := normalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}
