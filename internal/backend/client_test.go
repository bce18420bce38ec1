// internal/backend/client_test.go
package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frima-market/frima-gateway/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", 5*time.Second)
}

func TestListItemsFilters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "books", r.URL.Query().Get("category"))
		assert.Equal(t, "u1", r.URL.Query().Get("uid"))
		w.Write([]byte(`[{"id":1,"title":"Go book","price":1200,"uid":"u1","ifPurchased":true,"category":"books","created_at":"2024-05-01T10:00:00Z"}]`))
	})

	items, err := client.ListItems(context.Background(), ItemFilter{Category: "books", UID: "u1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1200), items[0].Price)
	assert.True(t, items[0].IsPurchased)
	assert.Equal(t, models.ItemStatusPurchased, items[0].EffectiveStatus())
}

func TestListLatestItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/latest", r.URL.Path)
		w.Write([]byte(`[]`))
	})

	items, err := client.ListItems(context.Background(), ItemFilter{Latest: true})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetItemNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"item not found"}`))
	})

	_, err := client.GetItem(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "item not found", apiErr.Message)
}

func TestErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.RecordPurchase(context.Background(), PurchaseRecord{ItemID: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestCreateItemMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Camera", r.FormValue("title"))
		assert.Equal(t, "12000", r.FormValue("price"))
		assert.Equal(t, "7", r.FormValue("chain_item_id"))
		assert.Equal(t, "0xabc", r.FormValue("tx_hash"))
		assert.Equal(t, "https://img.example/1.png", r.FormValue("image_url"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":55,"title":"Camera","price":12000,"chain_item_id":7}`))
	})

	item, err := client.CreateItem(context.Background(), CreateItemRequest{
		Title: "Camera", Price: 12000, Category: "electronics", UID: "u1",
		ImageURL: "https://img.example/1.png", ChainItemID: 7, TxHash: "0xabc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), item.ID)
	assert.True(t, item.OnChain())
}

func TestCreateItemWithoutChainID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["chain_item_id"]
		assert.False(t, present)
		w.Write([]byte(`{"id":56}`))
	})

	item, err := client.CreateItem(context.Background(), CreateItemRequest{Title: "Lamp", Price: 100})
	require.NoError(t, err)
	assert.False(t, item.OnChain())
}

func TestUploadImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "photo.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))
		w.Write([]byte(`{"url":"https://img.example/photo.png"}`))
	})

	url, err := client.UploadImage(context.Background(), "photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/photo.png", url)
}

func TestRecordPurchasePayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/purchase", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 3, body["item_id"])
		assert.Equal(t, "buyer", body["buyer_uid"])
		assert.Equal(t, "0xfeed", body["tx_hash"])
		w.Write([]byte(`{"message":"ok"}`))
	})

	err := client.RecordPurchase(context.Background(), PurchaseRecord{ItemID: 3, BuyerUID: "buyer", TxHash: "0xfeed"})
	assert.NoError(t, err)
}

func TestLikesAndMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/likes/status":
			assert.Equal(t, "9", r.URL.Query().Get("item_id"))
			w.Write([]byte(`{"liked":true,"count":4}`))
		case "/likes":
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "u1", r.URL.Query().Get("uid"))
			w.Write([]byte(`{"message":"removed"}`))
		case "/messages/conversations":
			w.Write([]byte(`[{"partner_uid":"p","last_message":"hi","last_message_at":"2024-05-01T10:00:00Z","unread_count":2}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	status, err := client.LikeStatus(context.Background(), 9, "u1")
	require.NoError(t, err)
	assert.True(t, status.Liked)
	assert.Equal(t, int64(4), status.Count)

	require.NoError(t, client.RemoveLike(context.Background(), 9, "u1"))

	conversations, err := client.Conversations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 2, conversations[0].UnreadCount)
}
