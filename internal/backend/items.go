// internal/backend/items.go
package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frima-market/frima-gateway/internal/models"
)

type ItemFilter struct {
	Category string
	UID      string
	Latest   bool
}

type CreateItemRequest struct {
	Title       string
	Price       int64
	Explanation string
	Category    string
	UID         string
	ImageURL    string
	ChainItemID uint64
	TxHash      string
}

type UpdateItemRequest struct {
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Explanation string `json:"explanation"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
}

type StatusUpdate struct {
	Status models.ItemStatus `json:"status"`
	TxHash string            `json:"tx_hash,omitempty"`
}

type PurchaseRecord struct {
	ItemID   int64  `json:"item_id"`
	BuyerUID string `json:"buyer_uid"`
	TxHash   string `json:"tx_hash"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *Client) ListItems(ctx context.Context, filter ItemFilter) ([]models.Item, error) {
	path := "/items"
	if filter.Latest {
		path = "/items/latest"
	}
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.UID != "" {
		query.Set("uid", filter.UID)
	}

	var items []models.Item
	if err := c.get(ctx, path, query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := c.get(ctx, "/items/"+strconv.FormatInt(id, 10), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem records a listing. ChainItemID 0 is sent as absent.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*models.Item, error) {
	fields := map[string]string{
		"title":       req.Title,
		"price":       strconv.FormatInt(req.Price, 10),
		"explanation": req.Explanation,
		"category":    req.Category,
		"uid":         req.UID,
	}
	if req.ImageURL != "" {
		fields["image_url"] = req.ImageURL
	}
	if req.ChainItemID > 0 {
		fields["chain_item_id"] = strconv.FormatUint(req.ChainItemID, 10)
	}
	if req.TxHash != "" {
		fields["tx_hash"] = req.TxHash
	}

	var item models.Item
	if err := c.doForm(ctx, "/items", fields, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/items/"+strconv.FormatInt(id, 10), nil, req, nil)
}

func (c *Client) UpdateItemStatus(ctx context.Context, id int64, update StatusUpdate) error {
	return c.doJSON(ctx, http.MethodPut, "/items/"+strconv.FormatInt(id, 10)+"/status", nil, update, nil)
}

// UploadImage stores an item image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var resp uploadResponse
	if err := c.doForm(ctx, "/upload", nil, &formFile{field: "image", filename: filename, content: content}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) RecordPurchase(ctx context.Context, record PurchaseRecord) error {
	return c.doJSON(ctx, http.MethodPost, "/purchase", nil, record, nil)
}
