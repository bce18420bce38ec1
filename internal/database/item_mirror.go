// internal/database/item_mirror.go
package database

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frima-market/frima-gateway/internal/models"
)

var ErrItemNotFound = errors.New("item not found in mirror")

// ItemQuery filters mirrored items. Zero values match everything.
type ItemQuery struct {
	Category string
	UID      string
	Keyword  string
	Limit    int
	Offset   int
}

// ItemMirror is the local copy of every item the gateway has seen. It is a
// cache of backend and chain state, never the source of truth.
type ItemMirror interface {
	Find(ctx context.Context, id int64) (*models.Item, error)
	Save(ctx context.Context, item *models.Item) error
	Search(ctx context.Context, q ItemQuery) ([]models.Item, int64, error)
}

type GormItemMirror struct {
	db *gorm.DB
}

func NewGormItemMirror(db *gorm.DB) *GormItemMirror {
	return &GormItemMirror{db: db}
}

func (m *GormItemMirror) Find(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := m.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save upserts by id.
func (m *GormItemMirror) Save(ctx context.Context, item *models.Item) error {
	item.SyncedAt = time.Now()
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(item).Error
}

func (m *GormItemMirror) Search(ctx context.Context, q ItemQuery) ([]models.Item, int64, error) {
	query := m.db.WithContext(ctx).Model(&models.Item{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.UID != "" {
		query = query.Where("uid = ?", q.UID)
	}
	if q.Keyword != "" {
		like := "%" + strings.ToLower(q.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(explanation) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	query = query.Order("created_at DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit).Offset(q.Offset)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MemoryItemMirror backs the gateway when no database is configured.
type MemoryItemMirror struct {
	mu    sync.RWMutex
	items map[int64]models.Item
}

func NewMemoryItemMirror() *MemoryItemMirror {
	return &MemoryItemMirror{items: make(map[int64]models.Item)}
}

func (m *MemoryItemMirror) Find(_ context.Context, id int64) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

func (m *MemoryItemMirror) Save(_ context.Context, item *models.Item) error {
	item.SyncedAt = time.Now()
	m.mu.Lock()
	m.items[item.ID] = *item
	m.mu.Unlock()
	return nil
}

func (m *MemoryItemMirror) Search(_ context.Context, q ItemQuery) ([]models.Item, int64, error) {
	m.mu.RLock()
	var matched []models.Item
	for _, item := range m.items {
		if q.Category != "" && item.Category != q.Category {
			continue
		}
		if q.UID != "" && item.UID != q.UID {
			continue
		}
		if q.Keyword != "" && !MatchesKeyword(item, q.Keyword) {
			continue
		}
		matched = append(matched, item)
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if q.Limit > 0 {
		start := q.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + q.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

// MatchesKeyword reports whether the keyword occurs in the title or
// explanation, case-insensitively.
func MatchesKeyword(item models.Item, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Title), keyword) ||
		strings.Contains(strings.ToLower(item.Explanation), keyword)
}
