// internal/contract/status.go
package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frima-market/frima-gateway/internal/models"
)

// Status is the on-chain item status.
type Status uint8

const (
	StatusListed Status = iota
	StatusPurchased
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusListed:
		return "listed"
	case StatusPurchased:
		return "purchased"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ItemStatus maps the chain status onto the local item status.
func (s Status) ItemStatus() (models.ItemStatus, bool) {
	switch s {
	case StatusListed:
		return models.ItemStatusListed, true
	case StatusPurchased:
		return models.ItemStatusPurchased, true
	case StatusCompleted:
		return models.ItemStatusCompleted, true
	case StatusCancelled:
		return models.ItemStatusCancelled, true
	}
	return "", false
}

// ChainItem mirrors the contract's Item tuple field for field.
type ChainItem struct {
	ItemId      *big.Int
	TokenId     *big.Int
	Title       string
	Price       *big.Int
	Explanation string
	ImageUrl    string
	Uid         string
	CreatedAt   *big.Int
	UpdatedAt   *big.Int
	IsPurchased bool
	Category    string
	Seller      common.Address
	Buyer       common.Address
	Status      uint8
}

// Exists reports whether the read hit a stored item; the contract returns
// a zero tuple for unknown ids.
func (i *ChainItem) Exists() bool {
	return i != nil && i.ItemId != nil && i.ItemId.Sign() > 0
}

func (i *ChainItem) ItemStatus() Status {
	return Status(i.Status)
}

// ItemListedEvent is the decoded ItemListed log.
type ItemListedEvent struct {
	ItemId      *big.Int
	TokenId     *big.Int
	Seller      common.Address
	Title       string
	Price       *big.Int
	Explanation string
	ImageUrl    string
	Uid         string
	CreatedAt   *big.Int
	Category    string
}
