// internal/models/common.go
package models

// Enums
type ItemStatus string

const (
	ItemStatusListed    ItemStatus = "listed"
	ItemStatusPurchased ItemStatus = "purchased"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusCancelled ItemStatus = "cancelled"
)

// IsSold reports whether the item has left the listed state through a purchase.
func (s ItemStatus) IsSold() bool {
	return s == ItemStatusPurchased || s == ItemStatusCompleted
}

type Sex string

const (
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
	SexOther       Sex = "other"
	SexUnspecified Sex = "unspecified"
)

// Categories offered by the listing form.
var Categories = []string{
	"fashion",
	"electronics",
	"books",
	"hobby",
	"home",
	"sports",
	"beauty",
	"other",
}
