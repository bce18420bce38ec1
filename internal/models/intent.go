// internal/models/intent.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type FlowStep string

const (
	FlowStepForm       FlowStep = "form"
	FlowStepProcessing FlowStep = "processing"
	FlowStepConfirming FlowStep = "confirming"
	FlowStepSuccess    FlowStep = "success"
	FlowStepError      FlowStep = "error"
)

// InFlight reports whether a transaction may be outstanding.
func (s FlowStep) InFlight() bool {
	return s == FlowStepProcessing || s == FlowStepConfirming
}

func (s FlowStep) IsTerminal() bool {
	return s == FlowStepSuccess || s == FlowStepError
}

type IntentKind string

const (
	IntentPurchase       IntentKind = "purchase"
	IntentListing        IntentKind = "listing"
	IntentConfirmReceipt IntentKind = "confirm_receipt"
	IntentCancelListing  IntentKind = "cancel_listing"
	IntentUpdateListing  IntentKind = "update_listing"
)

// TransactionIntent is the session-scoped record of one on-chain action. It is
// never persisted.
type TransactionIntent struct {
	ID           uuid.UUID  `json:"id"`
	Kind         IntentKind `json:"kind"`
	ItemID       int64      `json:"item_id,omitempty"`
	ChainItemID  uint64     `json:"chain_item_id,omitempty"`
	PriceWei     string     `json:"price_wei,omitempty"`
	Step         FlowStep   `json:"step"`
	Steps        []FlowStep `json:"steps"`
	TxHash       string     `json:"tx_hash,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Notice       string     `json:"notice,omitempty"`
	Warning      string     `json:"warning,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
