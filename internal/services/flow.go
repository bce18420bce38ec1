// internal/services/flow.go
package services

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/models"
)

var (
	ErrFlowBusy     = errors.New("a transaction is already in progress")
	ErrFlowNotFound = errors.New("no transaction in progress")
)

// GuardError is a precondition failure. The flow stays in form and the
// message is shown instead of a transition.
type GuardError struct {
	Key string
	Err error
}

func (e *GuardError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

func (e *GuardError) Message(lang string) string {
	return i18n.T(lang, e.Key)
}

func PurchaseKey(itemID int64) string { return fmt.Sprintf("purchase:%d", itemID) }
func ListingKey(uid string) string    { return "listing:" + uid }
func ReceiptKey(itemID int64) string  { return fmt.Sprintf("receipt:%d", itemID) }
func CancelKey(itemID int64) string   { return fmt.Sprintf("cancel:%d", itemID) }
func UpdateKey(itemID int64) string   { return fmt.Sprintf("update:%d", itemID) }

// Flow drives one transaction intent through
// form -> processing -> confirming -> success, or -> error.
type Flow struct {
	mu     sync.Mutex
	key    string
	intent models.TransactionIntent
}

func newFlow(key string, kind models.IntentKind) *Flow {
	return &Flow{
		key: key,
		intent: models.TransactionIntent{
			ID:        uuid.New(),
			Kind:      kind,
			Step:      models.FlowStepForm,
			Steps:     []models.FlowStep{models.FlowStepForm},
			UpdatedAt: time.Now(),
		},
	}
}

func (f *Flow) Key() string {
	return f.key
}

// Begin moves form (or a dismissed error) to processing. A second submit
// while a transaction is in flight returns ErrFlowBusy and changes nothing.
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.intent.Step {
	case models.FlowStepProcessing, models.FlowStepConfirming, models.FlowStepSuccess:
		return ErrFlowBusy
	case models.FlowStepError:
		f.move(models.FlowStepForm)
	}

	f.intent.TxHash = ""
	f.intent.ErrorKind = ""
	f.intent.ErrorMessage = ""
	f.intent.Notice = ""
	f.intent.Warning = ""
	f.move(models.FlowStepProcessing)
	return nil
}

// Describe records which item the intent is about.
func (f *Flow) Describe(itemID int64, chainItemID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intent.ItemID = itemID
	f.intent.ChainItemID = chainItemID
	f.intent.UpdatedAt = time.Now()
}

func (f *Flow) SetPrice(wei *big.Int) {
	if wei == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intent.PriceWei = wei.String()
	f.intent.UpdatedAt = time.Now()
}

// Submitted records the transaction hash and enters confirming.
func (f *Flow) Submitted(hash common.Hash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intent.TxHash = hash.Hex()
	if f.intent.Step == models.FlowStepProcessing {
		f.move(models.FlowStepConfirming)
	}
}

func (f *Flow) Succeed(notice, warning string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.intent.Step == models.FlowStepProcessing {
		f.move(models.FlowStepConfirming)
	}
	f.intent.Notice = notice
	f.intent.Warning = warning
	f.move(models.FlowStepSuccess)
}

// Fail ends the attempt. A user rejection returns to the form without an
// error banner.
func (f *Flow) Fail(cerr *ChainError, lang string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cerr == nil || cerr.Kind == KindUserRejected {
		f.intent.TxHash = ""
		f.move(models.FlowStepForm)
		return
	}
	f.intent.ErrorKind = cerr.Tag()
	f.intent.ErrorMessage = cerr.Message(lang)
	f.move(models.FlowStepError)
}

// Dismiss is the "back" action. It is a no-op while in flight, returns an
// error to the form, and reports destroyed for success or an untouched form.
func (f *Flow) Dismiss() (destroyed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.intent.Step {
	case models.FlowStepProcessing, models.FlowStepConfirming:
		return false
	case models.FlowStepError:
		f.intent.ErrorKind = ""
		f.intent.ErrorMessage = ""
		f.move(models.FlowStepForm)
		return false
	}
	return true
}

func (f *Flow) Step() models.FlowStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intent.Step
}

func (f *Flow) Snapshot() models.TransactionIntent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.intent
	out.Steps = append([]models.FlowStep(nil), f.intent.Steps...)
	return out
}

func (f *Flow) move(step models.FlowStep) {
	f.intent.Step = step
	f.intent.Steps = append(f.intent.Steps, step)
	f.intent.UpdatedAt = time.Now()
}

// FlowRegistry holds at most one flow per intent key.
type FlowRegistry struct {
	mu    sync.Mutex
	flows map[string]*Flow
}

func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{flows: make(map[string]*Flow)}
}

// Open returns the flow for key, starting a fresh one when none exists or
// the previous one already succeeded.
func (r *FlowRegistry) Open(key string, kind models.IntentKind) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flows[key]; ok && f.Step() != models.FlowStepSuccess {
		return f
	}
	f := newFlow(key, kind)
	r.flows[key] = f
	return f
}

func (r *FlowRegistry) Get(key string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[key]
	return f, ok
}

// Dismiss applies the back action and drops the flow when it is destroyed.
func (r *FlowRegistry) Dismiss(key string) (models.TransactionIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[key]
	if !ok {
		return models.TransactionIntent{}, ErrFlowNotFound
	}
	if f.Dismiss() {
		delete(r.flows, key)
	}
	return f.Snapshot(), nil
}

// Snapshots lists every open intent, oldest first.
func (r *FlowRegistry) Snapshots() []models.TransactionIntent {
	r.mu.Lock()
	out := make([]models.TransactionIntent, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f.Snapshot())
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out
}
