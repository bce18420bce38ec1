// internal/services/chain_errors.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/frima-market/frima-gateway/internal/backend"
	"github.com/frima-market/frima-gateway/internal/contract"
	"github.com/frima-market/frima-gateway/internal/i18n"
	"github.com/frima-market/frima-gateway/internal/wallet"
)

type ChainErrorKind string

const (
	KindProviderUnavailable   ChainErrorKind = "ProviderUnavailable"
	KindUserRejected          ChainErrorKind = "UserRejected"
	KindRequestAlreadyPending ChainErrorKind = "RequestAlreadyPending"
	KindUnsupportedChain      ChainErrorKind = "UnsupportedChain"
	KindContractRevert        ChainErrorKind = "ContractRevert"
	KindUnknownChainState     ChainErrorKind = "UnknownChainState"
	KindUnknown               ChainErrorKind = "Unknown"
)

// Revert reasons recognised in contract and node error text.
const (
	ReasonSellerOwnItem     = "seller_own_item"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonNotAvailable      = "not_available"
	ReasonNotListed         = "not_listed"
	ReasonAlreadyPurchased  = "already_purchased"
	ReasonCompleted         = "completed"
	ReasonCancelled         = "cancelled"
	ReasonReceiptGuard      = "receipt_guard"
	ReasonCancelGuard       = "cancel_guard"
)

// ErrUnknownChainState marks an on-chain item that is missing or unreadable.
var ErrUnknownChainState = errors.New("on-chain item state unknown")

// ChainError is the single categorized form of every wallet, provider and
// contract failure the flows surface.
type ChainError struct {
	Kind   ChainErrorKind
	Reason string
	Key    string
	// Detail is the raw text shown for unmatched failures.
	Detail string
	Err    error
}

func (e *ChainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Tag(), e.Detail)
	}
	return e.Tag()
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Tag renders the variant, e.g. "ContractRevert:seller_own_item".
func (e *ChainError) Tag() string {
	if e.Kind == KindContractRevert && e.Reason != "" {
		return string(e.Kind) + ":" + e.Reason
	}
	return string(e.Kind)
}

// Message is the user-facing text for the variant.
func (e *ChainError) Message(lang string) string {
	if e.Key == i18n.KeyChainUnknown {
		return i18n.T(lang, e.Key, e.Detail)
	}
	return i18n.T(lang, e.Key)
}

type revertPattern struct {
	reason   string
	key      string
	fragment []string
}

// Order matters: the more specific phrases are checked first.
var revertPatterns = []revertPattern{
	{ReasonSellerOwnItem, i18n.KeyRevertSellerOwnItem, []string{"seller cannot buy", "cannot buy your own", "cannot buy their own"}},
	{ReasonInsufficientFunds, i18n.KeyRevertInsufficientFunds, []string{"insufficient funds", "insufficient payment", "insufficient balance"}},
	{ReasonReceiptGuard, i18n.KeyRevertReceiptGuard, []string{"only buyer", "not purchased"}},
	{ReasonCancelGuard, i18n.KeyRevertCancelGuard, []string{"only seller", "cannot cancel"}},
	{ReasonAlreadyPurchased, i18n.KeyRevertAlreadyPurchased, []string{"already purchased", "already sold"}},
	{ReasonNotListed, i18n.KeyRevertNotListed, []string{"not listed"}},
	{ReasonNotAvailable, i18n.KeyRevertNotAvailable, []string{"not available", "item does not exist"}},
	{ReasonCompleted, i18n.KeyRevertCompleted, []string{"completed"}},
	{ReasonCancelled, i18n.KeyRevertCancelled, []string{"cancelled", "canceled"}},
}

// NormalizeError maps any error raised by the wallet, the provider or the
// contract onto a ChainError. A ChainError passes through unchanged.
func NormalizeError(err error) *ChainError {
	if err == nil {
		return nil
	}

	var cerr *ChainError
	if errors.As(err, &cerr) {
		return cerr
	}

	switch {
	case errors.Is(err, wallet.ErrUserRejected):
		return &ChainError{Kind: KindUserRejected, Key: i18n.KeyChainUserRejected, Err: err}
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return &ChainError{Kind: KindProviderUnavailable, Key: i18n.KeyChainProviderUnavailable, Err: err}
	case errors.Is(err, wallet.ErrRequestAlreadyPending):
		return &ChainError{Kind: KindRequestAlreadyPending, Key: i18n.KeyChainRequestPending, Err: err}
	case errors.Is(err, wallet.ErrUnsupportedChain):
		return &ChainError{Kind: KindUnsupportedChain, Key: i18n.KeyChainUnsupportedChain, Err: err}
	case errors.Is(err, ErrUnknownChainState):
		return &ChainError{Kind: KindUnknownChainState, Key: i18n.KeyChainUnknownState, Err: err}
	case errors.Is(err, wallet.ErrNotConnected):
		return &ChainError{Kind: KindUnknown, Key: i18n.KeyWalletNotConnected, Err: err}
	case errors.Is(err, contract.ErrWrongNetwork):
		return &ChainError{Kind: KindUnknown, Key: i18n.KeyWalletWrongNetwork, Err: err}
	}

	var apiErr *backend.APIError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &apiErr) {
		return unknownError(err)
	}

	if text, ok := revertText(err); ok {
		if p, ok := matchRevert(text); ok {
			return &ChainError{Kind: KindContractRevert, Reason: p.reason, Key: p.key, Err: err}
		}
	}

	// Status-only reverts carry no reason string.
	if errors.Is(err, contract.ErrTransactionFailed) {
		return &ChainError{Kind: KindUnknown, Key: i18n.KeyChainUnknown, Detail: "transaction reverted", Err: err}
	}
	return unknownError(err)
}

func unknownError(err error) *ChainError {
	return &ChainError{Kind: KindUnknown, Key: i18n.KeyChainUnknown, Detail: err.Error(), Err: err}
}

// revertText returns the text revert patterns may be matched against: decoded
// revert data, a node's execution-reverted message, a failed receipt, or the
// node's funds pre-check. Other errors never count as reverts.
func revertText(err error) (string, bool) {
	text := err.Error()
	if reason := revertReason(err); reason != "" {
		return reason + " " + text, true
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "execution reverted") ||
		strings.Contains(lower, "insufficient funds for gas") ||
		errors.Is(err, contract.ErrTransactionFailed) {
		return text, true
	}
	return "", false
}

// StatusError is the pre-flight failure for an on-chain item whose status is
// not the one the action needs.
func StatusError(want, got contract.Status) *ChainError {
	p := revertPatternFor(statusReason(want, got))
	return &ChainError{
		Kind:   KindContractRevert,
		Reason: p.reason,
		Key:    p.key,
		Err:    fmt.Errorf("item is %s, want %s", got, want),
	}
}

func statusReason(want, got contract.Status) string {
	switch got {
	case contract.StatusListed:
		if want == contract.StatusPurchased {
			return ReasonReceiptGuard
		}
		return ReasonNotAvailable
	case contract.StatusPurchased:
		return ReasonAlreadyPurchased
	case contract.StatusCompleted:
		return ReasonCompleted
	case contract.StatusCancelled:
		return ReasonCancelled
	}
	return ReasonNotAvailable
}

func revertPatternFor(reason string) revertPattern {
	for _, p := range revertPatterns {
		if p.reason == reason {
			return p
		}
	}
	return revertPattern{reason: ReasonNotAvailable, key: i18n.KeyRevertNotAvailable}
}

func matchRevert(text string) (revertPattern, bool) {
	lower := strings.ToLower(text)
	for _, p := range revertPatterns {
		for _, f := range p.fragment {
			if strings.Contains(lower, f) {
				return p, true
			}
		}
	}
	return revertPattern{}, false
}

// revertReason decodes Error(string) revert data attached to a JSON-RPC
// error, when the node returned any.
func revertReason(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return ""
	}
	data, decErr := hexutil.Decode(hexData)
	if decErr != nil {
		return ""
	}
	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		return ""
	}
	return reason
}
