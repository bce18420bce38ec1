// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess         = "success"
	KeyError           = "error"
	KeyInvalidRequest  = "common.invalid_request"
	KeyValidationError = "common.validation_error"
	KeyInternalError   = "common.internal_error"
	KeyNotFound        = "common.not_found"
	KeyRateLimited     = "common.rate_limited"

	// Authentication
	KeyAuthRequired             = "auth.required"
	KeyAuthInvalidToken         = "auth.invalid_token"
	KeyAuthTokenExpired         = "auth.token_expired"
	KeyAuthLoginSuccess         = "auth.login_success"
	KeyAuthRegistrationRequired = "auth.registration_required"
	KeyAuthUnavailable          = "auth.unavailable"

	// Users
	KeyUserRegistered     = "user.registered"
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserImageUploaded  = "user.image_uploaded"
	KeyUserImageInvalid   = "user.image_invalid"

	// Wallet
	KeyWalletConnected        = "wallet.connected"
	KeyWalletDisconnected     = "wallet.disconnected"
	KeyWalletNetworkSwitched  = "wallet.network_switched"
	KeyWalletNotConnected     = "wallet.not_connected"
	KeyWalletWrongNetwork     = "wallet.wrong_network"
	KeyWalletConnectRequested = "wallet.connect_requested"
	KeyWalletSwitchRequested  = "wallet.switch_requested"
	KeyWalletTransferSent     = "wallet.transfer_sent"
	KeyWalletInvalidAmount    = "wallet.invalid_amount"
	KeyWalletUnknownNetwork   = "wallet.unknown_network"

	// Items
	KeyItemNotFound         = "item.not_found"
	KeyItemFetchFailed      = "item.fetch_failed"
	KeyItemListed           = "item.listed"
	KeyItemUpdated          = "item.updated"
	KeyItemPurchased        = "item.purchased"
	KeyItemReceiptConfirmed = "item.receipt_confirmed"
	KeyItemCancelled        = "item.cancelled"
	KeyItemIDMissing        = "item.id_missing"
	KeyItemPriceInvalid     = "item.price_invalid"
	KeyItemFieldsRequired   = "item.fields_required"
	KeyItemImageRequired    = "item.image_required"
	KeyItemNotOwner         = "item.not_owner"
	KeyItemBackendLagging   = "item.backend_lagging"
	KeyFlowBusy             = "flow.busy"
	KeyFlowNotFound         = "flow.not_found"

	// Chain errors
	KeyChainProviderUnavailable = "chain.provider_unavailable"
	KeyChainUserRejected        = "chain.user_rejected"
	KeyChainRequestPending      = "chain.request_pending"
	KeyChainUnsupportedChain    = "chain.unsupported_chain"
	KeyChainUnknownState        = "chain.unknown_state"
	KeyChainUnknown             = "chain.unknown"
	KeyRevertSellerOwnItem      = "chain.revert.seller_own_item"
	KeyRevertInsufficientFunds  = "chain.revert.insufficient_funds"
	KeyRevertNotAvailable       = "chain.revert.not_available"
	KeyRevertNotListed          = "chain.revert.not_listed"
	KeyRevertAlreadyPurchased   = "chain.revert.already_purchased"
	KeyRevertCompleted          = "chain.revert.completed"
	KeyRevertCancelled          = "chain.revert.cancelled"
	KeyRevertReceiptGuard       = "chain.revert.receipt_guard"
	KeyRevertCancelGuard        = "chain.revert.cancel_guard"

	// Likes
	KeyLikeAdded   = "like.added"
	KeyLikeRemoved = "like.removed"

	// Messages
	KeyMessageSent     = "message.sent"
	KeyMessagesRead    = "message.read"
	KeyMessageSelf     = "message.self"
	KeyBackendFailed   = "backend.failed"
	KeyBackendNotFound = "backend.not_found"
)
