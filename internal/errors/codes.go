package errors

// ErrorCode is a machine-readable error identifier consumed by the widget
// frontend to pick the right inline message or recovery path.
type ErrorCode string

// Input errors: recovered locally by the widget, shown inline.
const (
	ErrCodeInvalidAmount       ErrorCode = "invalid_amount"
	ErrCodeBelowMinimum        ErrorCode = "below_minimum"
	ErrCodeAboveMaximum        ErrorCode = "above_maximum"
	ErrCodeAboveAllocation     ErrorCode = "above_allocation"
	ErrCodeInsufficientBalance ErrorCode = "insufficient_balance"
)

// Wallet errors: surfaced to the user, purchase flow returns to idle.
const (
	ErrCodeWalletNotConnected ErrorCode = "wallet_not_connected"
	ErrCodeInvalidWallet      ErrorCode = "invalid_wallet"
	ErrCodeSigningRejected    ErrorCode = "signing_rejected"
)

// Purchase flow state errors.
const (
	ErrCodePurchaseInFlight ErrorCode = "purchase_in_flight"
	ErrCodeSupportRequired  ErrorCode = "support_required"
	ErrCodeSessionNotFound  ErrorCode = "session_not_found"
	ErrCodeNoPendingSigning ErrorCode = "no_pending_signing"
)

// Network errors: surfaced with attempt count; three consecutive
// occurrences route the session to the support-contact state.
const (
	ErrCodeRPCError            ErrorCode = "rpc_error"
	ErrCodeNetworkError        ErrorCode = "network_error"
	ErrCodeConfirmationTimeout ErrorCode = "confirmation_timeout"
	ErrCodeTransactionFailed   ErrorCode = "transaction_failed"
	ErrCodePriceUnavailable    ErrorCode = "price_unavailable"
)

// Form errors: recovered locally, inline.
const (
	ErrCodeMissingField     ErrorCode = "missing_field"
	ErrCodeInvalidField     ErrorCode = "invalid_field"
	ErrCodeAlreadySubmitted ErrorCode = "already_submitted"
)

// Content lookup errors.
const (
	ErrCodeNotFound ErrorCode = "not_found"
)

// Internal/system errors.
const (
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeConfigError   ErrorCode = "config_error"
)

// IsRetryable reports whether the client may usefully retry the request.
// Only transient network and service conditions qualify; validation and
// wallet failures require user action first.
func (e ErrorCode) IsRetryable() bool {
	switch e {
	case ErrCodeRPCError,
		ErrCodeNetworkError,
		ErrCodeConfirmationTimeout,
		ErrCodePriceUnavailable:
		return true
	default:
		return false
	}
}

// HTTPStatus maps the error code to its HTTP status.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	// 400 Bad Request - input and form validation
	case ErrCodeInvalidAmount,
		ErrCodeInvalidWallet,
		ErrCodeMissingField,
		ErrCodeInvalidField:
		return 400

	// 402 Payment Required - purchase cannot proceed as entered
	case ErrCodeBelowMinimum,
		ErrCodeAboveMaximum,
		ErrCodeAboveAllocation,
		ErrCodeInsufficientBalance,
		ErrCodeTransactionFailed:
		return 402

	// 401 - no wallet capability present
	case ErrCodeWalletNotConnected:
		return 401

	// 404 Not Found
	case ErrCodeSessionNotFound,
		ErrCodeNotFound:
		return 404

	// 409 Conflict - session is in a state that rejects the request
	case ErrCodePurchaseInFlight,
		ErrCodeSupportRequired,
		ErrCodeNoPendingSigning,
		ErrCodeSigningRejected,
		ErrCodeAlreadySubmitted:
		return 409

	// 502 Bad Gateway - upstream RPC / price source failures
	case ErrCodeRPCError,
		ErrCodeNetworkError,
		ErrCodeConfirmationTimeout,
		ErrCodePriceUnavailable:
		return 502

	default:
		return 500
	}
}
