package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront maps these codes to user-visible messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthPhoneAlreadyExists = "AUTH_PHONE_EXISTS"
	AuthRateLimited        = "AUTH_RATE_LIMITED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Gift (gift options) ====================
	MissingRecipient = "MISSING_RECIPIENT" // isGift without a recipient
	MessageTooLong   = "MESSAGE_TOO_LONG"  // greeting message over 200 characters
	GiftWrapNotFound = "GIFT_WRAP_NOT_FOUND"
	OccasionNotFound = "OCCASION_NOT_FOUND"

	// ==================== Address capture ====================
	IncompleteAddress  = "INCOMPLETE_ADDRESS"  // street/city/state/pincode missing
	MissingCoordinates = "MISSING_COORDINATES" // proceed without a map pick
	InvalidLabel       = "INVALID_LABEL"       // label not Home/Work/Other
	InvalidFlowStep    = "INVALID_FLOW_STEP"   // action not allowed in the current step
	AddressRequired    = "ADDRESS_REQUIRED"
	AddressNotFound    = "ADDRESS_NOT_FOUND"

	// ==================== Cart / checkout ====================
	CartEmpty            = "CART_EMPTY"
	ProductNotFound      = "PRODUCT_NOT_FOUND"
	ProductUnavailable   = "PRODUCT_UNAVAILABLE"
	CheckoutInProgress   = "CHECKOUT_IN_PROGRESS"
	OrderNotFound        = "ORDER_NOT_FOUND"
	OrderTotalMismatch   = "ORDER_TOTAL_MISMATCH"
	OrderInvalidStatus   = "ORDER_INVALID_STATUS"
	InvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	RecipientNotFound    = "RECIPIENT_NOT_FOUND"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API"
	InternalConfigError = "INTERNAL_CONFIG_ERROR"
)
