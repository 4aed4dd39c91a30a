package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthMissingToken           ErrorCode = "AUTH_001"
	AuthExpiredToken           ErrorCode = "AUTH_002"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_003"
	AuthInsufficientPermission ErrorCode = "AUTH_004"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral         ErrorCode = "VALIDATION_001"
	ValidationRequiredField   ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat   ErrorCode = "VALIDATION_003"
	ValidationOutOfRange      ErrorCode = "VALIDATION_004"
	ValidationInvalidCategory ErrorCode = "VALIDATION_005"
	ValidationInvalidCutType  ErrorCode = "VALIDATION_006"
	ValidationInvalidSource   ErrorCode = "VALIDATION_007"
)

// Cut error codes (CUT_*)
const (
	CutNotFound      ErrorCode = "CUT_001"
	CutAlreadyExists ErrorCode = "CUT_002"
	CutInvalidID     ErrorCode = "CUT_003"
	CutReferenced    ErrorCode = "CUT_004"
)

// Variation error codes (VARIATION_*)
const (
	VariationNotFound      ErrorCode = "VARIATION_001"
	VariationAlreadyExists ErrorCode = "VARIATION_002"
	VariationInvalidID     ErrorCode = "VARIATION_003"
)

// Normalization error codes (NORMALIZE_*)
const (
	NormalizeEmptyName        ErrorCode = "NORMALIZE_001"
	NormalizeCategoryRequired ErrorCode = "NORMALIZE_002"
	NormalizeAmbiguous        ErrorCode = "NORMALIZE_003"
	NormalizeBatchTooLarge    ErrorCode = "NORMALIZE_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemStoreTimeout       ErrorCode = "SYSTEM_007"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthMissingToken:           "Authorization token is required",
	AuthExpiredToken:           "Authorization token has expired",
	AuthInvalidTokenFormat:     "Invalid authorization token format",
	AuthInsufficientPermission: "Insufficient permissions to access this resource",

	// Validation errors
	ValidationGeneral:         "Validation failed",
	ValidationRequiredField:   "Required field is missing",
	ValidationInvalidFormat:   "Invalid field format",
	ValidationOutOfRange:      "Field value is out of allowed range",
	ValidationInvalidCategory: "Invalid meat category",
	ValidationInvalidCutType:  "Invalid cut type",
	ValidationInvalidSource:   "Invalid variation source",

	// Cut errors
	CutNotFound:      "Normalized cut not found",
	CutAlreadyExists: "A cut with this name already exists in this category",
	CutInvalidID:     "Invalid cut ID format",
	CutReferenced:    "Cut still has variations attached and cannot be deleted",

	// Variation errors
	VariationNotFound:      "Cut variation not found",
	VariationAlreadyExists: "A variation with this name already exists",
	VariationInvalidID:     "Invalid variation ID format",

	// Normalization errors
	NormalizeEmptyName:        "Raw name cannot be empty",
	NormalizeCategoryRequired: "Category is required when creating a new cut",
	NormalizeAmbiguous:        "No confident match found, review the suggested alternatives",
	NormalizeBatchTooLarge:    "Bulk import batch exceeds the maximum allowed size",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemStoreTimeout:       "The operation timed out. Please retry",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}

// IsRetryable reports whether the client may safely retry the request
func IsRetryable(code ErrorCode) bool {
	switch code {
	case SystemStoreTimeout, SystemServiceUnavailable, SystemRateLimitExceeded:
		return true
	default:
		return false
	}
}
