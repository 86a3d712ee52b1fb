package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_012"
	ErrCodeConfigInvalid      ErrorCode = "COMMON_013"
	ErrCodeCanceled           ErrorCode = "COMMON_014"
)

// Sentinel codes used by Wrap and GetCode.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Data Source Error Codes (EPO OPS, Lens)
const (
	ErrCodeSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeSourceAuthFailed  ErrorCode = "SRC_003"
	ErrCodeSourceParseError  ErrorCode = "SRC_004"
	ErrCodeSourceQuerySyntax ErrorCode = "SRC_005"
	ErrCodeSourceExhausted   ErrorCode = "SRC_006"
)

// Record / Assessment Error Codes
const (
	ErrCodeRecordNotFound     ErrorCode = "REC_001"
	ErrCodeRecordInvalid      ErrorCode = "REC_002"
	ErrCodeStatusDecodeFailed ErrorCode = "REC_003"
	ErrCodeAssessmentFailed   ErrorCode = "REC_004"
)

// Keyword / Translation Error Codes
const (
	ErrCodeKeywordSetEmpty     ErrorCode = "KWD_001"
	ErrCodeKeywordLangUnknown  ErrorCode = "KWD_002"
	ErrCodeTranslationFailed   ErrorCode = "TRN_001"
	ErrCodeTranslationBadReply ErrorCode = "TRN_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeConfigInvalid:      http.StatusInternalServerError,
	ErrCodeCanceled:           499,

	ErrCodeSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeSourceAuthFailed:  http.StatusBadGateway,
	ErrCodeSourceParseError:  http.StatusBadGateway,
	ErrCodeSourceQuerySyntax: http.StatusBadGateway,
	ErrCodeSourceExhausted:   http.StatusBadGateway,

	ErrCodeRecordNotFound:     http.StatusNotFound,
	ErrCodeRecordInvalid:      http.StatusBadRequest,
	ErrCodeStatusDecodeFailed: http.StatusInternalServerError,
	ErrCodeAssessmentFailed:   http.StatusInternalServerError,

	ErrCodeKeywordSetEmpty:     http.StatusBadRequest,
	ErrCodeKeywordLangUnknown:  http.StatusBadRequest,
	ErrCodeTranslationFailed:   http.StatusBadGateway,
	ErrCodeTranslationBadReply: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeConfigInvalid:      "invalid configuration",
	ErrCodeCanceled:           "request canceled",

	ErrCodeSourceUnavailable: "data source unavailable",
	ErrCodeSourceRateLimited: "data source rate limited",
	ErrCodeSourceAuthFailed:  "data source authentication failed",
	ErrCodeSourceParseError:  "failed to parse data source response",
	ErrCodeSourceQuerySyntax: "data source rejected query syntax",
	ErrCodeSourceExhausted:   "all query strategies exhausted",

	ErrCodeRecordNotFound:     "patent record not found",
	ErrCodeRecordInvalid:      "invalid patent record",
	ErrCodeStatusDecodeFailed: "legal status decoding failed",
	ErrCodeAssessmentFailed:   "record assessment failed",

	ErrCodeKeywordSetEmpty:     "keyword set has no include terms",
	ErrCodeKeywordLangUnknown:  "no keyword set for language",
	ErrCodeTranslationFailed:   "keyword translation failed",
	ErrCodeTranslationBadReply: "translator returned unparseable reply",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
