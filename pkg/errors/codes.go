package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK            ErrorCode = "OK"
	CodeUnknown       ErrorCode = "COMMON_000"
	CodeInternal      ErrorCode = "COMMON_001"
	CodeInvalidParam  ErrorCode = "COMMON_002"
	CodeNotFound      ErrorCode = "COMMON_003"
	CodeConflict      ErrorCode = "COMMON_004"
	CodeTimeout       ErrorCode = "COMMON_005"
	CodeUnavailable   ErrorCode = "COMMON_006"
	CodeSerialization ErrorCode = "COMMON_007"
)

// Geospatial data-source error codes.
const (
	CodeUpstreamUnavailable ErrorCode = "GEO_001"
	CodeUpstreamRejected    ErrorCode = "GEO_002"
	CodeLayerParseError     ErrorCode = "GEO_003"
	CodeCacheError          ErrorCode = "GEO_004"
)

// Planning analysis error codes.
const (
	CodeJurisdictionUnsupported ErrorCode = "PLAN_001"
	CodeCoordinateOutOfRange    ErrorCode = "PLAN_002"
	CodeAnalysisFailed          ErrorCode = "PLAN_003"
)

// Sales / valuation error codes.
const (
	CodeSalesStoreError   ErrorCode = "SALES_001"
	CodeCorpusUnavailable ErrorCode = "SALES_002"
	CodeValuationFailed   ErrorCode = "SALES_003"
)

// Infrastructure error codes.
const (
	CodeDatabaseError     ErrorCode = "INFRA_001"
	CodeMessageQueueError ErrorCode = "INFRA_002"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	CodeInternal:      "internal error",
	CodeInvalidParam:  "invalid parameter",
	CodeNotFound:      "resource not found",
	CodeConflict:      "resource conflict",
	CodeTimeout:       "request timeout",
	CodeUnavailable:   "service unavailable",
	CodeSerialization: "serialization failed",

	CodeUpstreamUnavailable: "upstream feature service unavailable",
	CodeUpstreamRejected:    "upstream feature service rejected the query",
	CodeLayerParseError:     "failed to parse feature layer response",
	CodeCacheError:          "cache error",

	CodeJurisdictionUnsupported: "unsupported jurisdiction",
	CodeCoordinateOutOfRange:    "coordinates out of range",
	CodeAnalysisFailed:          "property analysis failed",

	CodeSalesStoreError:   "sales store error",
	CodeCorpusUnavailable: "sales corpus unavailable",
	CodeValuationFailed:   "valuation failed",

	CodeDatabaseError:     "database error",
	CodeMessageQueueError: "message queue error",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
