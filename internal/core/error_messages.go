package core

// error_messages.go maps technical errors to user-facing messages with codes
// support staff can look up.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key              Patterns: "duplicate key"
//	DB002 - Unique constraint          Patterns: "unique constraint", "violates unique"
//	DB003 - Foreign key                Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused         Patterns: "connection refused"
//	DB005 - Connection reset           Patterns: "connection reset"
//	DB006 - Timeout                    Patterns: "timeout"
//	DB007 - Deadlock                   Patterns: "deadlock"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing column            Patterns: "missing required column"
//	VAL002 - Invalid number            Patterns: "invalid number", "invalid integer"
//	VAL003 - Invalid boolean           Patterns: "invalid boolean"
//	VAL004 - Unknown category          Patterns: "unknown category"
//	VAL005 - Invalid selection         Patterns: "unknown operation"
//	VAL006 - Bad request input         Patterns: "invalid request"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large           Patterns: "file too large"
//	FILE002 - Not a CSV                Patterns: "not a csv"
//	FILE003 - Too few lines            Patterns: "header row and at least one data row"
//	FILE004 - No file                  Patterns: "no file provided"
//	FILE005 - Empty file               Patterns: "empty file"
//	FILE006 - Unreadable form          Patterns: "invalid form"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy               Patterns: "too many concurrent imports"
//	IMP002 - Plan expired              Patterns: "plan not found"
//	IMP003 - Storage unavailable       Patterns: "object storage is not configured"
//	IMP004 - Request cancelled         Patterns: "context canceled"
//	IMP005 - Request timeout           Patterns: "context deadline exceeded"
//
// # Lookup Errors (NF001)
//
//	NF001 - Not found                  Patterns: "not found"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited             Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application log for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Import errors first: their messages can embed "timeout" from a cause.
	{"too many concurrent imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{"plan not found", UserMessage{
		Message: "Import plan not found or expired",
		Action:  "Preview the file again to create a new plan",
		Code:    "IMP002",
	}},
	{"object storage is not configured", UserMessage{
		Message: "File storage is not available",
		Action:  "Ask an administrator to configure the storage bucket",
		Code:    "IMP003",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP004",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try importing a smaller file or check your connection",
		Code:    "IMP005",
	}},

	// Database constraint errors.
	{"duplicate key", UserMessage{
		Message: "A product with this part number already exists",
		Action:  "Preview the import to see which rows update existing products",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for duplicate entries in your CSV",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "A duplicate value was found",
		Action:  "Review your data for duplicate part numbers",
		Code:    "DB002",
	}},
	{"foreign key constraint", UserMessage{
		Message: "Referenced maker, series or category does not exist",
		Action:  "Check the maker_id, series_id and category_id values",
		Code:    "DB003",
	}},
	{"violates foreign key", UserMessage{
		Message: "Referenced maker, series or category does not exist",
		Action:  "Check the maker_id, series_id and category_id values",
		Code:    "DB003",
	}},

	// Database connection errors.
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try importing a smaller file or try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},

	// Validation errors.
	{"missing required column", UserMessage{
		Message: "Required column is missing from CSV",
		Action:  "Download the import template and compare the header row",
		Code:    "VAL001",
	}},
	{"invalid number", UserMessage{
		Message: "Invalid number format detected",
		Action:  "Use plain decimal numbers without units",
		Code:    "VAL002",
	}},
	{"invalid integer", UserMessage{
		Message: "Invalid number format detected",
		Action:  "Use whole numbers for integer columns",
		Code:    "VAL002",
	}},
	{"invalid boolean", UserMessage{
		Message: "Invalid true/false value detected",
		Action:  "Use true, false, yes, no, 1 or 0",
		Code:    "VAL003",
	}},
	{"unknown category", UserMessage{
		Message: "Category is not set up for category imports",
		Action:  "Choose a category that has its own product table",
		Code:    "VAL004",
	}},
	{"unknown operation", UserMessage{
		Message: "Selection refers to an operation that is not in the plan",
		Action:  "Reload the plan and select operations again",
		Code:    "VAL005",
	}},
	{"invalid request", UserMessage{
		Message: "The request contains an invalid value",
		Action:  "Check the query parameters and request body",
		Code:    "VAL006",
	}},

	// File errors.
	{"file too large", UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"not a csv", UserMessage{
		Message: "Only .csv files can be imported",
		Action:  "Export the sheet as CSV and try again",
		Code:    "FILE002",
	}},
	{"header row and at least one data row", UserMessage{
		Message: "The file has no data rows",
		Action:  "Include a header row and at least one product row",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to import",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a file with content",
		Code:    "FILE005",
	}},
	{"invalid form", UserMessage{
		Message: "The upload form could not be read",
		Action:  "Send the file as multipart/form-data in a field named file",
		Code:    "FILE006",
	}},

	{"not found", UserMessage{
		Message: "The requested item was not found",
		Action:  "Check the identifier and try again",
		Code:    "NF001",
	}},

	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Unmatched errors map to ERR000.
//
// Example:
//
//	msg := MapError(errors.New("duplicate key violation"))
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// UnexpectedError is the message for failures whose details stay in the log.
func UnexpectedError() UserMessage {
	return defaultMessage
}

// FormatUserError formats an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
