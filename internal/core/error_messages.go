package core

// error_messages.go maps engine errors to user-facing messages with codes for
// support reference.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Unsupported format: only .csv files and .zip bundles are accepted
//	IMP002 - Bundle extraction: the zip could not be unpacked
//	IMP003 - Unsafe bundle entry: an entry path leaves the staging directory
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: no table matches the file name
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid value: a cell does not parse as its column's type
//	VAL004 - Missing column: a header has no matching table column
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV: malformed quoting or inconsistent field counts
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key          Patterns: "duplicate key", "unique constraint"
//	DB003 - Foreign key            Patterns: "foreign key"
//	DB004 - Connection refused     Patterns: "connection refused"
//	DB005 - Connection reset       Patterns: "connection reset"
//	DB006 - Timeout                Patterns: "timeout", "context deadline exceeded"
//	DB008 - Insert failed          any other ErrExecution
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: too many imports in progress
//
// Typed and sentinel errors are matched first with errors.Is. Remaining
// errors fall back to case-insensitive substring patterns; the first match
// wins. ERR000 is returned when nothing matches.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage is an error explained for end users.
type UserMessage struct {
	Message string `json:"message"`          // What happened
	Action  string `json:"action,omitempty"` // What to do about it
	Code    string `json:"code"`             // Support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is ordered most specific first.
var sentinelMessages = []sentinelMessage{
	{ErrUnsafeEntry, UserMessage{"Bundle contains an unsafe file path", "Rebuild the zip with relative paths only", "IMP003"}},
	{ErrExtraction, UserMessage{"The zip bundle could not be unpacked", "Check that the file is a valid zip archive", "IMP002"}},
	{ErrUnsupportedFormat, UserMessage{"Unsupported file format", "Upload a .csv file or a .zip bundle of .csv files", "IMP001"}},
	{ErrTableNotFound, UserMessage{"Table not found", "Name the file after an existing table, e.g. 1-orders.csv", "TBL001"}},
	{ErrMissingColumn, UserMessage{"A CSV column does not exist in the table", "Check the header row against the table columns", "VAL004"}},
	{ErrConversion, UserMessage{"A value does not match its column type", "Fix the value reported in the error", "VAL001"}},
	{ErrMalformedFile, UserMessage{"File is not a valid CSV", "Check quoting, the delimiter and the number of fields per row", "FILE002"}},
	{ErrTooManyImports, UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "UPL002"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{"A record with this key already exists", "Remove duplicate rows from the file", "DB001"}},
	{"unique constraint", UserMessage{"A record with this key already exists", "Remove duplicate rows from the file", "DB001"}},
	{"foreign key", UserMessage{"Referenced record does not exist", "Load parent tables first using filename prefixes", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"context deadline exceeded", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},
	{"timeout", UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller bundles", "FILE001"}},
}

var executionMessage = UserMessage{"The database rejected a row", "Check the error details and the table constraints", "DB008"}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.Is(err, ErrExecution) {
		return executionMessage
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
