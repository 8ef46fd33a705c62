package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Codes are grouped by category:
//
// # Data File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Patterns: "file too large"
//	FILE002 - Malformed file: File is not a valid delimited file
//	          Patterns: "invalid delimited file"
//	FILE003 - Unknown format: Format is neither csv nor tsv
//	          Patterns: "unknown file format"
//	FILE004 - No file: Data file or dictionary was not supplied
//	          Patterns: "no file provided", "no dictionary provided"
//	FILE005 - Empty file: The uploaded file is empty
//	          Patterns: "empty file"
//
// # Dictionary Errors (DICT001-DICT099)
//
//	DICT001 - No variables: Dictionary defines no variables
//	          Patterns: "dictionary defines no variables"
//	DICT002 - Missing name: No VARNAME column, or a variable without a name
//	          Patterns: "missing the varname column", "missing name"
//	DICT003 - Duplicate variable: Same variable declared twice
//	          Patterns: "duplicate variable"
//	DICT004 - Invalid bound: MIN/MAX not numeric, or MIN above MAX
//	          Patterns: "invalid range bound"
//	DICT005 - Unreadable dictionary: YAML document could not be decoded
//	          Patterns: "decode dictionary"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many validation runs in progress
//	         Patterns: "too many concurrent validation runs"
//	RUN002 - Not found: Run ID does not exist
//	         Patterns: "validation run not found"
//	RUN003 - Cancelled: Request was cancelled
//	         Patterns: "context canceled"
//	RUN004 - Timeout: Run exceeded its time limit
//	         Patterns: "context deadline exceeded"
//	RUN005 - Rate limited: Too many requests
//	         Patterns: "rate limit"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused   Patterns: "connection refused"
//	DB002 - Connection reset     Patterns: "connection reset"
//	DB003 - Timeout              Patterns: "timeout"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application logs
// for the original technical error.
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Data File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid delimited file",
		msg: UserMessage{
			Message: "File is not a valid CSV or TSV file",
			Action:  "Check quoting and export the file again as CSV or tab separated text",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unknown file format",
		msg: UserMessage{
			Message: "Unsupported file format",
			Action:  "Use csv or tsv as the format",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No data file was selected",
			Action:  "Please select a data file to validate",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no dictionary provided",
		msg: UserMessage{
			Message: "No data dictionary was selected",
			Action:  "Please select the data dictionary for this file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Dictionary Errors (DICT001-DICT005)
	// =========================================================================
	{
		pattern: "dictionary defines no variables",
		msg: UserMessage{
			Message: "The data dictionary defines no variables",
			Action:  "Add one row per variable to the dictionary",
			Code:    "DICT001",
		},
	},
	{
		pattern: "missing the varname column",
		msg: UserMessage{
			Message: "The data dictionary has no VARNAME column",
			Action:  "Add a VARNAME column holding the variable names",
			Code:    "DICT002",
		},
	},
	{
		pattern: "missing name",
		msg: UserMessage{
			Message: "A dictionary variable has no name",
			Action:  "Give every variable in the dictionary a name",
			Code:    "DICT002",
		},
	},
	{
		pattern: "duplicate variable",
		msg: UserMessage{
			Message: "A variable is defined more than once in the dictionary",
			Action:  "Remove the duplicate dictionary entry",
			Code:    "DICT003",
		},
	},
	{
		pattern: "invalid range bound",
		msg: UserMessage{
			Message: "A dictionary MIN or MAX value is invalid",
			Action:  "Use plain numbers and make sure MIN is not above MAX",
			Code:    "DICT004",
		},
	},
	{
		pattern: "decode dictionary",
		msg: UserMessage{
			Message: "The data dictionary could not be read",
			Action:  "Check the YAML syntax and field names (name, type, min, max)",
			Code:    "DICT005",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN005)
	// =========================================================================
	{
		pattern: "too many concurrent validation runs",
		msg: UserMessage{
			Message: "System is busy validating other files",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "validation run not found",
		msg: UserMessage{
			Message: "Validation run not found",
			Action:  "Check the run ID or validate the file again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Validation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "RUN004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RUN005",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 if none match.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load dictionary: %w", dictionary.ErrNoVariables))
//	// msg.Code == "DICT001"
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
