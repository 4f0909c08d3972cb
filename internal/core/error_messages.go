// error_messages.go maps errors to user-facing messages.
//
// # Error Codes Reference
//
// This file defines user-facing error messages with codes for support
// reference. Technical errors are logged in full; users see the mapped message.
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - Unknown sort field: the column cannot be sorted
//	          Patterns: "unknown sort field"
//
//	VIEW002 - Invalid view mode: only map and table exist
//	          Patterns: "invalid view mode"
//
//	VIEW003 - Unknown action: the request did not name a dashboard action
//	          Patterns: "unknown action"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Missing parameter: a required form value was empty
//	         Patterns: "missing parameter"
//
//	REQ002 - Request cancelled
//	         Patterns: "context canceled"
//
//	REQ003 - Request timed out
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: the dashboard state was discarded
//	         Patterns: "session not found"
//
// # Data Errors (DATA001-DATA099)
//
// Source errors all wrap ErrDataLoad, so the specific causes are listed first.
//
//	DATA002 - Invalid CSV
//	          Patterns: "invalid csv"
//
//	DATA003 - Empty file
//	          Patterns: "empty file"
//
//	DATA004 - Database unreachable
//	          Patterns: "connection refused"
//
//	DATA001 - Data source unavailable
//	          Patterns: "data load failure"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// View errors
	{
		pattern: "unknown sort field",
		msg: UserMessage{
			Message: "This column cannot be sorted",
			Action:  "Sort by one of the table column headers",
			Code:    "VIEW001",
		},
	},
	{
		pattern: "invalid view mode",
		msg: UserMessage{
			Message: "Unknown view",
			Action:  "Choose the Map or Table view",
			Code:    "VIEW002",
		},
	},
	{
		pattern: "unknown action",
		msg: UserMessage{
			Message: "The dashboard did not understand this request",
			Action:  "Reload the page and try again",
			Code:    "VIEW003",
		},
	},

	// Request errors
	{
		pattern: "missing parameter",
		msg: UserMessage{
			Message: "A required value is missing",
			Action:  "Fill in the field and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},

	// Session errors
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your dashboard session has expired",
			Action:  "Reload the page to start a new session",
			Code:    "SES001",
		},
	},

	// Data errors
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The data file is not a valid CSV",
			Action:  "Check that the file is comma-separated with a header row",
			Code:    "DATA002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The data file is empty",
			Action:  "Provide a CSV file with a header row and data rows",
			Code:    "DATA003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DATA004",
		},
	},
	{
		pattern: "data load failure",
		msg: UserMessage{
			Message: "Live business data could not be loaded",
			Action:  "The built-in sample dataset is shown instead",
			Code:    "DATA001",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Unmatched errors map to ERR000; a nil error maps to the zero UserMessage.
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

// FormatUserError renders "Message (Code: XXX). Action", or "" for nil.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
