package core

// error_messages.go maps transport-level failures to user-facing messages
// with support codes. Row validation errors never pass through here; they
// are already user-facing and travel in ImportOutcome.
//
// Codes:
//
//	IMP001  too many imports in progress
//	IMP002  missing owner
//	IMP003  contacts store unavailable (circuit open)
//	IMP004  request cancelled
//	IMP005  request timed out
//	FILE001 file too large
//	FILE002 invalid CSV
//	FILE004 no file provided
//	FILE005 unsupported content type
//	AUTH001 missing credentials
//	AUTH002 invalid or expired token
//	RATE001 rate limited
//	ERR000  anything else

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Transport errors raised by the HTTP layer and the CLI.
var (
	ErrStoreUnavailable   = errors.New("contacts store unavailable")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNoFile             = errors.New("no file provided")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrUnauthenticated    = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// UserMessage is a user-friendly description of an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

var (
	msgTooManyImports = UserMessage{"System busy: too many imports in progress", "Please wait a moment and try again", "IMP001"}
	msgMissingOwner   = UserMessage{"No account is associated with this request", "Sign in again and retry the import", "IMP002"}
	msgStoreDown      = UserMessage{"The contacts service is temporarily unavailable", "Please try again in a few moments", "IMP003"}
	msgCancelled      = UserMessage{"Request was cancelled", "Please try again", "IMP004"}
	msgTimeout        = UserMessage{"Request timed out", "Try a smaller file or check your connection", "IMP005"}
	msgTooLarge       = UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE001"}
	msgInvalidCSV     = UserMessage{"File is not a valid CSV", "Check for unbalanced quotes and save as comma-separated values", "FILE002"}
	msgNoFile         = UserMessage{"No file was selected", "Please select a CSV file to import", "FILE004"}
	msgContentType    = UserMessage{"Unsupported upload format", "Send text/csv or a multipart form with a file field", "FILE005"}
	msgUnauth         = UserMessage{"Authentication required", "Sign in and try again", "AUTH001"}
	msgInvalidToken   = UserMessage{"Your session is invalid or has expired", "Sign in again", "AUTH002"}
	msgRateLimited    = UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}
)

// sentinelMessages is checked with errors.Is before any text matching.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrTooManyImports, msgTooManyImports},
	{ErrMissingOwner, msgMissingOwner},
	{ErrStoreUnavailable, msgStoreDown},
	{ErrFileTooLarge, msgTooLarge},
	{ErrNoFile, msgNoFile},
	{ErrUnsupportedContent, msgContentType},
	{ErrUnauthenticated, msgUnauth},
	{ErrInvalidToken, msgInvalidToken},
	{ErrRateLimited, msgRateLimited},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPatterns catch errors from libraries that do not wrap our sentinels.
// First match wins, so specific patterns come first.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"circuit breaker is open", msgStoreDown},
	{"request body too large", msgTooLarge},
	{"no such file", msgNoFile},
	{"parse error on line", msgInvalidCSV},
	{"context deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"context canceled", msgCancelled},
	{"rate limit", msgRateLimited},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-facing message. Unknown errors map
// to ERR000; nil maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var se *StructuralError
	if errors.As(err, &se) {
		return msgInvalidCSV
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
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

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
