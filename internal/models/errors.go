package models

import "errors"

var (
	// ErrTransientFetch wraps a network or timeout failure on a single query.
	// The query is not resubmitted; discovery moves on to the next variant.
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrSessionCrashed marks a browser failure that left the session unusable
	ErrSessionCrashed = errors.New("browser session crashed")

	// ErrSessionUnavailable is returned when the session could not be built or is closed
	ErrSessionUnavailable = errors.New("browser session unavailable")

	// ErrExtractionMismatch means the markup matched none of the known patterns.
	// Logged and skipped, never returned to the caller of FindLeads.
	ErrExtractionMismatch = errors.New("markup did not match any extraction pattern")

	// ErrEmptyKeyword is returned by FindLeads for a blank keyword
	ErrEmptyKeyword = errors.New("keyword is required")
)
