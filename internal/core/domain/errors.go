package domain

import "errors"

// Domain errors represent ingestion and lookup failures.
// Adapters wrap these with context; callers match them with errors.Is.
var (
	// ErrNotFound indicates a requested entity or backing document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown loader type or document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Configuration Errors.

	// ErrNoSources indicates that no rule sources are configured.
	// This is the only ingestion error that is fatal at startup.
	ErrNoSources = errors.New("no rule sources configured")

	// ErrInvalidSettings indicates a source descriptor's settings are missing
	// a required key or hold a value of the wrong type.
	ErrInvalidSettings = errors.New("invalid source settings")

	// Source Errors.

	// ErrSourceUnavailable indicates the backing location of a source cannot be reached.
	ErrSourceUnavailable = errors.New("source unavailable")

	// Document Errors.

	// ErrMalformedDocument indicates a document exists but cannot be decoded
	// into the expected shape.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingRequiredField indicates a decoded document lacks id or description.
	ErrMissingRequiredField = errors.New("missing required field")

	// Index Errors.

	// ErrInvalidRecord indicates a rule failed the index's structural checks.
	ErrInvalidRecord = errors.New("invalid rule record")

	// Content Errors.

	// ErrNotConfigured indicates a content reference has no location set.
	ErrNotConfigured = errors.New("content location not configured")
)
