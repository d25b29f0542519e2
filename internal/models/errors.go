package models

import "errors"

// Structural input errors, surfaced to the caller before any fetch starts.
var (
	ErrInvalidIdentifier  = errors.New("invalid stock identifier")
	ErrUnknownIndex       = errors.New("unknown index alias")
	ErrBatchLimitExceeded = errors.New("batch size limit exceeded")
)

// ErrProviderUnavailable means every provider in the chain failed for an
// identifier. It never reaches the caller for bar data — the synthetic
// generator resolves it — and exists for logging and for data kinds with no
// synthetic fallback (company info, constituents).
var ErrProviderUnavailable = errors.New("all providers unavailable")

// ErrNotFound is returned when a provider has no record for the identifier,
// as opposed to failing to answer.
var ErrNotFound = errors.New("not found")
