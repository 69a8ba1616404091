package model

import "errors"

var (
	// ErrInvalidRecord marks a raw record that is missing its provider ID.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrRuleEvaluation marks an internal failure of a risk rule. It should
	// never occur for well-formed input.
	ErrRuleEvaluation = errors.New("rule evaluation error")

	// ErrStorageUnavailable marks a write that failed because storage could
	// not be reached. It aborts the remainder of an ingestion batch.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrProviderNotFound is returned by reads for an unknown provider ID.
	ErrProviderNotFound = errors.New("provider not found")
)
