package engine

import (
	"errors"
)

// Error categories surfaced to callers. Every operation either succeeds or
// rejects with one of these before any state is committed; the enclosing
// database transaction rolls partial work back.
var (
	// ErrConfiguration covers zero/invalid amounts or addresses, share sums
	// not totaling 100% and double initialization of immutable config.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrAuthorization covers wrong callers, invalid or expired bonus-cap
	// signatures and base assets that are not whitelisted.
	ErrAuthorization = errors.New("not authorized")

	// ErrState covers operations invalid for the current lifecycle state:
	// trading not started, curve already complete, already migrated,
	// schedule already exists, lock period not elapsed.
	ErrState = errors.New("invalid state")

	// ErrLimit covers hard cap violations and insufficient custody. Buy
	// clamping and reward clipping are defined saturating behaviors, not
	// limit errors.
	ErrLimit = errors.New("limit exceeded")

	// ErrTransfer covers failed custody movements; always fatal to the
	// whole operation.
	ErrTransfer = errors.New("transfer failed")

	ErrNotFound = errors.New("not found")
)
