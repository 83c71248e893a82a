package common

import "errors"

// Business logic errors
var (
	// Not-found errors. Ownership failures surface as these too, so callers
	// can't probe for other users' groups.
	ErrGroupNotFound = errors.New("emoji group not found")
	ErrEmojiNotFound = errors.New("emoji not found")

	// Group invariant errors
	ErrImmutableGroup  = errors.New("the \"all\" group cannot be renamed, reordered or deleted")
	ErrGroupNameExists = errors.New("group name already exists")
	ErrEmojiNotInGroup = errors.New("emoji is not in the group")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Multi-step write could not complete; all partial writes were rolled back
	ErrTransactionFailed = errors.New("transaction failed")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
)
