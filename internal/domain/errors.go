package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgInvalidConfiguration = "invalid generation configuration"
	ErrMsgPoolExhausted        = "template pool exhausted"
	ErrMsgQuestNotFound        = "quest not found"
	ErrMsgStaleState           = "stale quest state"
	ErrMsgUserNotFound         = "user not found"
	ErrMsgInvalidInput         = "invalid input"
)

// Common domain errors.
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	// ErrInvalidConfiguration is fatal: negative counts or unknown
	// categories in the generation config. Never auto-corrected.
	ErrInvalidConfiguration = errors.New(ErrMsgInvalidConfiguration)

	// ErrTemplatePoolExhausted is a non-fatal diagnostic: generation
	// produced fewer quests than requested. Callers may relax constraints
	// and retry, or accept the partial set.
	ErrTemplatePoolExhausted = errors.New(ErrMsgPoolExhausted)

	// ErrQuestNotFound is returned by Complete/Skip for ids absent from
	// the active set. A client error, not a system failure.
	ErrQuestNotFound = errors.New(ErrMsgQuestNotFound)

	// ErrStaleState guards against clock skew or corrupted persisted
	// state: last-reset dates lie in the future relative to the clock.
	// Reported, never auto-corrected.
	ErrStaleState = errors.New(ErrMsgStaleState)

	ErrUserNotFound = errors.New(ErrMsgUserNotFound)
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
