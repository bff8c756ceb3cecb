package domain

import "errors"

// Terminal error kinds. Every one of these maps to a templated,
// human-readable response before it can reach the user.
var (
	// ErrUpstreamUnavailable means the language-understanding service
	// could not be reached, timed out, or returned an unusable payload.
	// The dispatcher recovers locally by falling back to rules.
	ErrUpstreamUnavailable = errors.New("language service unavailable")

	// ErrUnknownClient means the requested client id has no data.
	ErrUnknownClient = errors.New("unknown client")

	// ErrUnderspecified means no filter could be resolved from the
	// utterance even after merging carried-over context.
	ErrUnderspecified = errors.New("underspecified question")
)
