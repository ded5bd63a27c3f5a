package executor

import "errors"

// Terminal failure classes of a generation request. The HTTP layer maps each
// to its own status and message; anything unclassified stays an opaque
// internal error.
var (
	// ErrRetrieval marks a retriever failure. The operation aborts before
	// any prompt is sent.
	ErrRetrieval = errors.New("snippet retrieval failed")

	// ErrRateLimited surfaces after the retry layer exhausted its attempts
	// against a rate-limiting provider.
	ErrRateLimited = errors.New("completion rate limited")

	// ErrEmptyGeneration means the model answered with blank text.
	ErrEmptyGeneration = errors.New("completion returned no text")
)
