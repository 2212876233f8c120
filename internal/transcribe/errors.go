package transcribe

import "errors"

// ErrChunkTooLarge indicates a segment exceeds the backend request limit.
// This is a local invariant violation detected before any network call.
var ErrChunkTooLarge = errors.New("chunk exceeds backend request limit")

// ErrAPIKeyMissing indicates GROQ_API_KEY is not set.
var ErrAPIKeyMissing = errors.New("GROQ_API_KEY environment variable not set")
