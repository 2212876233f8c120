package cli

import "errors"

// ErrNoKeywords indicates the --keywords flag contained no usable keywords.
var ErrNoKeywords = errors.New("no valid keywords provided")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnsupportedFormat indicates the input file extension is not a
// supported audio format.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrAllChunksFailed indicates no chunk of the input could be transcribed.
var ErrAllChunksFailed = errors.New("all chunks failed to transcribe")
