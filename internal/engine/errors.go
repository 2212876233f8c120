package engine

import "errors"

// ErrCannotProcessInput indicates the input could not be probed and the
// whole-file quality-reduction fallback also failed. Fatal.
var ErrCannotProcessInput = errors.New("cannot process input audio")

// ErrCannotSplit indicates splitting failed even after retrying with a
// halved chunk duration. Fatal.
var ErrCannotSplit = errors.New("cannot split input audio")
