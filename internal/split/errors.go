package split

import "errors"

// ErrSplitExhausted indicates segments still exceed the size limit after the
// entire quality degradation ladder was tried.
var ErrSplitExhausted = errors.New("split exhausted quality ladder")

// ErrDurationUnknown indicates the source duration was not probed, so no
// time-based split can be planned. Byte-size-based chunking is deliberately
// not attempted: it produces uneven, potentially content-losing chunks.
var ErrDurationUnknown = errors.New("audio duration unknown")
