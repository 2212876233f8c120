package media

import "errors"

// ErrToolUnavailable indicates ffmpeg or ffprobe could not be located.
var ErrToolUnavailable = errors.New("media tool not found")

// ErrProbeFailed indicates the file was inspected but no usable duration came back.
var ErrProbeFailed = errors.New("media probe failed")

// ErrTranscodeFailed indicates ffmpeg ran but produced no valid output file.
var ErrTranscodeFailed = errors.New("transcode failed")
