package download

import "errors"

// ErrYtdlpNotFound indicates the yt-dlp executable is not installed.
var ErrYtdlpNotFound = errors.New("yt-dlp not found")

// ErrDownloadFailed indicates the audio download could not be completed.
var ErrDownloadFailed = errors.New("download failed")

// ErrInvalidVideoID indicates the input is neither a YouTube URL nor a video ID.
var ErrInvalidVideoID = errors.New("invalid YouTube URL or video ID")
