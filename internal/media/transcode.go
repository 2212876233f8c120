package media

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Transcoder re-encodes audio with ffmpeg.
type Transcoder struct {
	ffmpegPath string
	cmd        commandRunner
	files      fileStatter
}

// TranscoderOption configures a Transcoder.
type TranscoderOption func(*Transcoder)

// WithTranscoderRunner sets the command runner (for testing).
func WithTranscoderRunner(r commandRunner) TranscoderOption {
	return func(t *Transcoder) { t.cmd = r }
}

// WithTranscoderStatter sets the file statter (for testing).
func WithTranscoderStatter(s fileStatter) TranscoderOption {
	return func(t *Transcoder) { t.files = s }
}

// NewTranscoder creates a Transcoder using the ffmpeg binary at ffmpegPath.
func NewTranscoder(ffmpegPath string, opts ...TranscoderOption) (*Transcoder, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ErrToolUnavailable)
	}
	t := &Transcoder{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		files:      osFileStatter{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Extract writes [start, start+dur) of src to dest, re-encoded per profile.
// The source file is never modified. Fails with ErrTranscodeFailed on nonzero
// exit, missing output, or zero-byte output.
func (t *Transcoder) Extract(ctx context.Context, src string, start, dur time.Duration, profile QualityProfile, dest string) error {
	args := []string{
		"-y",
		"-i", src,
		"-ss", formatSeconds(start),
		"-t", formatSeconds(dur),
	}
	args = append(args, profile.encodingArgs()...)
	args = append(args, dest)

	return t.run(ctx, args, dest)
}

// Reencode re-encodes the whole of src to dest per profile, without trimming.
// Used as the last-resort path when the source cannot be probed or split.
func (t *Transcoder) Reencode(ctx context.Context, src string, profile QualityProfile, dest string) error {
	args := []string{"-y", "-i", src}
	args = append(args, profile.encodingArgs()...)
	args = append(args, dest)

	return t.run(ctx, args, dest)
}

// run executes ffmpeg and verifies that dest was written and is non-empty.
func (t *Transcoder) run(ctx context.Context, args []string, dest string) error {
	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: ffmpeg: %v\nOutput: %s", ErrTranscodeFailed, err, string(output))
	}

	info, err := t.files.Stat(dest)
	if err != nil {
		return fmt.Errorf("%w: no output at %s", ErrTranscodeFailed, dest)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: empty output at %s", ErrTranscodeFailed, dest)
	}
	return nil
}

// formatSeconds formats a duration for ffmpeg -ss/-t arguments.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
