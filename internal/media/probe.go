package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Info holds the metadata probed from an audio file.
type Info struct {
	Duration time.Duration
	Size     int64 // bytes
}

// Prober inspects audio files with ffprobe.
type Prober struct {
	ffprobePath string
	cmd         commandRunner
	files       fileStatter
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberRunner sets the command runner (for testing).
func WithProberRunner(r commandRunner) ProberOption {
	return func(p *Prober) { p.cmd = r }
}

// WithProberStatter sets the file statter (for testing).
func WithProberStatter(s fileStatter) ProberOption {
	return func(p *Prober) { p.files = s }
}

// NewProber creates a Prober using the ffprobe binary at ffprobePath.
func NewProber(ffprobePath string, opts ...ProberOption) (*Prober, error) {
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobePath cannot be empty: %w", ErrToolUnavailable)
	}
	p := &Prober{
		ffprobePath: ffprobePath,
		cmd:         osCommandRunner{},
		files:       osFileStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Probe returns the duration and byte size of the audio file at path.
// A file whose duration cannot be parsed, or comes back zero or negative,
// fails with ErrProbeFailed.
func (p *Prober) Probe(ctx context.Context, path string) (Info, error) {
	info, err := p.files.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := p.cmd.Output(ctx, p.ffprobePath, args)
	if err != nil {
		return Info{}, fmt.Errorf("%w: ffprobe: %v", ErrProbeFailed, err)
	}

	dur, err := parseProbeDuration(string(out))
	if err != nil {
		return Info{}, err
	}

	return Info{Duration: dur, Size: info.Size()}, nil
}

// parseProbeDuration parses ffprobe's bare duration output (seconds as a float).
func parseProbeDuration(out string) (time.Duration, error) {
	s := strings.TrimSpace(out)
	if s == "" {
		return 0, fmt.Errorf("%w: empty ffprobe output", ErrProbeFailed)
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable duration %q", ErrProbeFailed, s)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %v", ErrProbeFailed, seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
