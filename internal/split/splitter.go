// Package split plans and produces time-bounded audio segments that fit
// under a per-request byte ceiling, degrading encoding quality when needed.
package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edvall/ytscan/internal/format"
	"github.com/edvall/ytscan/internal/media"
)

// Asset is a single physical audio file with its probed metadata.
type Asset struct {
	Path     string
	Size     int64 // bytes
	Duration time.Duration
}

// SegmentPlan is an immutable plan for one chunk. A full plan covers
// [0, total) in index order with no gaps and no overlaps; the last segment
// absorbs the rounding remainder.
type SegmentPlan struct {
	Index    int
	Start    time.Duration
	Duration time.Duration
}

// Segment is a produced chunk file. Segments are returned in ascending time
// order; transcript reassembly relies on this ordering and nothing else.
type Segment struct {
	Path     string
	Index    int
	Start    time.Duration
	Duration time.Duration
	Size     int64
	Profile  media.QualityProfile
}

// String returns a human-readable representation for progress output.
func (s Segment) String() string {
	return fmt.Sprintf("segment %d: %s+%s (%s, %s)",
		s.Index,
		format.Duration(s.Start),
		format.Duration(s.Duration),
		format.Size(s.Size),
		s.Profile.Name)
}

// transcoder produces one re-encoded slice of the source audio.
type transcoder interface {
	Extract(ctx context.Context, src string, start, dur time.Duration, profile media.QualityProfile, dest string) error
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// fileRemover removes files.
type fileRemover interface {
	Remove(name string) error
}

// osFiles implements fileStatter and fileRemover with the os package.
type osFiles struct{}

func (osFiles) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (osFiles) Remove(name string) error              { return os.Remove(name) }

// WarnFunc is a callback for non-fatal warnings during splitting.
type WarnFunc func(msg string)

// Splitter splits an oversized audio file into segments that each fit under
// a byte limit. It walks a fixed quality degradation ladder: time boundaries
// never change between passes, only the encoding profile does.
type Splitter struct {
	transcoder transcoder
	ladder     []media.QualityProfile
	files      fileStatter
	remover    fileRemover
	warn       WarnFunc
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLadder overrides the quality degradation ladder.
func WithLadder(ladder []media.QualityProfile) Option {
	return func(s *Splitter) { s.ladder = ladder }
}

// WithStatter sets the file statter (for testing).
func WithStatter(st fileStatter) Option {
	return func(s *Splitter) { s.files = st }
}

// WithRemover sets the file remover (for testing).
func WithRemover(r fileRemover) Option {
	return func(s *Splitter) { s.remover = r }
}

// WithWarnFunc sets a callback for warning messages. Nil suppresses them.
func WithWarnFunc(fn WarnFunc) Option {
	return func(s *Splitter) { s.warn = fn }
}

// New creates a Splitter driving the given transcoder.
func New(tc transcoder, opts ...Option) *Splitter {
	s := &Splitter{
		transcoder: tc,
		ladder:     media.DegradationLadder(),
		files:      osFiles{},
		remover:    osFiles{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan builds the segment plan for a recording of the given total duration,
// aiming for segments of the preferred length. Segment count is
// ceil(total/preferred) with a minimum of one; all segments share an equal
// duration except the last, which absorbs the rounding remainder.
func Plan(total, preferred time.Duration) []SegmentPlan {
	if total <= 0 {
		return nil
	}
	if preferred <= 0 {
		preferred = total
	}

	count := int((total + preferred - 1) / preferred) // ceiling division
	if count < 1 {
		count = 1
	}

	each := total / time.Duration(count)
	plans := make([]SegmentPlan, count)
	for i := 0; i < count; i++ {
		start := time.Duration(i) * each
		dur := each
		if i == count-1 {
			dur = total - start
		}
		plans[i] = SegmentPlan{Index: i, Start: start, Duration: dur}
	}
	return plans
}

// Split produces segment files for asset into dir, each at most maxBytes.
// The caller decides whether a split is needed at all; Split assumes it is.
// Returns ErrDurationUnknown when the asset carries no probed duration and
// ErrSplitExhausted when even the most aggressive profile leaves an
// oversized segment.
func (s *Splitter) Split(ctx context.Context, asset Asset, maxBytes int64, preferred time.Duration, dir string) ([]Segment, error) {
	if asset.Duration <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDurationUnknown, asset.Path)
	}

	plans := Plan(asset.Duration, preferred)

	for _, profile := range s.ladder {
		segments, err := s.producePass(ctx, asset.Path, plans, profile, dir)
		if err != nil {
			s.discard(segments)
			return nil, err
		}

		if oversized := firstOversized(segments, maxBytes); oversized != nil {
			if s.warn != nil {
				s.warn(fmt.Sprintf("Warning: %s exceeds %s at %q quality, retrying with lower quality",
					oversized, format.Size(maxBytes), profile.Name))
			}
			s.discard(segments)
			continue
		}

		return segments, nil
	}

	return nil, fmt.Errorf("%w: no profile kept all %d segments under %s",
		ErrSplitExhausted, len(plans), format.Size(maxBytes))
}

// producePass extracts every planned segment with one quality profile.
// On failure it returns whatever was produced so the caller can discard it.
func (s *Splitter) producePass(ctx context.Context, src string, plans []SegmentPlan, profile media.QualityProfile, dir string) ([]Segment, error) {
	segments := make([]Segment, 0, len(plans))
	for _, plan := range plans {
		dest := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", plan.Index))
		if err := s.transcoder.Extract(ctx, src, plan.Start, plan.Duration, profile, dest); err != nil {
			return segments, err
		}

		info, err := s.files.Stat(dest)
		if err != nil {
			return segments, fmt.Errorf("%w: no output at %s", media.ErrTranscodeFailed, dest)
		}

		segments = append(segments, Segment{
			Path:     dest,
			Index:    plan.Index,
			Start:    plan.Start,
			Duration: plan.Duration,
			Size:     info.Size(),
			Profile:  profile,
		})
	}
	return segments, nil
}

// discard removes the files of a failed or oversized pass.
func (s *Splitter) discard(segments []Segment) {
	for _, seg := range segments {
		_ = s.remover.Remove(seg.Path) // best-effort; next pass overwrites anyway
	}
}

// firstOversized returns the first segment exceeding maxBytes, or nil.
func firstOversized(segments []Segment, maxBytes int64) *Segment {
	for i := range segments {
		if segments[i].Size > maxBytes {
			return &segments[i]
		}
	}
	return nil
}
