package split

// Notes:
// - White-box testing (same package) since the transcoder and file seams are
//   unexported interfaces.
// - The fake transcoder records per-profile sizes so the degradation ladder
//   can be exercised without ffmpeg.

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edvall/ytscan/internal/media"
)

// fakeTranscoder records Extract calls and tells the paired statter what
// size the produced file should report per quality profile.
type fakeTranscoder struct {
	sizes map[string]int64 // profile name -> reported segment size
	err   error
	calls []extractCall
}

type extractCall struct {
	src     string
	start   time.Duration
	dur     time.Duration
	profile string
	dest    string
}

func (f *fakeTranscoder) Extract(_ context.Context, src string, start, dur time.Duration, profile media.QualityProfile, dest string) error {
	f.calls = append(f.calls, extractCall{src, start, dur, profile.Name, dest})
	return f.err
}

// lastProfile returns the profile size to report for a path, based on which
// profile most recently produced it.
func (f *fakeTranscoder) sizeFor(dest string) int64 {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].dest == dest {
			return f.sizes[f.calls[i].profile]
		}
	}
	return 0
}

// transcoderStatter reports segment sizes driven by the fake transcoder.
type transcoderStatter struct {
	tc *fakeTranscoder
}

func (s transcoderStatter) Stat(name string) (os.FileInfo, error) {
	return segInfo{name: name, size: s.tc.sizeFor(name)}, nil
}

type segInfo struct {
	name string
	size int64
}

func (s segInfo) Name() string       { return s.name }
func (s segInfo) Size() int64        { return s.size }
func (s segInfo) Mode() fs.FileMode  { return 0644 }
func (s segInfo) ModTime() time.Time { return time.Time{} }
func (s segInfo) IsDir() bool        { return false }
func (s segInfo) Sys() any           { return nil }

// recordingRemover records removed paths.
type recordingRemover struct {
	removed []string
}

func (r *recordingRemover) Remove(name string) error {
	r.removed = append(r.removed, name)
	return nil
}

// ---------------------------------------------------------------------------
// Plan - segment planning
// ---------------------------------------------------------------------------

func TestPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     time.Duration
		preferred time.Duration
		wantCount int
	}{
		{
			name:      "exact multiple",
			total:     10 * time.Minute,
			preferred: 5 * time.Minute,
			wantCount: 2,
		},
		{
			name:      "remainder adds a segment",
			total:     90 * time.Second,
			preferred: 30 * time.Second,
			wantCount: 3,
		},
		{
			name:      "shorter than preferred",
			total:     time.Minute,
			preferred: 5 * time.Minute,
			wantCount: 1,
		},
		{
			name:      "just over one chunk",
			total:     5*time.Minute + time.Second,
			preferred: 5 * time.Minute,
			wantCount: 2,
		},
		{
			name:      "zero preferred treated as whole file",
			total:     time.Hour,
			preferred: 0,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plans := Plan(tt.total, tt.preferred)
			if len(plans) != tt.wantCount {
				t.Fatalf("Plan(%v, %v) gave %d segments, want %d",
					tt.total, tt.preferred, len(plans), tt.wantCount)
			}

			// Plans must tile [0, total) in order with no gaps.
			var cursor time.Duration
			for i, p := range plans {
				if p.Index != i {
					t.Errorf("plans[%d].Index = %d, want %d", i, p.Index, i)
				}
				if p.Start != cursor {
					t.Errorf("plans[%d].Start = %v, want %v", i, p.Start, cursor)
				}
				if p.Duration <= 0 {
					t.Errorf("plans[%d].Duration = %v, want > 0", i, p.Duration)
				}
				cursor += p.Duration
			}
			if cursor != tt.total {
				t.Errorf("plan covers %v, want %v", cursor, tt.total)
			}
		})
	}
}

func TestPlan_ZeroTotal(t *testing.T) {
	t.Parallel()

	if plans := Plan(0, time.Minute); plans != nil {
		t.Errorf("Plan(0, 1m) = %v, want nil", plans)
	}
}

func TestPlan_LastAbsorbsRemainder(t *testing.T) {
	t.Parallel()

	plans := Plan(90*time.Second, 30*time.Second)
	if len(plans) != 3 {
		t.Fatalf("Plan(90s, 30s) gave %d segments, want 3", len(plans))
	}
	last := plans[len(plans)-1]
	if last.Start+last.Duration != 90*time.Second {
		t.Errorf("last segment ends at %v, want 90s", last.Start+last.Duration)
	}
}

// ---------------------------------------------------------------------------
// Splitter.Split - quality degradation
// ---------------------------------------------------------------------------

func TestSplitter_FirstProfileFits(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{sizes: map[string]int64{
		"standard": 10_000_000,
	}}
	s := New(tc,
		WithStatter(transcoderStatter{tc}),
		WithRemover(&recordingRemover{}))

	asset := Asset{Path: "/in.mp3", Size: 30_000_000, Duration: 10 * time.Minute}
	segments, err := s.Split(context.Background(), asset, 25_000_000, 5*time.Minute, "/scratch")
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Split() gave %d segments, want 2", len(segments))
	}
	for i, seg := range segments {
		if seg.Index != i {
			t.Errorf("segments[%d].Index = %d, want %d", i, seg.Index, i)
		}
		if seg.Profile.Name != "standard" {
			t.Errorf("segments[%d].Profile = %q, want standard", i, seg.Profile.Name)
		}
	}
}

func TestSplitter_DegradesUntilFits(t *testing.T) {
	t.Parallel()

	// standard and reduced passes produce oversized segments; minimal fits.
	tc := &fakeTranscoder{sizes: map[string]int64{
		"standard": 30_000_000,
		"reduced":  26_000_000,
		"minimal":  12_000_000,
	}}
	remover := &recordingRemover{}
	var warnings []string
	s := New(tc,
		WithStatter(transcoderStatter{tc}),
		WithRemover(remover),
		WithWarnFunc(func(msg string) { warnings = append(warnings, msg) }))

	asset := Asset{Path: "/in.mp3", Size: 60_000_000, Duration: 10 * time.Minute}
	segments, err := s.Split(context.Background(), asset, 25_000_000, 5*time.Minute, "/scratch")
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	for i, seg := range segments {
		if seg.Profile.Name != "minimal" {
			t.Errorf("segments[%d].Profile = %q, want minimal", i, seg.Profile.Name)
		}
	}

	// Two discarded passes of two segments each.
	if len(remover.removed) != 4 {
		t.Errorf("discarded %d files, want 4", len(remover.removed))
	}
	if len(warnings) != 2 {
		t.Errorf("got %d warnings, want 2", len(warnings))
	}

	// Time boundaries must be identical across passes.
	for _, call := range tc.calls {
		if call.start != 0 && call.start != 5*time.Minute {
			t.Errorf("Extract start = %v, want 0 or 5m", call.start)
		}
	}
}

func TestSplitter_LadderExhausted(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{sizes: map[string]int64{
		"standard": 30_000_000,
		"reduced":  28_000_000,
		"minimal":  26_000_000,
	}}
	s := New(tc,
		WithStatter(transcoderStatter{tc}),
		WithRemover(&recordingRemover{}))

	asset := Asset{Path: "/in.mp3", Size: 90_000_000, Duration: 10 * time.Minute}
	_, err := s.Split(context.Background(), asset, 25_000_000, 5*time.Minute, "/scratch")
	if !errors.Is(err, ErrSplitExhausted) {
		t.Errorf("Split() error = %v, want ErrSplitExhausted", err)
	}
}

func TestSplitter_UnknownDuration(t *testing.T) {
	t.Parallel()

	s := New(&fakeTranscoder{})
	asset := Asset{Path: "/in.mp3", Size: 30_000_000, Duration: 0}
	_, err := s.Split(context.Background(), asset, 25_000_000, 5*time.Minute, "/scratch")
	if !errors.Is(err, ErrDurationUnknown) {
		t.Errorf("Split() error = %v, want ErrDurationUnknown", err)
	}
}

func TestSplitter_ExtractFailureDiscardsPartial(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{err: errors.New("exit status 1")}
	remover := &recordingRemover{}
	s := New(tc,
		WithStatter(transcoderStatter{tc}),
		WithRemover(remover))

	asset := Asset{Path: "/in.mp3", Size: 30_000_000, Duration: 10 * time.Minute}
	_, err := s.Split(context.Background(), asset, 25_000_000, 5*time.Minute, "/scratch")
	if err == nil {
		t.Fatal("Split() = nil error, want transcode error")
	}
}

func TestSplitter_SequentialChunkNames(t *testing.T) {
	t.Parallel()

	tc := &fakeTranscoder{sizes: map[string]int64{"standard": 1000}}
	s := New(tc, WithStatter(transcoderStatter{tc}), WithRemover(&recordingRemover{}))

	asset := Asset{Path: "/in.mp3", Size: 5000, Duration: 90 * time.Second}
	segments, err := s.Split(context.Background(), asset, 25_000_000, 30*time.Second, "/scratch")
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}

	want := []string{
		filepath.Join("/scratch", "chunk_000.mp3"),
		filepath.Join("/scratch", "chunk_001.mp3"),
		filepath.Join("/scratch", "chunk_002.mp3"),
	}
	if len(segments) != len(want) {
		t.Fatalf("Split() gave %d segments, want %d", len(segments), len(want))
	}
	for i, seg := range segments {
		if seg.Path != want[i] {
			t.Errorf("segments[%d].Path = %q, want %q", i, seg.Path, want[i])
		}
	}
}
