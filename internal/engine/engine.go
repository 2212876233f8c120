// Package engine drives one end-to-end chunked transcription run: probe,
// split if needed, transcribe each segment in order, merge, clean up.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/edvall/ytscan/internal/apierr"
	"github.com/edvall/ytscan/internal/format"
	"github.com/edvall/ytscan/internal/media"
	"github.com/edvall/ytscan/internal/split"
	"github.com/edvall/ytscan/internal/transcribe"
)

// Defaults for one orchestration run.
const (
	// DefaultChunkDuration is the preferred segment length (5 minutes,
	// like the backend's own guidance for long audio).
	DefaultChunkDuration = 5 * time.Minute

	// defaultChunkTimeout bounds one backend call so a hung request cannot
	// stall the whole pipeline.
	defaultChunkTimeout = 5 * time.Minute

	// defaultChunkRetries is the per-chunk retry budget for transient
	// backend failures before the chunk is recorded as failed.
	defaultChunkRetries = 2
)

// prober extracts duration and size metadata from an audio file.
type prober interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// transcoder re-encodes a whole file at a given quality profile.
type transcoder interface {
	Reencode(ctx context.Context, src string, profile media.QualityProfile, dest string) error
}

// splitter produces size-bounded segments from an oversized asset.
type splitter interface {
	Split(ctx context.Context, asset split.Asset, maxBytes int64, preferred time.Duration, dir string) ([]split.Segment, error)
}

// chunkTranscriber converts one segment file to text.
type chunkTranscriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
	MaxRequestBytes() int64
}

// Compile-time checks that the production types satisfy the seams.
var (
	_ prober           = (*media.Prober)(nil)
	_ transcoder       = (*media.Transcoder)(nil)
	_ splitter         = (*split.Splitter)(nil)
	_ chunkTranscriber = (*transcribe.ChunkTranscriber)(nil)
)

// Orchestrator runs the chunked transcription pipeline for one input file.
// It owns the per-run scratch directory: every temporary segment is created
// under it and removed before Run returns, on success and failure alike.
// The original input file is never deleted.
type Orchestrator struct {
	prober      prober
	transcoder  transcoder
	splitter    splitter
	transcriber chunkTranscriber

	preferredChunk time.Duration
	chunkTimeout   time.Duration
	retry          apierr.RetryConfig
	scratchRoot    string
	progress       io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithChunkDuration sets the preferred segment length.
func WithChunkDuration(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.preferredChunk = d
		}
	}
}

// WithChunkTimeout bounds each backend call.
func WithChunkTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.chunkTimeout = d
		}
	}
}

// WithRetryConfig sets the per-chunk retry ladder for transient failures.
func WithRetryConfig(cfg apierr.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// WithScratchRoot places per-run scratch directories under dir instead of
// the system temp directory.
func WithScratchRoot(dir string) Option {
	return func(o *Orchestrator) { o.scratchRoot = dir }
}

// WithProgress sets the writer for progress and warning lines.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) { o.progress = w }
}

// New creates an Orchestrator from its four collaborators.
func New(p prober, tc transcoder, sp splitter, tr chunkTranscriber, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		prober:         p,
		transcoder:     tc,
		splitter:       sp,
		transcriber:    tr,
		preferredChunk: DefaultChunkDuration,
		chunkTimeout:   defaultChunkTimeout,
		retry:          apierr.RetryConfig{MaxRetries: defaultChunkRetries, BaseDelay: time.Second, MaxDelay: 30 * time.Second},
		progress:       os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run transcribes the audio file at inputPath and returns the merged report.
//
// Only ErrCannotProcessInput and ErrCannotSplit are returned as errors;
// per-chunk failures are absorbed into the report. A report and an error are
// mutually exclusive outcomes.
func (o *Orchestrator) Run(ctx context.Context, inputPath string) (Report, error) {
	scratch, err := os.MkdirTemp(o.scratchRoot, "ytscan-*")
	if err != nil {
		return Report{}, fmt.Errorf("%w: create scratch directory: %v", ErrCannotProcessInput, err)
	}
	// Scratch is removed on every path out of Run, including fatal ones.
	// Cleanup failures are reported, never escalated: a leftover temp file
	// must not mask the primary result or error.
	defer o.cleanup(scratch)

	segments, err := o.prepare(ctx, inputPath, scratch)
	if err != nil {
		return Report{}, err
	}

	results := o.transcribeEach(ctx, segments)
	report := Merge(results)

	fmt.Fprintf(o.progress, "Transcription completed: %d characters from %d/%d chunks\n",
		len(report.Transcript), report.Succeeded, report.Total)
	return report, nil
}

// prepare resolves the input into an ordered list of segment files:
// the file itself when it fits the request limit, split segments otherwise.
func (o *Orchestrator) prepare(ctx context.Context, inputPath, scratch string) ([]split.Segment, error) {
	maxBytes := o.transcriber.MaxRequestBytes()

	info, err := o.prober.Probe(ctx, inputPath)
	if err != nil {
		// Probe failed: fall back to a whole-file re-encode at the most
		// aggressive profile, skipping the split entirely.
		fmt.Fprintf(o.progress, "Warning: probe failed (%v), re-encoding at minimal quality\n", err)
		seg, fallbackErr := o.reencodeWhole(ctx, inputPath, scratch, maxBytes)
		if fallbackErr != nil {
			return nil, fmt.Errorf("%w: probe failed (%v) and quality fallback failed: %v",
				ErrCannotProcessInput, err, fallbackErr)
		}
		return []split.Segment{seg}, nil
	}

	if info.Size <= maxBytes {
		fmt.Fprintf(o.progress, "Audio file is small enough (%s), transcribing directly\n", format.Size(info.Size))
		return []split.Segment{{Path: inputPath, Index: 0, Duration: info.Duration, Size: info.Size}}, nil
	}

	fmt.Fprintf(o.progress, "Audio file is too large (%s), splitting into chunks...\n", format.Size(info.Size))
	asset := split.Asset{Path: inputPath, Size: info.Size, Duration: info.Duration}

	segments, err := o.splitter.Split(ctx, asset, maxBytes, o.preferredChunk, scratch)
	if errors.Is(err, split.ErrSplitExhausted) {
		// One coarser retry with halved chunk duration bounds total attempts.
		halved := o.preferredChunk / 2
		fmt.Fprintf(o.progress, "Warning: split exhausted quality ladder, retrying with %s chunks\n",
			format.Duration(halved))
		segments, err = o.splitter.Split(ctx, asset, maxBytes, halved, scratch)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotSplit, err)
	}

	fmt.Fprintf(o.progress, "Split audio into %d chunks\n", len(segments))
	return segments, nil
}

// reencodeWhole re-encodes the entire input at the most aggressive profile
// and verifies the result fits the request limit.
func (o *Orchestrator) reencodeWhole(ctx context.Context, inputPath, scratch string, maxBytes int64) (split.Segment, error) {
	dest := filepath.Join(scratch, "reduced_quality.mp3")
	if err := o.transcoder.Reencode(ctx, inputPath, media.MostAggressive(), dest); err != nil {
		return split.Segment{}, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return split.Segment{}, err
	}
	if info.Size() > maxBytes {
		return split.Segment{}, fmt.Errorf("still %s after quality reduction, limit is %s",
			format.Size(info.Size()), format.Size(maxBytes))
	}

	return split.Segment{Path: dest, Index: 0, Size: info.Size(), Profile: media.MostAggressive()}, nil
}

// transcribeEach runs the strictly sequential per-segment loop. A failure on
// one segment never halts the loop: it is recorded and the next index is
// attempted. This is the central failure-isolation contract of the engine.
func (o *Orchestrator) transcribeEach(ctx context.Context, segments []split.Segment) []ChunkResult {
	results := make([]ChunkResult, 0, len(segments))

	for _, seg := range segments {
		if ctx.Err() != nil {
			// Cancellation: stop submitting new chunks and report what was
			// gathered rather than discarding completed work.
			break
		}

		fmt.Fprintf(o.progress, "Transcribing chunk %d/%d...\n", seg.Index+1, len(segments))
		text, err := o.transcribeOne(ctx, seg.Path)
		if err != nil {
			fmt.Fprintf(o.progress, "Warning: chunk %d failed: %v\n", seg.Index, err)
			results = append(results, ChunkResult{Index: seg.Index, Status: StatusFailed, Err: err.Error()})
			continue
		}

		results = append(results, ChunkResult{Index: seg.Index, Status: StatusSucceeded, Text: text})
	}

	return results
}

// transcribeOne calls the backend for a single segment with a per-chunk
// timeout and the transient-failure retry ladder.
func (o *Orchestrator) transcribeOne(ctx context.Context, path string) (string, error) {
	return apierr.RetryWithBackoff(ctx, o.retry, func() (string, error) {
		chunkCtx, cancel := context.WithTimeout(ctx, o.chunkTimeout)
		defer cancel()

		text, err := o.transcriber.Transcribe(chunkCtx, path)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// A per-chunk timeout is a backend availability problem, not a
			// run-level cancellation.
			err = apierr.Classify(err)
		}
		return text, err
	}, apierr.IsRetryable)
}

// cleanup removes every file in the scratch directory, then the directory
// itself, aggregating failures into one reported error.
func (o *Orchestrator) cleanup(scratch string) {
	var errs *multierror.Error

	entries, err := os.ReadDir(scratch)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(scratch, entry.Name())); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := os.Remove(scratch); err != nil && !os.IsNotExist(err) {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		fmt.Fprintf(o.progress, "Warning: scratch cleanup incomplete: %v\n", err)
	}
}
