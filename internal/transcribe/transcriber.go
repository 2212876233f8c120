// Package transcribe submits audio segments to the Whisper transcription
// backend and normalizes its responses to plain text.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/edvall/ytscan/internal/apierr"
	"github.com/edvall/ytscan/internal/format"
)

const (
	// DefaultModel is the Whisper model used when none is configured.
	DefaultModel = "whisper-large-v3"

	// MaxRequestBytes is the backend's per-request payload ceiling.
	MaxRequestBytes = 25_000_000

	// groqBaseURL is the Groq OpenAI-compatible API endpoint.
	groqBaseURL = "https://api.groq.com/openai/v1"
)

// backend abstracts the transcription API client.
// *openai.Client implements this implicitly, which allows mocks in tests.
type backend interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Compile-time interface compliance check.
var _ backend = (*openai.Client)(nil)

// NewClient creates a Whisper client for the Groq endpoint.
func NewClient(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return openai.NewClientWithConfig(cfg)
}

// ChunkTranscriber transcribes one audio segment per call. It enforces the
// request size precondition locally and classifies backend failures into
// the apierr sentinels; it never retries internally.
type ChunkTranscriber struct {
	client          backend
	model           string
	maxRequestBytes int64
	files           fileStatter
}

// Option configures a ChunkTranscriber.
type Option func(*ChunkTranscriber)

// WithMaxRequestBytes overrides the backend request size limit.
func WithMaxRequestBytes(n int64) Option {
	return func(t *ChunkTranscriber) {
		if n > 0 {
			t.maxRequestBytes = n
		}
	}
}

// WithStatter sets the file statter (for testing).
func WithStatter(s fileStatter) Option {
	return func(t *ChunkTranscriber) { t.files = s }
}

// NewChunkTranscriber creates a ChunkTranscriber using the given backend
// client and model identifier. An empty model falls back to DefaultModel.
func NewChunkTranscriber(client backend, model string, opts ...Option) *ChunkTranscriber {
	if model == "" {
		model = DefaultModel
	}
	t := &ChunkTranscriber{
		client:          client,
		model:           model,
		maxRequestBytes: MaxRequestBytes,
		files:           osFileStatter{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MaxRequestBytes returns the configured per-request size limit.
func (t *ChunkTranscriber) MaxRequestBytes() int64 {
	return t.maxRequestBytes
}

// Transcribe converts one audio segment to trimmed text.
//
// A segment larger than the request limit fails fast with ErrChunkTooLarge
// before any network call. Backend failures come back wrapped in
// apierr.ErrRejected or apierr.ErrUnavailable. An empty-but-successful
// response is valid and returns an empty string.
func (t *ChunkTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	info, err := t.files.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat segment: %w", err)
	}
	if info.Size() > t.maxRequestBytes {
		return "", fmt.Errorf("%w: %s is %s, limit is %s",
			ErrChunkTooLarge, path, format.Size(info.Size()), format.Size(t.maxRequestBytes))
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", apierr.Classify(err)
	}

	return normalizeResponse(resp), nil
}

// normalizeResponse resolves the backend's two response shapes to plain text.
// The backend returns either a structured object with a text field or a raw
// text payload; the client surfaces both through the Text field, so this is
// the single place where the shape distinction is collapsed.
func normalizeResponse(resp openai.AudioResponse) string {
	return strings.TrimSpace(resp.Text)
}
