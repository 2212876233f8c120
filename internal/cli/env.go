package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/edvall/ytscan/internal/config"
	"github.com/edvall/ytscan/internal/download"
	"github.com/edvall/ytscan/internal/engine"
	"github.com/edvall/ytscan/internal/media"
	"github.com/edvall/ytscan/internal/split"
	"github.com/edvall/ytscan/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// It is the central injection point for testing commands in isolation;
// DefaultEnv wires production implementations.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	Tools       ToolResolver
	Engines     EngineFactory
	Downloaders DownloaderFactory
}

// ToolResolver locates the media tools.
type ToolResolver interface {
	FFmpeg() (string, error)
	FFprobe() (string, error)
}

// Runner runs one end-to-end transcription for a single input file.
type Runner interface {
	Run(ctx context.Context, inputPath string) (engine.Report, error)
}

// EngineFactory builds a transcription Runner from resolved tool paths.
type EngineFactory interface {
	NewEngine(ffmpegPath, ffprobePath, apiKey, model string, cfg config.Config, progress io.Writer) (Runner, error)
}

// Downloader fetches a video's audio track.
type Downloader interface {
	Download(ctx context.Context, videoID, destDir string) (string, error)
}

// DownloaderFactory builds a Downloader.
type DownloaderFactory interface {
	NewDownloader(ffmpegPath string, progress io.Writer) (Downloader, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment lookup function.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithNow sets the clock.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithTools sets the tool resolver.
func WithTools(t ToolResolver) EnvOption {
	return func(e *Env) { e.Tools = t }
}

// WithEngines sets the engine factory.
func WithEngines(f EngineFactory) EnvOption {
	return func(e *Env) { e.Engines = f }
}

// WithDownloaders sets the downloader factory.
func WithDownloaders(f DownloaderFactory) EnvOption {
	return func(e *Env) { e.Downloaders = f }
}

// DefaultEnv creates an Env with production defaults, optionally overridden.
func DefaultEnv(opts ...EnvOption) *Env {
	e := &Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Now:         time.Now,
		Tools:       media.NewResolver(),
		Engines:     productionEngineFactory{},
		Downloaders: productionDownloaderFactory{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// productionEngineFactory assembles the real transcription pipeline.
type productionEngineFactory struct{}

func (productionEngineFactory) NewEngine(ffmpegPath, ffprobePath, apiKey, model string, cfg config.Config, progress io.Writer) (Runner, error) {
	prober, err := media.NewProber(ffprobePath)
	if err != nil {
		return nil, err
	}
	transcoder, err := media.NewTranscoder(ffmpegPath)
	if err != nil {
		return nil, err
	}

	splitter := split.New(transcoder, split.WithWarnFunc(func(msg string) {
		_, _ = io.WriteString(progress, msg+"\n")
	}))
	transcriber := transcribe.NewChunkTranscriber(transcribe.NewClient(apiKey), model)

	return engine.New(prober, transcoder, splitter, transcriber,
		engine.WithChunkDuration(cfg.ChunkDuration),
		engine.WithProgress(progress),
	), nil
}

// productionDownloaderFactory builds yt-dlp downloaders.
type productionDownloaderFactory struct{}

func (productionDownloaderFactory) NewDownloader(ffmpegPath string, progress io.Writer) (Downloader, error) {
	return download.New(
		download.WithFFmpegPath(ffmpegPath),
		download.WithProgress(progress),
	)
}
