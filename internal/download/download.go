// Package download acquires audio from YouTube by driving the yt-dlp
// executable. It is the upstream collaborator of the transcription engine:
// the engine neither knows nor cares how the input file was obtained.
package download

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// videoIDRe matches a bare 11-character YouTube video ID.
var videoIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID extracts the video ID from any common YouTube URL form
// (watch?v=..., youtu.be/..., or a bare ID).
func ExtractVideoID(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidVideoID)
	}
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, raw)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch {
	case strings.HasSuffix(host, "youtube.com"):
		if id := u.Query().Get("v"); videoIDRe.MatchString(id) {
			return id, nil
		}
	case host == "youtu.be":
		if id := strings.Trim(u.Path, "/"); videoIDRe.MatchString(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, raw)
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// commandRunner executes external commands.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// osCommandRunner implements commandRunner using exec.CommandContext.
type osCommandRunner struct{}

func (osCommandRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name and args are built by this package, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Downloader fetches the audio track of a YouTube video as MP3.
type Downloader struct {
	ytdlpPath  string
	ffmpegPath string // passed to yt-dlp for audio extraction; optional
	cmd        commandRunner
	progress   io.Writer
	lookPath   func(string) (string, error)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithFFmpegPath tells yt-dlp where to find ffmpeg for audio extraction.
func WithFFmpegPath(path string) Option {
	return func(d *Downloader) { d.ffmpegPath = path }
}

// WithYtdlpPath overrides yt-dlp discovery with an explicit path.
func WithYtdlpPath(path string) Option {
	return func(d *Downloader) { d.ytdlpPath = path }
}

// WithRunner sets the command runner (for testing).
func WithRunner(r commandRunner) Option {
	return func(d *Downloader) { d.cmd = r }
}

// WithProgress sets the writer for progress lines.
func WithProgress(w io.Writer) Option {
	return func(d *Downloader) { d.progress = w }
}

// WithLookPath sets the executable lookup function (for testing).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Downloader) { d.lookPath = fn }
}

// New creates a Downloader, locating yt-dlp on the system PATH unless an
// explicit path was provided.
func New(opts ...Option) (*Downloader, error) {
	d := &Downloader{
		cmd:      osCommandRunner{},
		progress: os.Stderr,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.ytdlpPath == "" {
		path, err := d.lookPath("yt-dlp")
		if err != nil {
			return nil, fmt.Errorf("%w: install with: pip install yt-dlp", ErrYtdlpNotFound)
		}
		d.ytdlpPath = path
	}
	return d, nil
}

// Download fetches the audio of videoID into destDir and returns the path
// of the resulting MP3 file.
func (d *Downloader) Download(ctx context.Context, videoID, destDir string) (string, error) {
	outBase := filepath.Join(destDir, "yt_"+videoID)
	args := []string{
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", outBase + ".%(ext)s",
	}
	if d.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", filepath.Dir(d.ffmpegPath))
	}
	args = append(args, WatchURL(videoID))

	fmt.Fprintf(d.progress, "Downloading audio from: %s\n", WatchURL(videoID))
	output, err := d.cmd.CombinedOutput(ctx, d.ytdlpPath, args)
	if err != nil {
		return "", fmt.Errorf("%w: yt-dlp: %v\nOutput: %s", ErrDownloadFailed, err, string(output))
	}

	expected := outBase + ".mp3"
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}

	// yt-dlp occasionally names the file after an intermediate container;
	// fall back to scanning for the expected prefix.
	if found := findByPrefix(destDir, filepath.Base(outBase)); found != "" {
		return found, nil
	}

	return "", fmt.Errorf("%w: no output file for video %s", ErrDownloadFailed, videoID)
}

// findByPrefix returns the first .mp3 file in dir whose name starts with base.
func findByPrefix(dir, base string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, base) && strings.HasSuffix(name, ".mp3") {
			return filepath.Join(dir, name)
		}
	}
	return ""
}
