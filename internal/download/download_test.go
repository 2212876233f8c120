package download

// Notes:
// - White-box testing (same package) since the command runner seam is an
//   unexported interface.
// - The fake runner writes the expected output file into the destination
//   directory, matching how yt-dlp behaves.

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// ExtractVideoID
// ---------------------------------------------------------------------------

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare video ID",
			input: "dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch URL without www",
			input: "https://youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch URL with extra params",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL123",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short URL",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short URL with query",
			input: "https://youtu.be/dQw4w9WgXcQ?t=42",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "mobile host",
			input: "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "ID too short",
			input:   "abc123",
			wantErr: true,
		},
		{
			name:    "ID too long",
			input:   "dQw4w9WgXcQextra",
			wantErr: true,
		},
		{
			name:    "unrelated URL",
			input:   "https://vimeo.com/123456",
			wantErr: true,
		},
		{
			name:    "watch URL without v param",
			input:   "https://www.youtube.com/playlist?list=PL123",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractVideoID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVideoID) {
					t.Errorf("ExtractVideoID(%q) error = %v, want ErrInvalidVideoID", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWatchURL(t *testing.T) {
	t.Parallel()

	got := WatchURL("dQw4w9WgXcQ")
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got != want {
		t.Errorf("WatchURL() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Downloader.Download
// ---------------------------------------------------------------------------

// writingRunner simulates yt-dlp by writing the named file on invocation.
type writingRunner struct {
	writeName string // file created in destDir; empty writes nothing
	err       error
	lastName  string
	lastArgs  []string
}

func (w *writingRunner) CombinedOutput(_ context.Context, name string, args []string) ([]byte, error) {
	w.lastName = name
	w.lastArgs = args
	if w.err != nil {
		return []byte("ERROR: video unavailable"), w.err
	}
	if w.writeName != "" {
		// The -o template's directory is where the output lands.
		var dest string
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				dest = filepath.Dir(args[i+1])
			}
		}
		if err := os.WriteFile(filepath.Join(dest, w.writeName), []byte("mp3"), 0644); err != nil {
			return nil, err
		}
	}
	return []byte("[download] 100%"), nil
}

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()
	runner := &writingRunner{writeName: "yt_dQw4w9WgXcQ.mp3"}
	d, err := New(
		WithYtdlpPath("/usr/bin/yt-dlp"),
		WithRunner(runner),
		WithProgress(io.Discard),
		WithFFmpegPath("/usr/bin/ffmpeg"),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	got, err := d.Download(context.Background(), "dQw4w9WgXcQ", destDir)
	if err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}
	if want := filepath.Join(destDir, "yt_dQw4w9WgXcQ.mp3"); got != want {
		t.Errorf("Download() = %q, want %q", got, want)
	}

	argLine := strings.Join(runner.lastArgs, " ")
	for _, want := range []string{
		"--extract-audio",
		"--audio-format mp3",
		"--audio-quality 0",
		"--ffmpeg-location /usr/bin",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	} {
		if !strings.Contains(argLine, want) {
			t.Errorf("yt-dlp args missing %q: %s", want, argLine)
		}
	}
}

func TestDownloader_DownloadFallsBackToPrefixScan(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()
	// yt-dlp wrote a differently suffixed mp3.
	runner := &writingRunner{writeName: "yt_dQw4w9WgXcQ.f140.mp3"}
	d, err := New(WithYtdlpPath("/usr/bin/yt-dlp"), WithRunner(runner), WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	got, err := d.Download(context.Background(), "dQw4w9WgXcQ", destDir)
	if err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}
	if want := filepath.Join(destDir, "yt_dQw4w9WgXcQ.f140.mp3"); got != want {
		t.Errorf("Download() = %q, want prefix-scan hit %q", got, want)
	}
}

func TestDownloader_DownloadCommandFailure(t *testing.T) {
	t.Parallel()

	runner := &writingRunner{err: errors.New("exit status 1")}
	d, err := New(WithYtdlpPath("/usr/bin/yt-dlp"), WithRunner(runner), WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	_, err = d.Download(context.Background(), "dQw4w9WgXcQ", t.TempDir())
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("Download() error = %v, want ErrDownloadFailed", err)
	}
}

func TestDownloader_DownloadNoOutputFile(t *testing.T) {
	t.Parallel()

	// Command succeeds but writes nothing.
	runner := &writingRunner{}
	d, err := New(WithYtdlpPath("/usr/bin/yt-dlp"), WithRunner(runner), WithProgress(io.Discard))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	_, err = d.Download(context.Background(), "dQw4w9WgXcQ", t.TempDir())
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("Download() error = %v, want ErrDownloadFailed", err)
	}
}

func TestNew_YtdlpNotOnPath(t *testing.T) {
	t.Parallel()

	_, err := New(WithLookPath(func(string) (string, error) {
		return "", errors.New("not found")
	}))
	if !errors.Is(err, ErrYtdlpNotFound) {
		t.Errorf("New() error = %v, want ErrYtdlpNotFound", err)
	}
}

func TestNew_ExplicitPathSkipsLookup(t *testing.T) {
	t.Parallel()

	d, err := New(
		WithYtdlpPath("/opt/yt-dlp"),
		WithLookPath(func(string) (string, error) {
			return "", errors.New("must not be called")
		}),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if d.ytdlpPath != "/opt/yt-dlp" {
		t.Errorf("ytdlpPath = %q, want explicit /opt/yt-dlp", d.ytdlpPath)
	}
}
