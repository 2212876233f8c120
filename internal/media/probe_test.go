package media

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// fakeRunner implements commandRunner with canned output and call recording.
type fakeRunner struct {
	output    []byte
	err       error
	lastName  string
	lastArgs  []string
	callCount int
}

func (f *fakeRunner) Output(_ context.Context, name string, args []string) ([]byte, error) {
	f.callCount++
	f.lastName = name
	f.lastArgs = args
	return f.output, f.err
}

func (f *fakeRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	return f.Output(ctx, name, args)
}

// sizeStatter reports a fixed size for any path.
type sizeStatter struct {
	size int64
	err  error
}

func (s sizeStatter) Stat(name string) (os.FileInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return fakeFileInfo{name: name, size: s.size, mode: 0644}, nil
}

// ---------------------------------------------------------------------------
// Prober.Probe
// ---------------------------------------------------------------------------

func TestProber_Probe(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{output: []byte("123.456\n")}
	p, err := NewProber("/usr/bin/ffprobe",
		WithProberRunner(runner),
		WithProberStatter(sizeStatter{size: 2048}))
	if err != nil {
		t.Fatalf("NewProber() unexpected error: %v", err)
	}

	info, err := p.Probe(context.Background(), "/audio/input.mp3")
	if err != nil {
		t.Fatalf("Probe() unexpected error: %v", err)
	}
	if want := time.Duration(123.456 * float64(time.Second)); info.Duration != want {
		t.Errorf("Probe() duration = %v, want %v", info.Duration, want)
	}
	if info.Size != 2048 {
		t.Errorf("Probe() size = %d, want 2048", info.Size)
	}
	if runner.lastName != "/usr/bin/ffprobe" {
		t.Errorf("Probe() ran %q, want /usr/bin/ffprobe", runner.lastName)
	}
}

func TestProber_ProbeMissingFile(t *testing.T) {
	t.Parallel()

	p, err := NewProber("/usr/bin/ffprobe",
		WithProberRunner(&fakeRunner{output: []byte("10.0")}),
		WithProberStatter(sizeStatter{err: os.ErrNotExist}))
	if err != nil {
		t.Fatalf("NewProber() unexpected error: %v", err)
	}

	_, err = p.Probe(context.Background(), "/missing.mp3")
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("Probe() error = %v, want ErrProbeFailed", err)
	}
}

func TestProber_ProbeCommandFailure(t *testing.T) {
	t.Parallel()

	p, err := NewProber("/usr/bin/ffprobe",
		WithProberRunner(&fakeRunner{err: errors.New("exit status 1")}),
		WithProberStatter(sizeStatter{size: 100}))
	if err != nil {
		t.Fatalf("NewProber() unexpected error: %v", err)
	}

	_, err = p.Probe(context.Background(), "/audio/input.mp3")
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("Probe() error = %v, want ErrProbeFailed", err)
	}
}

func TestNewProber_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewProber("")
	if !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("NewProber(\"\") error = %v, want ErrToolUnavailable", err)
	}
}

// ---------------------------------------------------------------------------
// parseProbeDuration
// ---------------------------------------------------------------------------

func TestParseProbeDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		out     string
		want    time.Duration
		wantErr bool
	}{
		{
			name: "plain seconds",
			out:  "90.0\n",
			want: 90 * time.Second,
		},
		{
			name: "fractional seconds",
			out:  "0.5",
			want: 500 * time.Millisecond,
		},
		{
			name: "surrounding whitespace",
			out:  "  3600.25  \n",
			want: 3600*time.Second + 250*time.Millisecond,
		},
		{
			name:    "empty output",
			out:     "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			out:     "  \n",
			wantErr: true,
		},
		{
			name:    "not a number",
			out:     "N/A",
			wantErr: true,
		},
		{
			name:    "zero duration",
			out:     "0.0",
			wantErr: true,
		},
		{
			name:    "negative duration",
			out:     "-5.0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseProbeDuration(tt.out)
			if tt.wantErr {
				if !errors.Is(err, ErrProbeFailed) {
					t.Errorf("parseProbeDuration(%q) error = %v, want ErrProbeFailed", tt.out, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbeDuration(%q) unexpected error: %v", tt.out, err)
			}
			if got != tt.want {
				t.Errorf("parseProbeDuration(%q) = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}
