package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edvall/ytscan/internal/config"
	"github.com/edvall/ytscan/internal/report"
	"github.com/edvall/ytscan/internal/transcribe"
)

// supportedExtensions lists the audio containers the Whisper API accepts.
var supportedExtensions = map[string]bool{
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".ogg":  true,
	".wav":  true,
	".webm": true,
}

// TranscribeCmd creates the transcribe command: transcribe a local audio
// file and write the transcript next to it.
func TranscribeCmd(env *Env) *cobra.Command {
	var (
		outputPath string
		model      string
		apiKey     string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a local audio file",
		Long: `Transcribe a local audio file with the Whisper API and save the
transcript as a text file.

Files larger than the API's 25MB request limit are split into chunks
and the per-chunk transcripts are merged in order.`,
		Example: `  ytscan transcribe recording.mp3
  ytscan transcribe interview.wav -o interview-transcript.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0], outputPath, model, apiKey)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Transcript destination (default: <input>.txt)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Whisper model (default: whisper-large-v3)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Groq API key (default: GROQ_API_KEY)")

	return cmd
}

func runTranscribe(cmd *cobra.Command, env *Env, inputPath, outputPath, model, apiKey string) error {
	ctx := cmd.Context()
	cfg := config.Load(env.Getenv)
	applyOverrides(&cfg, model, apiKey, "")

	info, err := os.Stat(inputPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
	}
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if cfg.APIKey == "" {
		return transcribe.ErrAPIKeyMissing
	}

	ffmpegPath, err := env.Tools.FFmpeg()
	if err != nil {
		return err
	}
	ffprobePath, err := env.Tools.FFprobe()
	if err != nil {
		return err
	}
	runner, err := env.Engines.NewEngine(ffmpegPath, ffprobePath, cfg.APIKey, cfg.Model, cfg, env.Stderr)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, inputPath)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		fmt.Fprintf(env.Stderr, "Warning: %d/%d chunks failed to transcribe\n", result.Failed, result.Total)
	}
	if result.AllFailed() {
		return fmt.Errorf("%w (%d chunks); check your API key and network connection", ErrAllChunksFailed, result.Total)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".txt"
	}
	if err := report.Save(outputPath, result.Transcript); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Transcript saved to: %s\n", outputPath)

	return nil
}
