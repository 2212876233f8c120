package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edvall/ytscan/internal/analyze"
	"github.com/edvall/ytscan/internal/config"
	"github.com/edvall/ytscan/internal/download"
	"github.com/edvall/ytscan/internal/format"
	"github.com/edvall/ytscan/internal/report"
	"github.com/edvall/ytscan/internal/transcribe"
)

// AnalyzeCmd creates the analyze command: download, transcribe, and count
// keyword occurrences for one YouTube video.
func AnalyzeCmd(env *Env) *cobra.Command {
	var (
		urlFlag        string
		videoID        string
		keywordsFlag   string
		outputFormat   string
		model          string
		apiKey         string
		saveTranscript bool
		saveResults    bool
		outputDir      string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze keyword frequency in a YouTube video transcript",
		Long: `Download a YouTube video's audio, transcribe it with the Whisper API,
and report how often the given keywords occur.

Large audio is split into chunks that fit the API's 25MB request limit;
chunks that fail to transcribe are reported but do not abort the run.`,
		Example: `  ytscan analyze --url https://youtu.be/dQw4w9WgXcQ --keywords bitcoin,ethereum
  ytscan analyze --video-id dQw4w9WgXcQ --keywords "machine learning" --output json
  ytscan analyze --url ... --keywords btc --save-transcript --save-results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, env, analyzeOpts{
				url:            urlFlag,
				videoID:        videoID,
				keywords:       keywordsFlag,
				outputFormat:   outputFormat,
				model:          model,
				apiKey:         apiKey,
				saveTranscript: saveTranscript,
				saveResults:    saveResults,
				outputDir:      outputDir,
			})
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "YouTube video URL")
	cmd.Flags().StringVar(&videoID, "video-id", "", "YouTube video ID")
	cmd.Flags().StringVarP(&keywordsFlag, "keywords", "k", "", "Comma-separated keywords to analyze")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", report.FormatText, "Output format: text, json")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Whisper model (default: whisper-large-v3)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Groq API key (default: GROQ_API_KEY)")
	cmd.Flags().BoolVar(&saveTranscript, "save-transcript", false, "Save transcript to the output directory")
	cmd.Flags().BoolVar(&saveResults, "save-results", false, "Save analysis results to the output directory")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for saved files (default: output)")

	cmd.MarkFlagsOneRequired("url", "video-id")
	cmd.MarkFlagsMutuallyExclusive("url", "video-id")
	_ = cmd.MarkFlagRequired("keywords")

	return cmd
}

// analyzeOpts bundles the analyze command flags.
type analyzeOpts struct {
	url            string
	videoID        string
	keywords       string
	outputFormat   string
	model          string
	apiKey         string
	saveTranscript bool
	saveResults    bool
	outputDir      string
}

// runAnalyze executes the download → transcribe → analyze → render pipeline.
func runAnalyze(cmd *cobra.Command, env *Env, opts analyzeOpts) error {
	ctx := cmd.Context()
	cfg := config.Load(env.Getenv)
	applyOverrides(&cfg, opts.model, opts.apiKey, opts.outputDir)

	// === VALIDATION (fail-fast) ===

	keywords := splitKeywords(opts.keywords)
	if len(keywords) == 0 {
		return ErrNoKeywords
	}

	input := opts.videoID
	if input == "" {
		input = opts.url
	}
	videoID, err := download.ExtractVideoID(input)
	if err != nil {
		return err
	}

	if cfg.APIKey == "" {
		return transcribe.ErrAPIKeyMissing
	}

	// === SETUP ===

	ffmpegPath, err := env.Tools.FFmpeg()
	if err != nil {
		return err
	}
	ffprobePath, err := env.Tools.FFprobe()
	if err != nil {
		return err
	}

	downloader, err := env.Downloaders.NewDownloader(ffmpegPath, env.Stderr)
	if err != nil {
		return err
	}
	runner, err := env.Engines.NewEngine(ffmpegPath, ffprobePath, cfg.APIKey, cfg.Model, cfg, env.Stderr)
	if err != nil {
		return err
	}

	// === DOWNLOAD ===

	dlDir, err := os.MkdirTemp("", "ytscan-dl-*")
	if err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dlDir) }() // downloaded audio never outlives the run

	audioPath, err := downloader.Download(ctx, videoID, dlDir)
	if err != nil {
		return err
	}

	// === TRANSCRIBE ===

	result, err := runner.Run(ctx, audioPath)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		fmt.Fprintf(env.Stderr, "Warning: %d/%d chunks failed to transcribe\n", result.Failed, result.Total)
	}
	if result.AllFailed() {
		return fmt.Errorf("%w (%d chunks); check your API key and network connection", ErrAllChunksFailed, result.Total)
	}

	if opts.saveTranscript {
		path := filepath.Join(cfg.OutputDir,
			fmt.Sprintf("transcript_%s_%s.txt", videoID, format.Timestamp(env.Now())))
		if err := report.Save(path, result.Transcript); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Transcript saved to: %s\n", path)
	}

	// === ANALYZE & RENDER ===

	analysis, err := analyze.Keywords(ctx, result.Transcript, keywords, analyze.MaxRecommendedParallel)
	if err != nil {
		return err
	}

	rendered, err := report.Render(analysis, result, opts.outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, rendered)

	if opts.saveResults {
		ext := "txt"
		if opts.outputFormat == report.FormatJSON {
			ext = "json"
		}
		path := filepath.Join(cfg.OutputDir,
			fmt.Sprintf("analysis_%s_%s.%s", videoID, format.Timestamp(env.Now()), ext))
		if err := report.Save(path, rendered); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Results saved to: %s\n", path)
	}

	return nil
}

// applyOverrides lets flags take precedence over environment configuration.
func applyOverrides(cfg *config.Config, model, apiKey, outputDir string) {
	if model != "" {
		cfg.Model = model
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
}

// splitKeywords parses the comma-separated keyword list, dropping empties.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
