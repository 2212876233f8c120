package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edvall/ytscan/internal/apierr"
	"github.com/edvall/ytscan/internal/cli"
	"github.com/edvall/ytscan/internal/download"
	"github.com/edvall/ytscan/internal/engine"
	"github.com/edvall/ytscan/internal/media"
	"github.com/edvall/ytscan/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitTranscription = 5
	ExitInterrupt     = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "ytscan",
		Short:   "Transcribe YouTube videos and analyze keyword frequency",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.AnalyzeCmd(env))
	rootCmd.AddCommand(cli.TranscribeCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes so scripts can tell a bad flag from
// a missing tool from a failed transcription.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: missing tools or credentials.
	if errors.Is(err, media.ErrToolUnavailable) || errors.Is(err, transcribe.ErrAPIKeyMissing) ||
		errors.Is(err, download.ErrYtdlpNotFound) {
		return ExitSetup
	}

	// Validation errors: bad user input.
	if errors.Is(err, download.ErrInvalidVideoID) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrNoKeywords) || errors.Is(err, cli.ErrUnsupportedFormat) {
		return ExitValidation
	}

	// Pipeline errors: download, chunking, or API failures.
	if errors.Is(err, download.ErrDownloadFailed) || errors.Is(err, engine.ErrCannotProcessInput) ||
		errors.Is(err, engine.ErrCannotSplit) || errors.Is(err, cli.ErrAllChunksFailed) ||
		errors.Is(err, apierr.ErrRejected) || errors.Is(err, apierr.ErrUnavailable) {
		return ExitTranscription
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"at least one of the flags", // One-required flag group violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
