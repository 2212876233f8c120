// Package report renders analysis results and per-chunk transcription
// diagnostics for display, and saves outputs to files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edvall/ytscan/internal/analyze"
	"github.com/edvall/ytscan/internal/engine"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// maxContextsShown bounds the sample contexts printed per keyword.
const maxContextsShown = 3

// Render formats the analysis and transcription diagnostics in the
// requested output format.
func Render(a analyze.Result, tr engine.Report, outputFormat string) (string, error) {
	switch outputFormat {
	case FormatJSON:
		return renderJSON(a, tr)
	case FormatText, "":
		return renderText(a, tr), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", outputFormat)
	}
}

// jsonPayload is the combined JSON document.
type jsonPayload struct {
	Analysis      analyze.Result `json:"analysis"`
	Transcription chunkSummary   `json:"transcription"`
}

// chunkSummary holds the per-chunk diagnostics without the transcript body.
type chunkSummary struct {
	Total     int                  `json:"total_chunks"`
	Succeeded int                  `json:"succeeded_chunks"`
	Failed    int                  `json:"failed_chunks"`
	Results   []engine.ChunkResult `json:"results"`
}

func renderJSON(a analyze.Result, tr engine.Report) (string, error) {
	payload := jsonPayload{
		Analysis: a,
		Transcription: chunkSummary{
			Total:     tr.Total,
			Succeeded: tr.Succeeded,
			Failed:    tr.Failed,
			Results:   stripTexts(tr.Results),
		},
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}
	return string(data), nil
}

// stripTexts drops per-chunk transcript bodies from the diagnostics;
// the full transcript is saved separately when requested.
func stripTexts(results []engine.ChunkResult) []engine.ChunkResult {
	out := make([]engine.ChunkResult, len(results))
	copy(out, results)
	for i := range out {
		out[i].Text = ""
	}
	return out
}

func renderText(a analyze.Result, tr engine.Report) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	subRule := strings.Repeat("-", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "YOUTUBE VIDEO TRANSCRIPT ANALYSIS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total words in transcript: %d\n", a.TotalWords)
	fmt.Fprintf(&b, "Total keyword matches: %d\n", a.TotalMatches)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, subRule)
	fmt.Fprintln(&b, "KEYWORD FREQUENCY ANALYSIS")
	fmt.Fprintln(&b, subRule)
	for _, kw := range a.Keywords {
		fmt.Fprintf(&b, "\nKEYWORD: %q\n", kw.Keyword)
		fmt.Fprintf(&b, "  Exact matches: %d\n", kw.ExactMatches)
		fmt.Fprintf(&b, "  Partial matches: %d\n", kw.PartialMatches)
		fmt.Fprintf(&b, "  Total matches: %d\n", kw.TotalMatches)
		fmt.Fprintf(&b, "  Frequency: %.2f%% of total words\n", kw.Frequency)

		if len(kw.Matches) > 0 {
			fmt.Fprintln(&b, "\n  SAMPLE CONTEXTS:")
			for i, m := range kw.Matches {
				if i == maxContextsShown {
					fmt.Fprintf(&b, "  (%d more)\n", len(kw.Matches)-maxContextsShown)
					break
				}
				fmt.Fprintf(&b, "  %d. ...%s...\n", i+1, m.Context)
			}
		}
		if len(kw.Related) > 0 {
			fmt.Fprintf(&b, "\n  RELATED TERMS:\n")
			for _, term := range kw.Related {
				fmt.Fprintf(&b, "  - %s (appears %d times)\n", term.Term, term.Count)
			}
		}
	}

	if tr.Total > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, subRule)
		fmt.Fprintln(&b, "TRANSCRIPTION DIAGNOSTICS")
		fmt.Fprintln(&b, subRule)
		fmt.Fprintf(&b, "Chunks: %d total, %d succeeded, %d failed\n", tr.Total, tr.Succeeded, tr.Failed)
		for _, res := range tr.Results {
			if res.Status == engine.StatusFailed {
				fmt.Fprintf(&b, "  chunk %d failed: %s\n", res.Index, res.Err)
			}
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	return b.String()
}

// Save writes content to path, creating parent directories as needed.
func Save(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
