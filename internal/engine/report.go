package engine

import (
	"sort"
	"strings"
)

// Status is the outcome of transcribing one segment.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ChunkResult is the immutable outcome of transcribing one segment.
// Text is present iff the status is succeeded; Err iff it failed.
type ChunkResult struct {
	Index  int    `json:"index"`
	Status Status `json:"status"`
	Text   string `json:"text,omitempty"`
	Err    string `json:"error,omitempty"`
}

// Report is the final output of one orchestration run.
// Succeeded+Failed always equals Total. Failed segments are omitted from the
// transcript but retained in Results.
type Report struct {
	Transcript string        `json:"transcript"`
	Total      int           `json:"total_chunks"`
	Succeeded  int           `json:"succeeded_chunks"`
	Failed     int           `json:"failed_chunks"`
	Results    []ChunkResult `json:"results"`
}

// AllFailed reports whether every attempted segment failed.
// Callers surface this as a warning; it is not an orchestration error,
// since the failure list itself is valuable output.
func (r Report) AllFailed() bool {
	return r.Total > 0 && r.Succeeded == 0
}

// Merge builds a Report from per-chunk results. It is a pure function of its
// input: the transcript is the space-joined text of every succeeded result in
// ascending index order, regardless of the order failures occurred.
func Merge(results []ChunkResult) Report {
	ordered := make([]ChunkResult, len(results))
	copy(ordered, results)
	// Results arrive in index order from the sequential loop; sorting here
	// keeps the merge correct if a caller ever reorders them.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	report := Report{Results: ordered, Total: len(ordered)}
	var texts []string
	for _, res := range ordered {
		switch res.Status {
		case StatusSucceeded:
			report.Succeeded++
			if res.Text != "" {
				texts = append(texts, res.Text)
			}
		default:
			report.Failed++
		}
	}
	report.Transcript = strings.Join(texts, " ")
	return report
}
