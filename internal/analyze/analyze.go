// Package analyze counts keyword occurrences in a transcript and extracts
// surrounding context and co-occurring terms.
package analyze

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Context window sizes, in characters around a match.
const (
	contextRadius = 100
	relatedRadius = 150
)

// maxRelatedTerms bounds the related-term list per keyword.
const maxRelatedTerms = 10

// MaxRecommendedParallel is the upper limit for concurrent keyword scans.
const MaxRecommendedParallel = 10

// stopWords are excluded from related-term discovery.
var stopWords = map[string]bool{
	"the": true, "and": true, "that": true, "for": true, "you": true,
	"this": true, "with": true, "have": true, "from": true, "are": true,
	"was": true, "were": true,
}

// wordRe matches candidate related terms (lowercase words of 3+ letters).
var wordRe = regexp.MustCompile(`\b[a-z]{3,}\b`)

// Match is one keyword occurrence with its surrounding context.
type Match struct {
	Context  string `json:"text"`     // ±contextRadius chars, keyword bolded
	Position int    `json:"position"` // character offset in the transcript
}

// RelatedTerm is a word that frequently appears near a keyword.
type RelatedTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// KeywordStat holds the counts for one keyword.
type KeywordStat struct {
	Keyword        string        `json:"keyword"`
	ExactMatches   int           `json:"exact_matches"`
	PartialMatches int           `json:"partial_matches"`
	TotalMatches   int           `json:"total_matches"`
	Frequency      float64       `json:"frequency"` // exact matches per 100 words
	Matches        []Match       `json:"contexts,omitempty"`
	Related        []RelatedTerm `json:"related_terms,omitempty"`
}

// Result is the full analysis of one transcript.
type Result struct {
	TotalWords   int           `json:"total_words"`
	TotalMatches int           `json:"total_matches"`
	Keywords     []KeywordStat `json:"keywords"` // sorted by exact matches, descending
}

// Keywords analyzes the transcript for every keyword. Keyword scans run
// concurrently, bounded by maxParallel; results keep a deterministic order
// (exact matches descending, then input order).
func Keywords(ctx context.Context, transcript string, keywords []string, maxParallel int) (Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return Result{}, fmt.Errorf("empty transcript")
	}
	if len(keywords) == 0 {
		return Result{}, fmt.Errorf("no keywords provided")
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	lower := strings.ToLower(transcript)
	totalWords := len(strings.Fields(lower))

	stats := make([]KeywordStat, len(keywords))
	sem := make(chan struct{}, maxParallel)

	g, ctx := errgroup.WithContext(ctx)
	for i, keyword := range keywords {
		i, keyword := i, keyword
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			stats[i] = analyzeKeyword(transcript, lower, keyword, totalWords)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// Sort by exact matches descending; ties keep input order.
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].ExactMatches > stats[j].ExactMatches
	})

	result := Result{TotalWords: totalWords, Keywords: stats}
	for _, s := range stats {
		result.TotalMatches += s.ExactMatches
	}
	return result, nil
}

// analyzeKeyword computes the stats for a single keyword.
func analyzeKeyword(transcript, lower, keyword string, totalWords int) KeywordStat {
	kw := strings.ToLower(keyword)
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)

	locations := pattern.FindAllStringIndex(lower, -1)
	exact := len(locations)
	partial := strings.Count(lower, kw) - exact

	stat := KeywordStat{
		Keyword:        keyword,
		ExactMatches:   exact,
		PartialMatches: partial,
		TotalMatches:   exact + partial,
	}
	if totalWords > 0 {
		stat.Frequency = float64(exact) / float64(totalWords) * 100
	}

	for _, loc := range locations {
		stat.Matches = append(stat.Matches, matchContext(transcript, loc[0], loc[1]))
	}
	stat.Related = relatedTerms(lower, kw, locations)
	return stat
}

// matchContext extracts the context window around one match, with the
// matched text bolded.
func matchContext(transcript string, start, end int) Match {
	from := max(0, start-contextRadius)
	to := min(len(transcript), end+contextRadius)

	matched := transcript[start:end]
	window := transcript[from:start] + "**" + matched + "**" + transcript[end:to]
	return Match{Context: window, Position: start}
}

// relatedTerms counts words that appear near the keyword's matches,
// excluding stop words and the keyword itself, and returns the most
// frequent ones.
func relatedTerms(lower, kw string, locations [][]int) []RelatedTerm {
	if len(locations) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, loc := range locations {
		from := max(0, loc[0]-relatedRadius)
		to := min(len(lower), loc[1]+relatedRadius)
		for _, word := range wordRe.FindAllString(lower[from:to], -1) {
			if word == kw || stopWords[word] {
				continue
			}
			counts[word]++
		}
	}

	terms := make([]RelatedTerm, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, RelatedTerm{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > maxRelatedTerms {
		terms = terms[:maxRelatedTerms]
	}
	return terms
}
