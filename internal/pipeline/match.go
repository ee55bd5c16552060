package pipeline

import (
	"fmt"
	"strings"
)

// Strategy selects the correlation key joining the two tabs.
type Strategy string

const (
	StrategyURL   Strategy = "url"
	StrategyTitle Strategy = "title"
)

func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyURL:
		return StrategyURL, nil
	case StrategyTitle:
		return StrategyTitle, nil
	default:
		return "", fmt.Errorf("unsupported match strategy: %s", value)
	}
}

const (
	ReasonNoCorrelation = "no correlation value"
	ReasonNoSubmission  = "no matching submission"
)

// MatchedEntry pairs an approved mirror row with its submission.
// Ordinal is the entry's position in the matched batch.
type MatchedEntry struct {
	Ordinal    int
	Mirror     MirrorRow
	Submission SubmissionRow
}

type Unmatched struct {
	RowNumber int
	Reason    string
}

type MatchResult struct {
	Entries   []MatchedEntry
	Unmatched []Unmatched
}

// IsApproved reports whether an approval cell holds yes, true or 1.
func IsApproved(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

func (s Strategy) mirrorKey(row MirrorRow) string {
	if s == StrategyTitle {
		return strings.ToLower(strings.TrimSpace(row.Title))
	}
	return strings.TrimSpace(row.ResponseURL)
}

func (s Strategy) submissionKey(row SubmissionRow) string {
	if s == StrategyTitle {
		return strings.ToLower(strings.TrimSpace(row.Title))
	}
	return strings.TrimSpace(row.ResponseURL)
}

// Match joins mirror rows to submissions in mirror order. Duplicate
// submission keys resolve to the last row. Unapproved rows are dropped
// without being reported.
func Match(mirror []MirrorRow, submissions []SubmissionRow, strategy Strategy) MatchResult {
	lookup := make(map[string]SubmissionRow, len(submissions))
	for _, sub := range submissions {
		if key := strategy.submissionKey(sub); key != "" {
			lookup[key] = sub
		}
	}

	result := MatchResult{Entries: []MatchedEntry{}, Unmatched: []Unmatched{}}
	for _, row := range mirror {
		key := strategy.mirrorKey(row)
		if key == "" {
			result.Unmatched = append(result.Unmatched, Unmatched{RowNumber: row.RowNumber, Reason: ReasonNoCorrelation})
			continue
		}
		sub, ok := lookup[key]
		if !ok {
			result.Unmatched = append(result.Unmatched, Unmatched{RowNumber: row.RowNumber, Reason: ReasonNoSubmission})
			continue
		}
		if !IsApproved(row.Approved) {
			continue
		}
		result.Entries = append(result.Entries, MatchedEntry{
			Ordinal:    len(result.Entries),
			Mirror:     row,
			Submission: sub,
		})
	}
	return result
}
