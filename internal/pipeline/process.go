package pipeline

import (
	"fmt"
	"strings"

	"personals/internal/util"
)

type OutcomeKind int

const (
	OutcomeApproved OutcomeKind = iota
	OutcomeSkipped
	OutcomeInvalid
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeApproved:
		return "approved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

const ReasonNotApproved = "not approved"

// ValidEntry is a matched entry whose content passed validation, with its
// free-text fields normalized.
type ValidEntry struct {
	Ordinal    int
	MirrorRow  int
	FormRow    int
	ID         string
	Title      string
	Body       string
	Contact    string
	Timestamp  string
	Categories []string
	Locations  []string
}

// Outcome is the result of evaluating one matched entry. Entry is set only
// for OutcomeApproved, Reason for OutcomeSkipped, Errors for OutcomeInvalid.
type Outcome struct {
	Kind   OutcomeKind
	Entry  ValidEntry
	Reason string
	Errors []string
}

// Evaluate re-checks approval and collects every missing required field.
func Evaluate(m MatchedEntry) Outcome {
	if !IsApproved(m.Mirror.Approved) {
		return Outcome{Kind: OutcomeSkipped, Reason: ReasonNotApproved}
	}

	title := strings.TrimSpace(m.Submission.Title)
	body := strings.TrimSpace(m.Submission.Body)
	contact := strings.TrimSpace(m.Mirror.ResponseURL)

	var errs []string
	if title == "" {
		errs = append(errs, "title missing from submission")
	}
	if body == "" {
		errs = append(errs, "body missing from submission")
	}
	if contact == "" {
		errs = append(errs, "form response URL is required")
	}
	if len(errs) > 0 {
		return Outcome{Kind: OutcomeInvalid, Errors: errs}
	}

	return Outcome{
		Kind: OutcomeApproved,
		Entry: ValidEntry{
			Ordinal:    m.Ordinal,
			MirrorRow:  m.Mirror.RowNumber,
			FormRow:    m.Submission.RowNumber,
			ID:         strings.TrimSpace(m.Mirror.ID),
			Title:      title,
			Body:       body,
			Contact:    contact,
			Timestamp:  strings.TrimSpace(m.Submission.Timestamp),
			Categories: ParseCategories(m.Submission.Category),
			Locations:  ParseLocations(util.FirstNonEmpty(m.Submission.Location, m.Mirror.Location)),
		},
	}
}

// ProcessResult splits a batch into valid entries and per-row problems.
type ProcessResult struct {
	Valid    []ValidEntry
	Skipped  int
	Problems []string
}

func Process(entries []MatchedEntry) ProcessResult {
	res := ProcessResult{Valid: []ValidEntry{}}
	for _, m := range entries {
		out := Evaluate(m)
		switch out.Kind {
		case OutcomeApproved:
			res.Valid = append(res.Valid, out.Entry)
		case OutcomeSkipped:
			res.Skipped++
		case OutcomeInvalid:
			res.Problems = append(res.Problems, fmt.Sprintf("mirror row %d / submission row %d: %s", m.Mirror.RowNumber, m.Submission.RowNumber, strings.Join(out.Errors, ", ")))
		}
	}
	return res
}
