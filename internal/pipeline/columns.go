package pipeline

import (
	"strings"

	"personals/internal"
	"personals/internal/util"
)

const (
	TableMirror      = "Mirror"
	TableSubmissions = "Form Responses 1"
)

const (
	FieldApproved    = "approved"
	FieldFormURL     = "formResponseUrl"
	FieldTitle       = "title"
	FieldLocation    = "location"
	FieldID          = "id"
	FieldTimestamp   = "timestamp"
	FieldBody        = "body"
	FieldCategory    = "category"
	FieldResponseURL = "responseUrl"
)

// ColumnSpec describes how headers resolve to one semantic field.
// Reverse also accepts headers that are themselves contained in a pattern.
type ColumnSpec struct {
	Field    string
	Patterns []string
	Exact    []string
	Reverse  bool
	Required bool
}

func (s ColumnSpec) Matches(header string) bool {
	h := util.NormalizeHeader(header)
	for _, name := range s.Exact {
		if h == strings.ToLower(name) {
			return true
		}
	}
	for _, p := range s.Patterns {
		p = strings.ToLower(p)
		if strings.Contains(h, p) {
			return true
		}
		if s.Reverse && h != "" && strings.Contains(p, h) {
			return true
		}
	}
	return false
}

// ColumnMap maps a field name to its zero-based header index.
type ColumnMap map[string]int

// Index returns the column for field, or -1 when it did not resolve.
func (m ColumnMap) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return -1
}

func (m ColumnMap) Has(field string) bool {
	return m.Index(field) >= 0
}

// BuildColumnMap resolves each spec to the first matching header. Missing
// required fields are reported together as a MISSING_COLUMN error.
func BuildColumnMap(table string, headers []string, specs []ColumnSpec) (ColumnMap, error) {
	cols := ColumnMap{}
	var missing []string
	for _, spec := range specs {
		idx := -1
		for i, h := range headers {
			if spec.Matches(h) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			cols[spec.Field] = idx
			continue
		}
		if spec.Required {
			missing = append(missing, spec.Field)
		}
	}
	if len(missing) > 0 {
		return cols, internal.WrapError(internal.CodeMissingColumn, &internal.MissingColumnError{Table: table, Fields: missing}, "")
	}
	return cols, nil
}

// MirrorColumns lists the approval tab fields for a matching strategy.
func MirrorColumns(strategy Strategy) []ColumnSpec {
	return []ColumnSpec{
		{Field: FieldApproved, Patterns: []string{"approved"}, Reverse: true, Required: true},
		{Field: FieldFormURL, Patterns: []string{"form response url"}, Reverse: true, Required: true},
		{Field: FieldTitle, Patterns: []string{"title"}, Required: strategy == StrategyTitle},
		{Field: FieldLocation, Patterns: []string{"where", "location"}},
		{Field: FieldID, Patterns: []string{"personal id", "entry id"}, Exact: []string{"id"}},
	}
}

// SubmissionColumns lists the raw form response fields for a matching strategy.
func SubmissionColumns(strategy Strategy) []ColumnSpec {
	return []ColumnSpec{
		{Field: FieldTimestamp, Patterns: []string{"timestamp"}, Required: true},
		{Field: FieldTitle, Patterns: []string{"title"}, Required: true},
		{Field: FieldBody, Patterns: []string{"body", "description", "content"}, Required: true},
		{Field: FieldLocation, Patterns: []string{"where", "location"}},
		{Field: FieldCategory, Patterns: []string{"kind", "category", "type"}},
		{Field: FieldResponseURL, Patterns: []string{"form response url", "response url", "edit response"}, Reverse: true, Required: strategy == StrategyURL},
	}
}

// TableCheck is the structure report for one tab.
type TableCheck struct {
	Table           string
	Headers         []string
	FoundRequired   []string
	MissingRequired []string
	FoundOptional   []string
	MissingOptional []string
}

func (c TableCheck) OK() bool {
	return len(c.MissingRequired) == 0
}

// CheckStructure reports which fields the headers satisfy. It never fails on optional gaps.
func CheckStructure(table string, headers []string, specs []ColumnSpec) TableCheck {
	check := TableCheck{Table: table, Headers: headers}
	for _, spec := range specs {
		found := false
		for _, h := range headers {
			if spec.Matches(h) {
				found = true
				break
			}
		}
		switch {
		case spec.Required && found:
			check.FoundRequired = append(check.FoundRequired, spec.Field)
		case spec.Required:
			check.MissingRequired = append(check.MissingRequired, spec.Field)
		case found:
			check.FoundOptional = append(check.FoundOptional, spec.Field)
		default:
			check.MissingOptional = append(check.MissingOptional, spec.Field)
		}
	}
	return check
}

// StructureReport covers both tabs.
type StructureReport struct {
	SpreadsheetTitle string
	Tables           []TableCheck
}

func (r StructureReport) OK() bool {
	for _, t := range r.Tables {
		if !t.OK() {
			return false
		}
	}
	return true
}

// Err is a VALIDATION_ERROR naming every missing required field, or nil.
func (r StructureReport) Err() error {
	var parts []string
	for _, t := range r.Tables {
		if !t.OK() {
			parts = append(parts, t.Table+": "+strings.Join(t.MissingRequired, ", "))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return internal.NewError(internal.CodeValidation, "spreadsheet structure validation failed, missing required columns (%s)", strings.Join(parts, "; "))
}
