package pipeline

import (
	"fmt"
	"strings"
	"time"

	"personals/internal"
)

type IDPolicy string

const (
	// IDFromColumn uses the mirror ID cell when present, else synthesizes.
	IDFromColumn IDPolicy = "column"
	IDSynthesize IDPolicy = "synthesize"
)

func ParseIDPolicy(value string) (IDPolicy, error) {
	switch IDPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", IDFromColumn:
		return IDFromColumn, nil
	case IDSynthesize:
		return IDSynthesize, nil
	default:
		return "", fmt.Errorf("unsupported id policy: %s", value)
	}
}

const dateLayout = "2006-01-02"

// Spreadsheet timestamp layouts, most common first.
var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp reads a submission timestamp in loc. Layouts carrying an
// offset keep it.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BuiltRecord is a record plus whether its ID was generated in this run.
type BuiltRecord struct {
	Record      internal.PersonalRecord
	Synthesized bool
}

type RecordBuilder struct {
	Policy   IDPolicy
	Location *time.Location
	Now      func() time.Time
}

// Build turns validated entries into records. Date fallbacks and duplicate
// explicit IDs are returned as warnings.
func (b RecordBuilder) Build(entries []ValidEntry) ([]BuiltRecord, []string) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	runAt := now()
	millis := runAt.UnixMilli()
	today := runAt.UTC().Format(dateLayout)

	used := map[string]struct{}{}
	out := make([]BuiltRecord, 0, len(entries))
	var warnings []string

	for _, e := range entries {
		id := ""
		synthesized := false
		if b.Policy != IDSynthesize && e.ID != "" {
			if _, dup := used[e.ID]; dup {
				warnings = append(warnings, fmt.Sprintf("mirror row %d: duplicate id %q, generating a new one", e.MirrorRow, e.ID))
			} else {
				id = e.ID
			}
		}
		if id == "" {
			id = synthesizeID(millis, e.Ordinal, len(entries), used)
			synthesized = true
		}
		used[id] = struct{}{}

		date := today
		if t, ok := ParseTimestamp(e.Timestamp, b.Location); ok {
			date = t.UTC().Format(dateLayout)
		} else {
			warnings = append(warnings, fmt.Sprintf("submission row %d: invalid or missing timestamp %q, using %s", e.FormRow, e.Timestamp, today))
		}

		out = append(out, BuiltRecord{
			Record: internal.PersonalRecord{
				ID:         id,
				Title:      e.Title,
				Personal:   e.Body,
				Contact:    e.Contact,
				DatePosted: date,
				Categories: nonNil(e.Categories),
				Locations:  nonNil(e.Locations),
			},
			Synthesized: synthesized,
		})
	}
	return out, warnings
}

// synthesizeID returns personal-<ms>-<n> for the first n, stepping from
// ordinal by the batch size, that no earlier record in the batch holds.
func synthesizeID(millis int64, ordinal, batch int, used map[string]struct{}) string {
	if batch < 1 {
		batch = 1
	}
	for n := ordinal; ; n += batch {
		id := fmt.Sprintf("personal-%d-%d", millis, n)
		if _, taken := used[id]; !taken {
			return id
		}
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
