package pipeline

import (
	"fmt"
	"regexp"
	"sort"

	"personals/internal"
)

var generatedID = regexp.MustCompile(`^personal-\d+-\d+$`)

// IsGeneratedID reports whether id has the synthesized personal-<ms>-<n> shape.
func IsGeneratedID(id string) bool {
	return generatedID.MatchString(id)
}

type DuplicateID struct {
	ID     string
	Titles []string
}

// IDConflict is one title and date published under more than one ID.
type IDConflict struct {
	Title      string
	DatePosted string
	IDs        []string
}

type IDReport struct {
	Total      int
	Generated  int
	Explicit   []string
	Empty      int
	Duplicates []DuplicateID
	Conflicts  []IDConflict
}

// OK is false when any ID is shared or missing.
func (r IDReport) OK() bool {
	return len(r.Duplicates) == 0 && r.Empty == 0
}

// DeepLink is the site URL path for a record.
func DeepLink(id string) string {
	return fmt.Sprintf("/?personal=%s", id)
}

// CheckIDs inspects persisted records for identifier stability problems.
func CheckIDs(records []internal.PersonalRecord) IDReport {
	rep := IDReport{Total: len(records)}
	byID := map[string][]string{}
	var order []string
	type key struct{ title, date string }
	byKey := map[key][]string{}
	var keyOrder []key

	for _, rec := range records {
		switch {
		case rec.ID == "":
			rep.Empty++
			continue
		case IsGeneratedID(rec.ID):
			rep.Generated++
		default:
			rep.Explicit = append(rep.Explicit, rec.ID)
		}
		if _, ok := byID[rec.ID]; !ok {
			order = append(order, rec.ID)
		}
		byID[rec.ID] = append(byID[rec.ID], rec.Title)

		k := key{rec.Title, rec.DatePosted}
		if _, ok := byKey[k]; !ok {
			keyOrder = append(keyOrder, k)
		}
		if !contains(byKey[k], rec.ID) {
			byKey[k] = append(byKey[k], rec.ID)
		}
	}

	for _, id := range order {
		if titles := byID[id]; len(titles) > 1 {
			rep.Duplicates = append(rep.Duplicates, DuplicateID{ID: id, Titles: titles})
		}
	}
	for _, k := range keyOrder {
		if ids := byKey[k]; len(ids) > 1 {
			sorted := append([]string(nil), ids...)
			sort.Strings(sorted)
			rep.Conflicts = append(rep.Conflicts, IDConflict{Title: k.title, DatePosted: k.date, IDs: sorted})
		}
	}
	return rep
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
