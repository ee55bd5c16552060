package pipeline

import (
	"personals/internal"
)

// MergeResult is the next persisted list plus what changed against the
// previous one, keyed by ID.
type MergeResult struct {
	Records []internal.PersonalRecord
	Added   []string
	Updated []string
	Removed []string
}

// Merge replaces the persisted list with the fresh batch. Records not in the
// batch are dropped. A synthesized ID is swapped for the ID of an existing
// record with the identical title when that ID is still free.
func Merge(fresh []BuiltRecord, existing []internal.PersonalRecord) MergeResult {
	byTitle := make(map[string]string, len(existing))
	known := make(map[string]internal.PersonalRecord, len(existing))
	for _, rec := range existing {
		if _, ok := byTitle[rec.Title]; !ok && rec.Title != "" {
			byTitle[rec.Title] = rec.ID
		}
		known[rec.ID] = rec
	}

	used := make(map[string]struct{}, len(fresh))
	for _, b := range fresh {
		if !b.Synthesized {
			used[b.Record.ID] = struct{}{}
		}
	}

	res := MergeResult{Records: make([]internal.PersonalRecord, 0, len(fresh))}
	kept := map[string]struct{}{}
	for _, b := range fresh {
		rec := b.Record
		if b.Synthesized {
			if prev, ok := byTitle[rec.Title]; ok {
				if _, taken := used[prev]; !taken {
					rec.ID = prev
				}
			}
			used[rec.ID] = struct{}{}
		}
		kept[rec.ID] = struct{}{}

		if old, ok := known[rec.ID]; !ok {
			res.Added = append(res.Added, rec.ID)
		} else if !sameRecord(old, rec) {
			res.Updated = append(res.Updated, rec.ID)
		}
		res.Records = append(res.Records, rec)
	}

	for _, rec := range existing {
		if _, ok := kept[rec.ID]; !ok {
			res.Removed = append(res.Removed, rec.ID)
		}
	}
	return res
}

// Upsert replaces the record with the same title, else appends. A
// synthesized ID gives way to the replaced record's ID.
func Upsert(existing []internal.PersonalRecord, b BuiltRecord) ([]internal.PersonalRecord, bool) {
	rec := b.Record
	out := make([]internal.PersonalRecord, len(existing), len(existing)+1)
	copy(out, existing)
	for i := range out {
		if out[i].Title == rec.Title {
			if b.Synthesized && out[i].ID != "" {
				rec.ID = out[i].ID
			}
			out[i] = rec
			return out, true
		}
	}
	return append(out, rec), false
}

func sameRecord(a, b internal.PersonalRecord) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Personal == b.Personal &&
		a.Contact == b.Contact &&
		a.DatePosted == b.DatePosted &&
		equalStrings(a.Categories, b.Categories) &&
		equalStrings(a.Locations, b.Locations)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
