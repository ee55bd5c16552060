package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"personals/internal"
)

func TestExportRecordsToXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "personals.xlsx")
	records := []internal.PersonalRecord{{
		ID:         "personal-1-0",
		Title:      "Hello",
		Personal:   "Body",
		Contact:    "https://forms.gle/x",
		DatePosted: "2024-01-02",
		Categories: []string{"Community", "Book Club"},
		Locations:  []string{"New York City"},
	}}
	if err := ExportRecordsToXLSX(records, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[1][0] != "personal-1-0" {
		t.Fatalf("unexpected id column: %v", rows)
	}
	if rows[1][5] != "Community, Book Club" {
		t.Fatalf("unexpected categories cell: %q", rows[1][5])
	}
	if rows[1][7] != "/?personal=personal-1-0" {
		t.Fatalf("unexpected link cell: %q", rows[1][7])
	}
}
