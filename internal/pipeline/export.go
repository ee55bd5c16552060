package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"personals/internal"
)

const exportSheet = "Personals"

var exportHeaders = []string{
	"id", "title", "personal", "contact", "date_posted", "categories", "locations", "link",
}

// ExportRecordsToXLSX writes one row per record with list fields joined by ", ".
func ExportRecordsToXLSX(records []internal.PersonalRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(exportSheet, cell, value)
		}

		set(1, rec.ID)
		set(2, rec.Title)
		set(3, rec.Personal)
		set(4, rec.Contact)
		set(5, rec.DatePosted)
		set(6, strings.Join(rec.Categories, ", "))
		set(7, strings.Join(rec.Locations, ", "))
		set(8, DeepLink(rec.ID))
	}

	if len(records) > 0 {
		_ = f.AutoFilter(exportSheet, "A1:H1", nil)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return internal.WrapError(internal.CodeSave, err, "create export directory")
	}
	if err := f.SaveAs(outputPath); err != nil {
		return internal.WrapError(internal.CodeSave, err, "write %s", outputPath)
	}
	return nil
}
