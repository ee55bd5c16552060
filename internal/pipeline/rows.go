package pipeline

import (
	"personals/internal"
	"personals/internal/util"
)

// MirrorRow is one approval tab row. RowNumber is the 1-based sheet row.
type MirrorRow struct {
	RowNumber   int
	Approved    string
	ResponseURL string
	Title       string
	Location    string
	ID          string
}

// SubmissionRow is one raw form response row.
type SubmissionRow struct {
	RowNumber   int
	Timestamp   string
	Title       string
	Body        string
	Location    string
	Category    string
	ResponseURL string
}

func splitTable(table string, rows [][]string) ([]string, [][]string, error) {
	if len(rows) == 0 {
		return nil, nil, internal.NewError(internal.CodeNoData, "no data found in %s tab", table)
	}
	if len(rows) < 2 {
		return nil, nil, internal.NewError(internal.CodeInsufficientData, "insufficient data in %s tab", table)
	}
	return rows[0], rows[1:], nil
}

func dataRow(headerRow, i int) int {
	if headerRow < 1 {
		headerRow = 1
	}
	return headerRow + i + 1
}

// ParseMirror resolves the approval tab header and reads every data row.
// headerRow is the sheet row rows[0] came from.
func ParseMirror(rows [][]string, headerRow int, strategy Strategy) ([]MirrorRow, ColumnMap, error) {
	headers, data, err := splitTable(TableMirror, rows)
	if err != nil {
		return nil, nil, err
	}
	cols, err := BuildColumnMap(TableMirror, headers, MirrorColumns(strategy))
	if err != nil {
		return nil, nil, err
	}

	out := make([]MirrorRow, 0, len(data))
	for i, row := range data {
		out = append(out, MirrorRow{
			RowNumber:   dataRow(headerRow, i),
			Approved:    util.Cell(row, cols.Index(FieldApproved)),
			ResponseURL: util.Cell(row, cols.Index(FieldFormURL)),
			Title:       util.Cell(row, cols.Index(FieldTitle)),
			Location:    util.Cell(row, cols.Index(FieldLocation)),
			ID:          util.Cell(row, cols.Index(FieldID)),
		})
	}
	return out, cols, nil
}

// ParseSubmissions resolves the form response header and reads every data row.
func ParseSubmissions(rows [][]string, headerRow int, strategy Strategy) ([]SubmissionRow, ColumnMap, error) {
	headers, data, err := splitTable(TableSubmissions, rows)
	if err != nil {
		return nil, nil, err
	}
	cols, err := BuildColumnMap(TableSubmissions, headers, SubmissionColumns(strategy))
	if err != nil {
		return nil, nil, err
	}

	out := make([]SubmissionRow, 0, len(data))
	for i, row := range data {
		out = append(out, SubmissionRow{
			RowNumber:   dataRow(headerRow, i),
			Timestamp:   util.Cell(row, cols.Index(FieldTimestamp)),
			Title:       util.Cell(row, cols.Index(FieldTitle)),
			Body:        util.Cell(row, cols.Index(FieldBody)),
			Location:    util.Cell(row, cols.Index(FieldLocation)),
			Category:    util.Cell(row, cols.Index(FieldCategory)),
			ResponseURL: util.Cell(row, cols.Index(FieldResponseURL)),
		})
	}
	return out, cols, nil
}
