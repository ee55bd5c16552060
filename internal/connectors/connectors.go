package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TableSource reads formatted cell values from named tabs.
type TableSource interface {
	Title(ctx context.Context) (string, error)
	Values(ctx context.Context, rng Range) ([][]string, error)
}

// Range is an A1 range such as "Mirror!A:O" or "'Form Responses 1'!A1:Z1".
// Columns and rows are 1-based; ToRow 0 means unbounded.
type Range struct {
	Sheet   string
	FromCol int
	ToCol   int
	FromRow int
	ToRow   int
}

func ParseRange(input string) (Range, error) {
	input = strings.TrimSpace(input)
	sep := strings.LastIndex(input, "!")
	if sep <= 0 || sep == len(input)-1 {
		return Range{}, fmt.Errorf("invalid range %q: expected <tab>!<cells>", input)
	}

	sheet := strings.TrimSpace(input[:sep])
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}

	cells := strings.Split(input[sep+1:], ":")
	if len(cells) != 2 {
		return Range{}, fmt.Errorf("invalid range %q: expected <from>:<to>", input)
	}

	fromCol, fromRow, err := parseRef(cells[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", input, err)
	}
	toCol, toRow, err := parseRef(cells[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", input, err)
	}
	if fromRow == 0 {
		fromRow = 1
	}
	if toCol < fromCol || (toRow != 0 && toRow < fromRow) {
		return Range{}, fmt.Errorf("invalid range %q: end before start", input)
	}

	return Range{Sheet: sheet, FromCol: fromCol, ToCol: toCol, FromRow: fromRow, ToRow: toRow}, nil
}

// parseRef accepts a column ("A") or a cell ("A1"). Row is 0 for column refs.
func parseRef(ref string) (int, int, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" {
		return 0, 0, fmt.Errorf("empty reference")
	}
	if strings.IndexAny(ref, "0123456789") == -1 {
		col, err := excelize.ColumnNameToNumber(ref)
		return col, 0, err
	}
	return excelize.CellNameToCoordinates(ref)
}

// HeaderRange is the first row of the range over the same column span.
func (r Range) HeaderRange() Range {
	first := r.FromRow
	if first < 1 {
		first = 1
	}
	return Range{Sheet: r.Sheet, FromCol: r.FromCol, ToCol: r.ToCol, FromRow: first, ToRow: first}
}

func (r Range) String() string {
	from, _ := excelize.ColumnNumberToName(r.FromCol)
	to, _ := excelize.ColumnNumberToName(r.ToCol)
	sheet := r.Sheet
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	if r.ToRow == 0 {
		if r.FromRow > 1 {
			return fmt.Sprintf("%s!%s%d:%s", sheet, from, r.FromRow, to)
		}
		return fmt.Sprintf("%s!%s:%s", sheet, from, to)
	}
	return fmt.Sprintf("%s!%s%d:%s%d", sheet, from, r.FromRow, to, r.ToRow)
}

// Slice applies the range bounds to a full-sheet grid.
func (r Range) Slice(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		rowNo := i + 1
		if rowNo < r.FromRow {
			continue
		}
		if r.ToRow != 0 && rowNo > r.ToRow {
			break
		}
		start := r.FromCol - 1
		end := r.ToCol
		if start >= len(row) {
			out = append(out, []string{})
			continue
		}
		if end > len(row) {
			end = len(row)
		}
		cells := make([]string, end-start)
		copy(cells, row[start:end])
		out = append(out, cells)
	}
	return out
}
