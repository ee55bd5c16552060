package workbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"personals/internal"
	"personals/internal/connectors"
)

func mkWorkbook(t *testing.T, tabs map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	created := false
	for name, rows := range tabs {
		if !created {
			require.NoError(t, f.SetSheetName(first, name))
			created = true
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}
	path := filepath.Join(t.TempDir(), "intake.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestValuesAppliesRange(t *testing.T) {
	path := mkWorkbook(t, map[string][][]any{
		"Mirror": {
			{"Title", "Approved?", "Form Response URL", "Notes"},
			{"Hello", "Yes", "https://forms.gle/x", "keep"},
		},
	})

	rng, err := connectors.ParseRange("Mirror!A:C")
	require.NoError(t, err)

	rows, err := NewConnector(path).Values(context.Background(), rng)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Title", "Approved?", "Form Response URL"},
		{"Hello", "Yes", "https://forms.gle/x"},
	}, rows)

	header, err := NewConnector(path).Values(context.Background(), rng.HeaderRange())
	require.NoError(t, err)
	assert.Len(t, header, 1)
}

func TestValuesMissingSheet(t *testing.T) {
	path := mkWorkbook(t, map[string][][]any{"Mirror": {{"Title"}}})
	_, err := NewConnector(path).Values(context.Background(), connectors.Range{Sheet: "Form Responses 1", FromCol: 1, ToCol: 26, FromRow: 1})
	require.Error(t, err)
	assert.Equal(t, internal.CodeAPI, internal.CodeOf(err))
}

func TestTitle(t *testing.T) {
	title, err := NewConnector("/tmp/Personals Intake.xlsx").Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Personals Intake", title)
}
