package workbook

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"personals/internal"
	"personals/internal/connectors"
	"personals/internal/util"
)

// Connector reads tabs from a local .xlsx workbook laid out like the live spreadsheet.
type Connector struct {
	path string
}

func NewConnector(path string) *Connector {
	return &Connector{path: path}
}

func (c *Connector) Title(ctx context.Context) (string, error) {
	base := filepath.Base(c.path)
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}

func (c *Connector) Values(ctx context.Context, rng connectors.Range) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, internal.WrapError(internal.CodeAPI, err, "failed to fetch sheet data %s", rng)
	}

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return nil, internal.WrapError(internal.CodeAPI, err, "failed to open workbook %s", c.path)
	}
	defer f.Close()

	rows, err := f.GetRows(rng.Sheet)
	if err != nil {
		return nil, internal.WrapError(internal.CodeAPI, err, "failed to fetch sheet data %s", rng)
	}
	return util.TrimTrailingEmpty(rng.Slice(rows)), nil
}
