package htmlexport

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"personals/internal"
	"personals/internal/connectors"
	"personals/internal/util"
)

// Connector reads tabs from a directory of HTML exports, one "<tab>.html" per tab.
type Connector struct {
	dir string
}

func NewConnector(dir string) *Connector {
	return &Connector{dir: dir}
}

func (c *Connector) Title(ctx context.Context) (string, error) {
	return filepath.Base(filepath.Clean(c.dir)), nil
}

func (c *Connector) Values(ctx context.Context, rng connectors.Range) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, internal.WrapError(internal.CodeAPI, err, "failed to fetch sheet data %s", rng)
	}

	f, err := os.Open(filepath.Join(c.dir, rng.Sheet+".html"))
	if err != nil {
		return nil, internal.WrapError(internal.CodeAPI, err, "failed to fetch sheet data %s", rng)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, internal.WrapError(internal.CodeAPI, err, "failed to parse %s export", rng.Sheet)
	}
	return util.TrimTrailingEmpty(rng.Slice(ParseTable(doc))), nil
}

// ParseTable returns the cell text of the first table. Header rows inside
// <thead> (column letters in Sheets exports) are skipped, and <th> cells are
// used only for rows without any <td> (plain header rows).
func ParseTable(doc *goquery.Document) [][]string {
	table := doc.Find("table").First()
	rows := make([][]string, 0)

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.ParentsFiltered("thead").Length() > 0 {
			return
		}
		// Frozen-row separators in Sheets exports.
		if n := tr.Children().Length(); n > 0 && tr.ChildrenFiltered(".freezebar-cell").Length() == n {
			return
		}
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			cells = tr.ChildrenFiltered("th")
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		rows = append(rows, row)
	})

	return rows
}
