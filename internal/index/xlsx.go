package index

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readAliasWorkbook reads nation_id,alias pairs from the curated alias
// workbook. The first row is treated as a header. An empty sheet name
// selects the first sheet.
func readAliasWorkbook(path, sheet string) ([][2]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "index: open alias workbook %s", path)
	}

	var s *xlsx.Sheet
	if sheet != "" {
		var ok bool
		s, ok = f.Sheet[sheet]
		if !ok {
			return nil, eris.Errorf("index: sheet %q not found in %s", sheet, path)
		}
	} else {
		if len(f.Sheets) == 0 {
			return nil, eris.Errorf("index: alias workbook %s has no sheets", path)
		}
		s = f.Sheets[0]
	}

	var pairs [][2]string
	for i, row := range s.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		pairs = append(pairs, [2]string{row.Cells[0].String(), row.Cells[1].String()})
	}
	return pairs, nil
}
