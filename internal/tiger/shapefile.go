package tiger

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ParseShapefile reads a shapefile into rows suitable for COPY loading.
// Each row matches product.Columns with a WKB geometry column appended.
// Records whose geometry cannot be encoded are skipped and counted.
func ParseShapefile(shpPath string, product Product) ([][]any, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	var rows [][]any
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		row := make([]any, 0, len(product.Columns)+1)
		for _, col := range product.Columns {
			idx, ok := fieldIdx[strings.ToLower(col)]
			if !ok {
				row = append(row, nil)
				continue
			}
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
			if val == "" {
				row = append(row, nil)
			} else {
				row = append(row, val)
			}
		}

		wkb, encErr := EncodeWKB(shape)
		if encErr != nil || wkb == nil {
			skipped++
			continue
		}
		row = append(row, wkb)

		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("tiger: skipped shapefile records",
			zap.String("product", product.Name),
			zap.Int("skipped", skipped),
		)
	}

	return rows, nil
}
