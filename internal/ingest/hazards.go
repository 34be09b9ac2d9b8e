package ingest

import (
	"context"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/model"
)

// Hazard snapshot columns, in order: unit_id, metric, value.
// The source encodes "no data" as a negative placeholder or a blank field;
// both are kept as flagged sentinels so aggregation can exclude them
// explicitly instead of mistaking them for zeros.

// ReadCountyRows parses the county hazard snapshot into per-unit records.
// Returns the records keyed by unit ID plus a malformed-row tally.
func ReadCountyRows(ctx context.Context, r io.Reader) (map[string]model.CountyRecord, int, error) {
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{HasHeader: true, TrimSpace: true})

	records := make(map[string]model.CountyRecord)
	var skipped int

	for row := range rowCh {
		if len(row) < 3 || row[0] == "" || row[1] == "" {
			skipped++
			continue
		}
		unitID, metric := row[0], row[1]

		mv := model.MetricValue{}
		if row[2] == "" {
			mv.NoData = true
		} else {
			val, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				skipped++
				continue
			}
			if val < 0 {
				mv.NoData = true
			} else {
				mv.Value = val
			}
		}

		rec, ok := records[unitID]
		if !ok {
			rec = model.CountyRecord{UnitID: unitID, Metrics: make(map[string]model.MetricValue)}
			records[unitID] = rec
		}
		rec.Metrics[metric] = mv
	}
	if err := <-errCh; err != nil {
		return nil, skipped, err
	}

	if skipped > 0 {
		zap.L().Warn("skipped malformed hazard rows", zap.Int("skipped", skipped))
	}
	return records, skipped, nil
}
