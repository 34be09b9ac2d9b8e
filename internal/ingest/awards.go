package ingest

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/model"
)

// Award snapshot columns, in order:
// record_id, recipient_name, amount, program_id, fiscal_year, state.

// ReadAwards parses the award snapshot. Malformed rows are skipped and
// counted, never fatal; the batch must finish for every valid record.
func ReadAwards(ctx context.Context, r io.Reader) ([]model.AwardRecord, int, error) {
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{HasHeader: true, TrimSpace: true})

	var (
		records []model.AwardRecord
		skipped int
	)
	for row := range rowCh {
		rec, ok := parseAwardRow(row)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := <-errCh; err != nil {
		return nil, skipped, err
	}

	if skipped > 0 {
		zap.L().Warn("skipped malformed award rows", zap.Int("skipped", skipped))
	}
	return records, skipped, nil
}

func parseAwardRow(row []string) (model.AwardRecord, bool) {
	if len(row) < 5 {
		return model.AwardRecord{}, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(row[2], ",", ""), 64)
	if err != nil {
		return model.AwardRecord{}, false
	}
	rec := model.AwardRecord{
		RecordID:      row[0],
		RecipientName: row[1],
		Amount:        amount,
		ProgramID:     row[3],
		FiscalYear:    row[4],
	}
	if rec.RecordID == "" || rec.RecipientName == "" {
		return model.AwardRecord{}, false
	}
	if len(row) > 5 {
		rec.State = strings.ToUpper(row[5])
	}
	return rec, true
}
