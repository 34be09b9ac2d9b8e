package hazard

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Overrides holds per-nation hazard scores from a specialized secondary
// source. When present, an override supersedes the general model's
// aggregated score for that one hazard type; it is applied after
// aggregation, never blended with it.
type Overrides map[string]map[string]float64 // nation ID -> hazard -> score

// Get returns the override score for a nation/hazard pair.
func (o Overrides) Get(nationID, hazard string) (float64, bool) {
	if o == nil {
		return 0, false
	}
	v, ok := o[nationID][hazard]
	return v, ok
}

// LoadOverrides reads the override snapshot (CSV: nation_id,hazard,value).
// An empty path yields no overrides. Malformed rows are skipped and logged.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "hazard: open overrides %s", path)
	}
	defer func() { _ = f.Close() }()

	return ReadOverrides(f)
}

// ReadOverrides parses overrides from a reader. Exposed for tests.
func ReadOverrides(r io.Reader) (Overrides, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "hazard: parse overrides")
	}

	ov := make(Overrides)
	var skipped int
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		val, err := strconv.ParseFloat(row[2], 64)
		if err != nil || row[0] == "" || row[1] == "" {
			skipped++
			continue
		}
		if ov[row[0]] == nil {
			ov[row[0]] = make(map[string]float64)
		}
		ov[row[0]][row[1]] = val
	}
	if skipped > 0 {
		zap.L().Warn("skipped malformed override rows", zap.Int("skipped", skipped))
	}
	return ov, nil
}
