// Package index loads the canonical nation table and its curated alias list
// into an immutable in-memory index shared read-only across a run.
package index

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/model"
)

// Index is the immutable canonical nation table. Built once at run start;
// nothing mutates it afterwards, so it is safe to share across goroutines
// without locking.
type Index struct {
	nations []model.Nation
	byID    map[string]int
}

// Load reads the nation table from a CSV file with columns
// id,name,primary_state,states (states semicolon-separated). The file is a
// hard precondition: any read failure aborts before profiles are written.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "index: open nation table %s", path)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read parses the nation table from a reader. Exposed for tests.
func Read(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "index: parse nation table")
	}
	if len(rows) < 2 {
		return nil, eris.New("index: nation table has no data rows")
	}

	idx := &Index{byID: make(map[string]int)}
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		n := model.Nation{
			ID:   strings.TrimSpace(row[0]),
			Name: strings.TrimSpace(row[1]),
		}
		if n.ID == "" || n.Name == "" {
			continue
		}
		if len(row) > 2 {
			n.PrimaryState = strings.ToUpper(strings.TrimSpace(row[2]))
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			for _, s := range strings.Split(row[3], ";") {
				if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
					n.States = append(n.States, s)
				}
			}
		}
		if n.PrimaryState != "" && len(n.States) == 0 {
			n.States = []string{n.PrimaryState}
		}
		if _, dup := idx.byID[n.ID]; dup {
			return nil, eris.Errorf("index: duplicate nation id %s", n.ID)
		}
		idx.byID[n.ID] = len(idx.nations)
		idx.nations = append(idx.nations, n)
	}

	if len(idx.nations) == 0 {
		return nil, eris.New("index: nation table produced zero nations")
	}

	// Stable iteration order regardless of source ordering.
	sort.Slice(idx.nations, func(i, j int) bool { return idx.nations[i].ID < idx.nations[j].ID })
	for i := range idx.nations {
		idx.byID[idx.nations[i].ID] = i
	}

	zap.L().Info("nation index loaded", zap.Int("nations", len(idx.nations)))
	return idx, nil
}

// Nations returns all nations sorted by ID. Callers must not mutate.
func (idx *Index) Nations() []model.Nation {
	return idx.nations
}

// ByID returns the nation with the given ID, or false.
func (idx *Index) ByID(id string) (model.Nation, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return model.Nation{}, false
	}
	return idx.nations[i], true
}

// Len returns the number of nations in the index.
func (idx *Index) Len() int { return len(idx.nations) }

// addAliases appends curated aliases onto their nations, skipping unknown IDs.
func (idx *Index) addAliases(pairs [][2]string) int {
	var applied, unknown int
	for _, p := range pairs {
		id, alias := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if id == "" || alias == "" {
			continue
		}
		i, ok := idx.byID[id]
		if !ok {
			unknown++
			continue
		}
		idx.nations[i].Aliases = append(idx.nations[i].Aliases, alias)
		applied++
	}
	if unknown > 0 {
		zap.L().Warn("alias table references unknown nations", zap.Int("unknown", unknown))
	}
	return applied
}

// LoadAliases merges the curated alias table into the index. CSV files need
// columns nation_id,alias; .xlsx files are read via the workbook reader.
// The alias table is versioned externally; a mid-run change to the source
// file takes effect on the next run, never this one.
func (idx *Index) LoadAliases(path, sheet string) error {
	var (
		pairs [][2]string
		err   error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		pairs, err = readAliasWorkbook(path, sheet)
	} else {
		pairs, err = readAliasCSV(path)
	}
	if err != nil {
		return err
	}

	applied := idx.addAliases(pairs)
	zap.L().Info("alias table loaded",
		zap.String("path", path),
		zap.Int("aliases", applied),
	)
	return nil
}

func readAliasCSV(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "index: open alias table %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "index: parse alias table")
	}

	var pairs [][2]string
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		pairs = append(pairs, [2]string{row[0], row[1]})
	}
	return pairs, nil
}
