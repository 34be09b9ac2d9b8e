// Package profile persists nation profiles as durable JSON artifacts.
package profile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/landgrid/atlas-cli/internal/model"
)

// Writer writes one JSON artifact per nation into a directory. Writes are
// all-or-nothing: the artifact is built in memory, written to a temp file
// in the same directory, then renamed over the final path. A crash mid-run
// leaves previous artifacts intact and never exposes a half-written one.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "profile: create output dir %s", dir)
	}
	return &Writer{dir: dir}, nil
}

// Path returns the artifact location for a nation.
func (w *Writer) Path(nationID string) string {
	return filepath.Join(w.dir, nationID+".json")
}

// Write persists one profile atomically. Encoding is deterministic
// (sorted map keys, fixed indentation) so identical inputs always produce
// byte-identical artifacts.
func (w *Writer) Write(p model.NationProfile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "profile: marshal %s", p.NationID)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(w.dir, "."+p.NationID+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "profile: create temp file for %s", p.NationID)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "profile: write temp file for %s", p.NationID)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "profile: close temp file for %s", p.NationID)
	}

	if err := os.Rename(tmpName, w.Path(p.NationID)); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "profile: rename artifact for %s", p.NationID)
	}
	return nil
}

// Read loads a previously written profile, for the status server.
func (w *Writer) Read(nationID string) (*model.NationProfile, error) {
	data, err := os.ReadFile(w.Path(nationID))
	if err != nil {
		return nil, eris.Wrapf(err, "profile: read artifact %s", nationID)
	}
	var p model.NationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "profile: decode artifact %s", nationID)
	}
	return &p, nil
}
