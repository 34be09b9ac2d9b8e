package main

import (
	"github.com/rotisserie/eris"

	"github.com/landgrid/atlas-cli/internal/index"
	"github.com/landgrid/atlas-cli/internal/store"
)

// loadIndex loads the nation table and merges the curated alias table.
// Both files are hard preconditions for matching and crosswalk builds.
func loadIndex() (*index.Index, error) {
	if cfg.Index.NationsPath == "" {
		return nil, eris.New("index.nations_path is not configured")
	}
	idx, err := index.Load(cfg.Index.NationsPath)
	if err != nil {
		return nil, err
	}
	if cfg.Index.AliasPath != "" {
		if err := idx.LoadAliases(cfg.Index.AliasPath, cfg.Index.AliasSheet); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func openStore() (store.Store, error) {
	return store.NewSQLite(cfg.Store.Path)
}
