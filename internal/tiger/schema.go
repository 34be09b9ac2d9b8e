package tiger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/landgrid/atlas-cli/internal/db"
)

// columnDefs maps product columns to SQL types; everything TIGER ships in
// DBF attributes loads as text, with geometry in a typed geom column.
func createTableSQL(p Product) string {
	cols := ""
	for _, c := range p.Columns {
		cols += pgx.Identifier{c}.Sanitize() + " TEXT, "
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%sthe_geom geometry(%s, 4326))",
		pgx.Identifier{"geo", p.Table}.Sanitize(), cols, p.GeomType,
	)
}

// EnsureSchema creates the geo schema, product tables, and spatial indexes.
func EnsureSchema(ctx context.Context, pool db.Pool) error {
	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS geo"); err != nil {
		return eris.Wrap(err, "tiger: create geo schema")
	}

	for _, p := range Products {
		if _, err := pool.Exec(ctx, createTableSQL(p)); err != nil {
			return eris.Wrapf(err, "tiger: create geo.%s", p.Table)
		}

		idxName := pgx.Identifier{fmt.Sprintf("idx_%s_the_geom", p.Table)}.Sanitize()
		gistSQL := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s USING GIST (the_geom)",
			idxName, pgx.Identifier{"geo", p.Table}.Sanitize(),
		)
		if _, err := pool.Exec(ctx, gistSQL); err != nil {
			return eris.Wrapf(err, "tiger: create GIST index on geo.%s", p.Table)
		}

		geoidSQL := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (geoid)",
			pgx.Identifier{fmt.Sprintf("idx_%s_geoid", p.Table)}.Sanitize(),
			pgx.Identifier{"geo", p.Table}.Sanitize(),
		)
		if _, err := pool.Exec(ctx, geoidSQL); err != nil {
			return eris.Wrapf(err, "tiger: create geoid index on geo.%s", p.Table)
		}
	}

	return nil
}
