package crosswalk

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/db"
	"github.com/landgrid/atlas-cli/internal/index"
	"github.com/landgrid/atlas-cli/internal/model"
)

// Equal-area SRIDs. Raw 4326 degrees distort area with latitude, so all
// intersection math runs in a projected CRS: CONUS Albers in general,
// Alaska Albers for geometry up north where 5070's distortion is worst.
const (
	sridConus  = 5070
	sridAlaska = 3338
)

// buildSQL computes, for every nation polygon, the fraction of its
// equal-area extent falling inside each overlapping county. The projection
// is chosen per nation: Alaska Albers when the nation touches an Alaska
// county, CONUS Albers otherwise. Sub-sliver rows are dropped in Go.
const buildSQL = `
WITH nation_srid AS (
	SELECT n.geoid,
	       CASE WHEN EXISTS (
	           SELECT 1 FROM geo.counties ak
	           WHERE ak.statefp = '02' AND ST_Intersects(n.the_geom, ak.the_geom)
	       ) THEN 3338 ELSE 5070 END AS srid
	FROM geo.aiannh n
)
SELECT n.geoid,
       c.geoid,
       ST_Area(ST_Intersection(ST_Transform(n.the_geom, s.srid), ST_Transform(c.the_geom, s.srid)))
           / NULLIF(ST_Area(ST_Transform(n.the_geom, s.srid)), 0) AS weight
FROM geo.aiannh n
JOIN nation_srid s ON s.geoid = n.geoid
JOIN geo.counties c ON ST_Intersects(n.the_geom, c.the_geom)
ORDER BY n.geoid, c.geoid`

// minWeight drops intersection slivers below a hundredth of a percent.
const minWeight = 1e-4

// Build computes the crosswalk from loaded TIGER geometry. Nations in the
// index with no boundary geometry get a single fallback entry pointing at
// their primary state's FIPS unit, tagged so consumers report the coverage
// as approximate rather than measured.
func Build(ctx context.Context, pool db.Pool, idx *index.Index, tolerance float64) (*Table, error) {
	log := zap.L().With(zap.String("component", "crosswalk.builder"))

	rows, err := pool.Query(ctx, buildSQL)
	if err != nil {
		return nil, eris.Wrap(err, "crosswalk: query overlaps")
	}
	defer rows.Close()

	var entries []Entry
	covered := make(map[string]bool)
	for rows.Next() {
		var (
			nationID, unitID string
			weight           *float64
		)
		if err := rows.Scan(&nationID, &unitID, &weight); err != nil {
			return nil, eris.Wrap(err, "crosswalk: scan overlap row")
		}
		if weight == nil || *weight < minWeight {
			continue
		}
		if _, known := idx.ByID(nationID); !known {
			continue
		}
		entries = append(entries, Entry{
			NationID: nationID,
			UnitID:   unitID,
			Weight:   *weight,
			Method:   model.CrosswalkArea,
		})
		covered[nationID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "crosswalk: iterate overlap rows")
	}

	// Fallback entries for nations without geometry.
	var fallbacks int
	for _, n := range idx.Nations() {
		if covered[n.ID] {
			continue
		}
		fips, ok := StateFIPS(n.PrimaryState)
		if !ok {
			log.Warn("nation has neither geometry nor a usable primary state",
				zap.String("nation_id", n.ID),
				zap.String("primary_state", n.PrimaryState),
			)
			continue
		}
		entries = append(entries, Entry{
			NationID: n.ID,
			UnitID:   fips,
			Weight:   1.0,
			Method:   model.CrosswalkFallback,
		})
		fallbacks++
	}

	table := NewTable(entries)
	clipped := table.Validate(tolerance)

	log.Info("crosswalk built",
		zap.Int("nations", table.Len()),
		zap.Int("entries", len(entries)),
		zap.Int("fallbacks", fallbacks),
		zap.Int("clipped", clipped),
	)
	return table, nil
}
