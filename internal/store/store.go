// Package store persists the crosswalk cache, run records, and end-of-run
// reports in a local SQLite database.
package store

import (
	"context"

	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/report"
)

// Store is the persistence interface for the aggregation pipeline.
type Store interface {
	// Crosswalk cache: built once against PostGIS, then reused by every
	// aggregation run without a database round trip.
	SaveCrosswalk(ctx context.Context, entries []crosswalk.Entry) error
	LoadCrosswalk(ctx context.Context) ([]crosswalk.Entry, error)

	// Runs
	CreateRun(ctx context.Context, runID string) error
	CompleteRun(ctx context.Context, runID string, cov report.Coverage) error
	LatestCoverage(ctx context.Context) (*report.Coverage, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
