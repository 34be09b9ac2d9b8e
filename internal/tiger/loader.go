package tiger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/landgrid/atlas-cli/internal/db"
)

const copyBatchSize = 50000

// LoadOptions configures the TIGER boundary load.
type LoadOptions struct {
	Year       int     // TIGER/Line data year
	TempDir    string  // download directory
	RatePerSec float64 // census.gov request throttle
	Products   []string // product names; empty = all
}

// Load downloads and loads the boundary products into geo.* tables. Each
// product's table is truncated first: a load replaces the snapshot, it does
// not merge with the previous one.
func Load(ctx context.Context, pool db.Pool, opts LoadOptions) error {
	if opts.Year == 0 {
		opts.Year = 2024
	}
	if opts.TempDir == "" {
		opts.TempDir = "/tmp/atlas-tiger"
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}

	log := zap.L().With(
		zap.String("component", "tiger.loader"),
		zap.Int("year", opts.Year),
	)

	if err := EnsureSchema(ctx, pool); err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)

	products := Products
	if len(opts.Products) > 0 {
		products = products[:0:0]
		for _, name := range opts.Products {
			p, ok := ProductByName(name)
			if !ok {
				return eris.Errorf("tiger: unknown product %s", name)
			}
			products = append(products, p)
		}
	}

	for _, p := range products {
		shpPath, err := Download(ctx, p.URL(opts.Year), opts.TempDir, limiter)
		if err != nil {
			return err
		}

		rows, err := ParseShapefile(shpPath, p)
		if err != nil {
			return err
		}

		if _, err := pool.Exec(ctx, "TRUNCATE "+pgx.Identifier{"geo", p.Table}.Sanitize()); err != nil {
			return eris.Wrapf(err, "tiger: truncate geo.%s", p.Table)
		}

		columns := append(append([]string{}, p.Columns...), "the_geom")
		var loaded int64
		for i := 0; i < len(rows); i += copyBatchSize {
			end := min(i+copyBatchSize, len(rows))
			n, err := db.CopyFromSchema(ctx, pool, "geo", p.Table, columns, rows[i:end])
			if err != nil {
				return err
			}
			loaded += n
		}

		log.Info("TIGER product loaded",
			zap.String("product", p.Name),
			zap.Int64("rows", loaded),
		)
	}

	return nil
}
