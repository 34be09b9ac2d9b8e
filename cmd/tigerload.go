package main

import (
	"github.com/spf13/cobra"

	"github.com/landgrid/atlas-cli/internal/db"
	"github.com/landgrid/atlas-cli/internal/tiger"
)

var tigerProducts []string

var tigerloadCmd = &cobra.Command{
	Use:   "tigerload",
	Short: "Download and load TIGER/Line boundary shapefiles into PostGIS",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := db.Connect(ctx, cfg.Crosswalk.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		return tiger.Load(ctx, pool, tiger.LoadOptions{
			Year:       cfg.Tiger.Year,
			TempDir:    cfg.Tiger.TempDir,
			RatePerSec: cfg.Tiger.RatePerSec,
			Products:   tigerProducts,
		})
	},
}

func init() {
	tigerloadCmd.Flags().StringSliceVar(&tigerProducts, "products", nil, "product names to load (default all)")
	rootCmd.AddCommand(tigerloadCmd)
}
