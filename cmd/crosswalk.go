package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/db"
	"github.com/landgrid/atlas-cli/internal/model"
)

var crosswalkCmd = &cobra.Command{
	Use:   "crosswalk",
	Short: "Build and inspect the nation-to-county crosswalk",
}

var crosswalkBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute area weights from loaded TIGER geometry and cache them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		idx, err := loadIndex()
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Crosswalk.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		table, err := crosswalk.Build(ctx, pool, idx, cfg.Crosswalk.WeightTolerance)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := st.SaveCrosswalk(ctx, table.All()); err != nil {
			return err
		}

		zap.L().Info("crosswalk cached", zap.Int("nations", table.Len()))
		return nil
	},
}

var crosswalkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the cached crosswalk",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		entries, err := st.LoadCrosswalk(ctx)
		if err != nil {
			return err
		}

		table := crosswalk.NewTable(entries)
		var fallbacks int
		for _, e := range entries {
			if e.Method == model.CrosswalkFallback {
				fallbacks++
			}
		}

		fmt.Printf("nations: %d\nentries: %d\nfallback nations: %d\n",
			table.Len(), len(entries), fallbacks)
		return nil
	},
}

func init() {
	crosswalkCmd.AddCommand(crosswalkBuildCmd, crosswalkStatusCmd)
	rootCmd.AddCommand(crosswalkCmd)
}
