package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/hazard"
	"github.com/landgrid/atlas-cli/internal/matcher"
	"github.com/landgrid/atlas-cli/internal/pipeline"
	"github.com/landgrid/atlas-cli/internal/profile"
)

var (
	awardsPath  string
	hazardsPath string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run the full aggregation: match awards, aggregate hazards, write profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if awardsPath == "" || hazardsPath == "" {
			return eris.New("--awards and --hazards are required")
		}

		idx, err := loadIndex()
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
		entries, err := st.LoadCrosswalk(ctx)
		if err != nil {
			return err
		}

		reg, err := hazard.LoadRegistry(cfg.Hazard.RegistryPath)
		if err != nil {
			return err
		}
		overrides, err := hazard.LoadOverrides(cfg.Hazard.OverridePath)
		if err != nil {
			return err
		}

		writer, err := profile.NewWriter(cfg.Output.ProfileDir)
		if err != nil {
			return err
		}

		result, err := pipeline.Run(ctx, pipeline.Deps{
			Index:     idx,
			Matcher:   matcher.New(idx, cfg.Matcher),
			Crosswalk: crosswalk.NewTable(entries),
			Registry:  reg,
			Overrides: overrides,
			Writer:    writer,
			Store:     st,
			ReportDir: cfg.Output.ReportDir,
			TopN:      cfg.Hazard.TopN,
			Workers:   cfg.Output.Workers,
		}, awardsPath, hazardsPath)
		if err != nil {
			return err
		}

		fmt.Printf("run %s: %d profiles written (%d alias, %d fuzzy, %d ambiguous, %d unmatched)\n",
			result.RunID, result.Profiles,
			result.Coverage.AliasMatches, result.Coverage.FuzzyMatches,
			result.Coverage.AmbiguousMatches, result.Coverage.UnmatchedRecords)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&awardsPath, "awards", "", "path to the award snapshot CSV")
	aggregateCmd.Flags().StringVar(&hazardsPath, "hazards", "", "path to the county hazard snapshot CSV")
	rootCmd.AddCommand(aggregateCmd)
}
