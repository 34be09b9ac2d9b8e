package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotisserie/eris"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the coverage report from the most recent completed run",
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
		cov, err := st.LatestCoverage(ctx)
		if err != nil {
			return err
		}
		if cov == nil {
			return eris.New("no completed runs")
		}

		out, err := json.MarshalIndent(cov, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
