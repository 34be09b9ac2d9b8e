package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landgrid/atlas-cli/internal/matcher"
)

var matchState string

var matchCmd = &cobra.Command{
	Use:   "match <raw name>",
	Short: "Resolve one raw recipient name against the nation index",
	Long:  "Debugging aid for alias-table curation: shows how a raw name resolves, including ambiguous candidate sets.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex()
		if err != nil {
			return err
		}

		m := matcher.New(idx, cfg.Matcher)
		result := m.MatchWithState(args[0], matchState)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchState, "state", "", "state code for secondary validation")
	rootCmd.AddCommand(matchCmd)
}
