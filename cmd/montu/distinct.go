package main

import (
	"github.com/spf13/cobra"
)

var distinctCmd = &cobra.Command{
	Use:   "distinct <collection> <field> [filter-json]",
	Short: "List the distinct values of a field",
	Long: `List the distinct values a field takes across matching documents.
Dotted paths reach into nested documents; array fields contribute each
element.`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		collection, field := args[0], args[1]
		filterArg := ""
		if len(args) == 3 {
			filterArg = args[2]
		}
		filter, err := parseDoc(filterArg)
		if err != nil {
			fatal("Invalid filter", err)
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		values, err := db.Distinct(collection, field, filter)
		if err != nil {
			fatal("Distinct failed", err)
		}
		if err := printJSON(values); err != nil {
			fatal("Failed to encode results", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(distinctCmd)
}
