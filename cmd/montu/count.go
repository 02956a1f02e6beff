package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count <collection> [filter-json]",
	Short: "Count documents matching a filter",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		collection := args[0]
		filterArg := ""
		if len(args) == 2 {
			filterArg = args[1]
		}
		filter, err := parseDoc(filterArg)
		if err != nil {
			fatal("Invalid filter", err)
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		n, err := db.Count(collection, filter)
		if err != nil {
			fatal("Count failed", err)
		}
		fmt.Println(n)
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
