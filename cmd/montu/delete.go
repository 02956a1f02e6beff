package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteMany bool

var deleteCmd = &cobra.Command{
	Use:   "delete <collection> <filter-json>",
	Short: "Delete documents",
	Long: `Delete documents matching a filter. By default only the first match
is removed; --many removes all. Deleting with no match is a no-op.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		collection := args[0]
		filter, err := parseDoc(args[1])
		if err != nil {
			fatal("Invalid filter", err)
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		var deleted int
		if deleteMany {
			deleted, err = db.DeleteMany(collection, filter)
		} else {
			deleted, err = db.DeleteOne(collection, filter)
		}
		if err != nil {
			fatal("Delete failed", err)
		}
		fmt.Printf("Deleted %d document(s).\n", deleted)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteMany, "many", false, "Delete every match instead of the first")
}
