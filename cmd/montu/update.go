package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updateMany   bool
	updateUpsert bool
)

var updateCmd = &cobra.Command{
	Use:   "update <collection> <filter-json> <update-json>",
	Short: "Update documents",
	Long: `Apply an update spec ($set, $inc, $unset, $push, $pull) to matching
documents. By default only the first match is updated; --many updates all.
With --upsert a non-matching filter inserts a new document instead.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		collection := args[0]
		filter, err := parseDoc(args[1])
		if err != nil {
			fatal("Invalid filter", err)
		}
		spec, err := parseDoc(args[2])
		if err != nil {
			fatal("Invalid update spec", err)
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		if updateUpsert {
			id, err := db.Upsert(collection, filter, spec)
			if err != nil {
				fatal("Upsert failed", err)
			}
			fmt.Println(id)
			return
		}

		var matched int
		if updateMany {
			matched, err = db.UpdateMany(collection, filter, spec)
		} else {
			matched, err = db.UpdateOne(collection, filter, spec)
		}
		if err != nil {
			fatal("Update failed", err)
		}
		fmt.Printf("Matched %d document(s).\n", matched)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&updateMany, "many", false, "Update every match instead of the first")
	updateCmd.Flags().BoolVar(&updateUpsert, "upsert", false, "Insert a document when nothing matches")
}
