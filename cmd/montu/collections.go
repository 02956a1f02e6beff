package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List all collections in the store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		names, err := db.ListCollections()
		if err != nil {
			fatal("Failed to list collections", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop <collection>",
	Short: "Drop a collection and its indexes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		if err := db.DropCollection(args[0]); err != nil {
			fatal("Drop failed", err)
		}
		fmt.Printf("Collection '%s' dropped.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(dropCmd)
}
