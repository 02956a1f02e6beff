package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	indexFields []string
	indexUnique bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage advisory indexes",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create <collection>",
	Short: "Record an advisory index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		spec, err := db.CreateIndex(args[0], indexFields, indexUnique)
		if err != nil {
			fatal("Failed to create index", err)
		}
		fmt.Printf("Index '%s' created.\n", spec.Name)
	},
}

var indexListCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the advisory indexes of a collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		if err := printJSON(db.ListIndexes(args[0])); err != nil {
			fatal("Failed to encode indexes", err)
		}
	},
}

var indexDropCmd = &cobra.Command{
	Use:   "drop <collection> <name>",
	Short: "Remove an advisory index",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		if err := db.DropIndex(args[0], args[1]); err != nil {
			fatal("Failed to drop index", err)
		}
		fmt.Printf("Index '%s' dropped.\n", args[1])
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexCreateCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexDropCmd)
	indexCreateCmd.Flags().StringSliceVar(&indexFields, "fields", nil, "Indexed fields, comma separated")
	indexCreateCmd.Flags().BoolVar(&indexUnique, "unique", false, "Mark the index as unique")
	indexCreateCmd.MarkFlagRequired("fields")
}
