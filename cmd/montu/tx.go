package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	montu "github.com/katha-begin/Montu-sub000"
)

var txFile string

var txCmd = &cobra.Command{
	Use:   "tx [operations-json]",
	Short: "Run a transaction",
	Long: `Execute a list of write operations atomically, possibly across
several collections. Either every operation applies or none does, e.g.

  montu tx '[{"kind": "insert", "collection": "tasks",
              "document": {"title": "comp"}},
             {"kind": "update", "collection": "shots",
              "filter": {"_id": "sq010"},
              "update": {"$inc": {"task_count": 1}}}]'`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var raw []byte
		switch {
		case txFile != "":
			data, err := os.ReadFile(txFile)
			if err != nil {
				fatal("Failed to read operations file", err)
			}
			raw = data
		case len(args) == 1:
			raw = []byte(args[0])
		default:
			cmd.Usage()
			os.Exit(1)
		}

		var ops []montu.Operation
		if err := json.Unmarshal(raw, &ops); err != nil {
			fatal("Invalid operations list", err)
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		result, err := db.Tx(ops)
		if err != nil {
			fatal("Transaction failed", err)
		}
		fmt.Printf("Committed: %d inserted, %d updated, %d deleted.\n",
			result.Inserted, result.Updated, result.Deleted)
	},
}

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.Flags().StringVarP(&txFile, "file", "f", "", "Read the operations list from a file")
}
