package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	montu "github.com/katha-begin/Montu-sub000"
)

var aggregateFile string

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <collection> [pipeline-json]",
	Short: "Run an aggregation pipeline",
	Long: `Run a pipeline of stages ($match, $group, $sort, $skip, $limit,
$project, $count) over a collection, e.g.

  montu aggregate tasks '[{"$match": {"status": "active"}},
                          {"$group": {"_id": "$artist", "n": {"$count": {}}}}]'`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		collection := args[0]

		var raw []byte
		switch {
		case aggregateFile != "":
			data, err := os.ReadFile(aggregateFile)
			if err != nil {
				fatal("Failed to read pipeline file", err)
			}
			raw = data
		case len(args) == 2:
			raw = []byte(args[1])
		default:
			cmd.Usage()
			os.Exit(1)
		}

		var pipeline []montu.Document
		if err := json.Unmarshal(raw, &pipeline); err != nil {
			fatal("Invalid pipeline", err)
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		out, err := db.Aggregate(collection, pipeline)
		if err != nil {
			fatal("Aggregation failed", err)
		}
		if err := printJSON(out); err != nil {
			fatal("Failed to encode results", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVarP(&aggregateFile, "file", "f", "", "Read the pipeline from a file")
}
