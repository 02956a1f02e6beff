package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	montu "github.com/katha-begin/Montu-sub000"
)

var insertFile string

// insertCmd represents the insert command
var insertCmd = &cobra.Command{
	Use:   "insert <collection> [document-json]",
	Short: "Insert a document",
	Long: `Insert a JSON document into a collection. The document may be given
inline as an argument or read from a file with --file. A file holding a JSON
array inserts every element as one batch.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		collection := args[0]

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		var raw []byte
		switch {
		case insertFile != "":
			raw, err = os.ReadFile(insertFile)
			if err != nil {
				fatal("Failed to read document file", err)
			}
		case len(args) == 2:
			raw = []byte(args[1])
		default:
			fmt.Println("Error: a document argument or --file is required")
			cmd.Usage()
			os.Exit(1)
		}

		// Try a batch first, fall back to a single document.
		var batch []montu.Document
		if err := json.Unmarshal(raw, &batch); err == nil {
			ids, err := db.InsertMany(collection, batch)
			if err != nil {
				fatal("Failed to insert documents", err)
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return
		}

		var doc montu.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			fatal("Invalid JSON document", err)
		}
		id, err := db.InsertOne(collection, doc)
		if err != nil {
			fatal("Failed to insert document", err)
		}
		fmt.Println(id)
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
	insertCmd.Flags().StringVarP(&insertFile, "file", "f", "", "Read the document (or array of documents) from a file")
}
