package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	montu "github.com/katha-begin/Montu-sub000"
	"github.com/katha-begin/Montu-sub000/pkg/aggregate"
)

var (
	findSort    string
	findSkip    int
	findLimit   int
	findProject string
	findOne     bool
)

var findCmd = &cobra.Command{
	Use:   "find <collection> [filter-json]",
	Short: "Query documents",
	Long: `Query a collection with a Mongo-style filter. An omitted filter
matches every document. Sort specs take the pipeline form, e.g.
--sort '[["priority", -1], ["title", 1]]' or --sort '{"title": 1}'.`,
	Args: cobra.RangeArgs(1, 2),
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

		if findOne {
			doc, err := db.FindOne(collection, filter)
			if err != nil {
				fatal("Query failed", err)
			}
			if doc == nil {
				fmt.Println("null")
				return
			}
			if err := printJSON(doc); err != nil {
				fatal("Failed to encode result", err)
			}
			return
		}

		opts := montu.FindOptions{Skip: findSkip, Limit: findLimit}
		if findSort != "" {
			var spec any
			if err := json.Unmarshal([]byte(findSort), &spec); err != nil {
				fatal("Invalid sort spec", err)
			}
			keys, err := aggregate.ParseSortSpec(spec)
			if err != nil {
				fatal("Invalid sort spec", err)
			}
			opts.Sort = keys
		}
		if findProject != "" {
			projection, err := parseDoc(findProject)
			if err != nil {
				fatal("Invalid projection", err)
			}
			opts.Projection = projection
		}

		docs, err := db.FindWithOptions(collection, filter, opts)
		if err != nil {
			fatal("Query failed", err)
		}
		if err := printJSON(docs); err != nil {
			fatal("Failed to encode results", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringVar(&findSort, "sort", "", "Sort spec as JSON")
	findCmd.Flags().IntVar(&findSkip, "skip", 0, "Documents to skip")
	findCmd.Flags().IntVar(&findLimit, "limit", 0, "Maximum documents to return (0 = all)")
	findCmd.Flags().StringVar(&findProject, "project", "", "Projection document as JSON")
	findCmd.Flags().BoolVar(&findOne, "one", false, "Return only the first match")
}
