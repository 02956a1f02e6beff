package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	montu "github.com/katha-begin/Montu-sub000"
)

// A rough throughput probe for the store: seeds one collection and times a
// full-collection insert, a filtered query, and a group pipeline. Useful for
// eyeballing the cost of the load-mutate-persist cycle at different sizes.
func main() {
	count := flag.Int("count", 1000, "Number of documents to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "montu_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, err := montu.Open(benchDir, montu.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	statuses := []string{"pending", "active", "done"}
	docs := make([]montu.Document, 0, *count)
	for i := 0; i < *count; i++ {
		docs = append(docs, montu.Document{
			"title":    fmt.Sprintf("Task %d", i),
			"status":   statuses[i%len(statuses)],
			"priority": float64(i % 10),
		})
	}

	fmt.Printf("Inserting %d documents into %s...\n", *count, benchDir)
	startInsert := time.Now()
	if _, err := db.InsertMany("tasks", docs); err != nil {
		panic(err)
	}
	fmt.Printf("Insert took: %v\n", time.Since(startInsert))

	// Run 1: Cold query (first load parses the collection file).
	fmt.Println("Running Find (Run 1 - Cold)...")
	startFind := time.Now()
	active, err := db.Find("tasks", montu.Document{"status": "active"})
	if err != nil {
		panic(err)
	}
	durationCold := time.Since(startFind)
	fmt.Printf("Run 1 Result: %v (Items: %d)\n", durationCold, len(active))

	// Run 2: Same query on a fresh handle, simulating a new CLI invocation.
	db2, err := montu.Open(benchDir, montu.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	fmt.Println("Running Find (Run 2 - Fresh handle)...")
	startFind2 := time.Now()
	active2, err := db2.Find("tasks", montu.Document{"status": "active"})
	if err != nil {
		panic(err)
	}
	durationWarm := time.Since(startFind2)
	fmt.Printf("Run 2 Result: %v (Items: %d)\n", durationWarm, len(active2))

	fmt.Println("Running Aggregate ($group by status)...")
	startAgg := time.Now()
	groups, err := db.Aggregate("tasks", []montu.Document{
		{"$group": map[string]any{
			"_id": "$status",
			"n":   map[string]any{"$count": map[string]any{}},
			"avg": map[string]any{"$avg": "$priority"},
		}},
	})
	if err != nil {
		panic(err)
	}
	durationAgg := time.Since(startAgg)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d documents):\n", *count)
	fmt.Printf("  Find cold:  %v\n", durationCold)
	fmt.Printf("  Find fresh: %v\n", durationWarm)
	fmt.Printf("  Aggregate:  %v (groups: %d)\n", durationAgg, len(groups))
	fmt.Printf("--------------------------------------------------\n")
}
