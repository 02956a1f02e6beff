package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Stream collection change events",
	Long: `Print change events for collections matching the pattern (doublestar
syntax, all collections when omitted), including changes made by other
processes. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := db.Watch(ctx, pattern)
		if err != nil {
			fatal("Failed to start watcher", err)
		}
		for event := range events {
			fmt.Println(event.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
