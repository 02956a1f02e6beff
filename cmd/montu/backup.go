package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup <target-dir>",
	Short: "Snapshot every collection into a timestamped directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		snapshot, err := db.BackupDatabase(args[0])
		if err != nil {
			fatal("Backup failed", err)
		}
		fmt.Println(snapshot)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot-dir>",
	Short: "Replace the store's collections with a snapshot",
	Long: `Replace every collection with the contents of a snapshot produced by
'montu backup'. The snapshot is validated in full before any live file is
touched; a corrupt snapshot leaves the store unchanged.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db, err := openStore()
		if err != nil {
			fatal("Failed to open store", err)
		}
		if err := db.RestoreDatabase(args[0]); err != nil {
			fatal("Restore failed", err)
		}
		fmt.Println("Store restored.")
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
