package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	montu "github.com/katha-begin/Montu-sub000"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of montu",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("montu version %s\n", strings.TrimSpace(montu.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
