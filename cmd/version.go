package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conceptbridge/conceptbridge/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the conceptbridge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("conceptbridge %s\n", server.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
