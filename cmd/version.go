package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jobsniper version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
