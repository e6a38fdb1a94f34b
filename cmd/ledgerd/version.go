package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the release build; the default marks dev builds.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ledgerd version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ledgerd", version)
	},
}
