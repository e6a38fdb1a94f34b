package main

import (
	"github.com/spf13/cobra"
)

// configFile is set by the --config flag.
var configFile string

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "ledgerd serves the shared DNA-extraction sample ledger",
	Long: `ledgerd is the daemon behind the isolate ledger: an authoritative
keyed record store for DNA-extraction samples with snapshot fan-out,
field-level partial writes, isolate grouping and CSV export.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}
