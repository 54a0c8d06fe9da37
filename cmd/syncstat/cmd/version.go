package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/syncstat/pkg/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit, and build time of syncstat.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetOutput() == "json" {
			data, _ := json.MarshalIndent(config.GetBuildInfo(), "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
