package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/one-of-one-tools/marketsync/src/utils/build_info"
)

func init() {
	RootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketsync %s (built %s)\n", build_info.Version, build_info.BuildDate)
	},
}
