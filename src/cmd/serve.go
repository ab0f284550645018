package cmd

import (
	"github.com/spf13/cobra"

	"github.com/one-of-one-tools/marketsync/src/server"
)

func init() {
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive webhooks, process queued tasks and serve the tracker API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := server.NewController(conf)
		if err != nil {
			return
		}

		controller.Start()

		<-ctx.Done()

		controller.StopWait()

		return
	},
}
