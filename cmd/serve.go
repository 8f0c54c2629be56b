// =============================================================================
// Fraksjonsoversikt - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the HTTP upload service
// until SIGINT or SIGTERM.
//
// COMMAND USAGE:
//   isekk serve [--addr :8080]
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/TeoCir/IsekkKran/internal/converter"
	"github.com/TeoCir/IsekkKran/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP upload service",
	Long: `The serve command exposes the report over HTTP:

  POST /api/report       JSON overview (add flat_text=true for the text)
  POST /api/report/xlsx  fraksjonsoversikt.xlsx
  POST /api/report/text  fraksjonsoversikt.txt or .csv

Upload the export as multipart field "file". Optional parameters: units,
delimiter, include_sum, decimals, display_decimals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			appConfig.Server.Addr = serveAddr
		}
		srv := server.New(appConfig, converter.New(appConfig, logger), logger)
		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}
