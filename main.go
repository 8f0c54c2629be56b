// =============================================================================
// Fraksjonsoversikt - Main Entry Point
// =============================================================================
//
// USAGE:
//   isekk report [files...] - Summarize exports into fraksjonsoversikt files
//   isekk serve             - Run the HTTP upload service
//   isekk version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/      : CLI command definitions (Cobra)
//   - internal/ : Report pipeline, readers, writers, server, config
//   - pkg/      : File system utilities
//
// =============================================================================

package main

import (
	"github.com/TeoCir/IsekkKran/cmd"
)

func main() {
	cmd.Execute()
}
