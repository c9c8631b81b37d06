package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set during build with -ldflags
var version = "0.1.0-dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	root      string
	logLevel  string
	logFormat string
	mcpLog    string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "uisync",
	Short: "Read and write React component files as component trees",
	Long: `uisync keeps .tsx component files and flat component trees in step.
It parses a file's returned markup into a tree, writes an edited tree back
without disturbing the rest of the file, indexes the project's components
and serves these operations to MCP clients.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of uisync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "uisync %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.root, "root", ".", "project root directory")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&flags.mcpLog, "mcp-log", "", "append MCP tool calls to this JSONL file")

	rootCmd.AddCommand(
		newParseCommand(),
		newWriteCommand(),
		newIndexCommand(),
		newInspectCommand(),
		newWatchCommand(),
		newServeCommand(),
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
