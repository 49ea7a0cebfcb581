// resilient inspects documents against a schema file and shows which fields
// decoded, which fell back, and why.
//
// Usage:
//
//	resilient inspect --schema=<file.yaml|file.toml> [--all] [--jobs=N] <document>...
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/resilient/i18n"
	"github.com/reoring/resilient/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
	lang      string
	noColor   bool
}

var rootCmd = &cobra.Command{
	Use:   "resilient",
	Short: "Partial-failure tolerant document inspection",
	Long:  "resilient decodes JSON, YAML and MessagePack documents against a schema,\nsubstituting fallbacks for broken fields and reporting every recovered error.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")
	f.StringVar(&rootFlags.lang, "lang", "en", "Message language: en or ja")
	f.BoolVar(&rootFlags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	if err := logging.Configure(level, rootFlags.logFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}
	i18n.SetLanguage(rootFlags.lang)
	if rootFlags.noColor {
		color.NoColor = true
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
