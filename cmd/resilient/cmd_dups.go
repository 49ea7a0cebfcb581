package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/resilient"
	msgpacksrc "github.com/reoring/resilient/source/msgpack"
	yamlsrc "github.com/reoring/resilient/source/yaml"
)

var dupsFlags struct {
	max int
}

var dupsCmd = &cobra.Command{
	Use:   "dups [flags] <document>...",
	Short: "List keys repeated within one object",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDups,
}

func init() {
	dupsCmd.Flags().IntVar(&dupsFlags.max, "max", -1, "Stop after this many duplicates per document (-1 = all)")
	rootCmd.AddCommand(dupsCmd)
}

func runDups(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	total := 0
	for _, path := range args {
		iss, err := scanDuplicates(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, is := range iss {
			fmt.Fprintf(out, "%s %s %s\n", path, color.YellowString(is.Path), is.Message)
		}
		total += len(iss)
	}
	if total > 0 {
		return fmt.Errorf("%d duplicate keys found", total)
	}
	return nil
}

func scanDuplicates(path string) (resilient.Issues, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var src resilient.Source
	switch detectFormat(path) {
	case "yaml":
		src = yamlsrc.Source(f)
	case "msgpack":
		src = msgpacksrc.Source(f)
	default:
		src = resilient.JSONReader(f)
	}
	return resilient.DuplicateKeys(src, dupsFlags.max)
}
