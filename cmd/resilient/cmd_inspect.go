package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/resilient"
	_ "github.com/reoring/resilient/source"
	gojsonsrc "github.com/reoring/resilient/source/gojson"
	msgpacksrc "github.com/reoring/resilient/source/msgpack"
	yamlsrc "github.com/reoring/resilient/source/yaml"

	"github.com/reoring/resilient/internal/schemafile"
)

var inspectFlags struct {
	schema     string
	format     string
	all        bool
	jobs       int
	jsonDriver string
	dupKeys    string
	maxDepth   int
	maxBytes   int64
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <document>...",
	Short: "Decode documents against a schema and print values, outcomes and the error digest",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.schema, "schema", "", "Schema file, YAML or TOML (required)")
	f.StringVar(&inspectFlags.format, "format", "auto", "Document format: auto, json, yaml, msgpack")
	f.BoolVar(&inspectFlags.all, "all", false, "Include unknown enum values in the digest")
	f.IntVar(&inspectFlags.jobs, "jobs", 0, "Documents decoded in parallel (0 = GOMAXPROCS)")
	f.StringVar(&inspectFlags.jsonDriver, "json-driver", "go-json", "JSON driver: go-json or std")
	f.StringVar(&inspectFlags.dupKeys, "duplicate-keys", "warn", "Duplicate key policy: ignore, warn, error")
	f.IntVar(&inspectFlags.maxDepth, "max-depth", 0, "Maximum nesting depth (0 = unlimited)")
	f.Int64Var(&inspectFlags.maxBytes, "max-bytes", 0, "Maximum document size in bytes (0 = unlimited)")

	_ = inspectCmd.MarkFlagRequired("schema")
}

// inspection is the rendered result for one document.
type inspection struct {
	path   string
	out    bytes.Buffer
	failed bool
}

func runInspect(cmd *cobra.Command, args []string) error {
	schema, err := schemafile.Load(inspectFlags.schema)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	switch inspectFlags.jsonDriver {
	case "std":
		resilient.UseDefaultJSONDriver()
	case "go-json":
		resilient.SetJSONDriver(gojsonsrc.Driver())
	default:
		return fmt.Errorf("unknown JSON driver %q", inspectFlags.jsonDriver)
	}
	opt := schema.Options()
	if opt.Strictness.OnDuplicateKey, err = parseSeverity(inspectFlags.dupKeys); err != nil {
		return err
	}
	opt.MaxDepth = inspectFlags.maxDepth
	opt.MaxBytes = inspectFlags.maxBytes

	jobs := inspectFlags.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*inspection, len(args))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			results[i] = inspectFile(gctx, schema, opt, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if _, err := io.Copy(out, &r.out); err != nil {
			return err
		}
		if r.failed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be decoded", failed, len(args))
	}
	return nil
}

func inspectFile(ctx context.Context, schema *schemafile.Schema, opt resilient.Options, path string) *inspection {
	r := &inspection{path: path}
	bold := color.New(color.Bold)
	bold.Fprintf(&r.out, "== %s\n", path)

	sess := resilient.NewSession(opt)
	rep := sess.EnableErrorReporting()
	rec := schema.NewRecord()

	err := decodeFile(ctx, sess, path, rec)
	if err != nil {
		r.failed = true
		color.New(color.FgRed).Fprintf(&r.out, "error: %v\n\n", err)
		return r
	}

	printEntries(&r.out, rec)
	if digest := rep.Flush(); digest != nil {
		text := digest.PrettyPrint(inspectFlags.all)
		if text != "" {
			bold.Fprintf(&r.out, "digest (session %s):\n", digest.SessionID())
			r.out.WriteString(indentLines(text, "  "))
		}
	}
	r.out.WriteByte('\n')
	return r
}

func decodeFile(ctx context.Context, sess *resilient.Session, path string, v resilient.Decodable) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var src resilient.Source
	switch format := detectFormat(path); format {
	case "json":
		src = resilient.JSONReader(f)
	case "yaml":
		src = yamlsrc.Source(f)
	case "msgpack":
		src = msgpacksrc.Source(f)
	default:
		return fmt.Errorf("unknown document format %q", format)
	}
	return sess.Decode(ctx, src, v)
}

func detectFormat(path string) string {
	if inspectFlags.format != "" && inspectFlags.format != "auto" {
		return inspectFlags.format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".msgpack", ".mpk", ".mp":
		return "msgpack"
	default:
		return "json"
	}
}

func parseSeverity(s string) (resilient.Severity, error) {
	switch s {
	case "ignore":
		return resilient.Ignore, nil
	case "warn":
		return resilient.Warn, nil
	case "error":
		return resilient.Error, nil
	}
	return resilient.Ignore, fmt.Errorf("unknown duplicate key policy %q", s)
}

func printEntries(w io.Writer, rec *schemafile.Record) {
	vals := rec.Values()
	width := 0
	for _, e := range rec.Entries {
		width = max(width, len(e.Name))
	}
	for _, e := range rec.Entries {
		b, err := gojson.Marshal(vals[e.Name])
		if err != nil {
			b = []byte(fmt.Sprintf("%v", vals[e.Name]))
		}
		fmt.Fprintf(w, "  %-*s  %s  %s\n", width, e.Name, outcomeColor(e.Outcome).Sprint(e.Outcome.Kind), b)
		if err := e.Outcome.Err; err != nil && e.Outcome.Kind == resilient.RecoveredFromError {
			fmt.Fprintf(w, "  %-*s    %s\n", width, "", err)
		}
		for _, el := range e.Elements {
			fmt.Fprintf(w, "  %-*s    - %s\n", width, "", el)
		}
	}
}

func outcomeColor(o resilient.Outcome) *color.Color {
	switch o.Kind {
	case resilient.DecodedSuccessfully:
		return color.New(color.FgGreen)
	case resilient.RecoveredFromError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func indentLines(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}
