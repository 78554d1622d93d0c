package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	krpretty "github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
	"github.com/ministryofjustice/hmpps-form-engine/pkg/formengine"
)

var (
	graphFormat  string
	graphPretty  bool
	graphVerbose bool
)

var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Dump a compiled journey's dependency graph",
	Long: `Compile a journey document and dump its DATA_FLOW edges, either as
DOT (for piping into graphviz) or as JSON.

Examples:
  formengine graph journey.json --format dot
  formengine graph journey.json --format json --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphFormat, "format", "dot", "output format: dot or json")
	graphCmd.Flags().BoolVar(&graphPretty, "pretty", false, "pretty-print JSON output (tidwall/pretty)")
	graphCmd.Flags().BoolVar(&graphVerbose, "verbose", false, "print a kr/pretty Go-syntax dump of every edge to stderr")
}

func runGraph(_ *cobra.Command, args []string) error {
	filename := args[0]
	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	program, err := formengine.Compile(raw)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", filename, err)
	}

	edges := program.Graph().All()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].From < edges[j].From
	})

	if graphVerbose {
		fmt.Fprintf(os.Stderr, "%# v\n", krpretty.Formatter(edges))
	}

	switch graphFormat {
	case "dot":
		return writeDOT(edges)
	case "json":
		return writeJSON(edges)
	default:
		return fmt.Errorf("unknown format %q (want dot or json)", graphFormat)
	}
}

func writeDOT(edges []registry.Edge) error {
	fmt.Println("digraph dependencies {")
	for _, e := range edges {
		fmt.Printf("  %q -> %q [label=%q];\n", string(e.From), string(e.To), e.Property)
	}
	fmt.Println("}")
	return nil
}

func writeJSON(edges []registry.Edge) error {
	type jsonEdge struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Property string `json:"property"`
		Index    int    `json:"index"`
	}
	out := make([]jsonEdge, len(edges))
	for i, e := range edges {
		out[i] = jsonEdge{From: string(e.From), To: string(e.To), Property: e.Property, Index: e.Index}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshalling graph: %w", err)
	}
	if graphPretty {
		data = pretty.Pretty(data)
	}
	fmt.Println(string(data))
	return nil
}
