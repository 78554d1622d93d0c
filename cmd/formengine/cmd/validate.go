package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ministryofjustice/hmpps-form-engine/internal/compileerr"
	"github.com/ministryofjustice/hmpps-form-engine/pkg/formengine"
)

var validateColor bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Compile a journey document and report any errors",
	Long: `Parse and compile a journey JSON document through the full
compilation pipeline and report either a success summary (journey id,
step count, step ids) or every aggregated compile error, one per line as
"node-id: message" (compile errors carry no source position).

Examples:
  formengine validate journey.json
  formengine validate journey.json --color`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateColor, "color", false, "colorize caret-formatted errors (compile errors have no caret line, so they print uncolored)")
}

func runValidate(_ *cobra.Command, args []string) error {
	filename := args[0]
	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	program, err := formengine.Compile(raw)
	if err != nil {
		var agg *compileerr.Aggregate
		if ok := asAggregate(err, &agg); ok {
			for _, e := range agg.Errors {
				fmt.Fprintln(os.Stderr, e.Format(validateColor))
			}
			return fmt.Errorf("%d compile error(s) in %s", len(agg.Errors), filename)
		}
		return fmt.Errorf("compiling %s: %w", filename, err)
	}

	steps := program.StepIDs()
	fmt.Printf("OK: %s compiled\n", filename)
	fmt.Printf("  journey: %s\n", string(program.JourneyID()))
	fmt.Printf("  steps:   %d\n", len(steps))
	for _, s := range steps {
		fmt.Printf("    - %s\n", string(s))
	}
	return nil
}

func asAggregate(err error, out **compileerr.Aggregate) bool {
	agg, ok := err.(*compileerr.Aggregate)
	if ok {
		*out = agg
	}
	return ok
}
