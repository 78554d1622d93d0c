// Command formengine is a small operator CLI over pkg/formengine: validate
// a journey document, inspect its dependency graph, or run one step's GET
// lifecycle against synthetic request data — useful for authoring and CI
// checks without standing up a host application.
package main

import (
	"fmt"
	"os"

	"github.com/ministryofjustice/hmpps-form-engine/cmd/formengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
