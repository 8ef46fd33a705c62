// Command phenocheck validates a phenotype data file against a data
// dictionary from the command line.
//
//	phenocheck validate --dictionary dictionary.csv phenotypes.txt
//
// The exit status is 0 when the file has no errors, 1 when validation
// reports errors or the run could not be performed.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/JonMunkholm/phenocheck/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			msg := err.Error()
			if core.IsUserFacing(err) {
				msg = core.FormatUserError(err)
			}
			fmt.Fprintln(os.Stderr, "phenocheck:", msg)
		}
		os.Exit(1)
	}
}
