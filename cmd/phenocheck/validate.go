package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/phenocheck/internal/core"
	"github.com/JonMunkholm/phenocheck/internal/store"
)

// errFindings signals a completed run that reported errors. The report
// has already been printed.
var errFindings = errors.New("validation reported errors")

type validateOptions struct {
	dictionary  string
	format      string
	output      string
	maxFileSize int64
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate --dictionary FILE DATA_FILE",
		Short: "Check a data file against a data dictionary",
		Long: `Check a delimited phenotype data file against a data dictionary.

The dictionary is a CSV/TSV table with VARNAME, TYPE, MIN and MAX columns,
or a YAML document (.yaml/.yml). The data file format is taken from --format,
else from its extension, else CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.dictionary, "dictionary", "d", "", "data dictionary file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "data file format: csv or tsv")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "report format: text or json")
	cmd.Flags().Int64Var(&opts.maxFileSize, "max-file-size", 50<<20, "maximum data file size in bytes, 0 for no limit")
	_ = cmd.MarkFlagRequired("dictionary")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions, dataPath string) error {
	if opts.output != "text" && opts.output != "json" {
		return fmt.Errorf("unknown output %q: want text or json", opts.output)
	}

	data, err := os.Open(dataPath)
	if err != nil {
		return err
	}
	defer data.Close()

	dict, err := os.Open(opts.dictionary)
	if err != nil {
		return err
	}
	defer dict.Close()

	svc := core.NewService(
		store.NewMemoryStore(),
		core.NewRunLimiter(1, core.DefaultMaxWaitTime),
		core.Options{MaxFileSize: opts.maxFileSize},
	)

	run, err := svc.ValidateFile(cmd.Context(), core.Request{
		FileName:       filepath.Base(dataPath),
		Content:        data,
		Format:         opts.format,
		DictionaryName: filepath.Base(opts.dictionary),
		Dictionary:     dict,
	})
	if err != nil {
		return err
	}

	if opts.output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return err
		}
	} else if err := renderReport(cmd.OutOrStdout(), *run); err != nil {
		return err
	}

	if !run.Passed() {
		return errFindings
	}
	return nil
}
