package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/scanner"
)

type scanOutput struct {
	*scanner.Report
	Prefix *scanner.PrefixUsage `json:"prefix_usage,omitempty"`
}

func (a *app) scanCmd() *cobra.Command {
	var listFiles, checkPrefix, failUnmatched, asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [document]",
		Short: "Expand content globs and report what they match",
		Long: "Expand the document's content globs relative to its directory, the way the CSS build does, and " +
			"report per-pattern match counts. Patterns matching no file are flagged.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.validateOptions()
			if err != nil {
				return err
			}
			path := a.documentPath(args)
			doc, err := a.loadValid(cmd.Context(), path, opts)
			if err != nil {
				return err
			}

			sc, err := scanner.New(scanner.Options{Logger: a.logger})
			if err != nil {
				return err
			}
			defer sc.Close()

			report, err := sc.Expand(filepath.Dir(path), doc.Content)
			if err != nil {
				return err
			}
			result := scanOutput{Report: report}
			if checkPrefix {
				if result.Prefix, err = sc.CheckPrefix(cmd.Context(), report.Files, doc.Prefix); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printScanHuman(out, result, listFiles)
			}

			if failUnmatched && len(report.Unmatched) > 0 {
				return fmt.Errorf("%d content pattern(s) match no file", len(report.Unmatched))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&listFiles, "files", false, "List every matched file")
	cmd.Flags().BoolVar(&checkPrefix, "check-prefix", false, "Report matched files that never use the class prefix")
	cmd.Flags().BoolVar(&failUnmatched, "fail-unmatched", false, "Exit non-zero when a pattern matches no file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
