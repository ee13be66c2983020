package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type validateReport struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (a *app) validateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate [document]",
		Short: "Validate a configuration document",
		Long: "Validate a YAML, JSON or tailwind.config.js document and print every problem found. " +
			"Exits non-zero when the document is invalid.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.validateOptions()
			if err != nil {
				return err
			}
			path := a.documentPath(args)
			l, err := a.load(cmd.Context(), path, opts)
			if err != nil {
				return err
			}

			report := validateReport{Path: path, Valid: len(l.Errors) == 0, Errors: []string{}, Warnings: []string{}}
			for _, e := range l.Errors {
				report.Errors = append(report.Errors, e.Error())
			}
			report.Warnings = append(report.Warnings, l.Warnings...)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, e := range report.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
				for _, w := range report.Warnings {
					fmt.Fprintf(out, "warning: %s\n", w)
				}
				if report.Valid {
					fmt.Fprintf(out, "%s: ok (%d warning(s))\n", path, len(report.Warnings))
				}
			}

			if !report.Valid {
				return fmt.Errorf("%s: invalid configuration", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
