package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/render"
)

func (a *app) renderCmd() *cobra.Command {
	var jsPath, cssPath string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render tailwind.config.js and theme CSS",
		Long: "Render the document as the tailwind.config.js the CSS build consumes and, optionally, the daisyUI " +
			"themes as CSS custom properties. Outputs default to the project config; without any output the " +
			"JavaScript is printed to stdout.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.validateOptions()
			if err != nil {
				return err
			}
			doc, err := a.loadValid(cmd.Context(), a.documentPath(args), opts)
			if err != nil {
				return err
			}

			jsOut := pick(jsPath, a.project.Output.JS, "")
			cssOut := pick(cssPath, a.project.Output.CSS, "")
			if toStdout || (jsOut == "" && cssOut == "") {
				_, err := cmd.OutOrStdout().Write(render.JS(doc))
				return err
			}
			return a.writeOutputs(doc, opts, jsOut, cssOut)
		},
	}
	cmd.Flags().StringVar(&jsPath, "js", "", "Write tailwind.config.js to this path")
	cmd.Flags().StringVar(&cssPath, "css", "", "Write theme CSS to this path")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print tailwind.config.js to stdout instead of writing files")
	return cmd
}

// writeOutputs renders doc to every non-empty output path.
func (a *app) writeOutputs(doc *config.Document, opts config.ValidateOptions, jsOut, cssOut string) error {
	if jsOut != "" {
		if err := writeOutput(jsOut, render.JS(doc)); err != nil {
			return err
		}
		a.logger.Info("wrote tailwind config", "path", jsOut)
	}
	if cssOut != "" {
		css, err := render.ThemeCSS(doc, opts.Palette)
		if err != nil {
			return fmt.Errorf("failed to render theme CSS: %w", err)
		}
		if err := writeOutput(cssOut, css); err != nil {
			return err
		}
		a.logger.Info("wrote theme CSS", "path", cssOut)
	}
	return nil
}

// writeOutput writes a generated file, creating its directory.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return render.WriteFile(path, data)
}
