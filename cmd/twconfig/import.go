package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/jsconfig"
)

func (a *app) importCmd() *cobra.Command {
	var outPath, format string
	var preferRefs bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "import <tailwind.config.js>",
		Short: "Convert an existing tailwind.config.js into a document",
		Long: "Evaluate a tailwind.config.js in an embedded JavaScript VM and convert module.exports into a " +
			"validated YAML or JSON document. Only tailwindcss/colors, tailwindcss/defaultTheme and registered " +
			"plugins may be required.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.validateOptions()
			if err != nil {
				return err
			}

			f := config.Format(format)
			switch {
			case format == "" && outPath != "":
				f = config.FormatFromPath(outPath)
			case format == "":
				f = config.FormatYAML
			case f != config.FormatYAML && f != config.FormatJSON:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}

			im, err := jsconfig.New(jsconfig.Options{
				Palette:          opts.Palette,
				Plugins:          opts.Plugins,
				Roles:            opts.Roles,
				Timeout:          timeout,
				PreferReferences: preferRefs,
				Logger:           a.logger,
			})
			if err != nil {
				return err
			}
			defer im.Close()

			res, err := im.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				a.logger.Warn(w, "path", args[0])
			}

			data, err := config.Marshal(res.Document, f)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeOutput(outPath, data); err != nil {
				return err
			}
			a.logger.Info("imported config", "from", args[0], "to", outPath, "requires", len(res.Requires))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the document to this path (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: yaml or json (default: from --out extension, else yaml)")
	cmd.Flags().BoolVar(&preferRefs, "prefer-refs", false, "Turn hex values that match one palette shade into references")
	cmd.Flags().DurationVar(&timeout, "timeout", jsconfig.DefaultTimeout, "Evaluation time limit")
	return cmd
}
