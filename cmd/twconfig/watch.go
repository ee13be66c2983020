package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var jsPath, cssPath string
	var debounce = watch.DefaultDebounce

	cmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Re-render outputs whenever the document changes",
		Long: "Render once, then watch the document and re-render tailwind.config.js and the theme CSS after " +
			"every valid save. Invalid saves are reported and leave the outputs untouched.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.validateOptions()
			if err != nil {
				return err
			}
			path := a.documentPath(args)
			jsOut := pick(jsPath, a.project.Output.JS, "")
			cssOut := pick(cssPath, a.project.Output.CSS, "")
			if jsOut == "" && cssOut == "" {
				return fmt.Errorf("nothing to write: set --js/--css or output in the project config")
			}

			doc, err := a.loadValid(cmd.Context(), path, opts)
			if err != nil {
				return err
			}
			if err := a.writeOutputs(doc, opts, jsOut, cssOut); err != nil {
				return err
			}

			loader := a.newDocLoader(cmd, opts)
			w, err := watch.New(path, func(ev watch.Event) {
				if ev.Err != nil {
					a.logger.Error("config is invalid, outputs unchanged", "path", path, "error", ev.Err)
					return
				}
				for _, warning := range ev.Warnings {
					a.logger.Warn(warning, "path", path)
				}
				if err := a.writeOutputs(ev.Document, loader.options(), jsOut, cssOut); err != nil {
					a.logger.Error("failed to render", "path", path, "error", err)
				}
			}, watch.Options{
				Debounce: debounce,
				Load:     loader.load,
				Also:     a.paletteFiles(),
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			a.logger.Info("stopping", "path", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsPath, "js", "", "Write tailwind.config.js to this path")
	cmd.Flags().StringVar(&cssPath, "css", "", "Write theme CSS to this path")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-rendering")
	return cmd
}
