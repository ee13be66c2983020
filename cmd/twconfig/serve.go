package main

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/config"
	mcpserver "github.com/gnana997/twconfig/pkg/mcp"
	"github.com/gnana997/twconfig/pkg/mcplog"
	"github.com/gnana997/twconfig/pkg/watch"
)

func (a *app) serveCmd() *cobra.Command {
	var logPath string
	var watchDoc bool

	cmd := &cobra.Command{
		Use:   "serve [document]",
		Short: "Start the MCP server on stdio",
		Long: "Serve the document's themes, colors, font stacks and plugins to AI agents over the Model " +
			"Context Protocol on stdin/stdout. With --watch the document is reloaded when it changes.",
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

			callLog, err := mcplog.NewLogger(pick(logPath, a.project.MCPLog, ""))
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
				a.logger.Info("logging tool calls", "path", callLog.Path())
			}

			srv := mcpserver.NewServer(doc, opts, callLog)

			if watchDoc {
				loader := a.newDocLoader(cmd, opts)
				w, err := watch.New(path, func(ev watch.Event) {
					if ev.Err == nil {
						srv.Reload(ev.Document, loader.options())
					}
				}, watch.Options{Load: loader.load, Also: a.paletteFiles(), Logger: a.logger})
				if err != nil {
					return err
				}
				if err := w.Start(); err != nil {
					return err
				}
				defer w.Stop()
			}

			a.logger.Info("serving MCP on stdio", "config", path)
			return srv.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&logPath, "mcp-log", "", "Append a JSONL record of every tool call to this file")
	cmd.Flags().BoolVar(&watchDoc, "watch", false, "Reload the document when it changes")
	return cmd
}

// docLoader adapts load to the watcher. Validation problems become an error
// so a broken save keeps the previous document in place. The options are
// rebuilt on every load, picking up edits to the custom palette.
type docLoader struct {
	a   *app
	cmd *cobra.Command

	mu   sync.Mutex
	opts config.ValidateOptions // options of the last successful load
}

func (a *app) newDocLoader(cmd *cobra.Command, opts config.ValidateOptions) *docLoader {
	return &docLoader{a: a, cmd: cmd, opts: opts}
}

func (l *docLoader) load(path string) (*config.Document, []string, error) {
	opts, err := l.a.validateOptions()
	if err != nil {
		return nil, nil, err
	}
	res, err := l.a.load(l.cmd.Context(), path, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(res.Errors) > 0 {
		return nil, nil, joinValidation(res.Errors)
	}
	l.mu.Lock()
	l.opts = opts
	l.mu.Unlock()
	return res.Document, res.Warnings, nil
}

// options returns the options the current document was validated against.
func (l *docLoader) options() config.ValidateOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opts
}

// paletteFiles lists the custom palette, whose changes also need a reload.
func (a *app) paletteFiles() []string {
	if p := pick(a.palettePath, a.project.Palette, ""); p != "" {
		return []string{p}
	}
	return nil
}
