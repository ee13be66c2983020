// Command twconfig validates, renders and serves a typed Tailwind CSS and
// daisyUI configuration document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/jsconfig"
	"github.com/gnana997/twconfig/pkg/palette"
	"github.com/gnana997/twconfig/pkg/plugin"
	"github.com/gnana997/twconfig/pkg/util"
)

const version = "0.1.0-dev"

// app carries the state shared by every command: persistent flags, the
// project config and the logger.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	projectDir  string
	configPath  string
	palettePath string
	logLevel    string
	logFormat   string
	strictRoles bool

	project *ProjectConfig
	logger  *slog.Logger
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "twconfig",
		Short: "twconfig – typed Tailwind CSS and daisyUI configuration",
		Long: "twconfig loads a Tailwind CSS / daisyUI configuration declared in YAML or JSON, validates it " +
			"(globs, palette references, plugins, theme roles, font stacks) and renders the tailwind.config.js " +
			"the CSS build consumes.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Configuration document (default: project config, then "+defaultConfigPath+")")
	pf.StringVar(&a.projectDir, "project-dir", ".", "Directory containing "+projectConfigDir+"/"+projectConfigFile)
	pf.StringVar(&a.palettePath, "palette", "", "Palette JSON merged over the built-in Tailwind palette")
	pf.BoolVar(&a.strictRoles, "strict-roles", false, "Treat missing theme roles as errors")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text or json (default: text)")

	root.AddCommand(
		a.validateCmd(),
		a.renderCmd(),
		a.importCmd(),
		a.scanCmd(),
		a.themesCmd(),
		a.serveCmd(),
		a.watchCmd(),
		a.setupCmd(),
		a.versionCmd(),
	)
	return root
}

// init loads the project config and applies it under explicit flags.
func (a *app) init(cmd *cobra.Command) error {
	project, err := loadProjectConfig(a.projectDir)
	if err != nil {
		return err
	}
	if project == nil {
		project = &ProjectConfig{}
	}
	a.project = project

	if !cmd.Flags().Changed("strict-roles") {
		a.strictRoles = project.StrictRoles
	}

	level, err := util.ParseLogLevel(pick(a.logLevel, project.Log.Level, ""))
	if err != nil {
		return err
	}
	format, err := util.ParseLogFormat(pick(a.logFormat, project.Log.Format, ""))
	if err != nil {
		return err
	}
	a.logger = util.NewLogger(util.LoggerConfig{Level: level, Format: format, Output: a.stderr})
	return nil
}

// documentPath returns the configuration document to operate on. An
// explicit argument wins over --config and the project config.
func (a *app) documentPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return pick(a.configPath, a.project.Config, defaultConfigPath)
}

// validateOptions builds the palette, plugin registry and role policy.
func (a *app) validateOptions() (config.ValidateOptions, error) {
	opts := config.ValidateOptions{
		Palette: palette.Default(),
		Plugins: plugin.NewRegistry(a.project.ExtraPlugins...),
		Roles:   config.RolesLenient,
	}
	if a.strictRoles {
		opts.Roles = config.RolesStrict
	}
	if path := pick(a.palettePath, a.project.Palette, ""); path != "" {
		custom, err := palette.LoadFromFile(path)
		if err != nil {
			return opts, err
		}
		opts.Palette = opts.Palette.Merge(custom)
	}
	return opts, nil
}

// isJSConfig reports whether path is a tailwind.config.js style module.
func isJSConfig(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".cjs":
		return true
	}
	return false
}

// loaded is a document together with everything validation reported.
type loaded struct {
	Path     string
	Document *config.Document
	Warnings []string
	Errors   []error
}

// load reads and validates path. Validation problems are returned in
// Errors; the error return is reserved for failures to read the file or
// to set up the collaborators.
func (a *app) load(ctx context.Context, path string, opts config.ValidateOptions) (*loaded, error) {
	l := &loaded{Path: path}

	if isJSConfig(path) {
		im, err := a.newImporter(opts, false)
		if err != nil {
			return nil, err
		}
		defer im.Close()

		res, err := im.ImportFile(ctx, path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err != nil {
			l.Errors = append(l.Errors, err)
			return l, nil
		}
		l.Document, l.Warnings = res.Document, res.Warnings
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	doc, err := config.Parse(data, config.FormatFromPath(path))
	if err != nil {
		l.Errors = append(l.Errors, err)
		return l, nil
	}
	if errs := doc.Validate(opts); len(errs) > 0 {
		l.Errors = errs
		return l, nil
	}
	l.Document, l.Warnings = doc, doc.Warnings(opts)
	return l, nil
}

// loadValid is load for commands that cannot proceed with an invalid
// document. Warnings are logged.
func (a *app) loadValid(ctx context.Context, path string, opts config.ValidateOptions) (*config.Document, error) {
	l, err := a.load(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if len(l.Errors) > 0 {
		return nil, fmt.Errorf("%s: %w", path, joinValidation(l.Errors))
	}
	for _, w := range l.Warnings {
		a.logger.Warn(w, "path", path)
	}
	return l.Document, nil
}

func joinValidation(errs []error) error {
	return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
}

func (a *app) newImporter(opts config.ValidateOptions, preferRefs bool) (*jsconfig.Importer, error) {
	return jsconfig.New(jsconfig.Options{
		Palette:          opts.Palette,
		Plugins:          opts.Plugins,
		Roles:            opts.Roles,
		PreferReferences: preferRefs,
		Logger:           a.logger,
	})
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "twconfig %s\n", version)
		},
	}
}
