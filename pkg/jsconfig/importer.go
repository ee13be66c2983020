// Package jsconfig imports an existing tailwind.config.js into a typed
// configuration document.
//
// Import runs in three steps:
//   - a static pre-flight over the syntax tree that lists every require()
//     call and rejects modules the evaluator cannot serve
//   - evaluation in an embedded JavaScript VM with a require shim for the
//     palette, the default theme and registered plugins
//   - conversion of module.exports into a config.Document, followed by
//     the usual validation
package jsconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/palette"
	"github.com/gnana997/twconfig/pkg/plugin"
	"github.com/gnana997/twconfig/pkg/util"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

// Options configures an Importer.
type Options struct {
	Palette *palette.Palette // nil means palette.Default()
	Plugins *plugin.Registry // nil means plugin.NewRegistry()
	Timeout time.Duration    // zero means DefaultTimeout

	// PreferReferences turns hex literals that equal exactly one palette
	// shade back into references, e.g. "#38bdf8" becomes colors.sky.400.
	PreferReferences bool

	// Roles is the policy the imported document is validated with.
	Roles config.RolePolicy

	Logger *slog.Logger
}

// Result is an imported document plus what the import observed.
type Result struct {
	Document *config.Document
	Requires []Require
	Warnings []string
}

// Importer converts JavaScript configs. It is safe for concurrent use and
// must be closed.
type Importer struct {
	opts   Options
	syntax *syntax
	eval   *evaluator
	logger *slog.Logger
}

// New creates an Importer.
func New(opts Options) (*Importer, error) {
	if opts.Palette == nil {
		opts.Palette = palette.Default()
	}
	if opts.Plugins == nil {
		opts.Plugins = plugin.NewRegistry()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	syn, err := newSyntax(util.GetOptimalPoolSize(), logger)
	if err != nil {
		return nil, err
	}
	ev, err := newEvaluator(opts.Palette, opts.Plugins.Has)
	if err != nil {
		syn.close()
		return nil, err
	}
	return &Importer{opts: opts, syntax: syn, eval: ev, logger: logger}, nil
}

// Close releases parser resources.
func (im *Importer) Close() error {
	im.syntax.close()
	return nil
}

// Requires lists the require() calls in source without evaluating it.
func (im *Importer) Requires(source []byte) ([]Require, error) {
	return im.syntax.requires(source)
}

// ImportFile reads and imports a config file.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return im.Import(ctx, data, filepath.Base(path))
}

// Import converts source, named name in error messages. The returned
// document has passed validation.
func (im *Importer) Import(ctx context.Context, source []byte, name string) (*Result, error) {
	start := time.Now()

	requires, err := im.syntax.requires(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := im.checkRequires(requires); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, im.opts.Timeout)
	defer cancel()
	exports, err := im.eval.eval(ctx, string(source), name)
	if err != nil {
		return nil, err
	}

	conv := &converter{pal: im.opts.Palette, preferRefs: im.opts.PreferReferences}
	doc := conv.document(exports)
	if len(conv.errs) > 0 {
		return nil, fmt.Errorf("%s: conversion failed: %w", name, errors.Join(conv.errs...))
	}

	vopts := config.ValidateOptions{Palette: im.opts.Palette, Plugins: im.opts.Plugins, Roles: im.opts.Roles}
	if errs := doc.Validate(vopts); len(errs) > 0 {
		return nil, fmt.Errorf("%s: imported config is invalid: %w", name, errors.Join(errs...))
	}

	im.logger.Debug("imported config",
		"name", name,
		"requires", len(requires),
		"duration_ms", time.Since(start).Milliseconds())

	return &Result{
		Document: doc,
		Requires: requires,
		Warnings: append(conv.warnings, doc.Warnings(vopts)...),
	}, nil
}

// checkRequires rejects dynamic requires and modules the shim cannot serve.
func (im *Importer) checkRequires(requires []Require) error {
	var errs []error
	for _, r := range requires {
		switch {
		case r.Dynamic:
			errs = append(errs, fmt.Errorf("line %d: require(%s) must use a string literal", r.Line, r.Module))
		case r.Module == ModuleColors, r.Module == ModuleDefaultTheme, im.opts.Plugins.Has(r.Module):
		default:
			errs = append(errs, fmt.Errorf("line %d: module %q is not supported (known: %s)",
				r.Line, r.Module, strings.Join(im.knownModules(), ", ")))
		}
	}
	return errors.Join(errs...)
}

func (im *Importer) knownModules() []string {
	known := []string{ModuleColors, ModuleDefaultTheme}
	for _, p := range im.opts.Plugins.Known() {
		known = append(known, p.ID)
	}
	return known
}
