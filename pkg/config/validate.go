package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/twconfig/pkg/palette"
	"github.com/gnana997/twconfig/pkg/plugin"
)

// RolePolicy decides how missing required theme roles are treated.
type RolePolicy string

const (
	// RolesLenient reports missing roles as warnings; the library default applies.
	RolesLenient RolePolicy = "lenient"
	// RolesStrict makes missing roles validation errors.
	RolesStrict RolePolicy = "strict"
)

// ValidateOptions supplies the external collaborators references resolve against.
type ValidateOptions struct {
	Palette *palette.Palette // nil means palette.Default()
	Plugins *plugin.Registry // nil means plugin.NewRegistry()
	Roles   RolePolicy       // empty means RolesLenient
}

// WithDefaults fills unset collaborators.
func (o ValidateOptions) WithDefaults() ValidateOptions {
	if o.Palette == nil {
		o.Palette = palette.Default()
	}
	if o.Plugins == nil {
		o.Plugins = plugin.NewRegistry()
	}
	if o.Roles == "" {
		o.Roles = RolesLenient
	}
	return o
}

var (
	identPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	prefixPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)
	corePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
	lengthPattern = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)(px|rem|em|ch|ex|vh|vw|svh|lvh|dvh|vmin|vmax|%)$`)
)

var lengthKeywords = map[string]bool{
	"0":           true,
	"auto":        true,
	"min-content": true,
	"max-content": true,
	"fit-content": true,
}

// validLength reports whether s is a CSS length usable in a sizing scale.
func validLength(s string) bool {
	return lengthKeywords[s] || lengthPattern.MatchString(s) ||
		(strings.HasPrefix(s, "calc(") && strings.HasSuffix(s, ")")) ||
		(strings.HasPrefix(s, "var(") && strings.HasSuffix(s, ")"))
}

// Validate checks the document for internal consistency and resolves every
// external reference. Returns a slice of validation errors (empty if valid).
func (d *Document) Validate(opts ValidateOptions) []error {
	opts = opts.WithDefaults()
	var errs []error

	// Content globs.
	if len(d.Content) == 0 {
		errs = append(errs, fmt.Errorf("content must list at least one glob pattern"))
	}
	for i, pattern := range d.Content {
		glob := strings.TrimPrefix(pattern, "!")
		if strings.TrimSpace(glob) == "" {
			errs = append(errs, fmt.Errorf("content[%d]: pattern is empty", i))
			continue
		}
		if !doublestar.ValidatePattern(glob) {
			errs = append(errs, fmt.Errorf("content[%d]: invalid glob pattern %q", i, pattern))
		}
	}

	if !d.DarkMode.Valid() {
		errs = append(errs, fmt.Errorf("darkMode %q is invalid (must be %s/%s)", d.DarkMode, DarkModeMedia, DarkModeClass))
	}

	if !prefixPattern.MatchString(d.Prefix) {
		errs = append(errs, fmt.Errorf("prefix %q may only contain letters, digits, '-' and '_'", d.Prefix))
	}

	for _, name := range sortedKeys(d.CorePlugins) {
		if !corePattern.MatchString(name) {
			errs = append(errs, fmt.Errorf("corePlugins: invalid core plugin name %q", name))
		}
	}

	// Theme extension.
	for _, alias := range sortedKeys(d.Theme.Extend.Colors) {
		if !identPattern.MatchString(alias) {
			errs = append(errs, fmt.Errorf("theme.extend.colors: invalid alias name %q", alias))
			continue
		}
		if err := checkColor(d.Theme.Extend.Colors[alias], opts.Palette, true); err != nil {
			errs = append(errs, fmt.Errorf("theme.extend.colors.%s: %w", alias, err))
		}
	}
	for _, key := range sortedKeys(d.Theme.Extend.MinHeight) {
		if !identPattern.MatchString(key) {
			errs = append(errs, fmt.Errorf("theme.extend.minHeight: invalid scale key %q", key))
			continue
		}
		if v := d.Theme.Extend.MinHeight[key]; !validLength(v) {
			errs = append(errs, fmt.Errorf("theme.extend.minHeight.%s: invalid length %q", key, v))
		}
	}

	errs = append(errs, validateFonts(&d.Theme.FontFamily)...)

	// Plugins: order is significant, so duplicates are rejected rather than merged.
	seenPlugins := make(map[string]bool, len(d.Plugins))
	for i, id := range d.Plugins {
		if _, err := opts.Plugins.Resolve(id); err != nil {
			errs = append(errs, fmt.Errorf("plugins[%d]: %w", i, err))
			continue
		}
		if seenPlugins[id] {
			errs = append(errs, fmt.Errorf("plugins[%d]: duplicate plugin %q", i, id))
			continue
		}
		seenPlugins[id] = true
	}

	if d.DaisyUI != nil {
		errs = append(errs, d.validateDaisyUI(opts)...)
	}

	return errs
}

func (d *Document) validateDaisyUI(opts ValidateOptions) []error {
	var errs []error
	ui := d.DaisyUI

	if !d.HasPlugin("daisyui") {
		errs = append(errs, fmt.Errorf("daisyui is configured but not listed in plugins"))
	}
	if !prefixPattern.MatchString(ui.Prefix) {
		errs = append(errs, fmt.Errorf("daisyui.prefix %q may only contain letters, digits, '-' and '_'", ui.Prefix))
	}

	names := make(map[string]bool, len(ui.Themes))
	for i := range ui.Themes {
		t := &ui.Themes[i]
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("daisyui.themes[%d]: name is required", i))
			continue
		}
		if names[t.Name] {
			errs = append(errs, fmt.Errorf("daisyui.themes[%d]: duplicate theme name %q", i, t.Name))
			continue
		}
		names[t.Name] = true
		errs = append(errs, validateTheme(i, t, opts.Palette, opts.Roles == RolesStrict)...)
	}

	if ui.DarkTheme != "" && !names[ui.DarkTheme] && !IsBuiltinTheme(ui.DarkTheme) {
		errs = append(errs, fmt.Errorf("daisyui.darkTheme references unknown theme %q", ui.DarkTheme))
	}
	return errs
}

// Warnings reports conditions the external build accepts but that are
// probably mistakes. Missing theme roles appear here under RolesLenient.
func (d *Document) Warnings(opts ValidateOptions) []string {
	opts = opts.WithDefaults()
	var warns []string

	seen := make(map[string]bool, len(d.Content))
	for i, pattern := range d.Content {
		if seen[pattern] {
			warns = append(warns, fmt.Sprintf("content[%d]: duplicate pattern %q", i, pattern))
		}
		seen[pattern] = true
	}

	for _, id := range d.Plugins {
		if p, err := opts.Plugins.Resolve(id); err == nil && p.Deprecated != "" {
			warns = append(warns, fmt.Sprintf("plugin %q is deprecated: %s", id, p.Deprecated))
		}
	}

	if d.DaisyUI != nil && opts.Roles != RolesStrict {
		for i := range d.DaisyUI.Themes {
			t := &d.DaisyUI.Themes[i]
			if missing := t.MissingRoles(); len(missing) > 0 {
				warns = append(warns, fmt.Sprintf("theme %q: missing roles fall back to library defaults: %s",
					t.Name, strings.Join(missing, ", ")))
			}
		}
	}
	return warns
}
