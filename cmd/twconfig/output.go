package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/palette"
)

const maxWidth = 80

// printScanHuman prints a scan report, one line per pattern.
func printScanHuman(w io.Writer, res scanOutput, listFiles bool) {
	fmt.Fprintf(w, "Content (relative to %s)\n", res.BaseDir)
	for _, p := range res.Patterns {
		switch {
		case p.Negated:
			fmt.Fprintf(w, "  %5d  %s  (excluded)\n", p.Matches, p.Pattern)
		case p.Matches == 0:
			fmt.Fprintf(w, "  %5d  %s  (no match)\n", p.Matches, p.Pattern)
		default:
			fmt.Fprintf(w, "  %5d  %s\n", p.Matches, p.Pattern)
		}
	}
	fmt.Fprintf(w, "\n%d file(s)\n", len(res.Files))

	if listFiles {
		for _, f := range res.Files {
			fmt.Fprintf(w, "  %s\n", relTo(res.BaseDir, f))
		}
	}

	if res.Prefix != nil && res.Prefix.Prefix != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Prefix %q: %d of %d file(s) use no prefixed class\n",
			res.Prefix.Prefix, len(res.Prefix.Unused), res.Prefix.Scanned)
		for _, f := range res.Prefix.Unused {
			fmt.Fprintf(w, "  %s\n", relTo(res.BaseDir, f))
		}
	}
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

// printThemesHuman lists the daisyUI themes.
func printThemesHuman(w io.Writer, doc *config.Document) {
	if doc.DaisyUI == nil {
		fmt.Fprintln(w, "daisyUI is not configured.")
		return
	}
	ui := doc.DaisyUI
	for i, t := range ui.Themes {
		var tags []string
		if i == 0 {
			tags = append(tags, "default")
		}
		if t.Name == ui.DarkTheme {
			tags = append(tags, "dark")
		}
		if t.Builtin {
			tags = append(tags, "built-in")
		} else {
			tags = append(tags, fmt.Sprintf("%d roles", len(t.Roles)))
		}
		fmt.Fprintf(w, "%s  [%s]\n", t.Name, strings.Join(tags, ", "))
	}
	if _, declared := doc.ThemeByName(ui.DarkTheme); !declared && ui.DarkTheme != "" {
		fmt.Fprintf(w, "%s  [dark, built-in, not listed]\n", ui.DarkTheme)
	}
}

// printThemeHuman prints one custom theme with resolved colors.
func printThemeHuman(w io.Writer, t *config.ThemeTable, pal *palette.Palette) error {
	fmt.Fprintf(w, "%s\n", t.Name)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Roles")
	width := 0
	for _, role := range t.RoleNames() {
		width = max(width, len(role))
	}
	for _, role := range t.RoleNames() {
		v := t.Roles[role]
		resolved, err := v.Resolve(pal)
		if err != nil {
			return fmt.Errorf("theme %q role %q: %w", t.Name, role, err)
		}
		if v.IsRef() {
			fmt.Fprintf(w, "  %-*s  %-9s  %s\n", width, role, resolved, v)
		} else {
			fmt.Fprintf(w, "  %-*s  %s\n", width, role, resolved)
		}
	}

	if missing := t.MissingRoles(); len(missing) > 0 {
		fmt.Fprintln(w)
		printWrapped(w, "Library defaults: "+strings.Join(missing, ", "), 2, maxWidth)
	}

	if len(t.Vars) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Variables")
		for _, k := range sortedKeys(t.Vars) {
			fmt.Fprintf(w, "  %s: %s\n", k, t.Vars[k])
		}
	}
	return nil
}

// printWrapped prints text word-wrapped to width with the given indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range strings.Fields(text) {
		if len(line) > indent && len(line)+1+len(word) > width {
			fmt.Fprintln(w, line)
			line = prefix
		}
		if len(line) > indent {
			line += " "
		}
		line += word
	}
	if len(line) > indent {
		fmt.Fprintln(w, line)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
