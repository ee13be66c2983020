package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/palette"
)

// RoleVarPrefix prefixes the custom property emitted for each theme role.
const RoleVarPrefix = "--color-"

// ThemeCSS renders one rule per custom theme with every role resolved to a
// concrete color, e.g.
//
//	[data-theme="abilian"] {
//	  --color-primary: #38bdf8;
//	}
//
// The first listed theme also applies to :root. When darkTheme names a
// custom theme and dark mode follows the media query, that theme is
// repeated under prefers-color-scheme: dark. Built-in themes are skipped.
func ThemeCSS(doc *config.Document, pal *palette.Palette) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/* %s */\n", Header)
	if doc.DaisyUI == nil {
		return buf.Bytes(), nil
	}

	for i := range doc.DaisyUI.Themes {
		t := &doc.DaisyUI.Themes[i]
		if t.Builtin {
			continue
		}
		selector := fmt.Sprintf("[data-theme=%q]", t.Name)
		if i == 0 {
			selector = ":root,\n" + selector
		}
		buf.WriteByte('\n')
		if err := writeThemeRule(&buf, selector, "", t, pal); err != nil {
			return nil, err
		}
	}

	if dark, ok := doc.ThemeByName(doc.DaisyUI.DarkTheme); ok && !dark.Builtin && doc.DarkMode == config.DarkModeMedia {
		buf.WriteString("\n@media (prefers-color-scheme: dark) {\n")
		if err := writeThemeRule(&buf, ":root", "  ", dark, pal); err != nil {
			return nil, err
		}
		buf.WriteString("}\n")
	}
	return buf.Bytes(), nil
}

func writeThemeRule(buf *bytes.Buffer, selector, indent string, t *config.ThemeTable, pal *palette.Palette) error {
	colors, err := t.Resolve(pal)
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "%s%s {\n", indent, selector)
	for _, role := range t.RoleNames() {
		fmt.Fprintf(buf, "%s  %s%s: %s;\n", indent, RoleVarPrefix, role, colors[role])
	}
	for _, k := range sortedKeys(t.Vars) {
		fmt.Fprintf(buf, "%s  %s: %s;\n", indent, k, t.Vars[k])
	}
	fmt.Fprintf(buf, "%s}\n", indent)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
