// Package render turns a configuration document into the files the external
// build consumes: tailwind.config.js and a CSS file of theme variables.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gnana997/twconfig/pkg/config"
)

// Header starts every generated file.
const Header = "Generated by twconfig. Do not edit; change the source document instead."

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// jsWriter emits indented JavaScript object literals.
type jsWriter struct {
	buf    bytes.Buffer
	indent int
}

func (w *jsWriter) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *jsWriter) open(key, bracket string) {
	if key == "" {
		w.line("%s", bracket)
	} else {
		w.line("%s: %s", jsKey(key), bracket)
	}
	w.indent++
}

func (w *jsWriter) close(bracket string) {
	w.indent--
	w.line("%s,", bracket)
}

func (w *jsWriter) field(key, value string) {
	w.line("%s: %s,", jsKey(key), value)
}

func jsKey(k string) string {
	if identifier.MatchString(k) {
		return k
	}
	return jsString(k)
}

// jsString quotes s as a JavaScript string literal. JSON strings are valid
// JavaScript.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func jsColor(c config.ColorValue) string {
	if c.IsRef() {
		return c.Ref.JS()
	}
	return jsString(c.Literal)
}

// usesPalette reports whether any color in doc is a palette reference.
func usesPalette(doc *config.Document) bool {
	for _, c := range doc.Theme.Extend.Colors {
		if c.IsRef() {
			return true
		}
	}
	if doc.DaisyUI != nil {
		for _, t := range doc.DaisyUI.Themes {
			for _, c := range t.Roles {
				if c.IsRef() {
					return true
				}
			}
		}
	}
	return false
}

// JS renders doc as a tailwind.config.js. Keys are emitted in a fixed order,
// plugin order is preserved and palette references stay symbolic.
func JS(doc *config.Document) []byte {
	w := &jsWriter{}
	w.line("// %s", Header)
	if usesPalette(doc) {
		w.line(`const colors = require("tailwindcss/colors");`)
	}
	w.line("")
	w.open("", "module.exports = {")

	w.open("content", "[")
	for _, p := range doc.Content {
		w.line("%s,", jsString(p))
	}
	w.close("]")

	w.field("darkMode", jsString(string(doc.DarkMode)))
	w.field("important", fmt.Sprint(doc.Important))
	if doc.Prefix != "" {
		w.field("prefix", jsString(doc.Prefix))
	}
	if len(doc.CorePlugins) > 0 {
		w.open("corePlugins", "{")
		for _, k := range sortedKeys(doc.CorePlugins) {
			w.field(k, fmt.Sprint(doc.CorePlugins[k]))
		}
		w.close("}")
	}

	writeTheme(w, &doc.Theme)

	w.open("plugins", "[")
	for _, id := range doc.Plugins {
		w.line("require(%s),", jsString(id))
	}
	w.close("]")

	if doc.DaisyUI != nil {
		writeDaisyUI(w, doc.DaisyUI)
	}

	w.indent--
	w.line("};")
	return w.buf.Bytes()
}

func writeTheme(w *jsWriter, th *config.Theme) {
	w.open("theme", "{")

	w.open("extend", "{")
	if len(th.Extend.Colors) > 0 {
		w.open("colors", "{")
		for _, k := range sortedKeys(th.Extend.Colors) {
			w.field(k, jsColor(th.Extend.Colors[k]))
		}
		w.close("}")
	}
	if len(th.Extend.MinHeight) > 0 {
		w.open("minHeight", "{")
		for _, k := range sortedKeys(th.Extend.MinHeight) {
			w.field(k, jsString(th.Extend.MinHeight[k]))
		}
		w.close("}")
	}
	w.close("}")

	f := &th.FontFamily
	w.open("fontFamily", "{")
	for _, s := range []struct{ key, value string }{{"primary", f.Primary}, {"secondary", f.Secondary}} {
		if s.value != "" {
			w.field(s.key, jsString(s.value))
		}
	}
	for _, s := range []struct {
		key   string
		chain []string
	}{{"sans", f.Sans}, {"serif", f.Serif}, {"mono", f.Mono}} {
		if len(s.chain) == 0 {
			continue
		}
		w.open(s.key, "[")
		for _, font := range s.chain {
			w.line("%s,", jsString(font))
		}
		w.close("]")
	}
	w.close("}")

	w.close("}")
}

func writeDaisyUI(w *jsWriter, ui *config.DaisyUI) {
	w.open("daisyui", "{")
	w.field("styled", fmt.Sprint(ui.Styled))
	w.field("base", fmt.Sprint(ui.Base))
	w.field("utils", fmt.Sprint(ui.Utils))
	w.field("logs", fmt.Sprint(ui.Logs))
	w.field("rtl", fmt.Sprint(ui.RTL))
	w.field("prefix", jsString(ui.Prefix))
	w.field("darkTheme", jsString(ui.DarkTheme))

	w.open("themes", "[")
	for i := range ui.Themes {
		t := &ui.Themes[i]
		if t.Builtin {
			w.line("%s,", jsString(t.Name))
			continue
		}
		w.open("", "{")
		w.open(t.Name, "{")
		for _, role := range t.RoleNames() {
			w.field(role, jsColor(t.Roles[role]))
		}
		for _, k := range sortedKeys(t.Vars) {
			w.field(k, jsString(t.Vars[k]))
		}
		w.close("}")
		w.close("}")
	}
	w.close("]")

	w.close("}")
}
