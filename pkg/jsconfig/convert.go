package jsconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/palette"
)

// converter turns an exported configuration object into a Document.
type converter struct {
	pal        *palette.Palette
	preferRefs bool
	warnings   []string
	errs       []error
}

func (c *converter) errorf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf(format, args...))
}

func (c *converter) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

var topLevelKeys = map[string]bool{
	"content": true, "darkMode": true, "important": true, "prefix": true,
	"corePlugins": true, "theme": true, "plugins": true, "daisyui": true,
}

func (c *converter) document(cfg map[string]any) *config.Document {
	doc := &config.Document{DarkMode: config.DarkModeMedia}

	for _, key := range sortedKeys(cfg) {
		if !topLevelKeys[key] {
			c.errorf("unsupported top-level key %q", key)
		}
	}

	doc.Content = c.content(cfg["content"])

	if v, ok := cfg["darkMode"]; ok {
		s, isString := v.(string)
		if !isString {
			c.errorf("darkMode: only \"media\" or \"class\" are supported")
		}
		doc.DarkMode = config.DarkMode(s)
	}
	if v, ok := cfg["important"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			c.errorf("important: selector strategies are not supported, use true or false")
		}
		doc.Important = b
	}
	if v, ok := cfg["prefix"]; ok {
		doc.Prefix = c.str("prefix", v)
	}
	if v, ok := cfg["corePlugins"]; ok {
		doc.CorePlugins = c.corePlugins(v)
	}
	if v, ok := cfg["theme"]; ok {
		doc.Theme = c.theme(v)
	}
	doc.Plugins = c.plugins(cfg["plugins"])
	if v, ok := cfg["daisyui"]; ok {
		doc.DaisyUI = c.daisyUI(v)
	}
	return doc
}

func (c *converter) content(v any) []string {
	switch t := v.(type) {
	case nil:
		c.errorf("content is required")
		return nil
	case []any:
		return c.strings("content", t)
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if k != "files" {
				c.warnf("content.%s is not supported and was dropped", k)
			}
		}
		files, ok := t["files"].([]any)
		if !ok {
			c.errorf("content.files must be an array of globs")
			return nil
		}
		return c.strings("content.files", files)
	default:
		c.errorf("content must be an array of globs")
		return nil
	}
}

func (c *converter) corePlugins(v any) map[string]bool {
	m, ok := v.(map[string]any)
	if !ok {
		c.errorf("corePlugins: only the object form is supported")
		return nil
	}
	out := make(map[string]bool, len(m))
	for _, k := range sortedKeys(m) {
		b, ok := m[k].(bool)
		if !ok {
			c.errorf("corePlugins.%s must be a boolean", k)
			continue
		}
		out[k] = b
	}
	return out
}

func (c *converter) theme(v any) config.Theme {
	var th config.Theme
	m, ok := v.(map[string]any)
	if !ok {
		c.errorf("theme must be an object")
		return th
	}
	for _, k := range sortedKeys(m) {
		if k != "extend" && k != "fontFamily" {
			c.errorf("theme.%s is not supported", k)
		}
	}

	if ext, ok := m["extend"].(map[string]any); ok {
		for _, k := range sortedKeys(ext) {
			if k != "colors" && k != "minHeight" {
				c.errorf("theme.extend.%s is not supported", k)
			}
		}
		if colors, ok := ext["colors"].(map[string]any); ok {
			th.Extend.Colors = make(map[string]config.ColorValue, len(colors))
			for _, alias := range sortedKeys(colors) {
				if cv, ok := c.alias(alias, colors[alias]); ok {
					th.Extend.Colors[alias] = cv
				}
			}
		}
		if mh, ok := ext["minHeight"].(map[string]any); ok {
			th.Extend.MinHeight = make(map[string]string, len(mh))
			for _, k := range sortedKeys(mh) {
				th.Extend.MinHeight[k] = c.str("theme.extend.minHeight."+k, mh[k])
			}
		}
	}

	if ff, ok := m["fontFamily"].(map[string]any); ok {
		th.FontFamily = c.fontFamily(ff)
	}
	return th
}

func (c *converter) fontFamily(m map[string]any) config.FontFamily {
	var f config.FontFamily
	for _, k := range sortedKeys(m) {
		path := "theme.fontFamily." + k
		switch k {
		case "primary":
			f.Primary = c.fontString(path, m[k])
		case "secondary":
			f.Secondary = c.fontString(path, m[k])
		case "sans":
			f.Sans = c.fontChain(path, m[k])
		case "serif":
			f.Serif = c.fontChain(path, m[k])
		case "mono":
			f.Mono = c.fontChain(path, m[k])
		default:
			c.errorf("%s: only primary, secondary, sans, serif and mono are supported", path)
		}
	}
	return f
}

func (c *converter) fontString(path string, v any) string {
	if list, ok := v.([]any); ok {
		return strings.Join(c.strings(path, list), ", ")
	}
	return c.str(path, v)
}

func (c *converter) fontChain(path string, v any) []string {
	if s, ok := v.(string); ok {
		return config.SplitFontList(s)
	}
	list, ok := v.([]any)
	if !ok {
		c.errorf("%s must be an array of font names", path)
		return nil
	}
	return c.strings(path, list)
}

// alias converts one theme.extend.colors entry. Whole scales become scale
// references; any other object is a custom scale, which is not supported.
func (c *converter) alias(name string, v any) (config.ColorValue, bool) {
	switch t := v.(type) {
	case string:
		return c.color(t), true
	case map[string]any:
		shades := make(map[string]string, len(t))
		for k, sv := range t {
			s, ok := sv.(string)
			if !ok {
				c.errorf("theme.extend.colors.%s: shade %s must be a string", name, k)
				return config.ColorValue{}, false
			}
			shades[k] = s
		}
		if scale, ok := c.pal.MatchScale(shades); ok {
			return config.Reference(scale, ""), true
		}
		c.errorf("theme.extend.colors.%s: custom scales are not supported, alias a palette scale instead", name)
	default:
		c.errorf("theme.extend.colors.%s must be a string or a palette scale", name)
	}
	return config.ColorValue{}, false
}

// color converts a literal. With preferRefs, a hex value equal to exactly one
// palette shade becomes a reference to it.
func (c *converter) color(s string) config.ColorValue {
	if c.preferRefs {
		if ref, ok := c.pal.Lookup(s); ok && ref.HasShade() {
			return config.ColorValue{Ref: ref}
		}
	}
	return config.ParseColor(s)
}

func (c *converter) plugins(v any) []string {
	if v == nil {
		return []string{}
	}
	list, ok := v.([]any)
	if !ok {
		c.errorf("plugins must be an array")
		return nil
	}
	out := make([]string, 0, len(list))
	for i, p := range list {
		id, ok := p.(string)
		if !ok {
			c.errorf("plugins[%d]: inline plugin definitions are not supported, require a registered plugin", i)
			continue
		}
		out = append(out, id)
	}
	return out
}

// daisyUI converts the component library block, filling the library's
// defaults for flags the source leaves out.
func (c *converter) daisyUI(v any) *config.DaisyUI {
	m, ok := v.(map[string]any)
	if !ok {
		c.errorf("daisyui must be an object")
		return nil
	}
	ui := &config.DaisyUI{
		Styled:    true,
		Base:      true,
		Utils:     true,
		Logs:      true,
		DarkTheme: "dark",
	}
	flags := map[string]*bool{
		"styled": &ui.Styled, "base": &ui.Base, "utils": &ui.Utils,
		"logs": &ui.Logs, "rtl": &ui.RTL,
	}
	for _, k := range sortedKeys(m) {
		switch k {
		case "prefix":
			ui.Prefix = c.str("daisyui.prefix", m[k])
		case "darkTheme":
			ui.DarkTheme = c.str("daisyui.darkTheme", m[k])
		case "themes":
			ui.Themes = c.themes(m[k])
		default:
			dst, ok := flags[k]
			if !ok {
				c.errorf("daisyui.%s is not supported", k)
				continue
			}
			b, ok := m[k].(bool)
			if !ok {
				c.errorf("daisyui.%s must be a boolean", k)
				continue
			}
			*dst = b
		}
	}
	if _, ok := m["themes"]; !ok {
		ui.Themes = []config.ThemeTable{{Name: "light", Builtin: true}, {Name: "dark", Builtin: true}}
	}
	return ui
}

func (c *converter) themes(v any) []config.ThemeTable {
	list, ok := v.([]any)
	if !ok {
		c.errorf("daisyui.themes: only an array of theme names or tables is supported")
		return nil
	}
	out := make([]config.ThemeTable, 0, len(list))
	for i, entry := range list {
		path := fmt.Sprintf("daisyui.themes[%d]", i)
		switch t := entry.(type) {
		case string:
			out = append(out, config.ThemeTable{Name: t, Builtin: true})
		case map[string]any:
			// Object key order does not survive conversion, and the first
			// theme is the default one.
			if len(t) != 1 {
				c.errorf("%s must hold exactly one theme, got %d; list each theme as its own entry", path, len(t))
				continue
			}
			for _, name := range sortedKeys(t) {
				roles, ok := t[name].(map[string]any)
				if !ok {
					c.errorf("%s.%s must be an object of roles", path, name)
					continue
				}
				out = append(out, c.themeTable(name, roles))
			}
		default:
			c.errorf("%s must be a theme name or an object", path)
		}
	}
	return out
}

func (c *converter) themeTable(name string, m map[string]any) config.ThemeTable {
	t := config.ThemeTable{Name: name, Roles: make(map[string]config.ColorValue, len(m))}
	for _, k := range sortedKeys(m) {
		path := fmt.Sprintf("theme %q %s", name, k)
		if strings.HasPrefix(k, "--") {
			if t.Vars == nil {
				t.Vars = make(map[string]string)
			}
			t.Vars[k] = c.scalar(path, m[k])
			continue
		}
		s, ok := m[k].(string)
		if !ok {
			c.errorf("%s must be a color string", path)
			continue
		}
		t.Roles[k] = c.color(s)
	}
	return t
}

func (c *converter) str(path string, v any) string {
	s, ok := v.(string)
	if !ok {
		c.errorf("%s must be a string", path)
	}
	return s
}

// scalar accepts strings and numbers, as CSS variables commonly hold both.
func (c *converter) scalar(path string, v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64, float64:
		return fmt.Sprint(t)
	default:
		c.errorf("%s must be a string or a number", path)
		return ""
	}
}

func (c *converter) strings(path string, list []any) []string {
	out := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			c.errorf("%s[%d] must be a string", path, i)
			continue
		}
		out = append(out, s)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
