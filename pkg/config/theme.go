package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/twconfig/pkg/palette"
)

// RequiredRoles are the semantic roles every custom theme table must assign.
// A missing role silently inherits a library default in the external build.
var RequiredRoles = []string{
	"primary", "primary-focus", "primary-content",
	"secondary", "secondary-focus", "secondary-content",
	"accent", "accent-focus", "accent-content",
	"neutral", "neutral-focus", "neutral-content",
	"base-100", "base-200", "base-300", "base-content",
	"info", "success", "warning", "error",
}

// OptionalRoles may be assigned but are derived by the library when absent.
var OptionalRoles = []string{
	"info-content", "success-content", "warning-content", "error-content",
}

// BuiltinThemes are the theme names daisyUI ships.
var BuiltinThemes = []string{
	"light", "dark", "cupcake", "bumblebee", "emerald", "corporate",
	"synthwave", "retro", "cyberpunk", "valentine", "halloween", "garden",
	"forest", "aqua", "lofi", "pastel", "fantasy", "wireframe", "black",
	"luxury", "dracula", "cmyk", "autumn", "business", "acid", "lemonade",
	"night", "coffee", "winter",
}

var (
	knownRoles    = make(map[string]bool)
	builtinThemes = make(map[string]bool)
)

func init() {
	for _, r := range RequiredRoles {
		knownRoles[r] = true
	}
	for _, r := range OptionalRoles {
		knownRoles[r] = true
	}
	for _, n := range BuiltinThemes {
		builtinThemes[n] = true
	}
}

// IsBuiltinTheme reports whether name is shipped by daisyUI.
func IsBuiltinTheme(name string) bool {
	return builtinThemes[name]
}

// ThemeTable is one named theme. A Builtin table only names a theme shipped
// by the library and carries no roles. Vars holds raw CSS variable overrides
// such as "--rounded-box".
type ThemeTable struct {
	Name    string
	Builtin bool
	Roles   map[string]ColorValue
	Vars    map[string]string
}

// themeTableFields is the document form of a custom table.
type themeTableFields struct {
	Name  string                `yaml:"name" json:"name"`
	Roles map[string]ColorValue `yaml:"roles" json:"roles"`
	Vars  map[string]string     `yaml:"vars,omitempty" json:"vars,omitempty"`
}

// MissingRoles returns the required roles a custom table does not assign,
// in RequiredRoles order.
func (t *ThemeTable) MissingRoles() []string {
	if t.Builtin {
		return nil
	}
	var missing []string
	for _, r := range RequiredRoles {
		if _, ok := t.Roles[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// RoleNames returns the assigned role names, required roles first in
// canonical order, then any others sorted.
func (t *ThemeTable) RoleNames() []string {
	names := make([]string, 0, len(t.Roles))
	seen := make(map[string]bool, len(t.Roles))
	for _, r := range append(append([]string{}, RequiredRoles...), OptionalRoles...) {
		if _, ok := t.Roles[r]; ok {
			names = append(names, r)
			seen[r] = true
		}
	}
	var rest []string
	for r := range t.Roles {
		if !seen[r] {
			rest = append(rest, r)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Resolve returns every role mapped to a concrete color.
func (t *ThemeTable) Resolve(p *palette.Palette) (map[string]string, error) {
	out := make(map[string]string, len(t.Roles))
	for role, v := range t.Roles {
		c, err := v.Resolve(p)
		if err != nil {
			return nil, fmt.Errorf("theme %q role %q: %w", t.Name, role, err)
		}
		out[role] = c
	}
	return out, nil
}

// MarshalYAML writes built-in tables as a bare name.
func (t ThemeTable) MarshalYAML() (interface{}, error) {
	if t.Builtin {
		return t.Name, nil
	}
	return themeTableFields{Name: t.Name, Roles: t.Roles, Vars: t.Vars}, nil
}

// UnmarshalYAML accepts a bare name (built-in theme) or a name/roles mapping.
func (t *ThemeTable) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = ThemeTable{Name: node.Value, Builtin: true}
		return nil
	case yaml.MappingNode:
		raw, err := encodeNode(node)
		if err != nil {
			return fmt.Errorf("line %d: theme table: %w", node.Line, err)
		}
		var f themeTableFields
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return fmt.Errorf("line %d: theme table: %w", node.Line, err)
		}
		*t = ThemeTable{Name: f.Name, Roles: f.Roles, Vars: f.Vars}
		return nil
	default:
		return fmt.Errorf("line %d: theme must be a name or a mapping", node.Line)
	}
}

// encodeNode re-serializes a node so it can be decoded with strict field
// checking; node.Decode does not honor KnownFields.
func encodeNode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON writes built-in tables as a bare name.
func (t ThemeTable) MarshalJSON() ([]byte, error) {
	if t.Builtin {
		return json.Marshal(t.Name)
	}
	return json.Marshal(themeTableFields{Name: t.Name, Roles: t.Roles, Vars: t.Vars})
}

// UnmarshalJSON accepts a bare name (built-in theme) or a name/roles object.
func (t *ThemeTable) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*t = ThemeTable{Name: name, Builtin: true}
		return nil
	}
	var f themeTableFields
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("theme table: %w", err)
	}
	*t = ThemeTable{Name: f.Name, Roles: f.Roles, Vars: f.Vars}
	return nil
}

// validateTheme checks one table. Missing required roles are errors only
// when strict is set.
func validateTheme(i int, t *ThemeTable, p *palette.Palette, strict bool) []error {
	var errs []error
	label := fmt.Sprintf("daisyui.themes[%d]", i)
	if t.Name != "" {
		label = fmt.Sprintf("theme %q", t.Name)
	}

	if t.Builtin {
		if !IsBuiltinTheme(t.Name) {
			errs = append(errs, fmt.Errorf("%s: not a built-in theme", label))
		}
		return errs
	}

	if len(t.Roles) == 0 {
		errs = append(errs, fmt.Errorf("%s: roles must not be empty", label))
	}
	for _, role := range t.RoleNames() {
		if !knownRoles[role] {
			errs = append(errs, fmt.Errorf("%s: unknown role %q", label, role))
			continue
		}
		if err := checkColor(t.Roles[role], p, false); err != nil {
			errs = append(errs, fmt.Errorf("%s role %q: %w", label, role, err))
		}
	}
	if strict {
		if missing := t.MissingRoles(); len(missing) > 0 {
			errs = append(errs, fmt.Errorf("%s: missing required roles: %s", label, strings.Join(missing, ", ")))
		}
	}
	for _, name := range sortedKeys(t.Vars) {
		if !strings.HasPrefix(name, "--") {
			errs = append(errs, fmt.Errorf("%s: variable %q must start with --", label, name))
		}
		if strings.TrimSpace(t.Vars[name]) == "" {
			errs = append(errs, fmt.Errorf("%s: variable %q is empty", label, name))
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
