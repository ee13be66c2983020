package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/twconfig/pkg/palette"
)

// ColorValue is either a literal CSS color or a palette reference.
// Exactly one of Literal and Ref is set.
type ColorValue struct {
	Literal string
	Ref     palette.Ref
}

// Literal returns a literal color value.
func Literal(s string) ColorValue {
	return ColorValue{Literal: s}
}

// Reference returns a palette reference value. Pass an empty shade for a
// whole scale or a single named color.
func Reference(name, shade string) ColorValue {
	return ColorValue{Ref: palette.Ref{Name: name, Shade: shade}}
}

// ParseColor classifies s. Malformed references are kept as literals and
// reported by Validate.
func ParseColor(s string) ColorValue {
	if ref, ok := palette.ParseRef(s); ok {
		return ColorValue{Ref: ref}
	}
	return ColorValue{Literal: strings.TrimSpace(s)}
}

// IsRef reports whether the value points into a palette.
func (c ColorValue) IsRef() bool {
	return c.Ref.Name != ""
}

// String returns the value in document syntax.
func (c ColorValue) String() string {
	if c.IsRef() {
		return c.Ref.String()
	}
	return c.Literal
}

// Resolve returns the concrete color. Whole scales cannot be resolved to one color.
func (c ColorValue) Resolve(p *palette.Palette) (string, error) {
	if !c.IsRef() {
		return c.Literal, nil
	}
	return p.Resolve(c.Ref)
}

// MarshalYAML implements yaml.Marshaler.
func (c ColorValue) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ColorValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a string", node.Line)
	}
	*c = ParseColor(node.Value)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c ColorValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ColorValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color must be a string: %w", err)
	}
	*c = ParseColor(s)
	return nil
}

var (
	hexColor        = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	functionalColor = regexp.MustCompile(`^(rgb|rgba|hsl|hsla|hwb|lab|lch|oklab|oklch|color|var)\(.+\)$`)
)

var colorKeywords = map[string]bool{
	"transparent":  true,
	"currentColor": true,
	"currentcolor": true,
	"inherit":      true,
	"initial":      true,
	"unset":        true,
}

// checkLiteral validates a literal color.
func checkLiteral(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("color is empty")
	case palette.LooksLikeRef(s):
		return fmt.Errorf("malformed palette reference %q (want colors.<scale>, colors.<scale>.<shade> or colors.<scale>[<shade>])", s)
	case hexColor.MatchString(s), functionalColor.MatchString(s), colorKeywords[s]:
		return nil
	default:
		return fmt.Errorf("invalid color %q (use a hex value, a CSS color function or a palette reference)", s)
	}
}

// checkColor validates a color value against a palette. allowScale permits
// whole-scale references, which are only meaningful as aliases.
func checkColor(c ColorValue, p *palette.Palette, allowScale bool) error {
	if !c.IsRef() {
		return checkLiteral(c.Literal)
	}
	if allowScale {
		return p.Check(c.Ref)
	}
	_, err := p.Resolve(c.Ref)
	return err
}

// Check validates c on its own, outside a document. Whole scales are
// accepted when allowScale is set.
func (c ColorValue) Check(p *palette.Palette, allowScale bool) error {
	return checkColor(c, p, allowScale)
}
