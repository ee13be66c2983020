package config

import (
	"fmt"
	"strings"
)

// GenericFamilies are the CSS generic font family keywords. A fallback chain
// must end in one of them.
var GenericFamilies = map[string]bool{
	"serif":         true,
	"sans-serif":    true,
	"monospace":     true,
	"cursive":       true,
	"fantasy":       true,
	"system-ui":     true,
	"ui-serif":      true,
	"ui-sans-serif": true,
	"ui-monospace":  true,
	"ui-rounded":    true,
	"math":          true,
	"emoji":         true,
	"fangsong":      true,
}

// SplitFontList splits a CSS font-family value on top-level commas.
// Commas inside quotes or parentheses do not split.
func SplitFontList(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
		depth int
	)
	flush := func() {
		if item := strings.TrimSpace(cur.String()); item != "" {
			out = append(out, item)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

// ParseVarStack splits `var(--name, a, b, generic)` into the custom property
// name and its fallback chain. A value without var() is treated as a plain
// chain with no property.
func ParseVarStack(s string) (prop string, chain []string, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "var(") {
		return "", SplitFontList(s), nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("unterminated var() in %q", s)
	}
	inner := s[len("var(") : len(s)-1]
	parts := SplitFontList(inner)
	if len(parts) == 0 || !strings.HasPrefix(parts[0], "--") {
		return "", nil, fmt.Errorf("var() must name a custom property starting with --")
	}
	if len(parts) == 1 {
		return parts[0], nil, fmt.Errorf("var(%s) has no fallback chain", parts[0])
	}
	return parts[0], parts[1:], nil
}

// unquote strips one level of matching quotes.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// isEmojiFont reports whether entry names a color emoji or symbol font.
// These conventionally follow the generic family in system stacks.
func isEmojiFont(entry string) bool {
	name, _ := unquote(entry)
	lower := strings.ToLower(name)
	return (strings.Contains(lower, "emoji") && lower != "emoji") || strings.Contains(lower, "symbol")
}

// CheckChain verifies a fallback chain ends in a generic family. Emoji and
// symbol fonts may trail the generic family.
func CheckChain(chain []string) error {
	if len(chain) == 0 {
		return fmt.Errorf("fallback chain is empty")
	}
	for i, entry := range chain {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("entry %d is empty", i)
		}
	}
	end := len(chain)
	for end > 0 && isEmojiFont(chain[end-1]) {
		end--
	}
	if end == 0 {
		return fmt.Errorf("fallback chain has no generic family")
	}
	last := strings.TrimSpace(chain[end-1])
	if name, quoted := unquote(last); quoted && GenericFamilies[name] {
		return fmt.Errorf("generic family %s must not be quoted", last)
	}
	if !GenericFamilies[last] {
		return fmt.Errorf("fallback chain must end in a generic family, got %s", last)
	}
	return nil
}

// FontStack is a named, resolved fallback chain.
type FontStack struct {
	Name     string   `json:"name"`
	Property string   `json:"property,omitempty"`
	Chain    []string `json:"chain"`
}

// Stacks returns all font tokens as chains, in declaration order.
// Malformed var() stacks are skipped; Validate reports them.
func (f *FontFamily) Stacks() []FontStack {
	var out []FontStack
	for _, v := range []struct {
		name  string
		value string
	}{{"primary", f.Primary}, {"secondary", f.Secondary}} {
		if v.value == "" {
			continue
		}
		prop, chain, err := ParseVarStack(v.value)
		if err != nil {
			continue
		}
		out = append(out, FontStack{Name: v.name, Property: prop, Chain: chain})
	}
	for _, v := range []struct {
		name  string
		chain []string
	}{{"sans", f.Sans}, {"serif", f.Serif}, {"mono", f.Mono}} {
		if len(v.chain) == 0 {
			continue
		}
		out = append(out, FontStack{Name: v.name, Chain: v.chain})
	}
	return out
}

// Stack returns one named font token.
func (f *FontFamily) Stack(name string) (FontStack, bool) {
	for _, s := range f.Stacks() {
		if s.Name == name {
			return s, true
		}
	}
	return FontStack{}, false
}

// validateFonts checks every font token.
func validateFonts(f *FontFamily) []error {
	var errs []error
	for _, v := range []struct {
		name  string
		value string
	}{{"primary", f.Primary}, {"secondary", f.Secondary}} {
		if strings.TrimSpace(v.value) == "" {
			errs = append(errs, fmt.Errorf("theme.fontFamily.%s is required", v.name))
			continue
		}
		_, chain, err := ParseVarStack(v.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("theme.fontFamily.%s: %w", v.name, err))
			continue
		}
		if err := CheckChain(chain); err != nil {
			errs = append(errs, fmt.Errorf("theme.fontFamily.%s: %w", v.name, err))
		}
	}
	for _, v := range []struct {
		name  string
		chain []string
	}{{"sans", f.Sans}, {"serif", f.Serif}, {"mono", f.Mono}} {
		if err := CheckChain(v.chain); err != nil {
			errs = append(errs, fmt.Errorf("theme.fontFamily.%s: %w", v.name, err))
		}
	}
	return errs
}
