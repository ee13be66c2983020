package palette

import (
	"regexp"
	"strings"
)

// RefPrefix is the namespace every palette reference starts with.
const RefPrefix = "colors."

// refPattern accepts colors.<name>, colors.<name>.<shade> and colors.<name>[<shade>].
var refPattern = regexp.MustCompile(`^colors\.([a-zA-Z][a-zA-Z0-9_-]*)(?:\.(\d+)|\[\s*["']?(\d+)["']?\s*\])?$`)

// Ref is an indirect color: a named scale (or single color)
// and an optional shade index within it.
type Ref struct {
	Name  string
	Shade string // empty for a whole scale or a single color
}

// ParseRef parses a palette reference. The bool is false when s does not use
// reference syntax at all, in which case the caller should treat s as a literal.
func ParseRef(s string) (Ref, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, RefPrefix) {
		return Ref{}, false
	}
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return Ref{}, false
	}
	shade := m[2]
	if shade == "" {
		shade = m[3]
	}
	return Ref{Name: m[1], Shade: shade}, true
}

// LooksLikeRef reports whether s is written in the reference namespace, even
// if it is malformed. Used to reject typos such as "colors.sky.4oo" instead of
// silently accepting them as literals.
func LooksLikeRef(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), RefPrefix)
}

// HasShade reports whether the reference points at a single shade.
func (r Ref) HasShade() bool {
	return r.Shade != ""
}

// String returns the canonical dotted form, e.g. "colors.sky.400".
func (r Ref) String() string {
	if r.Shade == "" {
		return RefPrefix + r.Name
	}
	return RefPrefix + r.Name + "." + r.Shade
}

// JS returns the JavaScript expression form, e.g. colors.sky[400].
func (r Ref) JS() string {
	if r.Shade == "" {
		return RefPrefix + r.Name
	}
	return RefPrefix + r.Name + "[" + r.Shade + "]"
}
