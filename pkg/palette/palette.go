// Package palette models an external color library (named scales of shades
// plus single named colors) and resolves palette references against it.
package palette

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gnana997/twconfig/palettes"
)

var (
	// ErrUnknownScale is returned when a reference names a scale the palette does not define.
	ErrUnknownScale = errors.New("unknown palette scale")
	// ErrUnknownShade is returned when a scale exists but lacks the requested shade.
	ErrUnknownShade = errors.New("unknown shade")
	// ErrNotSingleColor is returned when a whole scale is used where one color is required.
	ErrNotSingleColor = errors.New("reference names a whole scale, not a single color")
)

// Scale maps a shade index ("50", "100", ... "950") to a color value.
type Scale map[string]string

// Palette is a named color library.
type Palette struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Singles map[string]string `json:"singles"`
	Scales  map[string]Scale  `json:"scales"`

	byHex map[string]Ref
}

var (
	defaultOnce sync.Once
	defaultPal  *Palette
)

// Default returns the embedded Tailwind palette. The embedded data is fixed at
// build time, so a parse failure is a programming error and panics.
func Default() *Palette {
	defaultOnce.Do(func() {
		p, err := Load(palettes.TailwindJSON)
		if err != nil {
			panic(fmt.Sprintf("embedded palette is invalid: %v", err))
		}
		defaultPal = p
	})
	return defaultPal
}

// LoadFromFile reads a palette JSON file.
func LoadFromFile(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette file: %w", err)
	}
	return Load(data)
}

// Load parses palette JSON and builds the reverse index.
func Load(data []byte) (*Palette, error) {
	var p Palette
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse palette JSON: %w", err)
	}
	if len(p.Scales) == 0 && len(p.Singles) == 0 {
		return nil, fmt.Errorf("palette %q defines no colors", p.Name)
	}
	for name, scale := range p.Scales {
		if _, clash := p.Singles[name]; clash {
			return nil, fmt.Errorf("palette %q: %q is both a scale and a single color", p.Name, name)
		}
		for shade := range scale {
			if _, err := strconv.Atoi(shade); err != nil {
				return nil, fmt.Errorf("palette %q: scale %q has non-numeric shade %q", p.Name, name, shade)
			}
		}
	}
	p.buildIndex()
	return &p, nil
}

// Merge returns a new palette holding p's colors overlaid with other's.
// Scales are replaced whole, not merged shade by shade.
func (p *Palette) Merge(other *Palette) *Palette {
	out := &Palette{
		Name:    p.Name,
		Version: p.Version,
		Singles: make(map[string]string, len(p.Singles)+len(other.Singles)),
		Scales:  make(map[string]Scale, len(p.Scales)+len(other.Scales)),
	}
	for k, v := range p.Singles {
		out.Singles[k] = v
	}
	for k, v := range p.Scales {
		out.Scales[k] = v
	}
	for k, v := range other.Singles {
		delete(out.Scales, k)
		out.Singles[k] = v
	}
	for k, v := range other.Scales {
		delete(out.Singles, k)
		out.Scales[k] = v
	}
	out.buildIndex()
	return out
}

// buildIndex maps normalized hex values back to references. A value shared
// by more than one scale (zinc-50 and neutral-50 are both #fafafa) is
// ambiguous and left out.
func (p *Palette) buildIndex() {
	p.byHex = make(map[string]Ref)
	ambiguous := make(map[string]bool)
	add := func(value string, ref Ref) {
		key := normalizeHex(value)
		if key == "" || ambiguous[key] {
			return
		}
		if _, dup := p.byHex[key]; dup {
			delete(p.byHex, key)
			ambiguous[key] = true
			return
		}
		p.byHex[key] = ref
	}
	for name, v := range p.Singles {
		add(v, Ref{Name: name})
	}
	for name, scale := range p.Scales {
		for shade, v := range scale {
			add(v, Ref{Name: name, Shade: shade})
		}
	}
}

// Check reports whether ref resolves, either to a single color or a whole scale.
func (p *Palette) Check(ref Ref) error {
	if !ref.HasShade() {
		if _, ok := p.Singles[ref.Name]; ok {
			return nil
		}
		if _, ok := p.Scales[ref.Name]; ok {
			return nil
		}
		return fmt.Errorf("%w %q", ErrUnknownScale, ref.Name)
	}
	_, err := p.Resolve(ref)
	return err
}

// Resolve returns the concrete color a reference points at.
func (p *Palette) Resolve(ref Ref) (string, error) {
	if !ref.HasShade() {
		if v, ok := p.Singles[ref.Name]; ok {
			return v, nil
		}
		if _, ok := p.Scales[ref.Name]; ok {
			return "", fmt.Errorf("%s: %w", ref, ErrNotSingleColor)
		}
		return "", fmt.Errorf("%w %q", ErrUnknownScale, ref.Name)
	}
	scale, ok := p.Scales[ref.Name]
	if !ok {
		if _, single := p.Singles[ref.Name]; single {
			return "", fmt.Errorf("%q is a single color and has no shade %s: %w", ref.Name, ref.Shade, ErrUnknownShade)
		}
		return "", fmt.Errorf("%w %q", ErrUnknownScale, ref.Name)
	}
	v, ok := scale[ref.Shade]
	if !ok {
		return "", fmt.Errorf("%w %s in scale %q", ErrUnknownShade, ref.Shade, ref.Name)
	}
	return v, nil
}

// Scale returns a named scale.
func (p *Palette) Scale(name string) (Scale, bool) {
	s, ok := p.Scales[name]
	return s, ok
}

// IsScale reports whether name is a multi-shade scale.
func (p *Palette) IsScale(name string) bool {
	_, ok := p.Scales[name]
	return ok
}

// Lookup finds the unique reference whose value equals hex.
func (p *Palette) Lookup(hex string) (Ref, bool) {
	ref, ok := p.byHex[normalizeHex(hex)]
	return ref, ok
}

// MatchScale returns the name of the scale whose shades equal values exactly.
func (p *Palette) MatchScale(values map[string]string) (string, bool) {
	for _, name := range p.ScaleNames() {
		scale := p.Scales[name]
		if len(scale) != len(values) {
			continue
		}
		same := true
		for shade, v := range scale {
			if !strings.EqualFold(values[shade], v) {
				same = false
				break
			}
		}
		if same {
			return name, true
		}
	}
	return "", false
}

// ScaleNames returns scale names in sorted order.
func (p *Palette) ScaleNames() []string {
	names := make([]string, 0, len(p.Scales))
	for name := range p.Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SingleNames returns single color names in sorted order.
func (p *Palette) SingleNames() []string {
	names := make([]string, 0, len(p.Singles))
	for name := range p.Singles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shades returns the shade keys of a scale in ascending numeric order.
func (s Scale) Shades() []string {
	shades := make([]string, 0, len(s))
	for k := range s {
		shades = append(shades, k)
	}
	sort.Slice(shades, func(i, j int) bool {
		a, _ := strconv.Atoi(shades[i])
		b, _ := strconv.Atoi(shades[j])
		return a < b
	})
	return shades
}

// normalizeHex lowercases a hex color and expands #rgb to #rrggbb.
// Returns "" for anything that is not a 3 or 6 digit hex color.
func normalizeHex(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "#") {
		return ""
	}
	digits := s[1:]
	for _, c := range digits {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return ""
		}
	}
	switch len(digits) {
	case 3:
		return "#" + string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	case 6:
		return s
	default:
		return ""
	}
}
