// Package config defines the typed configuration document consumed by the
// utility-CSS build: content globs, theme extensions, font stacks, plugin
// activations and the daisyUI theme tables.
package config

// DarkMode selects how dark variants are activated.
type DarkMode string

const (
	// DarkModeMedia follows the prefers-color-scheme media query.
	DarkModeMedia DarkMode = "media"
	// DarkModeClass activates dark variants when a "dark" class is present.
	DarkModeClass DarkMode = "class"
)

// Valid reports whether m is one of the supported strategies.
func (m DarkMode) Valid() bool {
	return m == DarkModeMedia || m == DarkModeClass
}

// Document is the full configuration record. It is loaded once and then only read.
type Document struct {
	Content     []string        `yaml:"content" json:"content"`
	DarkMode    DarkMode        `yaml:"darkMode" json:"darkMode"`
	Important   bool            `yaml:"important" json:"important"`
	Prefix      string          `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	CorePlugins map[string]bool `yaml:"corePlugins,omitempty" json:"corePlugins,omitempty"`
	Theme       Theme           `yaml:"theme" json:"theme"`
	Plugins     []string        `yaml:"plugins" json:"plugins"`
	DaisyUI     *DaisyUI        `yaml:"daisyui,omitempty" json:"daisyui,omitempty"`
}

// Theme holds design token overrides.
type Theme struct {
	Extend     Extend     `yaml:"extend" json:"extend"`
	FontFamily FontFamily `yaml:"fontFamily" json:"fontFamily"`
}

// Extend adds tokens on top of the toolkit defaults instead of replacing them.
type Extend struct {
	Colors    map[string]ColorValue `yaml:"colors,omitempty" json:"colors,omitempty"`
	MinHeight map[string]string     `yaml:"minHeight,omitempty" json:"minHeight,omitempty"`
}

// FontFamily defines the font tokens. Primary and Secondary are CSS custom
// property lookups with an embedded fallback chain, e.g.
// `var(--family-primary, "Inter", system-ui, sans-serif)`.
// Sans, Serif and Mono are fallback chains, most preferred first.
type FontFamily struct {
	Primary   string   `yaml:"primary" json:"primary"`
	Secondary string   `yaml:"secondary" json:"secondary"`
	Sans      []string `yaml:"sans" json:"sans"`
	Serif     []string `yaml:"serif" json:"serif"`
	Mono      []string `yaml:"mono" json:"mono"`
}

// DaisyUI configures the component library and its named themes.
type DaisyUI struct {
	Styled    bool         `yaml:"styled" json:"styled"`
	Base      bool         `yaml:"base" json:"base"`
	Utils     bool         `yaml:"utils" json:"utils"`
	Logs      bool         `yaml:"logs" json:"logs"`
	RTL       bool         `yaml:"rtl" json:"rtl"`
	Prefix    string       `yaml:"prefix" json:"prefix"`
	DarkTheme string       `yaml:"darkTheme" json:"darkTheme"`
	Themes    []ThemeTable `yaml:"themes" json:"themes"`
}

// ThemeByName returns the daisyUI theme with the given name.
func (d *Document) ThemeByName(name string) (*ThemeTable, bool) {
	if d.DaisyUI == nil {
		return nil, false
	}
	for i := range d.DaisyUI.Themes {
		if d.DaisyUI.Themes[i].Name == name {
			return &d.DaisyUI.Themes[i], true
		}
	}
	return nil, false
}

// HasPlugin reports whether id is activated.
func (d *Document) HasPlugin(id string) bool {
	for _, p := range d.Plugins {
		if p == id {
			return true
		}
	}
	return false
}
