package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/jsconfig"
	"github.com/gnana997/twconfig/pkg/palette"
)

func TestJS_Default(t *testing.T) {
	out := string(JS(config.Default()))

	assert.True(t, strings.HasPrefix(out, "// "+Header+"\n"))
	assert.Contains(t, out, `const colors = require("tailwindcss/colors");`)
	assert.Contains(t, out, `darkMode: "media",`)
	assert.Contains(t, out, `important: true,`)
	assert.Contains(t, out, `prefix: "tw-",`)
	assert.Contains(t, out, "    preflight: false,\n")
	assert.Contains(t, out, "        rose: colors.rose,\n")
	assert.Contains(t, out, `"24": "6rem",`)
	assert.Contains(t, out, `primary: colors.sky[400],`)
	assert.Contains(t, out, `"primary-focus": colors.sky[600],`)
	assert.Contains(t, out, `"base-100": "#ffffff",`)
	assert.Contains(t, out, `"\"Segoe UI\"",`)
	assert.True(t, strings.HasSuffix(out, "};\n"))

	// Plugin order is preserved.
	daisy := strings.Index(out, `require("daisyui")`)
	typography := strings.Index(out, `require("@tailwindcss/typography")`)
	aspect := strings.Index(out, `require("@tailwindcss/aspect-ratio")`)
	require.True(t, daisy > 0 && typography > 0 && aspect > 0)
	assert.Less(t, daisy, typography)
	assert.Less(t, typography, aspect)
}

func TestJS_NoPaletteImport(t *testing.T) {
	doc := config.Default()
	doc.Theme.Extend.Colors = nil
	th, _ := doc.ThemeByName("abilian")
	for role := range th.Roles {
		th.Roles[role] = config.Literal("#000000")
	}
	doc.DaisyUI.Themes = append(doc.DaisyUI.Themes, config.ThemeTable{Name: "cupcake", Builtin: true})

	out := string(JS(doc))
	assert.NotContains(t, out, "tailwindcss/colors")
	assert.Contains(t, out, "      \"cupcake\",\n")
}

// Rendering then importing yields the same configuration.
func TestJS_ImportsBack(t *testing.T) {
	doc := config.Default()
	doc.DaisyUI.Themes[0].Vars = map[string]string{"--rounded-box": "1rem"}

	im, err := jsconfig.New(jsconfig.Options{})
	require.NoError(t, err)
	defer im.Close()

	res, err := im.Import(context.Background(), JS(doc), "tailwind.config.js")
	require.NoError(t, err)
	back := res.Document

	assert.Equal(t, doc.Content, back.Content)
	assert.Equal(t, doc.Plugins, back.Plugins)
	assert.Equal(t, doc.CorePlugins, back.CorePlugins)
	if diff := cmp.Diff(doc.Theme, back.Theme); diff != "" {
		t.Errorf("theme mismatch (-want +got):\n%s", diff)
	}

	want, err := doc.DaisyUI.Themes[0].Resolve(palette.Default())
	require.NoError(t, err)
	got, err := back.DaisyUI.Themes[0].Resolve(palette.Default())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, doc.DaisyUI.Themes[0].Vars, back.DaisyUI.Themes[0].Vars)
}

func TestThemeCSS_Default(t *testing.T) {
	out, err := ThemeCSS(config.Default(), palette.Default())
	require.NoError(t, err)
	css := string(out)

	assert.Contains(t, css, ":root,\n[data-theme=\"abilian\"] {\n")
	assert.Contains(t, css, "  --color-primary: #38bdf8;\n")
	assert.Contains(t, css, "  --color-primary-focus: #0284c7;\n")
	assert.Contains(t, css, "  --color-error: #dc2626;\n")
	// darkTheme is a built-in, so no media block.
	assert.NotContains(t, css, "@media")

	// Roles follow canonical order.
	assert.Less(t, strings.Index(css, "--color-primary:"), strings.Index(css, "--color-secondary:"))
	assert.Less(t, strings.Index(css, "--color-base-content:"), strings.Index(css, "--color-info:"))
}

func TestThemeCSS_DarkThemeAndVars(t *testing.T) {
	doc := config.Default()
	night := config.ThemeTable{
		Name:  "night-owl",
		Roles: map[string]config.ColorValue{"primary": config.Literal("#111111"), "base-100": config.Reference("slate", "900")},
		Vars:  map[string]string{"--rounded-box": "0"},
	}
	doc.DaisyUI.Themes = append([]config.ThemeTable{{Name: "light", Builtin: true}}, doc.DaisyUI.Themes...)
	doc.DaisyUI.Themes = append(doc.DaisyUI.Themes, night)
	doc.DaisyUI.DarkTheme = "night-owl"

	out, err := ThemeCSS(doc, palette.Default())
	require.NoError(t, err)
	css := string(out)

	// The first theme is built in, so no custom theme claims :root.
	assert.NotContains(t, css, ":root,")
	assert.Contains(t, css, "[data-theme=\"night-owl\"] {\n  --color-primary: #111111;\n  --color-base-100: #0f172a;\n  --rounded-box: 0;\n}\n")
	assert.Contains(t, css, "@media (prefers-color-scheme: dark) {\n  :root {\n    --color-primary: #111111;\n")

	doc.DarkMode = config.DarkModeClass
	out, err = ThemeCSS(doc, palette.Default())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "@media")
}

func TestThemeCSS_UnresolvedReference(t *testing.T) {
	doc := config.Default()
	doc.DaisyUI.Themes[0].Roles["primary"] = config.Reference("sky", "450")

	_, err := ThemeCSS(doc, palette.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `theme "abilian" role "primary"`)
}

func TestThemeCSS_NoDaisyUI(t *testing.T) {
	doc := config.Default()
	doc.DaisyUI = nil
	out, err := ThemeCSS(doc, palette.Default())
	require.NoError(t, err)
	assert.Equal(t, "/* "+Header+" */\n", string(out))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailwind.config.js")

	require.NoError(t, WriteFile(path, []byte("first")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, WriteFile(path, []byte("second")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	err = WriteFile(filepath.Join(dir, "missing", "out.js"), []byte("x"))
	assert.Error(t, err)
}
