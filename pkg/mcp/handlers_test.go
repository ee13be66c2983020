package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/mcplog"
	"github.com/gnana997/twconfig/pkg/palette"
)

// --- helpers ---

func testServer() *Server {
	return NewServer(config.Default(), config.ValidateOptions{}, nil)
}

// testServerWithThemes adds a built-in light theme and a custom dark theme
// that leaves some roles to the library.
func testServerWithThemes() *Server {
	doc := config.Default()
	doc.DaisyUI.Themes = append(doc.DaisyUI.Themes,
		config.ThemeTable{Name: "light", Builtin: true},
		config.ThemeTable{
			Name: "night",
			Roles: map[string]config.ColorValue{
				"primary":  config.Reference("indigo", "500"),
				"base-100": config.Literal("#0f172a"),
			},
			Vars: map[string]string{"--rounded-box": "0"},
		},
	)
	doc.DaisyUI.DarkTheme = "night"
	return NewServer(doc, config.ValidateOptions{}, nil)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "list_themes":
		handler = s.handleListThemes
	case "get_theme":
		handler = s.handleGetTheme
	case "resolve_color":
		handler = s.handleResolveColor
	case "get_font_stack":
		handler = s.handleGetFontStack
	case "list_plugins":
		handler = s.handleListPlugins
	case "get_config_summary":
		handler = s.handleGetConfigSummary
	case "validate_config":
		handler = s.handleValidateConfig
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &v))
	return v
}

// --- list_themes ---

func TestHandleListThemes(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("list_themes", nil))
	assert.False(t, result.IsError)

	themes := decode[[]map[string]any](t, result)
	require.Len(t, themes, 1)
	assert.Equal(t, "abilian", themes[0]["name"])
	assert.Equal(t, true, themes[0]["default"])
	assert.Equal(t, false, themes[0]["dark"])
	assert.Equal(t, float64(20), themes[0]["roles"])
	assert.NotContains(t, themes[0], "missing_roles")
}

func TestHandleListThemes_BuiltinAndDark(t *testing.T) {
	s := testServerWithThemes()
	themes := decode[[]map[string]any](t, callTool(t, s, makeRequest("list_themes", nil)))
	require.Len(t, themes, 3)

	assert.Equal(t, "light", themes[1]["name"])
	assert.Equal(t, true, themes[1]["builtin"])
	assert.Equal(t, false, themes[1]["default"])

	assert.Equal(t, "night", themes[2]["name"])
	assert.Equal(t, true, themes[2]["dark"])
	missing, ok := themes[2]["missing_roles"].([]any)
	require.True(t, ok)
	assert.Len(t, missing, 18)
}

func TestHandleListThemes_NoDaisyUI(t *testing.T) {
	doc := config.Default()
	doc.DaisyUI = nil
	s := NewServer(doc, config.ValidateOptions{}, nil)

	result := callTool(t, s, makeRequest("list_themes", nil))
	assert.False(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "not configured")
}

// --- get_theme ---

func TestHandleGetTheme(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("get_theme", map[string]any{"name": "abilian"}))
	assert.False(t, result.IsError)

	detail := decode[themeDetail](t, result)
	assert.Equal(t, "abilian", detail.Name)
	require.Len(t, detail.Roles, 20)
	assert.Equal(t, roleDetail{Role: "primary", Value: "colors.sky.400", Resolved: "#38bdf8"}, detail.Roles[0])
	assert.Equal(t, "primary-focus", detail.Roles[1].Role)
	assert.Equal(t, "#0284c7", detail.Roles[1].Resolved)
	assert.Empty(t, detail.MissingRoles)
}

func TestHandleGetTheme_VarsAndMissingRoles(t *testing.T) {
	s := testServerWithThemes()
	detail := decode[themeDetail](t, callTool(t, s, makeRequest("get_theme", map[string]any{"name": "night"})))

	require.Len(t, detail.Roles, 2)
	assert.Equal(t, "#6366f1", detail.Roles[0].Resolved)
	assert.Equal(t, map[string]string{"--rounded-box": "0"}, detail.Vars)
	assert.Contains(t, detail.MissingRoles, "secondary")
}

func TestHandleGetTheme_Errors(t *testing.T) {
	s := testServerWithThemes()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing name", nil, "name is required"},
		{"unknown theme", map[string]any{"name": "cupcake"}, `theme "cupcake" not found`},
		{"builtin theme", map[string]any{"name": "light"}, "built into daisyUI"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := callTool(t, s, makeRequest("get_theme", tc.args))
			assert.True(t, result.IsError)
			assert.Contains(t, resultJSON(t, result), tc.want)
		})
	}
}

// --- resolve_color ---

func TestHandleResolveColor(t *testing.T) {
	s := testServer()

	tests := []struct {
		input    string
		kind     string
		value    string
		resolved string
	}{
		{"colors.sky.400", "reference", "colors.sky.400", "#38bdf8"},
		{"colors.sky[400]", "reference", "colors.sky.400", "#38bdf8"},
		{"abilian.primary", "role", "colors.sky.400", "#38bdf8"},
		{"abilian.base-100", "role", "#ffffff", "#ffffff"},
		{"#123abc", "literal", "#123abc", "#123abc"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			result := callTool(t, s, makeRequest("resolve_color", map[string]any{"color": tc.input}))
			require.False(t, result.IsError, resultJSON(t, result))

			res := decode[colorResolution](t, result)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.value, res.Value)
			assert.Equal(t, tc.resolved, res.Resolved)
			assert.Empty(t, res.Scale)
		})
	}
}

func TestHandleResolveColor_ScaleAlias(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("resolve_color", map[string]any{"color": "rose"}))
	require.False(t, result.IsError)

	res := decode[colorResolution](t, result)
	assert.Equal(t, "alias", res.Kind)
	assert.Equal(t, "colors.rose", res.Value)
	assert.Empty(t, res.Resolved)
	assert.Equal(t, "#f43f5e", res.Scale["500"])
	assert.Len(t, res.Scale, 11)
}

func TestHandleResolveColor_Errors(t *testing.T) {
	s := testServer()

	tests := []struct {
		input string
		want  string
	}{
		{"colors.sky.401", "unknown shade"},
		{"colors.skyy.400", "unknown palette scale"},
		{"abilian.info-content", `does not assign role "info-content"`},
		{"not-a-color", "invalid color"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			result := callTool(t, s, makeRequest("resolve_color", map[string]any{"color": tc.input}))
			assert.True(t, result.IsError)
			assert.Contains(t, resultJSON(t, result), tc.want)
		})
	}

	result := callTool(t, s, makeRequest("resolve_color", nil))
	assert.True(t, result.IsError)
}

// --- get_font_stack ---

func TestHandleGetFontStack(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("get_font_stack", map[string]any{"name": "serif"}))
	assert.False(t, result.IsError)

	stack := decode[config.FontStack](t, result)
	assert.Equal(t, "serif", stack.Name)
	assert.Equal(t, []string{"Georgia", "Cambria", `"Times New Roman"`, "Times", "serif"}, stack.Chain)
}

func TestHandleGetFontStack_Primary(t *testing.T) {
	s := testServer()
	stack := decode[config.FontStack](t, callTool(t, s, makeRequest("get_font_stack", map[string]any{"name": "primary"})))

	assert.Equal(t, "--family-primary", stack.Property)
	assert.Equal(t, `"Inter"`, stack.Chain[0])
	assert.Equal(t, `"Noto Color Emoji"`, stack.Chain[len(stack.Chain)-1])
}

func TestHandleGetFontStack_All(t *testing.T) {
	s := testServer()
	stacks := decode[[]config.FontStack](t, callTool(t, s, makeRequest("get_font_stack", nil)))

	names := make([]string, len(stacks))
	for i, st := range stacks {
		names[i] = st.Name
	}
	assert.Equal(t, []string{"primary", "secondary", "sans", "serif", "mono"}, names)
}

func TestHandleGetFontStack_NotFound(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("get_font_stack", map[string]any{"name": "display"}))
	assert.True(t, result.IsError)
}

// --- list_plugins ---

func TestHandleListPlugins(t *testing.T) {
	s := testServer()
	list := decode[pluginList](t, callTool(t, s, makeRequest("list_plugins", nil)))

	require.Len(t, list.Active, 4)
	assert.Equal(t, "daisyui", list.Active[0].ID)
	assert.Equal(t, 0, list.Active[0].Position)
	assert.Equal(t, "@tailwindcss/line-clamp", list.Active[2].ID)
	assert.NotEmpty(t, list.Active[2].Deprecated)
	assert.Empty(t, list.Known)
}

func TestHandleListPlugins_IncludeKnown(t *testing.T) {
	s := testServer()
	list := decode[pluginList](t, callTool(t, s, makeRequest("list_plugins", map[string]any{"include_known": true})))
	assert.Len(t, list.Known, 6)
}

func TestHandleListPlugins_Unknown(t *testing.T) {
	doc := config.Default()
	doc.Plugins = append(doc.Plugins, "tailwindcss-animate")
	s := NewServer(doc, config.ValidateOptions{}, nil)

	list := decode[pluginList](t, callTool(t, s, makeRequest("list_plugins", nil)))
	require.Len(t, list.Active, 5)
	assert.True(t, list.Active[4].Unknown)
	assert.Equal(t, "tailwindcss-animate", list.Active[4].ID)
}

// --- get_config_summary ---

func TestHandleGetConfigSummary(t *testing.T) {
	s := testServer()
	sum := decode[configSummary](t, callTool(t, s, makeRequest("get_config_summary", nil)))

	assert.Len(t, sum.Content, 3)
	assert.Equal(t, config.DarkModeMedia, sum.DarkMode)
	assert.True(t, sum.Important)
	assert.Equal(t, "tw-", sum.Prefix)
	assert.Equal(t, map[string]bool{"preflight": false}, sum.CorePlugins)
	assert.Equal(t, "colors.slate", sum.ColorAliases["neutral"])
	assert.Equal(t, "6rem", sum.MinHeight["24"])
	assert.Len(t, sum.Fonts, 5)
	assert.Equal(t, []string{"abilian"}, sum.Themes)
	assert.Equal(t, "dark", sum.DarkTheme)
	require.Len(t, sum.Warnings, 1)
	assert.Contains(t, sum.Warnings[0], "deprecated")
}

// --- validate_config ---

func TestHandleValidateConfig_Loaded(t *testing.T) {
	s := testServer()
	report := decode[validationReport](t, callTool(t, s, makeRequest("validate_config", nil)))
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Len(t, report.Warnings, 1)
}

func TestHandleValidateConfig_Source(t *testing.T) {
	s := testServer()

	doc := config.Default()
	doc.DarkMode = "dusk"
	src, err := config.Marshal(doc, config.FormatJSON)
	require.NoError(t, err)

	report := decode[validationReport](t, callTool(t, s, makeRequest("validate_config", map[string]any{
		"config": string(src),
		"format": "json",
	})))
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], `darkMode "dusk" is invalid`)
}

func TestHandleValidateConfig_ParseError(t *testing.T) {
	s := testServer()
	report := decode[validationReport](t, callTool(t, s, makeRequest("validate_config", map[string]any{
		"config": "content: [a]\nsafelist: [b]\n",
	})))
	assert.False(t, report.Valid)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "failed to parse config YAML")
}

func TestHandleValidateConfig_StrictRoles(t *testing.T) {
	s := testServer()

	doc := config.Default()
	delete(doc.DaisyUI.Themes[0].Roles, "error")
	src, err := config.Marshal(doc, config.FormatYAML)
	require.NoError(t, err)

	lenient := decode[validationReport](t, callTool(t, s, makeRequest("validate_config", map[string]any{
		"config": string(src),
	})))
	assert.True(t, lenient.Valid)
	assert.Len(t, lenient.Warnings, 2)

	strict := decode[validationReport](t, callTool(t, s, makeRequest("validate_config", map[string]any{
		"config": string(src),
		"strict": true,
	})))
	assert.False(t, strict.Valid)
	require.Len(t, strict.Errors, 1)
	assert.Contains(t, strict.Errors[0], "error")
}

func TestHandleValidateConfig_BadFormat(t *testing.T) {
	s := testServer()
	result := callTool(t, s, makeRequest("validate_config", map[string]any{
		"config": "{}",
		"format": "toml",
	}))
	assert.True(t, result.IsError)
}

// --- server ---

func TestSetDocument(t *testing.T) {
	s := testServer()
	doc := config.Default()
	doc.Prefix = "ab-"
	s.SetDocument(doc)

	sum := decode[configSummary](t, callTool(t, s, makeRequest("get_config_summary", nil)))
	assert.Equal(t, "ab-", sum.Prefix)
}

func TestReload_SwapsPalette(t *testing.T) {
	s := testServer()
	req := makeRequest("resolve_color", map[string]any{"color": "colors.brand.600"})
	assert.True(t, callTool(t, s, req).IsError)

	custom, err := palette.Load([]byte(`{"name": "custom", "scales": {"brand": {"500": "#111111", "600": "#222222"}}}`))
	require.NoError(t, err)
	doc := config.Default()
	doc.Prefix = "br-"
	s.Reload(doc, config.ValidateOptions{Palette: palette.Default().Merge(custom)})

	res := decode[colorResolution](t, callTool(t, s, req))
	assert.Equal(t, "#222222", res.Resolved)
	assert.Equal(t, "br-", s.Document().Prefix)

	// SetDocument keeps the reloaded palette.
	s.SetDocument(config.Default())
	res = decode[colorResolution](t, callTool(t, s, req))
	assert.Equal(t, "#222222", res.Resolved)
}

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.jsonl")
	logger, err := mcplog.NewLogger(path)
	require.NoError(t, err)

	s := NewServer(config.Default(), config.ValidateOptions{}, logger)
	handler := s.loggingMiddleware()(s.handleGetTheme)

	_, err = handler(context.Background(), makeRequest("get_theme", map[string]any{"name": "abilian"}))
	require.NoError(t, err)
	_, err = handler(context.Background(), makeRequest("get_theme", map[string]any{"name": "missing"}))
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []mcplog.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e mcplog.Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)
	assert.Equal(t, "get_theme", entries[0].Tool)
	assert.Equal(t, "abilian", entries[0].Params["name"])
	assert.Greater(t, entries[0].ResponseBytes, 0)
	assert.False(t, entries[0].IsError)
	assert.True(t, entries[1].IsError)
}
