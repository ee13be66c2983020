package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/palette"
	"github.com/gnana997/twconfig/pkg/plugin"
)

// jsonResult wraps v as a JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// --- list_themes ---

type themeSummary struct {
	Name         string   `json:"name"`
	Builtin      bool     `json:"builtin"`
	Default      bool     `json:"default"`
	Dark         bool     `json:"dark"`
	Roles        int      `json:"roles,omitempty"`
	MissingRoles []string `json:"missing_roles,omitempty"`
}

func (s *Server) handleListThemes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := s.Document()
	if doc.DaisyUI == nil {
		return mcp.NewToolResultText("daisyUI is not configured; no themes declared"), nil
	}

	out := make([]themeSummary, 0, len(doc.DaisyUI.Themes))
	for i := range doc.DaisyUI.Themes {
		t := &doc.DaisyUI.Themes[i]
		out = append(out, themeSummary{
			Name:         t.Name,
			Builtin:      t.Builtin,
			Default:      i == 0,
			Dark:         t.Name == doc.DaisyUI.DarkTheme,
			Roles:        len(t.Roles),
			MissingRoles: t.MissingRoles(),
		})
	}
	return jsonResult(out)
}

// --- get_theme ---

type roleDetail struct {
	Role     string `json:"role"`
	Value    string `json:"value"`
	Resolved string `json:"resolved"`
}

type themeDetail struct {
	Name         string            `json:"name"`
	Roles        []roleDetail      `json:"roles"`
	Vars         map[string]string `json:"vars,omitempty"`
	MissingRoles []string          `json:"missing_roles,omitempty"`
}

func (s *Server) handleGetTheme(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	st := s.current()
	t, ok := st.doc.ThemeByName(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("theme %q not found", name)), nil
	}
	if t.Builtin {
		return mcp.NewToolResultError(fmt.Sprintf("theme %q is built into daisyUI; its colors are not part of this configuration", name)), nil
	}

	detail := themeDetail{Name: t.Name, Vars: t.Vars, MissingRoles: t.MissingRoles()}
	for _, role := range t.RoleNames() {
		v := t.Roles[role]
		resolved, err := v.Resolve(st.opts.Palette)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("role %s: %v", role, err)), nil
		}
		detail.Roles = append(detail.Roles, roleDetail{Role: role, Value: v.String(), Resolved: resolved})
	}
	return jsonResult(detail)
}

// --- resolve_color ---

type colorResolution struct {
	Input    string        `json:"input"`
	Kind     string        `json:"kind"`
	Value    string        `json:"value"`
	Resolved string        `json:"resolved,omitempty"`
	Scale    palette.Scale `json:"scale,omitempty"`
}

func (s *Server) handleResolveColor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("color")
	if err != nil {
		return mcp.NewToolResultError("color is required"), nil
	}
	input = strings.TrimSpace(input)
	st := s.current()
	doc, pal := st.doc, st.opts.Palette

	kind, value := "literal", config.ParseColor(input)
	if value.IsRef() {
		kind = "reference"
	} else if v, ok := doc.Theme.Extend.Colors[input]; ok {
		kind, value = "alias", v
	} else if theme, role, ok := strings.Cut(input, "."); ok {
		if t, found := doc.ThemeByName(theme); found && !t.Builtin {
			v, has := t.Roles[role]
			if !has {
				return mcp.NewToolResultError(fmt.Sprintf("theme %q does not assign role %q", theme, role)), nil
			}
			kind, value = "role", v
		}
	}

	res := colorResolution{Input: input, Kind: kind, Value: value.String()}
	if err := value.Check(pal, true); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolved, err := value.Resolve(pal)
	switch {
	case errors.Is(err, palette.ErrNotSingleColor):
		res.Scale, _ = pal.Scale(value.Ref.Name)
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	default:
		res.Resolved = resolved
	}
	return jsonResult(res)
}

// --- get_font_stack ---

func (s *Server) handleGetFontStack(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fonts := &s.Document().Theme.FontFamily
	name := req.GetString("name", "")
	if name == "" {
		return jsonResult(fonts.Stacks())
	}
	stack, ok := fonts.Stack(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("font token %q not found", name)), nil
	}
	return jsonResult(stack)
}

// --- list_plugins ---

type pluginInfo struct {
	Position int `json:"position"`
	plugin.Plugin
	Unknown bool `json:"unknown,omitempty"`
}

type pluginList struct {
	Active []pluginInfo     `json:"active"`
	Known  []plugin.Plugin `json:"known,omitempty"`
}

func (s *Server) handleListPlugins(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.current()
	doc, registry := st.doc, st.opts.Plugins
	out := pluginList{Active: make([]pluginInfo, 0, len(doc.Plugins))}
	for i, id := range doc.Plugins {
		p, err := registry.Resolve(id)
		info := pluginInfo{Position: i, Plugin: p}
		if err != nil {
			info.Plugin = plugin.Plugin{ID: id}
			info.Unknown = true
		}
		out.Active = append(out.Active, info)
	}
	if req.GetBool("include_known", false) {
		out.Known = registry.Known()
	}
	return jsonResult(out)
}

// --- get_config_summary ---

type configSummary struct {
	Content      []string          `json:"content"`
	DarkMode     config.DarkMode   `json:"dark_mode"`
	Important    bool              `json:"important"`
	Prefix       string            `json:"prefix,omitempty"`
	CorePlugins  map[string]bool   `json:"core_plugins,omitempty"`
	ColorAliases map[string]string `json:"color_aliases,omitempty"`
	MinHeight    map[string]string `json:"min_height,omitempty"`
	Fonts        []string          `json:"fonts"`
	Plugins      []string          `json:"plugins"`
	Themes       []string          `json:"themes,omitempty"`
	DarkTheme    string            `json:"dark_theme,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
}

func (s *Server) handleGetConfigSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.current()
	doc := st.doc
	sum := configSummary{
		Content:     doc.Content,
		DarkMode:    doc.DarkMode,
		Important:   doc.Important,
		Prefix:      doc.Prefix,
		CorePlugins: doc.CorePlugins,
		MinHeight:   doc.Theme.Extend.MinHeight,
		Plugins:     doc.Plugins,
		Warnings:    doc.Warnings(st.opts),
	}
	if len(doc.Theme.Extend.Colors) > 0 {
		sum.ColorAliases = make(map[string]string, len(doc.Theme.Extend.Colors))
		for name, v := range doc.Theme.Extend.Colors {
			sum.ColorAliases[name] = v.String()
		}
	}
	for _, stack := range doc.Theme.FontFamily.Stacks() {
		sum.Fonts = append(sum.Fonts, stack.Name)
	}
	if doc.DaisyUI != nil {
		sum.DarkTheme = doc.DaisyUI.DarkTheme
		for _, t := range doc.DaisyUI.Themes {
			sum.Themes = append(sum.Themes, t.Name)
		}
	}
	return jsonResult(sum)
}

// --- validate_config ---

type validationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (s *Server) handleValidateConfig(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.current()
	doc, opts := st.doc, st.opts
	if req.GetBool("strict", false) {
		opts.Roles = config.RolesStrict
	}

	report := validationReport{Errors: []string{}, Warnings: []string{}}

	if src := req.GetString("config", ""); src != "" {
		format := config.Format(req.GetString("format", string(config.FormatYAML)))
		if format != config.FormatYAML && format != config.FormatJSON {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q (use yaml or json)", format)), nil
		}
		parsed, err := config.Parse([]byte(src), format)
		if err != nil {
			report.Errors = append(report.Errors, strings.Split(err.Error(), "\n")...)
			return jsonResult(report)
		}
		doc = parsed
	}

	for _, err := range doc.Validate(opts) {
		report.Errors = append(report.Errors, err.Error())
	}
	report.Warnings = append(report.Warnings, doc.Warnings(opts)...)
	report.Valid = len(report.Errors) == 0
	return jsonResult(report)
}
