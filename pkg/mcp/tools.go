package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listThemesTool() mcp.Tool {
	return mcp.NewTool("list_themes",
		mcp.WithDescription("List the daisyUI themes declared in the configuration, in order. "+
			"Reports which theme is the dark theme and which required roles a custom theme leaves to library defaults."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getThemeTool() mcp.Tool {
	return mcp.NewTool("get_theme",
		mcp.WithDescription("Get one custom theme's color roles, both as written and resolved to concrete colors, "+
			"plus its CSS variable overrides."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Theme name, e.g. \"abilian\"")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func resolveColorTool() mcp.Tool {
	return mcp.NewTool("resolve_color",
		mcp.WithDescription("Resolve a color to its concrete value. Accepts a color alias from theme.extend.colors "+
			"(\"rose\"), a theme role (\"abilian.primary\"), a palette reference (\"colors.sky.400\") or a literal."),
		mcp.WithString("color", mcp.Required(), mcp.Description("Alias, theme role, palette reference or literal color")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getFontStackTool() mcp.Tool {
	return mcp.NewTool("get_font_stack",
		mcp.WithDescription("Get a font token's fallback chain, most preferred first. Without a name, returns all tokens."),
		mcp.WithString("name", mcp.Description("Font token"), mcp.Enum("primary", "secondary", "sans", "serif", "mono")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func listPluginsTool() mcp.Tool {
	return mcp.NewTool("list_plugins",
		mcp.WithDescription("List the activated plugins in load order with their descriptions and deprecation notes. "+
			"Set include_known to also list every registered plugin."),
		mcp.WithBoolean("include_known", mcp.Description("Also return all registered plugins")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getConfigSummaryTool() mcp.Tool {
	return mcp.NewTool("get_config_summary",
		mcp.WithDescription("Compact overview of the configuration: content globs, dark mode strategy, prefix, "+
			"color aliases, plugins and themes."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func validateConfigTool() mcp.Tool {
	return mcp.NewTool("validate_config",
		mcp.WithDescription("Validate a configuration document. Without a config argument, validates the loaded one. "+
			"Returns every error and warning."),
		mcp.WithString("config", mcp.Description("Document source to validate")),
		mcp.WithString("format", mcp.Description("Document format"), mcp.Enum("yaml", "json")),
		mcp.WithBoolean("strict", mcp.Description("Treat missing theme roles as errors")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
