package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/twconfig/pkg/render"
)

// serverName is the key the MCP server is registered under.
const serverName = "twconfig"

// agentDef describes how to detect one AI agent and register the server
// with it. CLI agents are registered by running "<binary> mcp add"; file
// agents by merging an entry into their JSON config.
type agentDef struct {
	ID          string
	DisplayName string
	Binary      string
	DirMarkers  []string
	ConfigPath  func() string
	ServersKey  string
	ExtraFields map[string]string
}

func (d agentDef) isCLI() bool { return d.Binary != "" }

// detectedAgent is an agent found on the system.
type detectedAgent struct {
	Def          agentDef
	ConfigPath   string
	AlreadySetup bool
}

// Replaceable for testing.
var (
	lookPathFunc = exec.LookPath
	statFunc     = os.Stat
	runFunc      = func(w io.Writer, name string, args ...string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdout = w
		cmd.Stderr = w
		return cmd.Run()
	}
)

var agentRegistry = []agentDef{
	{ID: "claude_code", DisplayName: "Claude Code", Binary: "claude"},
	{ID: "openai_codex", DisplayName: "OpenAI Codex", Binary: "codex"},
	{
		ID: "vscode_copilot", DisplayName: "VS Code Copilot",
		DirMarkers:  []string{".vscode"},
		ConfigPath:  func() string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		DirMarkers: []string{".cursor"},
		ConfigPath: func() string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "claude_desktop", DisplayName: "Claude Desktop",
		ConfigPath: claudeDesktopConfigPath,
		ServersKey: "mcpServers",
	},
}

func claudeDesktopConfigPath() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectAgents returns the registry entries present on this system.
func detectAgents(registry []agentDef) []detectedAgent {
	var detected []detectedAgent
	for _, def := range registry {
		if def.isCLI() {
			if _, err := lookPathFunc(def.Binary); err == nil {
				detected = append(detected, detectedAgent{Def: def, AlreadySetup: hasServerEntry(".mcp.json", "mcpServers")})
			}
			continue
		}

		path := def.ConfigPath()
		present := false
		for _, marker := range def.DirMarkers {
			if _, err := statFunc(marker); err == nil {
				present = true
				break
			}
		}
		if !present && len(def.DirMarkers) == 0 {
			_, err := statFunc(filepath.Dir(path))
			present = err == nil
		}
		if present {
			detected = append(detected, detectedAgent{Def: def, ConfigPath: path, AlreadySetup: hasServerEntry(path, def.ServersKey)})
		}
	}
	return detected
}

// hasServerEntry reports whether the JSON file at path already registers the server.
func hasServerEntry(path, serversKey string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return false
	}
	servers, _ := cfg[serversKey].(map[string]any)
	_, ok := servers[serverName]
	return ok
}

// serverEntry is the MCP server definition written into agent configs.
func serverEntry(serveArgs []string, extra map[string]string) map[string]any {
	args := make([]any, 0, len(serveArgs)+1)
	args = append(args, "serve")
	for _, a := range serveArgs {
		args = append(args, a)
	}
	entry := map[string]any{"command": serverName, "args": args}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the server under serversKey in existing JSON (or a
// new document). Returns nil if the server is already registered.
func mergeServerEntry(existing []byte, serversKey string, entry map[string]any) ([]byte, error) {
	cfg := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &cfg); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	servers, ok := cfg[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}
	servers[serverName] = entry
	cfg[serversKey] = servers

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureFileAgent merges the server into the agent's config file.
func configureFileAgent(d detectedAgent, serveArgs []string) error {
	if err := os.MkdirAll(filepath.Dir(d.ConfigPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	existing, err := os.ReadFile(d.ConfigPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	merged, err := mergeServerEntry(existing, d.Def.ServersKey, serverEntry(serveArgs, d.Def.ExtraFields))
	if err != nil || merged == nil {
		return err
	}
	return render.WriteFile(d.ConfigPath, merged)
}

// configureCLIAgent runs "<binary> mcp add" in project scope.
func configureCLIAgent(w io.Writer, d detectedAgent, serveArgs []string) error {
	args := []string{"mcp", "add", "--scope", "project", serverName, "--", serverName, "serve"}
	return runFunc(w, d.Def.Binary, append(args, serveArgs...)...)
}

// promptYesNo prints a question and reads Y/n. EOF and empty input mean yes.
func promptYesNo(scanner *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !scanner.Scan() {
		return true
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// executeSetup registers the server with every detected agent, asking
// first unless auto is set.
func executeSetup(r io.Reader, w io.Writer, detected []detectedAgent, auto bool, serveArgs []string) {
	if len(detected) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return
	}

	fmt.Fprintln(w, "Detected AI agents:")
	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Def.DisplayName)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Def.DisplayName)
		}
	}
	fmt.Fprintln(w)

	scanner := bufio.NewScanner(r)
	if !auto && !promptYesNo(scanner, w, "Configure agents? [Y/n]") {
		return
	}

	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "%s: already configured, skipping\n", d.Def.DisplayName)
			continue
		}
		target := d.ConfigPath
		if d.Def.isCLI() {
			target = d.Def.Binary + " mcp add"
		}
		if !auto && !promptYesNo(scanner, w, fmt.Sprintf("%s: add via %s? [Y/n]", d.Def.DisplayName, target)) {
			fmt.Fprintln(w, "  skipped")
			continue
		}

		var err error
		if d.Def.isCLI() {
			err = configureCLIAgent(w, d, serveArgs)
		} else {
			err = configureFileAgent(d, serveArgs)
		}
		if err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			continue
		}
		fmt.Fprintf(w, "  + %s configured (%s)\n", d.Def.DisplayName, target)
	}
}

func (a *app) setupCmd() *cobra.Command {
	var auto bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with detected AI agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var serveArgs []string
			if a.configPath != "" {
				abs, err := filepath.Abs(a.configPath)
				if err != nil {
					return err
				}
				serveArgs = append(serveArgs, "--config", abs)
			}
			executeSetup(cmd.InOrStdin(), cmd.OutOrStdout(), detectAgents(agentRegistry), auto, serveArgs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "Configure every detected agent without prompting")
	return cmd
}
