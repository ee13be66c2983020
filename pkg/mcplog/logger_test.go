package mcplog

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var got []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("torn or invalid line %d %q: %v", len(got)+1, line, err)
		}
		got = append(got, e)
	}
	return got
}

func TestSanitizeParams(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		wantKeys []string
		wantSkip []string
	}{
		{
			name:     "nil map returns empty",
			input:    nil,
			wantKeys: nil,
		},
		{
			name:     "short string passes through",
			input:    map[string]any{"name": "abilian"},
			wantKeys: []string{"name"},
		},
		{
			name:     "long document replaced with _len key",
			input:    map[string]any{"config": strings.Repeat("x", 200)},
			wantKeys: []string{"config_len"},
			wantSkip: []string{"config"},
		},
		{
			name:     "bool and nil pass through",
			input:    map[string]any{"strict": true, "format": nil},
			wantKeys: []string{"strict", "format"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := SanitizeParams(tc.input)
			if len(out) != len(tc.wantKeys) {
				t.Errorf("got %d keys, want %d", len(out), len(tc.wantKeys))
			}
			for _, k := range tc.wantKeys {
				if _, ok := out[k]; !ok {
					t.Errorf("expected key %q in output", k)
				}
			}
			for _, k := range tc.wantSkip {
				if _, ok := out[k]; ok {
					t.Errorf("unexpected key %q in output", k)
				}
			}
		})
	}

	if got := SanitizeParams(map[string]any{"config": strings.Repeat("x", 200)})["config_len"]; got != 200 {
		t.Errorf("config_len = %v, want 200", got)
	}
}

func TestResponseBytes(t *testing.T) {
	if got := ResponseBytes(nil); got != 0 {
		t.Errorf("nil result: got %d, want 0", got)
	}
	if got := ResponseBytes(mcp.NewToolResultText("hello")); got == 0 {
		t.Errorf("text result: got 0, want > 0")
	}
}

func TestLoggerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	origNow := Now
	Now = func() time.Time { return start.Add(42 * time.Millisecond) }
	defer func() { Now = origNow }()

	if err := logger.Record("get_theme", map[string]any{"name": "abilian"}, start, mcp.NewToolResultText(`{"name":"abilian"}`), nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := logger.Record("get_theme", map[string]any{"name": "nope"}, start, mcp.NewToolResultError("theme not found"), nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := logger.Record("validate_config", nil, start, nil, errors.New("boom")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got := readEntries(t, path)
	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3", len(got))
	}

	first := got[0]
	if first.Ts != "2026-01-02T03:04:05Z" {
		t.Errorf("ts = %q", first.Ts)
	}
	if first.Tool != "get_theme" || first.DurationMs != 42 {
		t.Errorf("tool=%q duration_ms=%d", first.Tool, first.DurationMs)
	}
	if first.ResponseBytes == 0 || first.IsError || first.Error != nil {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Params["name"] != "abilian" {
		t.Errorf("params = %v", first.Params)
	}

	if !got[1].IsError || got[1].Error != nil {
		t.Errorf("tool error result should set is_error only: %+v", got[1])
	}
	if !got[2].IsError || got[2].Error == nil || *got[2].Error != "boom" {
		t.Errorf("handler error not recorded: %+v", got[2])
	}
}

func TestLoggerConcurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	const goroutines = 50
	const writesEach = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < writesEach; j++ {
				_ = logger.Write(Entry{
					Ts:   time.Now().UTC().Format(time.RFC3339),
					Tool: "list_themes",
				})
			}
		}()
	}
	wg.Wait()

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := len(readEntries(t, path)); got != goroutines*writesEach {
		t.Errorf("got %d lines, want %d", got, goroutines*writesEach)
	}
}

func TestNewLoggerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "mcp.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestNewLoggerEmptyPath(t *testing.T) {
	logger, err := NewLogger("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger != nil {
		t.Errorf("expected nil logger for empty path")
	}
}
