package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document serialization format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from a file extension. Anything that is not
// .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// requiredKeys are the key paths every document must declare explicitly.
// A key left out would otherwise decode to its zero value unnoticed. Paths
// under an optional section are only required when the section is present.
var requiredKeys = [][]string{
	{"content"},
	{"darkMode"},
	{"important"},
	{"theme", "extend"},
	{"theme", "fontFamily"},
	{"plugins"},
	{"daisyui", "styled"},
	{"daisyui", "base"},
	{"daisyui", "utils"},
	{"daisyui", "logs"},
	{"daisyui", "rtl"},
	{"daisyui", "prefix"},
	{"daisyui", "darkTheme"},
	{"daisyui", "themes"},
}

// optionalSections may be left out entirely.
var optionalSections = map[string]bool{
	"daisyui": true,
}

// LoadFromFile loads a document, validates it and returns it.
func LoadFromFile(path string, opts ValidateOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data, FormatFromPath(path), opts)
}

// LoadFromBytes parses a document, validates it and returns it.
func LoadFromBytes(data []byte, format Format, opts ValidateOptions) (*Document, error) {
	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if errs := doc.Validate(opts); len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return doc, nil
}

// Parse decodes a document strictly (unknown keys are errors) and checks
// required keys are present. It does not resolve references; see Validate.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("config JSON contains trailing content")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("config is empty")
			}
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return nil, fmt.Errorf("config YAML contains multiple documents or trailing content")
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if missing := missingKeys(data); len(missing) > 0 {
		return nil, fmt.Errorf("config is missing required keys: %s", strings.Join(missing, ", "))
	}
	return &doc, nil
}

// missingKeys reports required key paths absent from the raw document.
// JSON is a subset of YAML, so one generic decode serves both formats.
func missingKeys(data []byte) []string {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var missing []string
	for _, path := range requiredKeys {
		if _, ok := raw[path[0]]; !ok && optionalSections[path[0]] {
			continue
		}
		if !hasPath(raw, path) {
			missing = append(missing, strings.Join(path, "."))
		}
	}
	return missing
}

func hasPath(m map[string]any, path []string) bool {
	cur := m
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

// Marshal serializes a document. Parsing the output yields an identical document.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode config JSON: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode config YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode config YAML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}
