// Package presets provides embedded configuration documents.
package presets

import _ "embed"

// AbilianYAML is the Abilian platform configuration, embedded at build time.
//
//go:embed abilian.yaml
var AbilianYAML []byte
