package config

import (
	"fmt"

	"github.com/gnana997/twconfig/presets"
)

// Default returns a fresh copy of the embedded Abilian configuration.
// The preset is fixed at build time, so a parse failure is a programming
// error and panics.
func Default() *Document {
	doc, err := Parse(presets.AbilianYAML, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded preset is invalid: %v", err))
	}
	return doc
}
