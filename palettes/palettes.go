// Package palettes provides embedded color palette data for supported utility-CSS toolkits.
package palettes

import _ "embed"

// TailwindJSON is the bundled Tailwind CSS v3 color palette, embedded at build time.
//
//go:embed tailwind.json
var TailwindJSON []byte
