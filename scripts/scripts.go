// Package scripts embeds the built-in Risor emitter scripts.
package scripts

import "embed"

// FS holds emit/*.risor. Paths are relative to this directory, for
// example "emit/manifest.risor".
//
//go:embed emit/*.risor
var FS embed.FS
