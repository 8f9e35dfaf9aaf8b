// Package data ships the default glyph pools and reading tables.
package data

import "embed"

//go:embed lvl/*.txt sol/*.txt
var Files embed.FS
