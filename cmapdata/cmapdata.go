// Package cmapdata embeds the ToUnicode CMaps shipped with the binary.
package cmapdata

import (
	"embed"
	"io/fs"
)

//go:embed tables
var tables embed.FS

// FS returns the bundled CMaps, keyed by file name at the root.
func FS() fs.FS {
	sub, err := fs.Sub(tables, "tables")
	if err != nil {
		panic(err)
	}
	return sub
}
