// Package migrations embeds the ordered schema revisions.
//
// Each revision is a pair of files NNN_name.up.sql and NNN_name.down.sql.
// Revisions are append-only: never edit a released file, add a new one.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql
var files embed.FS

// SQLite returns the SQLite catalog rooted at its revision files.
func SQLite() fs.FS {
	sub, err := fs.Sub(files, "sqlite")
	if err != nil {
		panic(err)
	}
	return sub
}
