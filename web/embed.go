// Package web embeds the search page template and its static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates holds the page templates.
func Templates() fs.FS {
	sub, _ := fs.Sub(files, "templates")
	return sub
}

// Static holds the files served under /js/ and /css/.
func Static() fs.FS {
	sub, _ := fs.Sub(files, "static")
	return sub
}
