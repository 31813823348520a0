// Package web provides the embedded upload UI for the Concierge server.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// StaticFS returns the embedded static assets with "static" as the root,
// so files are accessed directly (e.g., "app.js" not "static/app.js").
func StaticFS() (fs.FS, error) {
	return fs.Sub(files, "static")
}

// Templates parses the embedded page templates with the given functions.
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("web").Funcs(funcs).ParseFS(files, "templates/*.html")
}
