package server

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ParseTemplates parses the embedded pages. Each template is named after its
// file, e.g. "authorize.html".
func ParseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFiles, "templates/*.html")
}
