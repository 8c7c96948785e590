package web

import (
	"embed"
	"html/template"
	"net/url"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"pathEscape": url.PathEscape,
	}).ParseFS(files, "templates/*.html"))
}
