package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Template names, as passed to gin's c.HTML.
const (
	LoginTemplate      = "login.html"
	ShowImagesTemplate = "show_images.html"
	ListTemplate       = "list.html"
	PageTopTemplate    = "page_top.html"
	ItemsTemplate      = "items.html"
)

// Templates parses every embedded page. items.html is also usable as the
// "items" partial from page_top.html.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
