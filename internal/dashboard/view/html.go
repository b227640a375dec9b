package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// DefaultRefreshSeconds is how often the HTML page reloads itself.
const DefaultRefreshSeconds = 2

type htmlData struct {
	Title          string
	Subtitle       string
	Footer         string
	RefreshSeconds int
	Page           Page
}

// RenderHTML writes page as a self refreshing HTML document.
func RenderHTML(w io.Writer, page Page, refreshSeconds int) error {
	if refreshSeconds <= 0 {
		refreshSeconds = DefaultRefreshSeconds
	}

	err := pageTemplate.Execute(w, htmlData{
		Title:          Title,
		Subtitle:       Subtitle,
		Footer:         Footer,
		RefreshSeconds: refreshSeconds,
		Page:           page,
	})
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
