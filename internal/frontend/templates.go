package frontend

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed views/*.html
var templateFS embed.FS

//go:embed views/icon.svg
var assetsFS embed.FS

const (
	layoutFile   = "views/layout.html"
	layoutName   = "layout"
	viewsPattern = "views/%s"
)

// Page templates rendered inside the layout.
const (
	homeTemplate          = "home.html"
	announcementsTemplate = "announcements.html"
	galleryTemplate       = "gallery.html"
	registrationTemplate  = "registration.html"
	errorTemplate         = "error.html"
)

var pageTemplates = []string{homeTemplate, announcementsTemplate, galleryTemplate, registrationTemplate, errorTemplate}

// markdownRenderer escapes raw HTML in its input (WithUnsafe is not set).
var markdownRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Template renders one page template wrapped in the shared layout.
type Template struct {
	templates map[string]*template.Template
}

func NewTemplate() (*Template, error) {
	funcs := template.FuncMap{
		"markdown": renderMarkdown,
		"imageURL": DirectImageURL,
	}

	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		parsed, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, fmt.Sprintf(viewsPattern, name))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = parsed
	}
	return &Template{templates: templates}, nil
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	// render into a buffer so that a failing template does not leave half a page behind
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutName, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(source), &buf); err != nil {
		slog.Warn("failed to render markdown, falling back to escaped text", "error", err)
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}
