package frontend

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/labstack/echo/v4"
)

const viewsPattern = "views/*.html"

//go:embed views/*.html
var templateFS embed.FS

//go:embed views/icon.svg
var assetsFS embed.FS

type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

var templateFuncs = template.FuncMap{
	// images are inlined as data URLs; html/template would reject them as plain strings
	"pngDataURL": func(b64 string) template.URL {
		return template.URL("data:image/png;base64," + b64)
	},
	"thumbKind": func(r generation.Result) string {
		if r.ColoringPage != "" {
			return "coloring"
		}
		return "original"
	},
	"add1": func(i int) int {
		return i + 1
	},
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
}

func newTemplate() *Template {
	return &Template{
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, viewsPattern)),
	}
}
