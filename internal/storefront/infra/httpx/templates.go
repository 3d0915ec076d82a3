package httpx

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ferremas-cl/storefront/internal/pkg/format"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"clp": format.CLP,
	"mul": func(a, b int) int { return a * b },
}).ParseFS(templateFS, "templates/*.html"))

func render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "template render failed", "template", name, "error", err)
	}
}
