package httpapi

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/riskibarqy/match-insights/internal/platform/chart"
	"github.com/valyala/bytebufferpool"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageMatch    = "match"
	pageProfiles = "profiles"
	pageNotes    = "notes"
	pageError    = "error"
)

type pageRenderer struct {
	templates map[string]*template.Template
}

func newPageRenderer() *pageRenderer {
	funcs := template.FuncMap{
		"decimal": decimal,
		"inc":     func(i int) int { return i + 1 },
	}

	out := &pageRenderer{templates: make(map[string]*template.Template)}
	for _, name := range []string{pageMatch, pageProfiles, pageNotes, pageError} {
		out.templates[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS, "templates/layout.html", "templates/"+name+".html",
		))
	}
	return out
}

// layout is embedded by every page view model.
type layout struct {
	Title  string
	Active string
}

type figure struct {
	Title   string
	SVG     template.HTML
	Caption string
}

type errorPage struct {
	layout
	Status  int
	Message string
}

// render executes the page into a pooled buffer so a template failure never
// leaves a half-written response.
func (p *pageRenderer) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) error {
	_, span := startSpan(ctx, "httpapi.pageRenderer.render")
	defer span.End()

	tmpl, ok := p.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := tmpl.ExecuteTemplate(buf, "layout", data); err != nil {
		return fmt.Errorf("execute %s page: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.B)
	return err
}

// svgFigure renders c inline, dropping the XML prolog.
func svgFigure(title, caption string, c chart.Chart) (figure, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := chart.Render(buf, c); err != nil {
		return figure{}, fmt.Errorf("render %q: %w", title, err)
	}
	markup := buf.String()
	if i := strings.Index(markup, "<svg"); i > 0 {
		markup = markup[i:]
	}
	return figure{Title: title, SVG: template.HTML(markup), Caption: caption}, nil
}

func (h *Handler) writePage(ctx context.Context, w http.ResponseWriter, name string, data any) {
	if err := h.pages.render(ctx, w, http.StatusOK, name, data); err != nil {
		h.logger.ErrorContext(ctx, "render page failed", "page", name, "error", err)
		writeInternalError(ctx, w)
	}
}

// writePageError renders the error panel with the status the JSON API would use.
func (h *Handler) writePageError(ctx context.Context, w http.ResponseWriter, active string, err error) {
	mapped := mapError(ctx, err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = "Ocorreu um erro inesperado ao preparar esta página."
	}

	data := errorPage{
		layout:  layout{Title: "Erro", Active: active},
		Status:  mapped.HTTPStatus,
		Message: message,
	}
	if renderErr := h.pages.render(ctx, w, mapped.HTTPStatus, pageError, data); renderErr != nil {
		h.logger.ErrorContext(ctx, "render error page failed", "error", renderErr)
		writeInternalError(ctx, w)
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
