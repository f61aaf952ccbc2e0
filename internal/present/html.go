package present

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/spherical/tabular-extractor/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// KindOption is one entry of the file type selector.
type KindOption struct {
	Value    string
	Label    string
	Selected bool
}

// FormView describes the upload form.
type FormView struct {
	Kinds   []KindOption
	Accept  string
	MaxSize string
}

// PageView is the single page of the web UI: the form, plus a result or a
// form error after a submission.
type PageView struct {
	Form      FormView
	FormError string
	Result    *ResultView
}

// NewFormView builds the upload form for the allowed extensions, with
// selected pre-checked (PDF when empty).
func NewFormView(allowed []string, maxBytes int64, selected domain.DocumentKind) FormView {
	if selected == "" {
		selected = domain.KindPDF
	}
	accept := make([]string, 0, len(allowed))
	for _, ext := range allowed {
		accept = append(accept, "."+strings.TrimPrefix(strings.ToLower(ext), "."))
	}
	return FormView{
		Kinds: []KindOption{
			{Value: domain.KindPDF.Label(), Label: domain.KindPDF.Label(), Selected: selected == domain.KindPDF},
			{Value: domain.KindImage.Label(), Label: domain.KindImage.Label(), Selected: selected == domain.KindImage},
		},
		Accept:  strings.Join(accept, ","),
		MaxSize: humanBytes(maxBytes),
	}
}

// Renderer writes HTML pages.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page renders the page.
func (r *Renderer) Page(w io.Writer, v PageView) error {
	return r.tmpl.ExecuteTemplate(w, "page", v)
}

func humanBytes(n int64) string {
	switch {
	case n <= 0:
		return "no limit"
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
