// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/ramo2594/probook/services/probook/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageHome           = "home"
	PagePublicBooking  = "public_booking"
	PageBookingSuccess = "booking_success"
	PageLogin          = "login"
	PageNoProfessional = "no_professional"
	PageDashboard      = "dashboard"
	PageHistory        = "history"
	PageError          = "error"
)

var shared = []string{"templates/base.html", "templates/booking_table.html"}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return model.FormatDate(t) },
}

// Page is the value every template executes against.
type Page struct {
	User *PageUser
	Data any
}

type PageUser struct {
	Username string
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	names := []string{
		PageHome, PagePublicBooking, PageBookingSuccess, PageLogin,
		PageNoProfessional, PageDashboard, PageHistory, PageError,
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		// Page files parse last so their blocks override the base defaults.
		files := append(append([]string{}, shared...), "templates/"+name+".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer panics if the embedded templates do not parse.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes page into a buffer first so a template error never leaves a
// half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, p Page) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
