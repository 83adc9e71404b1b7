package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/data"
)

//go:embed "templates"
var templateFS embed.FS

// templateData is passed to every page.
type templateData struct {
	User        *data.User
	Movies      []*data.Movie
	Flashes     []string
	CurrentYear int
}

// newTemplateCache parses every page together with the base layout.
func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(templateFS, "templates/pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		ts, err := template.New(name).ParseFS(templateFS, "templates/base.tmpl", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}

		cache[name] = ts
	}

	return cache, nil
}

// render writes page with status. Pending flashes are consumed, so the
// session is saved before anything is written.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, td *templateData) {
	ts, ok := app.templateCache[page]
	if !ok {
		app.serverError(w, r, fmt.Errorf("the template %s does not exist", page))
		return
	}

	if td == nil {
		td = &templateData{}
	}
	td.CurrentYear = time.Now().Year()
	if td.User == nil {
		td.User = contextGetUser(r)
	}

	session := app.session(r)
	for _, f := range session.Flashes() {
		if msg, ok := f.(string); ok {
			td.Flashes = append(td.Flashes, msg)
		}
	}
	if len(td.Flashes) > 0 {
		if err := session.Save(r, w); err != nil {
			app.serverError(w, r, err)
			return
		}
	}

	buf := new(bytes.Buffer)

	err := ts.ExecuteTemplate(buf, "base", td)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}
