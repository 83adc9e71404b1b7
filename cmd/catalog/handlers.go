package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hafizmfadli/movie-catalog/internal/catalog"
	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

//go:embed "templates"
var templateFS embed.FS

// form carries the submitted values back to the page along with the field
// errors.
type form struct {
	Title          string
	Year           string
	NumberOfOscars string
	Errors         map[string]string
}

type templateData struct {
	Movies []catalog.Movie
	Movie  *catalog.Movie
	Form   form
}

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

func (app *application) index(w http.ResponseWriter, r *http.Request) {
	movies, err := app.movies.GetAll()
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "index.tmpl", templateData{Movies: movies})
}

func (app *application) addMovieForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "add_movie.tmpl", templateData{})
}

func (app *application) addMovie(w http.ResponseWriter, r *http.Request) {
	var m catalog.Movie

	f, ok := app.parseMovieForm(r, &m)
	if !ok {
		app.render(w, r, http.StatusUnprocessableEntity, "add_movie.tmpl", templateData{Form: f})
		return
	}

	if err := app.movies.Create(&m); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) editMovieForm(w http.ResponseWriter, r *http.Request) {
	m, ok := app.movieFromPath(w, r)
	if !ok {
		return
	}

	f := form{
		Title:          m.Title,
		Year:           strconv.Itoa(m.Year),
		NumberOfOscars: strconv.Itoa(m.NumberOfOscars),
	}
	app.render(w, r, http.StatusOK, "edit_movie.tmpl", templateData{Movie: m, Form: f})
}

func (app *application) editMovie(w http.ResponseWriter, r *http.Request) {
	m, ok := app.movieFromPath(w, r)
	if !ok {
		return
	}

	f, ok := app.parseMovieForm(r, m)
	if !ok {
		app.render(w, r, http.StatusUnprocessableEntity, "edit_movie.tmpl", templateData{Movie: m, Form: f})
		return
	}

	err := app.movies.Update(m)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			http.NotFound(w, r)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	m, ok := app.movieFromPath(w, r)
	if !ok {
		return
	}

	err := app.movies.Delete(m.ID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// movieFromPath loads the movie named by the {id} route variable, answering
// 404 when there is none.
func (app *application) movieFromPath(w http.ResponseWriter, r *http.Request) (*catalog.Movie, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	m, err := app.movies.GetByID(id)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			http.NotFound(w, r)
		default:
			app.serverError(w, r, err)
		}
		return nil, false
	}
	return m, true
}

// parseMovieForm copies the posted fields into m. All three are required.
func (app *application) parseMovieForm(r *http.Request, m *catalog.Movie) (form, bool) {
	f := form{
		Title:          strings.TrimSpace(r.PostFormValue("title")),
		Year:           strings.TrimSpace(r.PostFormValue("year")),
		NumberOfOscars: strings.TrimSpace(r.PostFormValue("number_of_oscars")),
	}

	v := validator.New()

	year, err := strconv.Atoi(f.Year)
	v.Check(err == nil, "year", "must be an integer value")

	oscars, err := strconv.Atoi(f.NumberOfOscars)
	v.Check(err == nil, "number_of_oscars", "must be an integer value")

	m.Title, m.Year, m.NumberOfOscars = f.Title, year, oscars

	catalog.ValidateMovie(v, m)

	f.Errors = v.Errors
	return f, v.Valid()
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, td templateData) {
	ts, ok := app.templates[page]
	if !ok {
		app.serverError(w, r, fmt.Errorf("the template %s does not exist", page))
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", td); err != nil {
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
