package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

// index lists the logged-in user's movies.
func (app *application) index(w http.ResponseWriter, r *http.Request) {
	user := contextGetUser(r)

	movies, _, err := app.models.Movies.GetAllForUser(user.ID, data.Filters{
		Sort:         "id",
		SortSafelist: data.MovieSortSafelist,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.render(w, r, http.StatusOK, "index.tmpl", &templateData{Movies: movies})
}

func (app *application) loginForm(w http.ResponseWriter, r *http.Request) {
	if app.redirectIfLoggedIn(w, r) {
		return
	}
	app.render(w, r, http.StatusOK, "login.tmpl", nil)
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	if app.redirectIfLoggedIn(w, r) {
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := app.models.Users.GetByUsername(username)
	if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
		app.serverError(w, r, err)
		return
	}

	if user == nil || !user.Password.Matches(password) {
		app.flash(w, r, "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session := app.session(r)
	session.Values[sessionUserID] = user.ID
	if err := session.Save(r, w); err != nil {
		app.serverError(w, r, err)
		return
	}

	app.logger.PrintInfo("user logged in", map[string]string{
		"user_id": strconv.FormatInt(user.ID, 10),
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	session := app.session(r)
	session.Values = make(map[any]any)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (app *application) registerForm(w http.ResponseWriter, r *http.Request) {
	if app.redirectIfLoggedIn(w, r) {
		return
	}
	app.render(w, r, http.StatusOK, "register.tmpl", nil)
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	if app.redirectIfLoggedIn(w, r) {
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	v := validator.New()
	data.ValidateUsername(v, username)
	data.ValidatePasswordPlaintext(v, password)
	if !v.Valid() {
		app.flashErrors(w, r, v.Errors)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	user := &data.User{Username: username}
	if err := user.Password.Set(password); err != nil {
		app.serverError(w, r, err)
		return
	}

	err := app.models.Users.Insert(user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			app.flash(w, r, "Username already exists")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	app.flash(w, r, "Registration successful")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (app *application) addMovie(w http.ResponseWriter, r *http.Request) {
	movie := &data.Movie{
		Title:  strings.TrimSpace(r.PostFormValue("title")),
		UserID: contextGetUser(r).ID,
	}

	v := validator.New()

	if year := strings.TrimSpace(r.PostFormValue("year")); year != "" {
		n, err := strconv.ParseInt(year, 10, 32)
		if err != nil {
			v.AddError("year", "must be an integer value")
		} else {
			y := int32(n)
			movie.Year = &y
		}
	}

	if data.ValidateMovie(v, movie); !v.Valid() {
		app.flashErrors(w, r, v.Errors)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	err := app.models.Movies.Insert(movie)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// deleteMovie removes one of the user's movies. Someone else's movie is left
// alone and the user is told so.
func (app *application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		app.clientError(w, http.StatusNotFound)
		return
	}

	movie, err := app.models.Movies.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.clientError(w, http.StatusNotFound)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	if movie.UserID != contextGetUser(r).ID {
		app.flash(w, r, "Unauthorized")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	err = app.models.Movies.Delete(movie.ID)
	if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// redirectIfLoggedIn sends a logged-in user to the index and reports whether
// it did.
func (app *application) redirectIfLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	user, err := app.sessionUser(r)
	if err != nil {
		app.serverError(w, r, err)
		return true
	}
	if user != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return true
	}
	return false
}

// flashErrors queues one message per failed field, e.g. "title must be
// provided".
func (app *application) flashErrors(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	session := app.session(r)
	for _, key := range []string{"username", "password", "title", "year"} {
		if msg, ok := errs[key]; ok {
			session.AddFlash(key + " " + msg)
		}
	}
	if err := session.Save(r, w); err != nil {
		app.logger.PrintError(err, nil)
	}
}
