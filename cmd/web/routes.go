package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.clientError(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.clientError(w, http.StatusMethodNotAllowed)
	})

	r.Get("/login", app.loginForm)
	r.Post("/login", app.login)
	r.Get("/logout", app.logout)
	r.Get("/register", app.registerForm)
	r.Post("/register", app.register)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuth)

		r.Get("/", app.index)
		r.Post("/add", app.addMovie)
		r.Get("/delete/{id}", app.deleteMovie)
	})

	return r
}
