package main

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (app *application) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", app.index).Methods(http.MethodGet)
	r.HandleFunc("/add_movie", app.addMovieForm).Methods(http.MethodGet)
	r.HandleFunc("/add_movie", app.addMovie).Methods(http.MethodPost)
	r.HandleFunc("/edit_movie/{id:[0-9]+}", app.editMovieForm).Methods(http.MethodGet)
	r.HandleFunc("/edit_movie/{id:[0-9]+}", app.editMovie).Methods(http.MethodPost)
	r.HandleFunc("/delete_movie/{id:[0-9]+}", app.deleteMovie).Methods(http.MethodGet)

	r.Use(app.logRequest)

	return r
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.PrintDebug("request", map[string]string{
			"request_method": r.Method,
			"request_url":    r.URL.String(),
		})
		next.ServeHTTP(w, r)
	})
}
