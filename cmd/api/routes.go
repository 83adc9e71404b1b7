package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodPost, "/token", app.createAuthenticationTokenHandler)
	router.HandlerFunc(http.MethodDelete, "/token", app.requireAuthenticatedUser(app.revokeAuthenticationTokenHandler))

	router.HandlerFunc(http.MethodGet, "/movies", app.requireAuthenticatedUser(app.listMoviesHandler))
	router.HandlerFunc(http.MethodPost, "/movies", app.requireAuthenticatedUser(app.createMovieHandler))
	router.HandlerFunc(http.MethodGet, "/movies/:id", app.requireAuthenticatedUser(app.showMovieHandler))
	router.HandlerFunc(http.MethodPut, "/movies/:id", app.requireAuthenticatedUser(app.updateMovieHandler))
	router.HandlerFunc(http.MethodPatch, "/movies/:id", app.requireAuthenticatedUser(app.updateMovieHandler))
	router.HandlerFunc(http.MethodDelete, "/movies/:id", app.requireAuthenticatedUser(app.deleteMovieHandler))

	router.HandlerFunc(http.MethodPost, "/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/users/:id", app.requireAuthenticatedUser(app.showUserHandler))

	return app.logRequest(app.recoverPanic(app.rateLimit(app.authenticate(router))))
}
