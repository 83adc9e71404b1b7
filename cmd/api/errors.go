package main

import (
	"fmt"
	"net/http"
)

// logError is generic helper for logging error message.
func (app *application) logError(r *http.Request, err error) {
	app.requestLogger(r).PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

// errorResponse sends {"error": <reason phrase>, "details": <details>} with
// status. A nil details is left out of the body.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, details any) {
	env := envelope{
		"error": http.StatusText(status),
	}
	if details != nil {
		env["details"] = details
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs err and sends a 500 Internal Server Error. The
// error itself is never shown to the client.
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// notFoundResponse will be used to send a 404 Not Found status code with JSON formatted
func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

// methodNotAllowedResponse will be used to send a 405 Method Not Allowed status code with JSON formatted
func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

// badRequestResponse will be used to send a 400 Bad Request status code with JSON formatted
func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// failedValidationResponse sends a 400 Bad Request carrying the field errors
// collected by a validator.
func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusBadRequest, errors)
}

// editConflictResponse will be used to send a 409 Conflict status code with JSON formatted
func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "unable to update the record due to an edit conflict, please try again"
	app.errorResponse(w, r, http.StatusConflict, message)
}

// rateLimitExceededResponse will be used to send a 429 Too Many Requests status code with JSON formatted
func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// invalidCredentialsResponse sends a 401 when a username/password pair does
// not match.
func (app *application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid authentication credentials"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

// authenticationRequiredResponse sends a 401 when the caller presented no
// valid bearer token. The WWW-Authenticate header tells the client which
// scheme is expected.
func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	message := "you must be authenticated to access this resource"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

// notPermittedResponse sends a 403 when the caller is authenticated but does
// not own the resource.
func (app *application) notPermittedResponse(w http.ResponseWriter, r *http.Request) {
	message := "access denied"
	app.errorResponse(w, r, http.StatusForbidden, message)
}
