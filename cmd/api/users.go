package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

const duplicateUsernameMessage = "a user with this username already exists"

// registerUserHandler for the "POST /users" endpoint.
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	data.ValidateUsername(v, input.Username)
	data.ValidatePasswordPlaintext(v, input.Password)
	if input.Email != "" {
		data.ValidateEmail(v, input.Email)
	}

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	_, err = app.models.Users.GetByUsername(input.Username)
	switch {
	case err == nil:
		v.AddError("username", duplicateUsernameMessage)
		app.failedValidationResponse(w, r, v.Errors)
		return
	case !errors.Is(err, data.ErrRecordNotFound):
		app.serverErrorResponse(w, r, err)
		return
	}

	user := &data.User{
		Username: input.Username,
		Email:    input.Email,
	}

	err = user.Password.Set(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Users.Insert(user)
	if err != nil {
		switch {
		// Lost the race against a concurrent registration.
		case errors.Is(err, data.ErrDuplicateUsername):
			v.AddError("username", duplicateUsernameMessage)
			app.failedValidationResponse(w, r, v.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if user.Email != "" && app.mailer != nil {
		app.background(func() {
			tmplData := map[string]any{
				"username": user.Username,
				"userID":   user.ID,
			}

			err := app.mailer.Send(user.Email, "user_welcome.tmpl", tmplData)
			if err != nil {
				app.logger.PrintError(err, map[string]string{"user_id": fmt.Sprint(user.ID)})
			}
		})
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/users/%d", user.ID))

	err = app.writeJSON(w, http.StatusCreated, user, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showUserHandler for the "GET /users/:id" endpoint. Callers may only read
// their own account.
func (app *application) showUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	if id != app.contextGetUser(r).ID {
		app.notPermittedResponse(w, r)
		return
	}

	user, err := app.models.Users.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, user, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
