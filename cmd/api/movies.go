package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/validator"
)

// defaultPageSize applies when a client asks for a page without a size.
const defaultPageSize = 10

// createMovieHandler for the "POST /movies" endpoint.
func (app *application) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title  string  `json:"title"`
		Year   *int32  `json:"year"`
		Genre  *string `json:"genre"`
		Oscars *int32  `json:"oscars"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie := &data.Movie{
		Title:  input.Title,
		Year:   input.Year,
		Genre:  input.Genre,
		Oscars: input.Oscars,
		UserID: app.contextGetUser(r).ID,
	}

	v := validator.New()

	if data.ValidateMovie(v, movie); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Movies.Insert(movie)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/movies/%d", movie.ID))

	err = app.writeJSON(w, http.StatusCreated, movie, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showMovieHandler for the "GET /movies/:id" endpoint.
func (app *application) showMovieHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.ownedMovie(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, movie, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listMoviesHandler for the "GET /movies" endpoint. Only the caller's movies
// are listed. Without page or page_size the whole list is returned.
func (app *application) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	filters := data.Filters{
		Page:         app.readInt(qs, "page", 1, v),
		Sort:         app.readString(qs, "sort", "id"),
		SortSafelist: data.MovieSortSafelist,
	}

	if qs.Has("page") || qs.Has("page_size") {
		filters.PageSize = app.readInt(qs, "page_size", defaultPageSize, v)
		if filters.PageSize == 0 {
			v.AddError("page_size", "must be greater than zero")
		}
	}

	if data.ValidateFilters(v, filters); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	movies, metadata, err := app.models.Movies.GetAllForUser(app.contextGetUser(r).ID, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := envelope{
		"movies": movies,
		"count":  metadata.TotalRecords,
	}
	if filters.Paginated() {
		env["metadata"] = metadata
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateMovieHandler for the "PUT /movies/:id" and "PATCH /movies/:id"
// endpoints. Only the fields present in the body are changed; an explicit
// null clears year, genre or oscars.
func (app *application) updateMovieHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.ownedMovie(w, r)
	if !ok {
		return
	}

	var input struct {
		Title  optional[string] `json:"title"`
		Year   optional[int32]  `json:"year"`
		Genre  optional[string] `json:"genre"`
		Oscars optional[int32]  `json:"oscars"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	// A null clears an optional field; the title cannot be cleared.
	if input.Title.Set {
		v.Check(input.Title.Value != nil, "title", "must be provided")
		if input.Title.Value != nil {
			movie.Title = *input.Title.Value
		}
	}
	if input.Year.Set {
		movie.Year = input.Year.Value
	}
	if input.Genre.Set {
		movie.Genre = input.Genre.Value
	}
	if input.Oscars.Set {
		movie.Oscars = input.Oscars.Value
	}

	if data.ValidateMovie(v, movie); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Movies.Update(movie)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, movie, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteMovieHandler for the "DELETE /movies/:id" endpoint.
func (app *application) deleteMovieHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.ownedMovie(w, r)
	if !ok {
		return
	}

	err := app.models.Movies.Delete(movie.ID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedMovie loads the movie named by the :id parameter and checks that the
// caller owns it. On failure the error response has already been sent.
func (app *application) ownedMovie(w http.ResponseWriter, r *http.Request) (*data.Movie, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	movie, err := app.models.Movies.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}

	if movie.UserID != app.contextGetUser(r).ID {
		app.notPermittedResponse(w, r)
		return nil, false
	}

	return movie, true
}
