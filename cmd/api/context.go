package main

import (
	"context"
	"net/http"

	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
)

type contextKey string

const (
	userContextKey   = contextKey("user")
	loggerContextKey = contextKey("logger")
)

// contextSetUser returns a copy of r carrying user.
func (app *application) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser returns the user stored by the authenticate middleware. It
// is only called where that middleware has run, so a missing value panics.
func (app *application) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}

func (app *application) contextSetLogger(r *http.Request, logger *jsonlog.Logger) *http.Request {
	ctx := context.WithValue(r.Context(), loggerContextKey, logger)
	return r.WithContext(ctx)
}

// requestLogger returns the logger tagged with the request id, falling back
// to the application logger.
func (app *application) requestLogger(r *http.Request) *jsonlog.Logger {
	if logger, ok := r.Context().Value(loggerContextKey).(*jsonlog.Logger); ok {
		return logger
	}
	return app.logger
}
