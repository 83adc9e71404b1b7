package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/hafizmfadli/movie-catalog/internal/data"
)

const (
	sessionName   = "movies-session"
	sessionUserID = "user_id"
)

type contextKey string

const userContextKey = contextKey("user")

func newSessionStore(secret []byte, cfg config) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.session.maxAge,
		HttpOnly: true,
		Secure:   cfg.env == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// session returns the request's session. A cookie that fails to decode
// yields a fresh session, so a stale secret only logs the user out.
func (app *application) session(r *http.Request) *sessions.Session {
	session, err := app.sessions.Get(r, sessionName)
	if err != nil {
		app.logger.PrintDebug("discarding undecodable session", map[string]string{
			"error": err.Error(),
		})
	}
	return session
}

// sessionUser returns the logged-in user, or nil when the session holds no
// user or names one that no longer exists.
func (app *application) sessionUser(r *http.Request) (*data.User, error) {
	id, ok := app.session(r).Values[sessionUserID].(int64)
	if !ok {
		return nil, nil
	}

	user, err := app.models.Users.Get(id)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// flash queues a one-time message for the next rendered page.
func (app *application) flash(w http.ResponseWriter, r *http.Request, message string) {
	session := app.session(r)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		app.logger.PrintError(err, nil)
	}
}

func contextSetUser(r *http.Request, user *data.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// contextGetUser returns the user stored by requireAuth, or nil.
func contextGetUser(r *http.Request) *data.User {
	user, _ := r.Context().Value(userContextKey).(*data.User)
	return user
}
