package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovies_EndToEnd(t *testing.T) {
	ta := newTestApplication(t)

	res := ta.do(t, http.MethodPost, "/users", "", map[string]string{"username": "ann", "password": "pw1"})
	require.Equal(t, http.StatusCreated, res.status)

	token := ta.login(t, "ann", "pw1")

	res = ta.do(t, http.MethodPost, "/movies", token, map[string]any{"title": "Inception", "year": 2010})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "/movies/1", res.header.Get("Location"))
	assert.Equal(t, map[string]any{
		"id":      float64(1),
		"title":   "Inception",
		"year":    float64(2010),
		"genre":   nil,
		"oscars":  nil,
		"user_id": float64(1),
		"version": float64(1),
	}, res.json(t))

	res = ta.do(t, http.MethodGet, "/movies", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	body := res.json(t)
	assert.Equal(t, float64(1), body["count"])
	assert.NotContains(t, body, "metadata")
	movies := body["movies"].([]any)
	require.Len(t, movies, 1)
	assert.Equal(t, float64(1), movies[0].(map[string]any)["id"])

	res = ta.do(t, http.MethodDelete, "/movies/1", token, nil)
	assert.Equal(t, http.StatusNoContent, res.status)
	assert.Empty(t, res.body)

	res = ta.do(t, http.MethodGet, "/movies/1", token, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "Not Found", res.json(t)["error"])
}

func TestMovies_OwnershipIsolation(t *testing.T) {
	ta := newTestApplication(t)
	ta.register(t, "ann", "pw1")
	ta.register(t, "bob", "pw2")
	annToken := ta.login(t, "ann", "pw1")
	bobToken := ta.login(t, "bob", "pw2")

	id := ta.createMovie(t, annToken, map[string]any{"title": "Inception"})
	path := fmt.Sprintf("/movies/%d", id)

	res := ta.do(t, http.MethodGet, path, bobToken, nil)
	require.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, map[string]any{"error": "Forbidden", "details": "access denied"}, res.json(t))

	res = ta.do(t, http.MethodPut, path, bobToken, map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, res.status)

	res = ta.do(t, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = ta.do(t, http.MethodGet, "/movies", bobToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, float64(0), res.json(t)["count"])
	assert.Empty(t, res.json(t)["movies"])

	res = ta.do(t, http.MethodGet, path, annToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Inception", res.json(t)["title"])
}

func TestMovies_RequireAuthentication(t *testing.T) {
	ta := newTestApplication(t)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
	}{
		{"no header", http.MethodGet, "/movies", ""},
		{"unknown token", http.MethodGet, "/movies", "Bearer ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
		{"malformed token", http.MethodPost, "/movies", "Bearer short"},
		{"wrong scheme", http.MethodGet, "/movies/1", "Basic YW5uOnB3MQ=="},
		{"missing token", http.MethodDelete, "/movies/1", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			rr := httptest.NewRecorder()
			ta.handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestMovies_PartialUpdate(t *testing.T) {
	ta := newTestApplication(t)
	ta.register(t, "ann", "pw1")
	token := ta.login(t, "ann", "pw1")

	id := ta.createMovie(t, token, map[string]any{"title": "The Matrix", "year": 1998, "genre": "sci-fi", "oscars": 4})
	path := fmt.Sprintf("/movies/%d", id)

	res := ta.do(t, http.MethodPut, path, token, map[string]any{"year": 1999})
	require.Equal(t, http.StatusOK, res.status)

	body := res.json(t)
	assert.Equal(t, float64(1999), body["year"])
	assert.Equal(t, "The Matrix", body["title"])
	assert.Equal(t, "sci-fi", body["genre"])
	assert.Equal(t, float64(4), body["oscars"])
	assert.Equal(t, float64(2), body["version"])

	res = ta.do(t, http.MethodPatch, path, token, map[string]any{"genre": "action"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "action", res.json(t)["genre"])
	assert.Equal(t, float64(1999), res.json(t)["year"])

	res = ta.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, float64(1999), res.json(t)["year"])
	assert.Equal(t, "action", res.json(t)["genre"])

	// An explicit null clears an optional field.
	res = ta.do(t, http.MethodPatch, path, token, `{"genre": null}`)
	require.Equal(t, http.StatusOK, res.status)
	body = res.json(t)
	assert.Nil(t, body["genre"])
	assert.Contains(t, body, "genre")
	assert.Equal(t, "The Matrix", body["title"])
	assert.Equal(t, float64(1999), body["year"])
	assert.Equal(t, float64(4), body["oscars"])

	res = ta.do(t, http.MethodPut, path, token, `{"year": null, "oscars": null}`)
	require.Equal(t, http.StatusOK, res.status)
	body = res.json(t)
	assert.Nil(t, body["year"])
	assert.Nil(t, body["oscars"])

	res = ta.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, res.status)
	body = res.json(t)
	assert.Nil(t, body["year"])
	assert.Nil(t, body["genre"])
	assert.Nil(t, body["oscars"])
	assert.Equal(t, "The Matrix", body["title"])

	// The title is required and cannot be cleared.
	res = ta.do(t, http.MethodPut, path, token, `{"title": null}`)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, map[string]any{"title": "must be provided"}, res.json(t)["details"])

	res = ta.do(t, http.MethodPut, path, token, `{"year": "1999"}`)
	assert.Equal(t, http.StatusBadRequest, res.status)
}

func TestMovies_Validation(t *testing.T) {
	ta := newTestApplication(t)
	ta.register(t, "ann", "pw1")
	token := ta.login(t, "ann", "pw1")
	id := ta.createMovie(t, token, map[string]any{"title": "Inception"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"create without title", http.MethodPost, "/movies", map[string]any{"year": 2010}, http.StatusBadRequest},
		{"create with unknown field", http.MethodPost, "/movies", map[string]any{"name": "Inception", "year": 2010}, http.StatusBadRequest},
		{"create with bad year", http.MethodPost, "/movies", map[string]any{"title": "Inception", "year": 1500}, http.StatusBadRequest},
		{"create with wrong type", http.MethodPost, "/movies", `{"title": 42}`, http.StatusBadRequest},
		{"create with two values", http.MethodPost, "/movies", `{"title": "A"}{"title": "B"}`, http.StatusBadRequest},
		{"update to empty title", http.MethodPut, fmt.Sprintf("/movies/%d", id), map[string]any{"title": ""}, http.StatusBadRequest},
		{"update missing movie", http.MethodPut, "/movies/999", map[string]any{"year": 1999}, http.StatusNotFound},
		{"bad id", http.MethodGet, "/movies/abc", nil, http.StatusNotFound},
		{"negative id", http.MethodDelete, "/movies/-1", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ta.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.status, res.status, string(res.body))
		})
	}
}

func TestMovies_ListPagination(t *testing.T) {
	ta := newTestApplication(t)
	ta.register(t, "ann", "pw1")
	token := ta.login(t, "ann", "pw1")

	for _, title := range []string{"Casablanca", "Alien", "Brazil"} {
		ta.createMovie(t, token, map[string]any{"title": title})
	}

	res := ta.do(t, http.MethodGet, "/movies?page=1&page_size=2&sort=title", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	body := res.json(t)
	assert.Equal(t, float64(3), body["count"])
	movies := body["movies"].([]any)
	require.Len(t, movies, 2)
	assert.Equal(t, "Alien", movies[0].(map[string]any)["title"])
	assert.Equal(t, "Brazil", movies[1].(map[string]any)["title"])
	assert.Equal(t, map[string]any{
		"current_page":  float64(1),
		"page_size":     float64(2),
		"first_page":    float64(1),
		"last_page":     float64(2),
		"total_records": float64(3),
	}, body["metadata"])

	res = ta.do(t, http.MethodGet, "/movies?page=2", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, res.json(t)["movies"])
	assert.Equal(t, float64(3), res.json(t)["count"])

	res = ta.do(t, http.MethodGet, "/movies?sort=-id", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	movies = res.json(t)["movies"].([]any)
	require.Len(t, movies, 3)
	assert.Equal(t, "Brazil", movies[0].(map[string]any)["title"])

	for _, qs := range []string{"page=0", "page_size=101", "page_size=0", "page=x", "sort=password_hash"} {
		res = ta.do(t, http.MethodGet, "/movies?"+qs, token, nil)
		assert.Equal(t, http.StatusBadRequest, res.status, qs)
	}
}

// conflictingMovies fails every update as if another request had changed
// the movie first.
type conflictingMovies struct {
	data.MovieStore
}

func (conflictingMovies) Update(*data.Movie) error {
	return data.ErrEditConflict
}

// panickingMovies has no backing store, so any call through it panics.
type panickingMovies struct {
	data.MovieStore
}

func TestMovies_PanicIsLoggedWithRequestID(t *testing.T) {
	ta := newTestApplication(t)
	ta.register(t, "ann", "pw1")
	token := ta.login(t, "ann", "pw1")

	var buf bytes.Buffer
	ta.app.logger = jsonlog.NewLogger(&buf, jsonlog.LevelInfo)
	ta.app.models.Movies = panickingMovies{}

	res := ta.do(t, http.MethodGet, "/movies", token, nil)
	require.Equal(t, http.StatusInternalServerError, res.status)

	requestID := res.header.Get("X-Request-Id")
	require.NotEmpty(t, requestID)

	var levels, messages []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry struct {
			Level      string            `json:"level"`
			Message    string            `json:"message"`
			Properties map[string]string `json:"properties"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, requestID, entry.Properties["request_id"], line)
		levels = append(levels, entry.Level)
		messages = append(messages, entry.Message)
		if entry.Message == "request completed" {
			assert.Equal(t, "500", entry.Properties["status"])
		}
	}
	assert.Equal(t, []string{"ERROR", "INFO"}, levels)
	assert.Equal(t, "request completed", messages[1])
}

func TestMovies_EditConflict(t *testing.T) {
	ta := newTestApplication(t)
	ta.register(t, "ann", "pw1")
	token := ta.login(t, "ann", "pw1")
	id := ta.createMovie(t, token, map[string]any{"title": "Inception"})

	ta.app.models.Movies = conflictingMovies{ta.app.models.Movies}

	res := ta.do(t, http.MethodPut, fmt.Sprintf("/movies/%d", id), token, map[string]any{"year": 2010})
	assert.Equal(t, http.StatusConflict, res.status)
}
