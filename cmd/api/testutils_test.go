package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hafizmfadli/movie-catalog/internal/data"
	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	recipient string
	template  string
	data      any
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{recipient, templateFile, data})
	return nil
}

type testApp struct {
	app     *application
	handler http.Handler
	clock   *testClock
	mailer  *fakeMailer
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	clock := &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	mailer := &fakeMailer{}

	var cfg config
	cfg.env = "testing"
	cfg.tokenTTL = data.DefaultTokenTTL

	app := &application{
		config: cfg,
		logger: jsonlog.NewLogger(io.Discard, jsonlog.LevelOff),
		models: data.NewMemoryModels(clock.Now),
		mailer: mailer,
	}

	return &testApp{app: app, handler: app.routes(), clock: clock, mailer: mailer}
}

type testResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r testResponse) json(t *testing.T) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

// do sends a request through the full middleware chain. A non-empty token is
// sent as a bearer token; a string body is sent as is, anything else is
// JSON-encoded.
func (ta *testApp) do(t *testing.T, method, path, token string, body any) testResponse {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		js, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(js)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)

	return testResponse{status: rr.Code, header: rr.Header(), body: rr.Body.Bytes()}
}

// register creates a user and returns its id.
func (ta *testApp) register(t *testing.T, username, password string) int64 {
	t.Helper()

	res := ta.do(t, http.MethodPost, "/users", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	return int64(res.json(t)["id"].(float64))
}

// login requests a token for username.
func (ta *testApp) login(t *testing.T, username, password string) string {
	t.Helper()

	res := ta.do(t, http.MethodPost, "/token", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	return res.json(t)["token"].(string)
}

// createMovie posts movie with token and returns the new id.
func (ta *testApp) createMovie(t *testing.T, token string, movie map[string]any) int64 {
	t.Helper()

	res := ta.do(t, http.MethodPost, "/movies", token, movie)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	return int64(res.json(t)["id"].(float64))
}
