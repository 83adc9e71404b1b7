package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hafizmfadli/movie-catalog/internal/jsonlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanic(t *testing.T) {
	ta := newTestApplication(t)

	handler := ta.app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something broke")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
	assert.Contains(t, rr.Body.String(), "Internal Server Error")
	assert.NotContains(t, rr.Body.String(), "something broke")
}

func TestRateLimit(t *testing.T) {
	ta := newTestApplication(t)
	ta.app.config.limiter.enabled = true
	ta.app.config.limiter.rps = 1
	ta.app.config.limiter.burst = 2
	handler := ta.app.routes()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.RemoteAddr = "192.0.2.8:5555"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogRequest(t *testing.T) {
	ta := newTestApplication(t)

	var buf bytes.Buffer
	ta.app.logger = jsonlog.NewLogger(&buf, jsonlog.LevelInfo)
	handler := ta.app.routes()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	requestID := rr.Header().Get("X-Request-Id")
	require.Len(t, requestID, 36)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, buf.String(), `"request_id":"`+requestID+`"`)
	assert.Contains(t, buf.String(), `"status":"404"`)
}

func TestHealthcheckAndRouting(t *testing.T) {
	ta := newTestApplication(t)

	res := ta.do(t, http.MethodGet, "/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "available", res.json(t)["status"])
	assert.Equal(t, map[string]any{"environment": "testing", "version": version}, res.json(t)["system_info"])

	res = ta.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, res.status)

	res = ta.do(t, http.MethodDelete, "/users", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.status)
	assert.Equal(t, "Method Not Allowed", res.json(t)["error"])
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer  ", "", false},
		{"Token abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			token, ok := bearerToken(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}
