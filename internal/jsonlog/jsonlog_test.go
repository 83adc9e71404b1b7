package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Level      string            `json:"level"`
	Time       string            `json:"time"`
	Message    string            `json:"message"`
	Properties map[string]string `json:"properties"`
	Trace      string            `json:"trace"`
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []entry {
	t.Helper()

	var entries []entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e entry
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		entries = append(entries, e)
	}
	return entries
}

func TestLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	logger.PrintDebug("hidden", nil)
	logger.PrintInfo("starting server", map[string]string{"addr": ":4000"})
	logger.PrintError(errors.New("boom"), nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "starting server", entries[0].Message)
	assert.Equal(t, ":4000", entries[0].Properties["addr"])
	assert.Empty(t, entries[0].Trace)

	assert.Equal(t, "ERROR", entries[1].Level)
	assert.Equal(t, "boom", entries[1].Message)
	assert.NotEmpty(t, entries[1].Trace)
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelDebug).With(map[string]string{"request_id": "abc", "user": "ann"})

	logger.PrintDebug("request", map[string]string{"user": "bob"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0].Level)
	assert.Equal(t, map[string]string{"request_id": "abc", "user": "bob"}, entries[0].Properties)
}

func TestLogger_PrintFatalExits(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	code := -1
	logger.exit = func(c int) { code = c }

	logger.PrintFatal(errors.New("cannot open database"), nil)

	assert.Equal(t, 1, code)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "FATAL", entries[0].Level)
}

func TestLogger_Write(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelInfo)

	_, err := logger.Write([]byte("http: TLS handshake error\n"))
	require.NoError(t, err)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0].Level)
	assert.Equal(t, "http: TLS handshake error", entries[0].Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel("ERROR"))
	assert.Equal(t, LevelOff, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
