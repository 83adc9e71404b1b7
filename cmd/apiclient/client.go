package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type client struct {
	baseURL string
	http    *http.Client
	out     io.Writer
}

func newClient(baseURL string, timeout time.Duration, out io.Writer) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		out:     out,
	}
}

// run performs the three steps in order and stops at the first one that
// does not succeed.
func (c *client) run(ctx context.Context, username, password string) error {
	fmt.Fprintf(c.out, "Testing movie API at %s\n\n", c.baseURL)

	fmt.Fprintln(c.out, "Step 1: retrieving token...")
	var auth struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/token", "", map[string]string{
		"username": username,
		"password": password,
	}, http.StatusOK, &auth)
	if err != nil {
		return err
	}
	if auth.Token == "" {
		return errors.New("no token in response")
	}

	fmt.Fprintln(c.out, "Step 2: retrieving all movies...")
	err = c.do(ctx, http.MethodGet, "/movies", auth.Token, nil, http.StatusOK, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Step 3: adding new movie...")
	err = c.do(ctx, http.MethodPost, "/movies", auth.Token, map[string]any{
		"title":  "Inception",
		"year":   2010,
		"oscars": 4,
	}, http.StatusCreated, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "It works")
	return nil
}

// do sends one request, prints the status and body, and decodes the body
// into dst when dst is not nil. A status other than want is an error.
func (c *client) do(ctx context.Context, method, path, token string, body any, want int, dst any) error {
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	fmt.Fprintf(c.out, "Status: %d\n", res.StatusCode)
	fmt.Fprintf(c.out, "Response: %s\n\n", bytes.TrimSpace(raw))

	if res.StatusCode != want {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, res.StatusCode)
	}

	if dst != nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
